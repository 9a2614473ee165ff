package feed

import (
	"encoding/binary"
	"hash/crc32"
)

// Entry record encoding: recordedAt ms (8B BE) | payload | crc32c(ts|payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodeEntry serializes an entry for storage.
func EncodeEntry(recordedAtMs int64, payload []byte) []byte {
	out := make([]byte, 0, 8+len(payload)+4)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(recordedAtMs))
	out = append(out, ts[:]...)
	out = append(out, payload...)

	crc := crc32.Update(0, castagnoli, ts[:])
	crc = crc32.Update(crc, castagnoli, payload)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	out = append(out, crcb[:]...)
	return out
}

// DecodeEntry parses a stored record, verifying the checksum. The returned
// payload is a fresh copy.
func DecodeEntry(b []byte) (recordedAtMs int64, payload []byte, ok bool) {
	if len(b) < 8+4 {
		return 0, nil, false
	}
	ts := b[:8]
	body := b[8 : len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	crc := crc32.Update(0, castagnoli, ts)
	crc = crc32.Update(crc, castagnoli, body)
	if crc != expect {
		return 0, nil, false
	}
	return int64(binary.BigEndian.Uint64(ts)), append([]byte(nil), body...), true
}
