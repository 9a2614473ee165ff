package feed

import (
	"bytes"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	payload := []byte(`{"price": 42}`)
	rec := EncodeEntry(1234567890, payload)

	at, got, ok := DecodeEntry(rec)
	if !ok {
		t.Fatalf("decode failed")
	}
	if at != 1234567890 || !bytes.Equal(got, payload) {
		t.Fatalf("roundtrip mismatch: at=%d payload=%q", at, got)
	}

	// decoded payload is a copy
	got[0] = 'x'
	if rec[8] == 'x' {
		t.Fatalf("decoded payload aliases the record")
	}
}

func TestRecordEmptyPayload(t *testing.T) {
	rec := EncodeEntry(77, nil)
	at, got, ok := DecodeEntry(rec)
	if !ok || at != 77 || len(got) != 0 {
		t.Fatalf("empty payload roundtrip: at=%d payload=%q ok=%v", at, got, ok)
	}
}

func TestRecordCorruption(t *testing.T) {
	rec := EncodeEntry(1000, []byte("hello"))

	for i := range rec {
		bad := append([]byte(nil), rec...)
		bad[i] ^= 0xff
		if _, _, ok := DecodeEntry(bad); ok {
			t.Fatalf("accepted record with byte %d flipped", i)
		}
	}
}

func TestRecordTooShort(t *testing.T) {
	for _, b := range [][]byte{nil, {}, {1, 2, 3}, make([]byte, 11)} {
		if _, _, ok := DecodeEntry(b); ok {
			t.Fatalf("accepted %d-byte record", len(b))
		}
	}
}
