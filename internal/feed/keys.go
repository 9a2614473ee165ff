package feed

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - feed/{name}/m            (feed counters: lastSeq)
// - feed/{name}/e/{seq_be8}  (entries)
// - feedmeta/{name}          (registry metadata, JSON)

var (
	feedPrefix = []byte("feed/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
	regPrefix  = []byte("feedmeta/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyFeedMeta builds the feed counter key.
func KeyFeedMeta(name string) []byte {
	k := make([]byte, 0, len(feedPrefix)+len(name)+len(metaSuffix))
	k = append(k, feedPrefix...)
	k = append(k, name...)
	k = append(k, metaSuffix...)
	return k
}

// KeyFeedEntry builds the entry key with a big-endian sequence for proper ordering.
func KeyFeedEntry(name string, seq uint64) []byte {
	k := make([]byte, 0, len(feedPrefix)+len(name)+len(entrySeg)+8)
	k = append(k, feedPrefix...)
	k = append(k, name...)
	k = append(k, entrySeg...)
	k = appendBE8(k, seq)
	return k
}

// KeyFeedRegistry builds the registry metadata key for a feed.
func KeyFeedRegistry(name string) []byte {
	k := make([]byte, 0, len(regPrefix)+len(name))
	k = append(k, regPrefix...)
	k = append(k, name...)
	return k
}

// entryBounds returns the [low, high) iterator bounds covering every entry of
// a feed.
func entryBounds(name string) (low, high []byte) {
	low = KeyFeedEntry(name, 0)
	high = append(KeyFeedEntry(name, ^uint64(0)), 0x00)
	return low, high
}

// seqFromEntryKey extracts the big-endian sequence suffix.
func seqFromEntryKey(key []byte) uint64 {
	if len(key) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
