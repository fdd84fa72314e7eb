package crdt

import (
	"encoding/binary"
	"strings"
)

// Key is a CRDT conflict key (spec.md §4.2): composite, opaque, comparable.
type Key string

// buildKey concatenates parts as length-prefixed segments so that no
// combination of variable-length inputs (e.g. a signer's raw bytes
// followed by a name) can collide with a different combination that
// happens to share the same concatenated bytes.
func buildKey(parts ...[]byte) Key {
	var b strings.Builder
	for _, p := range parts {
		var lenB [4]byte
		binary.BigEndian.PutUint32(lenB[:], uint32(len(p)))
		b.Write(lenB[:])
		b.Write(p)
	}
	return Key(b.String())
}

func beUint64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func beByte(v byte) []byte {
	return []byte{v}
}
