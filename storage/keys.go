package storage

import (
	"encoding/binary"

	"github.com/farcaster-hub/hub/common"
)

// Namespace byte prefixes, chosen so lexical key order groups each
// namespace contiguously for efficient prefix iteration (spec.md §6).
const (
	nsCRDT byte = 'c'
	nsTrie byte = 't'
	nsFid  byte = 'f'
)

const (
	setAdd    byte = 'a'
	setRemove byte = 'r'
)

// CRDTKey builds the crdt/<name>/add|remove/<conflict_key> key for name's
// add-set (remove=false) or remove-set (remove=true) entry at conflictKey.
func CRDTKey(name string, remove bool, conflictKey []byte) []byte {
	set := setAdd
	if remove {
		set = setRemove
	}
	key := make([]byte, 0, 3+len(name)+len(conflictKey))
	key = append(key, nsCRDT, byte(len(name)), set)
	key = append(key, name...)
	key = append(key, conflictKey...)
	return key
}

// TrieKey builds the trie/<prefix> key for a sync-trie persistence record.
func TrieKey(prefix []byte) []byte {
	key := make([]byte, 0, 1+len(prefix))
	key = append(key, nsTrie)
	key = append(key, prefix...)
	return key
}

// FidKey builds the fid/<id> key for a fid-registry entry.
func FidKey(fid common.FID) []byte {
	key := make([]byte, 9)
	key[0] = nsFid
	binary.BigEndian.PutUint64(key[1:], uint64(fid))
	return key
}
