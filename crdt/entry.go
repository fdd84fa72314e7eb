package crdt

import "github.com/farcaster-hub/hub/message"

// Entry is a message stored in a CRDT's add-set or remove-set, alongside
// its precomputed Sync ID (spec.md §3).
type Entry struct {
	Message *message.Message
	SyncID  message.SyncID
}

// evictedTupleKey identifies a specific (conflict_key, timestamp, hash)
// triple for the bounded-LRU re-admission guard (spec.md §8 scenario 6).
func evictedTupleKey(k Key, ts uint32, hash []byte) Key {
	var tsB [4]byte
	tsB[0] = byte(ts >> 24)
	tsB[1] = byte(ts >> 16)
	tsB[2] = byte(ts >> 8)
	tsB[3] = byte(ts)
	return buildKey([]byte(k), tsB[:], hash)
}
