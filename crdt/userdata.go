package crdt

import (
	"time"

	"github.com/farcaster-hub/hub/message"
)

// UserDataRules implements Rules for the grow-only UserData CRDT (spec.md
// §3, §4.2): conflict key (fid, body.type); tie-break by higher
// timestamp, then higher hash. There is no remove-set: UserDataAdd is the
// only message type, so IsRemove is always false.
type UserDataRules struct{}

func (UserDataRules) Name() string { return "userdata" }

func (UserDataRules) ConflictKey(m *message.Message) Key {
	b := m.Body.(message.UserDataBody)
	return buildKey(beUint64(uint64(m.FID)), beByte(byte(b.Type)))
}

func (UserDataRules) Wins(existing, candidate *message.Message) bool {
	if existing.Hash == candidate.Hash {
		return true
	}
	if existing.Timestamp != candidate.Timestamp {
		return existing.Timestamp > candidate.Timestamp
	}
	return higherHash(existing, candidate)
}

func (UserDataRules) IsRemove(m *message.Message) bool { return false }

// Capacity returns 0 (unbounded), per spec.md §3's CRDT capacity table.
func (UserDataRules) Capacity() int { return 0 }

func (UserDataRules) TTL() time.Duration { return 0 }
