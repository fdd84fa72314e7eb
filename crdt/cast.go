package crdt

import (
	"time"

	"github.com/farcaster-hub/hub/message"
)

// CastCapacity and CastTTL are the Cast CRDT's bounds (spec.md §3).
const CastCapacity = 10000

var CastTTL = 365 * 24 * time.Hour

// CastRules implements Rules for the Cast CRDT (spec.md §4.2 table):
// conflict key (fid, hash) for CastAdd or (fid, target_hash) for
// CastRemove — the two naturally coincide because a CastRemove's
// target_hash equals the CastAdd it targets. Tie-break: CastRemove always
// wins over CastAdd, then higher timestamp, then higher hash.
type CastRules struct{}

func (CastRules) Name() string { return "cast" }

func (CastRules) ConflictKey(m *message.Message) Key {
	switch m.Type {
	case message.TypeCastAdd:
		return buildKey(beUint64(uint64(m.FID)), m.Hash.Bytes())
	case message.TypeCastRemove:
		b := m.Body.(message.CastRemoveBody)
		return buildKey(beUint64(uint64(m.FID)), b.TargetHash.Bytes())
	default:
		return ""
	}
}

func (CastRules) Wins(existing, candidate *message.Message) bool {
	if existing.Hash == candidate.Hash {
		return true
	}
	eRemove := existing.Type == message.TypeCastRemove
	cRemove := candidate.Type == message.TypeCastRemove
	if eRemove != cRemove {
		return eRemove // CastRemove outranks CastAdd regardless of timestamp
	}
	if existing.Timestamp != candidate.Timestamp {
		return existing.Timestamp > candidate.Timestamp
	}
	return higherHash(existing, candidate)
}

func (CastRules) IsRemove(m *message.Message) bool {
	return m.Type == message.TypeCastRemove
}

func (CastRules) Capacity() int { return CastCapacity }

func (CastRules) TTL() time.Duration { return CastTTL }
