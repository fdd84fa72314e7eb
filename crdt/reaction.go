package crdt

import (
	"time"

	"github.com/farcaster-hub/hub/message"
)

// ReactionCapacity and ReactionTTL are the Reaction CRDT's bounds (spec.md §3).
const ReactionCapacity = 5000

var ReactionTTL = 90 * 24 * time.Hour

// ReactionRules implements Rules for the Reaction CRDT (spec.md §4.2
// table): conflict key (fid, body.type, body.target); tie-break by higher
// timestamp, then ReactionRemove over ReactionAdd, then higher hash.
type ReactionRules struct{}

func (ReactionRules) Name() string { return "reaction" }

func (ReactionRules) ConflictKey(m *message.Message) Key {
	b := m.Body.(message.ReactionBody)
	return buildKey(
		beUint64(uint64(m.FID)),
		beByte(byte(b.Type)),
		beUint64(uint64(b.Target.FID)),
		b.Target.Hash.Bytes(),
	)
}

func (ReactionRules) Wins(existing, candidate *message.Message) bool {
	if existing.Hash == candidate.Hash {
		return true
	}
	if existing.Timestamp != candidate.Timestamp {
		return existing.Timestamp > candidate.Timestamp
	}
	eRemove := existing.Type == message.TypeReactionRemove
	cRemove := candidate.Type == message.TypeReactionRemove
	if eRemove != cRemove {
		return eRemove
	}
	return higherHash(existing, candidate)
}

func (ReactionRules) IsRemove(m *message.Message) bool {
	return m.Type == message.TypeReactionRemove
}

func (ReactionRules) Capacity() int { return ReactionCapacity }

func (ReactionRules) TTL() time.Duration { return ReactionTTL }
