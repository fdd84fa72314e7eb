package crdt

import (
	"time"

	"github.com/farcaster-hub/hub/message"
)

// VerificationCapacity is the Verification CRDT's bound (spec.md §3).
const VerificationCapacity = 50

// VerificationRules implements Rules for the Verification CRDT (spec.md
// §4.2 table): conflict key (fid, body.address); tie-break by higher
// timestamp, then VerificationRemove over VerificationAddEthAddress, then
// higher hash.
type VerificationRules struct{}

func (VerificationRules) Name() string { return "verification" }

func (VerificationRules) ConflictKey(m *message.Message) Key {
	var addr []byte
	switch m.Type {
	case message.TypeVerificationAddEthAddress:
		b := m.Body.(message.VerificationAddBody)
		addr = b.Address.Bytes()
	case message.TypeVerificationRemove:
		b := m.Body.(message.VerificationRemoveBody)
		addr = b.Address.Bytes()
	}
	return buildKey(beUint64(uint64(m.FID)), addr)
}

func (VerificationRules) Wins(existing, candidate *message.Message) bool {
	if existing.Hash == candidate.Hash {
		return true
	}
	if existing.Timestamp != candidate.Timestamp {
		return existing.Timestamp > candidate.Timestamp
	}
	eRemove := existing.Type == message.TypeVerificationRemove
	cRemove := candidate.Type == message.TypeVerificationRemove
	if eRemove != cRemove {
		return eRemove
	}
	return higherHash(existing, candidate)
}

func (VerificationRules) IsRemove(m *message.Message) bool {
	return m.Type == message.TypeVerificationRemove
}

func (VerificationRules) Capacity() int { return VerificationCapacity }

func (VerificationRules) TTL() time.Duration { return 0 }
