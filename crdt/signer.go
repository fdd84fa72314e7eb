package crdt

import (
	"time"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/message"
)

// SignerCapacity is the Signer CRDT's bound on |A|+|R| (spec.md §3).
const SignerCapacity = 100

// SignerRules implements Rules for the Signer CRDT (spec.md §4.2 table):
// conflict key (fid, body.signer); tie-break by higher timestamp, then
// SignerRemove over SignerAdd, then higher hash.
type SignerRules struct{}

func (SignerRules) Name() string { return "signer" }

func (SignerRules) ConflictKey(m *message.Message) Key {
	b := m.Body.(message.SignerBody)
	return buildKey(beUint64(uint64(m.FID)), b.Signer[:])
}

func (SignerRules) Wins(existing, candidate *message.Message) bool {
	if existing.Hash == candidate.Hash {
		return true
	}
	if existing.Timestamp != candidate.Timestamp {
		return existing.Timestamp > candidate.Timestamp
	}
	eRemove := existing.Type == message.TypeSignerRemove
	cRemove := candidate.Type == message.TypeSignerRemove
	if eRemove != cRemove {
		return eRemove // SignerRemove outranks SignerAdd
	}
	return higherHash(existing, candidate)
}

func (SignerRules) IsRemove(m *message.Message) bool {
	return m.Type == message.TypeSignerRemove
}

func (SignerRules) Capacity() int { return SignerCapacity }

func (SignerRules) TTL() time.Duration { return 0 }

// SignerIndex adapts a Signer-CRDT Engine to validator.SignerAuthority: a
// signer is currently authorized iff it wins its (fid, signer) conflict
// key and that winning entry is a SignerAdd rather than a SignerRemove
// (spec.md §4.1 step 5, component C4).
type SignerIndex struct {
	engine *Engine
}

// NewSignerIndex wraps a Signer-CRDT Engine for authorization lookups.
func NewSignerIndex(engine *Engine) SignerIndex {
	return SignerIndex{engine: engine}
}

// IsAuthorized implements validator.SignerAuthority.
func (s SignerIndex) IsAuthorized(fid common.FID, signer []byte) bool {
	entry, ok := s.engine.Get(buildKey(beUint64(uint64(fid)), signer))
	if !ok {
		return false
	}
	return entry.Message.Type == message.TypeSignerAdd
}
