package hub

import (
	"time"

	"github.com/farcaster-hub/hub/crdt"
)

// The wrapper types below let Config's capacity/TTL fields actually reach
// each CRDT's Rules, following the override-by-embedding idiom already
// established in crdt's own tests (testSignerCapRules embeds SignerRules
// and overrides Capacity for the eviction test) rather than adding
// configurable fields to crdt's Rules structs themselves. A zero override
// falls back to the crdt package's own constant, so a Config whose
// capacity/TTL fields are left zero still produces the spec.md §3 defaults.

type signerRules struct {
	crdt.SignerRules
	capacity int
}

func (r signerRules) Capacity() int {
	if r.capacity > 0 {
		return r.capacity
	}
	return r.SignerRules.Capacity()
}

type castRules struct {
	crdt.CastRules
	capacity int
	ttl      time.Duration
}

func (r castRules) Capacity() int {
	if r.capacity > 0 {
		return r.capacity
	}
	return r.CastRules.Capacity()
}

func (r castRules) TTL() time.Duration {
	if r.ttl > 0 {
		return r.ttl
	}
	return r.CastRules.TTL()
}

type reactionRules struct {
	crdt.ReactionRules
	capacity int
	ttl      time.Duration
}

func (r reactionRules) Capacity() int {
	if r.capacity > 0 {
		return r.capacity
	}
	return r.ReactionRules.Capacity()
}

func (r reactionRules) TTL() time.Duration {
	if r.ttl > 0 {
		return r.ttl
	}
	return r.ReactionRules.TTL()
}

type verificationRules struct {
	crdt.VerificationRules
	capacity int
}

func (r verificationRules) Capacity() int {
	if r.capacity > 0 {
		return r.capacity
	}
	return r.VerificationRules.Capacity()
}
