package crdt

import (
	"time"

	"github.com/farcaster-hub/hub/message"
)

// Rules configures the generic two-phase-set merge algorithm (spec.md
// §4.2) for one concrete CRDT: Signer, UserData, Cast, Reaction or
// Verification. Conflict key, tie-break ladder, capacity and TTL are the
// only axes of variation between them (spec.md §4.2's per-CRDT table).
type Rules interface {
	// Name identifies the CRDT for logging and storage namespacing
	// (spec.md §6: "crdt/<name>/add|remove/<conflict_key>").
	Name() string

	// ConflictKey returns the key under which m competes with other
	// messages (spec.md §4.2 table, "Conflict key" column).
	ConflictKey(m *message.Message) Key

	// Wins reports whether existing beats candidate and should be kept
	// (spec.md §4.2 table, "Tie-break ladder" column). Called only when
	// both messages share a conflict key. Must return true when existing
	// and candidate are the same message (by hash), so that re-merging an
	// already-present message is a no-op (spec.md §8 invariant 4).
	Wins(existing, candidate *message.Message) bool

	// IsRemove reports whether m belongs in the remove-set R rather than
	// the add-set A.
	IsRemove(m *message.Message) bool

	// Capacity is the bound on |A|+|R| (spec.md §3); 0 means unbounded
	// (UserData).
	Capacity() int

	// TTL is the maximum message age before eviction (spec.md §3); 0
	// means no TTL.
	TTL() time.Duration
}

// higherHash reports whether a is strictly greater than b under unsigned
// byte-wise comparison (spec.md §4.2: "higher hash").
func higherHash(a, b *message.Message) bool {
	return a.Hash.Cmp(b.Hash) > 0
}
