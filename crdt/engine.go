// Package crdt implements the generic two-phase-set merge engine shared by
// every delta-graph CRDT (spec.md §4.2, components C4/C5): Signer,
// UserData, Cast, Reaction and Verification differ only in their Rules
// (conflict key, tie-break ladder, capacity, TTL).
//
// Grounded on core/parallel.AccessSet (plain map-backed set type with an
// explicit conflict predicate) for the data-structure shape,
// and on consensus/dpos's use of github.com/hashicorp/golang-lru for the
// bounded-LRU eviction-tracking idiom — reused here for the "evicted
// tuples must not be re-admitted" rule (spec.md §8 scenario 6).
package crdt

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/message"
)

// Outcome classifies the result of a Merge call.
type Outcome int

const (
	// OutcomeInserted means m was newly added to A or R.
	OutcomeInserted Outcome = iota
	// OutcomeNoOp means m was already present (same hash) — idempotent re-merge.
	OutcomeNoOp
	// OutcomeLost means m lost the tie-break against an existing message
	// with the same conflict key and was rejected.
	OutcomeLost
	// OutcomeReAdmissionRejected means m matches a previously evicted
	// (tie-break loss, capacity or TTL) (conflict_key, timestamp, hash) tuple.
	OutcomeReAdmissionRejected
)

// TrieIndexer is the sync-trie hook invoked in the same critical section
// as a CRDT mutation (spec.md §4.4, §5: "trie mutation visible iff the
// CRDT change is visible"). Satisfied by synctrie.Trie.
type TrieIndexer interface {
	Insert(id message.SyncID)
	Remove(id message.SyncID)
}

// Engine runs the generic two-phase-set algorithm of spec.md §4.2 for one
// CRDT, configured by Rules. Safe for concurrent use; the Hub serializes
// writers per fid but readers (query methods) may run concurrently with
// merges from other fids against the same Engine instance.
type Engine struct {
	rules Rules
	trie  TrieIndexer

	mu      sync.Mutex
	add     map[Key]Entry
	remove  map[Key]Entry
	evicted *lru.Cache // evictedTupleKey(...) -> struct{}, capacity-window guard

	// onEvict, if set, is invoked for every entry that leaves the
	// add-set or remove-set for any reason: tie-break loss, capacity
	// eviction or TTL expiry. The Signer CRDT's second revocation-cascade
	// trigger (spec.md §4.3: "signer removed or discarded... moved to R
	// or capacity/TTL evicted") hooks in here; every other CRDT leaves it
	// nil. Invoked synchronously while e.mu is held, so the callback must
	// not call back into this same Engine.
	onEvict func(Entry)
}

// SetOnEvict installs the eviction-notification hook described above.
func (e *Engine) SetOnEvict(fn func(Entry)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEvict = fn
}

// NewEngine creates an Engine for rules, indexing into trie.
func NewEngine(rules Rules, trie TrieIndexer) *Engine {
	cap := rules.Capacity()
	if cap <= 0 {
		cap = 1 // golang-lru requires a positive size; grow-only CRDTs never evict via this path.
	}
	evicted, _ := lru.New(cap)
	return &Engine{
		rules:   rules,
		trie:    trie,
		add:     make(map[Key]Entry),
		remove:  make(map[Key]Entry),
		evicted: evicted,
	}
}

// Merge applies m to the CRDT per the algorithm of spec.md §4.2. Callers
// must have already run m through validator.Validate — Merge itself does
// not re-run validation, to avoid a cyclic import between crdt (which
// implements validator.SignerAuthority for the Signer CRDT) and validator
// (which depends on that interface).
func (e *Engine) Merge(m *message.Message, syncID message.SyncID, now time.Time) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	k := e.rules.ConflictKey(m)
	if existing, ok := e.lookup(k); ok {
		if e.rules.Wins(existing.Message, m) {
			if existing.Message.Hash == m.Hash {
				return OutcomeNoOp
			}
			return OutcomeLost
		}
		e.evict(k, existing)
		e.insert(k, m, syncID)
		e.enforceBounds(now)
		return OutcomeInserted
	}

	if e.evicted.Contains(evictedTupleKey(k, uint32(m.Timestamp), m.Hash.Bytes())) {
		return OutcomeReAdmissionRejected
	}
	e.insert(k, m, syncID)
	e.enforceBounds(now)
	return OutcomeInserted
}

func (e *Engine) lookup(k Key) (Entry, bool) {
	if v, ok := e.add[k]; ok {
		return v, true
	}
	if v, ok := e.remove[k]; ok {
		return v, true
	}
	return Entry{}, false
}

func (e *Engine) insert(k Key, m *message.Message, syncID message.SyncID) {
	entry := Entry{Message: m, SyncID: syncID}
	if e.rules.IsRemove(m) {
		e.remove[k] = entry
	} else {
		e.add[k] = entry
	}
	e.trie.Insert(syncID)
}

// evict removes the entry at k from whichever set holds it, indexes the
// eviction into the bounded LRU guard, and removes it from the trie.
// Called both for tie-break losers and for capacity/TTL eviction.
func (e *Engine) evict(k Key, entry Entry) {
	delete(e.add, k)
	delete(e.remove, k)
	e.trie.Remove(entry.SyncID)
	e.evicted.Add(evictedTupleKey(k, uint32(entry.Message.Timestamp), entry.Message.Hash.Bytes()), struct{}{})
	if e.onEvict != nil {
		e.onEvict(entry)
	}
}

// enforceBounds evicts the oldest entries while over capacity, then
// prunes entries past TTL (spec.md §4.2's enforce_bounds pseudocode).
func (e *Engine) enforceBounds(now time.Time) {
	capacity := e.rules.Capacity()
	if capacity > 0 {
		for len(e.add)+len(e.remove) > capacity {
			k, entry, ok := e.minByTimestampThenHash()
			if !ok {
				break
			}
			e.evict(k, entry)
		}
	}
	if ttl := e.rules.TTL(); ttl > 0 {
		for k, entry := range e.add {
			if now.Sub(entry.Message.Timestamp.Time()) > ttl {
				e.evict(k, entry)
			}
		}
		for k, entry := range e.remove {
			if now.Sub(entry.Message.Timestamp.Time()) > ttl {
				e.evict(k, entry)
			}
		}
	}
}

func (e *Engine) minByTimestampThenHash() (Key, Entry, bool) {
	var (
		bestKey   Key
		bestEntry Entry
		found     bool
	)
	consider := func(k Key, entry Entry) {
		if !found {
			bestKey, bestEntry, found = k, entry, true
			return
		}
		if entry.Message.Timestamp != bestEntry.Message.Timestamp {
			if entry.Message.Timestamp < bestEntry.Message.Timestamp {
				bestKey, bestEntry = k, entry
			}
			return
		}
		if entry.Message.Hash.Less(bestEntry.Message.Hash) {
			bestKey, bestEntry = k, entry
		}
	}
	for k, entry := range e.add {
		consider(k, entry)
	}
	for k, entry := range e.remove {
		consider(k, entry)
	}
	return bestKey, bestEntry, found
}

// Len returns the current |A|+|R|.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.add) + len(e.remove)
}

// Get returns the current winning entry for conflict key k, if any.
func (e *Engine) Get(k Key) (Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookup(k)
}

// Contains reports whether a message with hash is present in either set.
func (e *Engine) Contains(hash common.Hash) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range e.add {
		if entry.Message.Hash == hash {
			return true
		}
	}
	for _, entry := range e.remove {
		if entry.Message.Hash == hash {
			return true
		}
	}
	return false
}

// Name returns the CRDT's name, for storage namespacing (spec.md §6:
// "crdt/<name>/add|remove/<conflict_key>").
func (e *Engine) Name() string { return e.rules.Name() }

// ConflictKeyBytes exposes m's conflict key under this Engine's Rules, for
// callers (the persistence layer) that need the same key the Rules use
// internally, per spec.md §6's crdt/<name>/add|remove/<conflict_key> layout.
func (e *Engine) ConflictKeyBytes(m *message.Message) []byte {
	return []byte(e.rules.ConflictKey(m))
}

// IsRemoveMessage reports whether m belongs in this Engine's remove-set.
func (e *Engine) IsRemoveMessage(m *message.Message) bool {
	return e.rules.IsRemove(m)
}

// DiscardIf removes, unconditionally and without tombstoning, every
// message in either set matching predicate — the mechanism the
// revocation cascade (C6) uses to discard cascaded messages (spec.md
// §4.3: "discards by cascade bypass conflict resolution; they are
// unconditional and do not leave tombstones in R").
func (e *Engine) DiscardIf(predicate func(m *message.Message) bool) []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	var removed []Entry
	for k, entry := range e.add {
		if predicate(entry.Message) {
			delete(e.add, k)
			e.trie.Remove(entry.SyncID)
			removed = append(removed, entry)
		}
	}
	for k, entry := range e.remove {
		if predicate(entry.Message) {
			delete(e.remove, k)
			e.trie.Remove(entry.SyncID)
			removed = append(removed, entry)
		}
	}
	return removed
}

// EntryBySyncID returns the entry currently stored under id, if any. Used
// by the RPC layer to resolve GetAllSyncIdsByPrefix results back into full
// messages (spec.md §6: GetAllMessagesBySyncIds).
func (e *Engine) EntryBySyncID(id message.SyncID) (Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range e.add {
		if entry.SyncID == id {
			return entry, true
		}
	}
	for _, entry := range e.remove {
		if entry.SyncID == id {
			return entry, true
		}
	}
	return Entry{}, false
}

// Snapshot returns every message currently present, for diagnostics and
// cross-CRDT cascade scans.
func (e *Engine) Snapshot() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Entry, 0, len(e.add)+len(e.remove))
	for _, entry := range e.add {
		out = append(out, entry)
	}
	for _, entry := range e.remove {
		out = append(out, entry)
	}
	return out
}
