// Package fidreg implements the fid-ownership registry (spec.md component
// C3): a mapping from fid to its current Ethereum custody address and the
// block number of the most recent Register/Transfer event, mutated only
// by on-chain events applied in block order (spec.md §3, §4.1 step 5).
//
// Grounded on the agentidx.Indexer / agent.Registry split
// (_examples/tos-network-gtos/agentidx/indexer.go,
// _examples/tos-network-gtos/agent/registry.go): an RWMutex-protected
// in-memory map fed by a background goroutine that consumes a chain-event
// subscription, structured the same way here.
package fidreg

import (
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/farcaster-hub/hub/common"
)

// Entry is a single fid's custody record.
type Entry struct {
	Custody     ethcommon.Address
	BlockNumber uint64
}

// Registry is the in-memory fid → custody-address index. Reads are
// concurrent; writes are serialized with the cascade (spec.md §5: "the
// fid-ownership registry is read-mostly; writes are serialized with
// respect to the cascade").
type Registry struct {
	mu      sync.RWMutex
	entries map[common.FID]Entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[common.FID]Entry)}
}

// CustodyOf implements validator.CustodyResolver.
func (r *Registry) CustodyOf(fid common.FID) (ethcommon.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[fid]
	return e.Custody, ok
}

// Entry returns the full registry entry for fid.
func (r *Registry) Entry(fid common.FID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[fid]
	return e, ok
}

// Register records fid's first custody address (ID Registry "Register"
// event). Returns false if fid is already registered — on-chain Register
// events are supposed to be one-time; a re-Register for an existing fid
// is surfaced to the caller rather than silently overwritten, since a
// duplicate Register event usually means a reorg or indexer bug.
func (r *Registry) Register(fid common.FID, custody ethcommon.Address, blockNumber uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[fid]; exists {
		return false
	}
	r.entries[fid] = Entry{Custody: custody, BlockNumber: blockNumber}
	return true
}

// Transfer updates fid's custody address (ID Registry "Transfer" event).
// Returns the previous custody address and whether fid was known.
// Applying a Transfer for an unknown fid registers it, matching an
// indexer that may start mid-chain without the original Register event.
func (r *Registry) Transfer(fid common.FID, newCustody ethcommon.Address, blockNumber uint64) (ethcommon.Address, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, existed := r.entries[fid]
	r.entries[fid] = Entry{Custody: newCustody, BlockNumber: blockNumber}
	return prev.Custody, existed
}

// Len returns the number of known fids. Used by tests and diagnostics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
