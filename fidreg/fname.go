package fidreg

import (
	"sync"

	"github.com/farcaster-hub/hub/common"
)

// FnameRegistry is the in-memory cache of the external fname registry's
// current fname → fid mappings (spec.md §6: UserDataAdd's FNAME body
// constraint requires "the external fname registry resolves to fid's
// custody"). Real ingestion of that registry's own event/HTTP feed is a
// separate external collaborator outside this module's scope (spec.md §1
// excludes on-chain/off-chain event ingestion generally, the same way it
// excludes ID Registry ingestion for Registry above); FnameRegistry is the
// narrow surface a caller populates from that feed, mirroring Registry's
// own apply-events-into-a-map shape.
type FnameRegistry struct {
	mu    sync.RWMutex
	owner map[string]common.FID
}

// NewFnameRegistry creates an empty FnameRegistry.
func NewFnameRegistry() *FnameRegistry {
	return &FnameRegistry{owner: make(map[string]common.FID)}
}

// SetOwner records that fname currently resolves to fid, replacing
// whatever it previously resolved to (a registration or an fname
// transfer between fids).
func (r *FnameRegistry) SetOwner(fname string, fid common.FID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owner[fname] = fid
}

// Remove deletes fname's mapping (an fname un-registration).
func (r *FnameRegistry) Remove(fname string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owner, fname)
}

// ResolvesTo implements validator.FnameResolver.
func (r *FnameRegistry) ResolvesTo(fname string, fid common.FID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owner[fname]
	return ok && owner == fid
}
