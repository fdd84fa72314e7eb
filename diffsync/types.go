// Package diffsync implements the diff-sync protocol (spec.md component
// C8): given a peer Hub, locate the symmetric difference between the
// two sync tries via the exclusion-set comparison of §4.4 and import the
// missing messages through the merge pipeline in dependency order.
//
// The actual RPC transport is an external collaborator (spec.md §1 scopes
// gRPC/libp2p wiring out) — this package drives a peer purely through
// the Peer interface, the same shape as the five RPC methods of spec.md
// §6, so any transport can satisfy it.
package diffsync

import (
	"context"
	"sync"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/message"
	"github.com/farcaster-hub/hub/synctrie"
)

// Info mirrors the GetInfo RPC response (spec.md §6).
type Info struct {
	Version  string
	IsSynced bool
	Nickname string
	RootHash common.Hash
}

// Peer is the client-side view of a remote Hub's five sync RPCs
// (spec.md §6). Every method takes ctx so the caller can enforce the
// independent per-RPC deadline of spec.md §5 ("default: 15s").
type Peer interface {
	GetInfo(ctx context.Context) (Info, error)
	GetAllSyncIdsByPrefix(ctx context.Context, prefix []byte) ([]message.SyncID, error)
	GetAllMessagesBySyncIds(ctx context.Context, ids []message.SyncID) ([]*message.Message, error)
	GetSyncMetadataByPrefix(ctx context.Context, prefix []byte) (synctrie.Metadata, error)
	GetSyncSnapshotByPrefix(ctx context.Context, prefix []byte) (synctrie.Snapshot, error)
}

// Local is the subset of *synctrie.Trie the syncer reads from; *synctrie.Trie
// satisfies it directly.
type Local interface {
	RootHash() common.Hash
	Snapshot(prefix []byte) synctrie.Snapshot
	Metadata(prefix []byte) synctrie.Metadata
	LeavesUnderPrefix(prefix []byte) []message.SyncID
	RightmostPath(prefix []byte) []byte
}

// MergeFunc feeds one fetched message through the validate-then-merge
// pipeline (spec.md §4.1, §4.2). Supplied by hub.Hub.
type MergeFunc func(ctx context.Context, m *message.Message) error

// Tracker remembers which peers have been marked faulty for the session
// (spec.md §4.5: "a peer returning a trie whose leaves do not match its
// advertised root_hash is treated as faulty and not contacted again
// within the session"). Keyed by an opaque peer identifier the caller
// controls (e.g. a libp2p peer ID).
type Tracker struct {
	mu     sync.Mutex
	faulty map[string]struct{}
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{faulty: make(map[string]struct{})}
}

// MarkFaulty records peerID as faulty for the remainder of the session.
func (t *Tracker) MarkFaulty(peerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.faulty[peerID] = struct{}{}
}

// IsFaulty reports whether peerID was previously marked faulty.
func (t *Tracker) IsFaulty(peerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.faulty[peerID]
	return ok
}
