package hub

import (
	"context"

	"github.com/farcaster-hub/hub/diffsync"
)

// Syncer builds a diffsync.Syncer driving this Hub's sync trie and merge
// pipeline against peers, sharing one diffsync.Tracker (and therefore one
// faulty-peer set) across every call — spec.md §4.5: "a peer... is
// treated as faulty and not contacted again within the session".
func (h *Hub) Syncer(cfg diffsync.Config) *diffsync.Syncer {
	return diffsync.New(h.trie, h.MergeFunc(), h.tracker, cfg)
}

// SyncWith runs one diff-sync cycle against peer (spec.md §4.5), using
// DefaultConfig's timeouts and retry bounds.
func (h *Hub) SyncWith(ctx context.Context, peerID string, peer diffsync.Peer) (*diffsync.Result, error) {
	return h.Syncer(diffsync.DefaultConfig()).Sync(ctx, peerID, peer)
}
