// Package hub wires components C1–C8 into a single runnable node: the
// validate-then-merge pipeline, the per-fid worker-shard pool (spec.md
// §5), the revocation cascade trigger, and the diff-sync merge
// collaborator diffsync.Syncer drives.
package hub

import (
	"time"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/crdt"
)

// Config holds a Hub's tunables: network, per-CRDT capacities/TTLs,
// worker-shard count, and the RPC/gossip endpoints a real node would bind
// (kept here as opaque strings — actual transport binding is out of scope
// per spec.md §1). Constructed via functional defaults, mirroring the
// teacher's params.ChainConfig plain-struct-with-constructor style.
type Config struct {
	Network common.Network

	// ShardCount is the number of disjoint fid shards the worker pool
	// partitions writers across (spec.md §5: "a pool of worker tasks,
	// each owning a disjoint shard of fids").
	ShardCount int

	SignerCapacity       int
	CastCapacity         int
	ReactionCapacity     int
	VerificationCapacity int

	CastTTL       time.Duration
	ReactionTTL   time.Duration

	// RPCListenAddr and GossipListenAddr are carried for a real node's
	// CLI/config wiring; this module does not bind either (spec.md §1).
	RPCListenAddr    string
	GossipListenAddr string
}

// DefaultConfig returns a Config with the capacities and TTLs spec.md §3
// specifies for mainnet-equivalent operation, following SignerCapacity
// etc. from the crdt package so the two can never silently drift apart.
func DefaultConfig(network common.Network) Config {
	return Config{
		Network:              network,
		ShardCount:           16,
		SignerCapacity:       crdt.SignerCapacity,
		CastCapacity:         crdt.CastCapacity,
		ReactionCapacity:     crdt.ReactionCapacity,
		VerificationCapacity: crdt.VerificationCapacity,
		CastTTL:              crdt.CastTTL,
		ReactionTTL:          crdt.ReactionTTL,
	}
}

// Validate reports a non-nil error if c cannot be used to construct a Hub.
func (c Config) Validate() error {
	if !c.Network.Valid() {
		return errInvalidNetwork
	}
	if c.ShardCount <= 0 {
		return errInvalidShardCount
	}
	return nil
}
