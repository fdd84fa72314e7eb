package hub

import "errors"

var (
	// errInvalidNetwork is returned by Config.Validate for an unrecognized network.
	errInvalidNetwork = errors.New("hub: invalid network")
	// errInvalidShardCount is returned by Config.Validate for a non-positive ShardCount.
	errInvalidShardCount = errors.New("hub: shard count must be positive")
)

// ErrHalted is returned by Submit once a fatal storage error has tripped
// the Hub into its halted state (spec.md §7: "Fatal errors: StorageCorruption.
// The Hub halts and refuses further merges; operator intervention required").
var ErrHalted = errors.New("hub: halted after storage error, operator intervention required")

// ErrUnknownMessageType is returned by Submit for a message.Type this Hub
// has no CRDT engine for.
var ErrUnknownMessageType = errors.New("hub: no CRDT engine for message type")
