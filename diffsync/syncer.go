package diffsync

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/message"
	"github.com/farcaster-hub/hub/validator"
)

// Config controls the syncer's timeouts and retry bounds (spec.md §5).
type Config struct {
	// RPCTimeout bounds every individual RPC call (default 15s, spec.md §5).
	RPCTimeout time.Duration
	// RPCRetries bounds the retries of a TransientError-failing RPC call
	// before the cycle is abandoned (spec.md §4.5: "RPC failures are
	// retried with jitter on a bounded budget, then abandoned; the
	// protocol is idempotent so the next cycle retries").
	RPCRetries int
	// MaxRequeueDepth bounds how many times a fetched message may be
	// requeued after an UnauthorizedSigner failure before being dropped
	// (spec.md §4.5 step 4).
	MaxRequeueDepth int
}

// DefaultConfig returns spec.md's defaults.
func DefaultConfig() Config {
	return Config{RPCTimeout: 15 * time.Second, RPCRetries: 3, MaxRequeueDepth: 5}
}

// Result summarizes one completed Sync call, for logging and tests.
type Result struct {
	DivergencePrefix []byte
	MergedCount      int
	DroppedCount     int
	RequeuedCount    int
}

// Syncer runs the diff-sync protocol of spec.md §4.5 against one peer at
// a time. Stateless across calls except for the shared Tracker; safe to
// invoke concurrently against distinct peers (merges are serialized at
// the CRDT boundary by the Hub, not by Syncer).
type Syncer struct {
	local   Local
	merge   MergeFunc
	tracker *Tracker
	cfg     Config
}

// New returns a Syncer reading from local and feeding imported messages
// to merge.
func New(local Local, merge MergeFunc, tracker *Tracker, cfg Config) *Syncer {
	if cfg.RPCTimeout <= 0 {
		cfg.RPCTimeout = 15 * time.Second
	}
	if cfg.RPCRetries <= 0 {
		cfg.RPCRetries = 3
	}
	if cfg.MaxRequeueDepth <= 0 {
		cfg.MaxRequeueDepth = 5
	}
	return &Syncer{local: local, merge: merge, tracker: tracker, cfg: cfg}
}

// Sync runs one diff-sync cycle against peer, identified by peerID for
// fault tracking (spec.md §4.5 steps 1-4).
func (s *Syncer) Sync(ctx context.Context, peerID string, peer Peer) (*Result, error) {
	if s.tracker.IsFaulty(peerID) {
		return nil, ErrPeerFaulty
	}

	info, err := s.callInfo(ctx, peer)
	if err != nil {
		return nil, err
	}
	if info.RootHash == s.local.RootHash() {
		return &Result{}, nil
	}

	prefix, err := s.findDivergencePrefix(ctx, peer)
	if err != nil {
		return nil, err
	}

	localIDs := s.local.LeavesUnderPrefix(prefix)
	remoteIDs, err := s.callAllSyncIds(ctx, peer, prefix)
	if err != nil {
		return nil, err
	}

	missingLocally := symmetricDiffBOnly(localIDs, remoteIDs)
	if len(missingLocally) == 0 {
		return &Result{DivergencePrefix: prefix}, nil
	}

	msgs, err := s.callMessages(ctx, peer, missingLocally)
	if err != nil {
		if _, ok := err.(*IntegrityError); ok {
			s.tracker.MarkFaulty(peerID)
		}
		return nil, err
	}

	merged, dropped, requeued := s.mergeBatch(ctx, msgs)
	return &Result{
		DivergencePrefix: prefix,
		MergedCount:      merged,
		DroppedCount:     dropped,
		RequeuedCount:    requeued,
	}, nil
}

// findDivergencePrefix implements spec.md §4.5 step 2: repeatedly compare
// exclusion sets at the current prefix, descend along the rightmost edge
// by exactly as many levels as the first differing index indicates, and
// stop once the divergence is no longer confined to the rightmost child.
func (s *Syncer) findDivergencePrefix(ctx context.Context, peer Peer) ([]byte, error) {
	p := []byte{}
	for depth := 0; depth < message.SyncIDLength; depth++ {
		localSnap := s.local.Snapshot(p)
		remoteSnap, err := s.callSnapshot(ctx, peer, p)
		if err != nil {
			return nil, err
		}

		i, diverges := firstDifferingIndex(localSnap.ExcludedHashes, remoteSnap)
		if !diverges {
			return p, nil
		}

		path := s.local.RightmostPath(p)
		if i == 0 || i > len(path) {
			return p, nil
		}
		p = append(append([]byte{}, p...), path[:i]...)
	}
	return p, nil
}

func firstDifferingIndex(a, b []common.Hash) (int, bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for idx := 0; idx < n; idx++ {
		if a[idx] != b[idx] {
			return idx, true
		}
	}
	if len(a) != len(b) {
		return n, true
	}
	return 0, false
}

// mergeBatch feeds msgs into the merge pipeline Signer-first (spec.md
// §4.5 step 4), requeueing on UnauthorizedSigner up to MaxRequeueDepth to
// tolerate out-of-order dependency arrival.
func (s *Syncer) mergeBatch(ctx context.Context, msgs []*message.Message) (merged, dropped, requeued int) {
	ordered := signerFirst(msgs)

	type queued struct {
		m     *message.Message
		depth int
	}
	queue := make([]queued, 0, len(ordered))
	for _, m := range ordered {
		queue = append(queue, queued{m, 0})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		err := s.merge(ctx, item.m)
		if err == nil {
			merged++
			continue
		}
		if validator.IsKind(err, validator.KindUnauthorizedSigner) && item.depth < s.cfg.MaxRequeueDepth {
			queue = append(queue, queued{item.m, item.depth + 1})
			requeued++
			continue
		}
		dropped++
	}
	return merged, dropped, requeued
}

func signerFirst(msgs []*message.Message) []*message.Message {
	out := make([]*message.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return isSignerType(out[i].Type) && !isSignerType(out[j].Type)
	})
	return out
}

func isSignerType(t message.Type) bool {
	return t == message.TypeSignerAdd || t == message.TypeSignerRemove
}

// symmetricDiffBOnly returns the Sync IDs present in b but not in a
// (spec.md §4.5 step 3/4: "for each Sync ID in B \ A").
func symmetricDiffBOnly(a, b []message.SyncID) []message.SyncID {
	present := make(map[message.SyncID]struct{}, len(a))
	for _, id := range a {
		present[id] = struct{}{}
	}
	var out []message.SyncID
	for _, id := range b {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *Syncer) rpcCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.RPCTimeout)
}

func (s *Syncer) callInfo(ctx context.Context, peer Peer) (Info, error) {
	var out Info
	err := s.withRetry(ctx, func(callCtx context.Context) error {
		var callErr error
		out, callErr = peer.GetInfo(callCtx)
		return callErr
	})
	return out, err
}

func (s *Syncer) callSnapshot(ctx context.Context, peer Peer, prefix []byte) ([]common.Hash, error) {
	var out []common.Hash
	err := s.withRetry(ctx, func(callCtx context.Context) error {
		snap, callErr := peer.GetSyncSnapshotByPrefix(callCtx, prefix)
		out = snap.ExcludedHashes
		return callErr
	})
	return out, err
}

func (s *Syncer) callAllSyncIds(ctx context.Context, peer Peer, prefix []byte) ([]message.SyncID, error) {
	var out []message.SyncID
	err := s.withRetry(ctx, func(callCtx context.Context) error {
		var callErr error
		out, callErr = peer.GetAllSyncIdsByPrefix(callCtx, prefix)
		return callErr
	})
	return out, err
}

// callMessages fetches msgs by Sync ID and verifies every returned
// message actually corresponds to one of the requested IDs (spec.md §7's
// MessageRootMismatch / SyncIdNotFound integrity errors).
func (s *Syncer) callMessages(ctx context.Context, peer Peer, ids []message.SyncID) ([]*message.Message, error) {
	var out []*message.Message
	err := s.withRetry(ctx, func(callCtx context.Context) error {
		var callErr error
		out, callErr = peer.GetAllMessagesBySyncIds(callCtx, ids)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	if len(out) != len(ids) {
		return nil, newIntegrityError(KindSyncIdNotFound, nil)
	}
	wanted := make(map[message.SyncID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for _, m := range out {
		got := message.NewSyncID(m.Type, m.FID, m.Timestamp, m.Hash)
		if _, ok := wanted[got]; !ok {
			return nil, newIntegrityError(KindMessageRootMismatch, nil)
		}
	}
	return out, nil
}

// withRetry retries fn up to cfg.RPCRetries times on TransientError, with
// jittered exponential backoff, each attempt bounded by cfg.RPCTimeout
// (spec.md §4.5, §5).
func (s *Syncer) withRetry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= s.cfg.RPCRetries; attempt++ {
		callCtx, cancel := s.rpcCtx(ctx)
		err = fn(callCtx)
		cancel()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt == s.cfg.RPCRetries {
			break
		}
		backoff := time.Duration(1<<uint(attempt)) * 50 * time.Millisecond
		jitter := time.Duration(rand.Int63n(int64(backoff) + 1))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
