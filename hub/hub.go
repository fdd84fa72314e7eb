package hub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/farcaster-hub/hub/cascade"
	"github.com/farcaster-hub/hub/codec"
	"github.com/farcaster-hub/hub/common"
	"github.com/farcaster-hub/hub/crdt"
	"github.com/farcaster-hub/hub/diffsync"
	"github.com/farcaster-hub/hub/fidreg"
	"github.com/farcaster-hub/hub/message"
	"github.com/farcaster-hub/hub/storage"
	"github.com/farcaster-hub/hub/synctrie"
	"github.com/farcaster-hub/hub/validator"
)

// Version identifies this implementation for GetInfo (spec.md §6).
const Version = "0.1.0-fchub"

// Hub is the top-level object wiring the validator (C2), the
// fid-ownership registry (C3), the five CRDT engines (C4/C5), the
// revocation cascade (C6) and the sync trie (C7) into one node, backed by
// a storage.Store for persistence (spec.md §6). diffsync (C8) drives a
// Hub's merge pipeline through its MergeFunc signature but is otherwise a
// separate, independently testable collaborator — see Submit.
type Hub struct {
	cfg      Config
	store    storage.Store
	registry *fidreg.Registry
	fnames   *fidreg.FnameRegistry
	trie     *synctrie.Trie
	nickname string

	signer       *crdt.Engine
	userData     *crdt.Engine
	cast         *crdt.Engine
	reaction     *crdt.Engine
	verification *crdt.Engine

	cascadeStores cascade.Stores
	shards        *shardPool
	tracker       *diffsync.Tracker

	halted atomic.Bool

	mu      sync.RWMutex
	synced  bool
	nowFunc func() time.Time

	// cascadeMu guards pendingSignerEvictions, the hand-off between the
	// Signer engine's onEvict hook (invoked under its own engine mutex,
	// itself under shards.withFidLock's coarse read-lock) and Submit,
	// which drains it once the fid lock has been released. The cascade
	// itself needs shards.withCoarseLock — taking that lock directly from
	// inside onEvict would try to acquire the coarse lock exclusively
	// while the same goroutine still holds it for reading, deadlocking
	// sync.RWMutex, which is not reentrant.
	cascadeMu              sync.Mutex
	pendingSignerEvictions []crdt.Entry
}

// New constructs a Hub over store, using registry as the fid-ownership
// source. The sync trie and five CRDT engines start empty; a node
// resuming from disk is expected to replay store's crdt/ and trie/
// namespaces into the returned Hub before serving traffic — spec.md §6
// treats persistence as an external collaborator and leaves the replay
// procedure to the implementer.
func New(cfg Config, store storage.Store, registry *fidreg.Registry, nickname string) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	trie := synctrie.New()
	h := &Hub{
		cfg:      cfg,
		store:    store,
		registry: registry,
		fnames:   fidreg.NewFnameRegistry(),
		trie:     trie,
		nickname: nickname,
		shards:   newShardPool(cfg.ShardCount),
		tracker:  diffsync.NewTracker(),
		nowFunc:  time.Now,
	}

	h.signer = crdt.NewEngine(signerRules{capacity: cfg.SignerCapacity}, trie)
	h.userData = crdt.NewEngine(crdt.UserDataRules{}, trie)
	h.cast = crdt.NewEngine(castRules{capacity: cfg.CastCapacity, ttl: cfg.CastTTL}, trie)
	h.reaction = crdt.NewEngine(reactionRules{capacity: cfg.ReactionCapacity, ttl: cfg.ReactionTTL}, trie)
	h.verification = crdt.NewEngine(verificationRules{capacity: cfg.VerificationCapacity}, trie)

	h.cascadeStores = cascade.Stores{
		Signer:       h.signer,
		UserData:     h.userData,
		Cast:         h.cast,
		Reaction:     h.reaction,
		Verification: h.verification,
	}

	// Second cascade trigger (spec.md §4.3): any signer leaving the
	// Signer CRDT's add-set — by SignerRemove winning the tie-break, or
	// by capacity/TTL eviction — cascades into the four C5 CRDTs. This
	// hook runs synchronously inside Engine.Merge, which itself runs
	// inside shards.withFidLock's closure (coarse lock held for reading),
	// so it must not call withCoarseLock itself — it only records the
	// eviction; Submit applies the cascade after the fid lock is released.
	h.signer.SetOnEvict(func(entry crdt.Entry) {
		if entry.Message.Type != message.TypeSignerAdd {
			return
		}
		if _, ok := entry.Message.Body.(message.SignerBody); !ok {
			return
		}
		h.cascadeMu.Lock()
		h.pendingSignerEvictions = append(h.pendingSignerEvictions, entry)
		h.cascadeMu.Unlock()
	})

	return h, nil
}

// engineForType returns the CRDT engine owning message type t.
func (h *Hub) engineForType(t message.Type) (*crdt.Engine, bool) {
	switch t {
	case message.TypeSignerAdd, message.TypeSignerRemove:
		return h.signer, true
	case message.TypeUserDataAdd:
		return h.userData, true
	case message.TypeCastAdd, message.TypeCastRemove:
		return h.cast, true
	case message.TypeReactionAdd, message.TypeReactionRemove:
		return h.reaction, true
	case message.TypeVerificationAddEthAddress, message.TypeVerificationRemove:
		return h.verification, true
	default:
		return nil, false
	}
}

// Submit runs m through the validate-then-merge pipeline of spec.md §4.1
// and §4.2 under m.FID's writer shard, then persists the result. This is
// both the entrypoint gossip-received and RPC-submitted messages use, and
// the diffsync.MergeFunc a Syncer drives during diff-sync (see MergeFunc).
func (h *Hub) Submit(m *message.Message) error {
	if h.halted.Load() {
		return ErrHalted
	}
	engine, ok := h.engineForType(m.Type)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownMessageType, m.Type)
	}

	var mergeErr error
	h.shards.withFidLock(m.FID, func() {
		deps := validator.Deps{
			Custody: h.registry,
			Signers: crdt.NewSignerIndex(h.signer),
			Fnames:  h.fnames,
		}
		now := common.Now()
		if err := validator.Validate(m, h.cfg.Network, now, deps); err != nil {
			mergeErr = err
			return
		}

		syncID := message.NewSyncID(m.Type, m.FID, m.Timestamp, m.Hash)
		outcome := engine.Merge(m, syncID, h.nowFunc())
		switch outcome {
		case crdt.OutcomeInserted:
			if err := h.persist(engine, m); err != nil {
				h.halt(err)
				mergeErr = err
			}
		case crdt.OutcomeLost, crdt.OutcomeReAdmissionRejected:
			// Not an error: m lost conflict resolution or re-arrived
			// after capacity eviction (spec.md §8 scenario 6).
		case crdt.OutcomeNoOp:
			// Idempotent re-merge of an already-present message.
		}
	})
	h.applyPendingSignerCascades()
	return mergeErr
}

// applyPendingSignerCascades drains evictions recorded by the Signer
// engine's onEvict hook during the Submit call that just finished and
// runs the signer-removed cascade (spec.md §4.3) for each, now that
// shards.withFidLock has released the coarse read-lock — so
// withCoarseLock's exclusive acquisition here cannot self-deadlock.
func (h *Hub) applyPendingSignerCascades() {
	h.cascadeMu.Lock()
	pending := h.pendingSignerEvictions
	h.pendingSignerEvictions = nil
	h.cascadeMu.Unlock()

	for _, entry := range pending {
		body := entry.Message.Body.(message.SignerBody)
		fid := entry.Message.FID
		signer := body.Signer[:]
		h.shards.withCoarseLock(func() {
			removed := h.cascadeStores.SignerRemoved(fid, signer)
			h.deleteEntries(removed)
		})
	}
}

// MergeFunc adapts Submit to diffsync.MergeFunc's signature. The context
// is accepted but not threaded into the merge itself: merge is CPU-bound
// and runs to completion under the fid lock once started (spec.md §5);
// diffsync's cancellation support instead bounds the RPCs that fetch
// messages before a merge is ever attempted.
func (h *Hub) MergeFunc() func(ctx context.Context, m *message.Message) error {
	return func(_ context.Context, m *message.Message) error {
		return h.Submit(m)
	}
}

// persist writes m's storage-layer record (spec.md §6:
// crdt/<name>/add|remove/<conflict_key>). Trie persistence is out of
// scope for the in-memory synctrie.Trie used here — spec.md §9 treats
// crash-consistency as the storage collaborator's guarantee around an
// atomic batch, and a full node would rebuild the trie from the crdt/
// namespace on restart rather than persist it separately.
func (h *Hub) persist(engine *crdt.Engine, m *message.Message) error {
	data, err := codec.EncodeMessage(m)
	if err != nil {
		return fmt.Errorf("hub: encode message for storage: %w", err)
	}
	key := storage.CRDTKey(engine.Name(), engine.IsRemoveMessage(m), engine.ConflictKeyBytes(m))
	return h.store.Put(key, data)
}

// deleteEntries removes cascaded/evicted entries' storage records. Errors
// are logged, not propagated — spec.md §7: "cascading evictions do not
// return errors (they are intentional state changes)".
func (h *Hub) deleteEntries(entries []crdt.Entry) {
	for _, entry := range entries {
		eng, ok := h.engineForType(entry.Message.Type)
		if !ok {
			continue
		}
		key := storage.CRDTKey(eng.Name(), eng.IsRemoveMessage(entry.Message), eng.ConflictKeyBytes(entry.Message))
		if err := h.store.Delete(key); err != nil {
			log.Warn("hub: failed to delete cascaded storage entry", "err", err)
		}
	}
}

// ApplyTransfer runs the fid-transfer revocation cascade (spec.md §4.3)
// for a chain Transfer event already applied to the registry: fid's
// custody moved from oldCustody to its new address. Intended as the
// TransferHandler passed to fidreg.NewIndexer.
func (h *Hub) ApplyTransfer(fid common.FID, oldCustody, _ ethcommon.Address, _ uint64) {
	h.shards.withCoarseLock(func() {
		removed := h.cascadeStores.FidTransfer(fid, oldCustody)
		h.deleteEntries(removed)
	})
}

// PersistFidEntry writes fid's current registry entry to the fid/<id>
// storage namespace (spec.md §6). Wire as a fidreg.AfterApplyHandler so
// every Register/Transfer event is durable alongside the registry's
// in-memory state.
func (h *Hub) PersistFidEntry(ev fidreg.ChainEvent) {
	entry, ok := h.registry.Entry(ev.FID)
	if !ok {
		return
	}
	value := make([]byte, ethcommon.AddressLength+8)
	copy(value, entry.Custody.Bytes())
	for i := 0; i < 8; i++ {
		value[ethcommon.AddressLength+i] = byte(entry.BlockNumber >> (56 - 8*i))
	}
	if err := h.store.Put(storage.FidKey(ev.FID), value); err != nil {
		log.Warn("hub: failed to persist fid registry entry", "fid", ev.FID, "err", err)
	}
}

// halt trips the Hub into its fatal-error state (spec.md §7).
func (h *Hub) halt(err error) {
	if h.halted.CompareAndSwap(false, true) {
		log.Error("hub: halting after storage error, operator intervention required", "err", err)
	}
}

// Halted reports whether a fatal storage error has halted the Hub.
func (h *Hub) Halted() bool { return h.halted.Load() }

// RootHash returns the sync trie's current root hash (spec.md §4.4, §6).
func (h *Hub) RootHash() common.Hash { return h.trie.RootHash() }

// Nickname returns the Hub's configured display name (spec.md §6 GetInfo).
func (h *Hub) Nickname() string { return h.nickname }

// Network returns the Hub's configured network.
func (h *Hub) Network() common.Network { return h.cfg.Network }

// SetSynced records whether this Hub currently considers itself
// caught-up with its peers, surfaced via GetInfo's is_synced field
// (spec.md §6). Left to the caller (a scheduler driving periodic
// diff-sync) rather than inferred internally.
func (h *Hub) SetSynced(synced bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.synced = synced
}

// IsSynced reports the last value passed to SetSynced.
func (h *Hub) IsSynced() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.synced
}

// Trie exposes the sync trie for read-only query methods (rpcapi,
// diffsync.Local). The trie's own RWMutex makes concurrent reads safe
// alongside in-flight merges.
func (h *Hub) Trie() *synctrie.Trie { return h.trie }

// Fnames exposes the fname registry cache so a caller ingesting the
// external fname registry's own feed (out of scope for this module, spec.md
// §1) can keep it populated with current fname → fid mappings for
// UserDataAdd's FNAME body-constraint check.
func (h *Hub) Fnames() *fidreg.FnameRegistry { return h.fnames }

// MessageBySyncID resolves a Sync ID back to its full message, routing
// directly to the owning CRDT via the discriminator byte the Sync ID
// itself carries (spec.md §3). Used by GetAllMessagesBySyncIds.
func (h *Hub) MessageBySyncID(id message.SyncID) (*message.Message, bool) {
	var engine *crdt.Engine
	switch id.Discriminator() {
	case message.DiscriminatorSigner:
		engine = h.signer
	case message.DiscriminatorUserData:
		engine = h.userData
	case message.DiscriminatorCast:
		engine = h.cast
	case message.DiscriminatorReaction:
		engine = h.reaction
	case message.DiscriminatorVerification:
		engine = h.verification
	default:
		return nil, false
	}
	entry, ok := engine.EntryBySyncID(id)
	if !ok {
		return nil, false
	}
	return entry.Message, true
}
