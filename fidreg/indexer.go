package fidreg

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/farcaster-hub/hub/common"
)

// ChainEventSource is the minimal chain-event feed consumed by Indexer.
// Satisfied by an on-chain ID Registry event watcher; out of scope per
// spec.md §1 ("on-chain event ingestion from the ID Registry contract").
type ChainEventSource interface {
	SubscribeChainEvent(ch chan<- ChainEvent) event.Subscription
}

// TransferHandler is invoked synchronously, after the registry has been
// updated, for every Transfer event — the revocation cascade (C6) hooks in
// here (spec.md §4.3: "on-chain event changes custody of fid f from A to
// B"). Invoked with the registry's write lock already released, so the
// handler itself must not block the indexer loop for long: spec.md §5
// requires chain events to be "fully drained before processing any
// message that references affected fids", which the Hub enforces by
// running the cascade synchronously in this callback before resuming.
type TransferHandler func(fid common.FID, from, to ethcommon.Address, blockNumber uint64)

// AfterApplyHandler is invoked after every event (Register or Transfer)
// has been applied to the registry, for callers that persist fid/<id>
// registry entries to storage (spec.md §6) alongside chain-event ingestion.
type AfterApplyHandler func(ev ChainEvent)

// Indexer subscribes to ID Registry chain events and keeps a Registry up
// to date, applying events strictly in block order. Grounded on the
// teacher's agentidx.Indexer (subscribe in a goroutine, apply, log, loop).
type Indexer struct {
	source     ChainEventSource
	registry   *Registry
	onTransfer TransferHandler
	afterApply AfterApplyHandler
	quit       chan struct{}
}

// NewIndexer creates an Indexer backed by registry. onTransfer and
// afterApply may be nil.
func NewIndexer(source ChainEventSource, registry *Registry, onTransfer TransferHandler, afterApply AfterApplyHandler) *Indexer {
	return &Indexer{
		source:     source,
		registry:   registry,
		onTransfer: onTransfer,
		afterApply: afterApply,
		quit:       make(chan struct{}),
	}
}

// Start begins consuming chain events in a background goroutine.
func (idx *Indexer) Start() {
	go idx.loop()
}

// Stop shuts down the indexer.
func (idx *Indexer) Stop() {
	close(idx.quit)
}

func (idx *Indexer) loop() {
	ch := make(chan ChainEvent, 64)
	sub := idx.source.SubscribeChainEvent(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case ev := <-ch:
			idx.apply(ev)
		case err := <-sub.Err():
			log.Warn("fid registry indexer: chain subscription error", "err", err)
			return
		case <-idx.quit:
			return
		}
	}
}

func (idx *Indexer) apply(ev ChainEvent) {
	switch ev.Kind {
	case EventRegister:
		if !idx.registry.Register(ev.FID, ev.To, ev.BlockNumber) {
			log.Debug("fid registry: duplicate Register event ignored", "fid", ev.FID, "block", ev.BlockNumber)
		}
	case EventTransfer:
		from, existed := idx.registry.Transfer(ev.FID, ev.To, ev.BlockNumber)
		if !existed {
			log.Debug("fid registry: Transfer for unseen fid, registering", "fid", ev.FID, "block", ev.BlockNumber)
		}
		if idx.onTransfer != nil {
			idx.onTransfer(ev.FID, from, ev.To, ev.BlockNumber)
		}
	}
	if idx.afterApply != nil {
		idx.afterApply(ev)
	}
}
