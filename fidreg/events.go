package fidreg

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/farcaster-hub/hub/common"
)

// EventKind discriminates ID Registry on-chain event kinds.
type EventKind uint8

const (
	EventRegister EventKind = iota
	EventTransfer
)

// ChainEvent is a single decoded ID Registry event (Register or Transfer),
// ordered by BlockNumber by the feed that produces it (spec.md §5: "chain
// events are applied in block-number order").
type ChainEvent struct {
	Kind        EventKind
	FID         common.FID
	To          ethcommon.Address
	BlockNumber uint64
}
