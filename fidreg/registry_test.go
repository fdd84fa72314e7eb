package fidreg

import (
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/farcaster-hub/hub/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterThenCustodyOf(t *testing.T) {
	r := New()
	a := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	ok := r.Register(common.FID(1), a, 10)
	require.True(t, ok)

	got, found := r.CustodyOf(common.FID(1))
	require.True(t, found)
	assert.Equal(t, a, got)
}

func TestRegistry_DuplicateRegisterRejected(t *testing.T) {
	r := New()
	a := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	require.True(t, r.Register(common.FID(1), a, 10))
	assert.False(t, r.Register(common.FID(1), a, 11))
}

func TestRegistry_Transfer(t *testing.T) {
	r := New()
	a := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	b := ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")
	r.Register(common.FID(1), a, 10)

	prev, existed := r.Transfer(common.FID(1), b, 20)
	assert.True(t, existed)
	assert.Equal(t, a, prev)

	got, _ := r.CustodyOf(common.FID(1))
	assert.Equal(t, b, got)
}

func TestRegistry_TransferUnknownFidRegisters(t *testing.T) {
	r := New()
	b := ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")
	_, existed := r.Transfer(common.FID(7), b, 5)
	assert.False(t, existed)

	got, found := r.CustodyOf(common.FID(7))
	require.True(t, found)
	assert.Equal(t, b, got)
}

func TestIndexer_AppliesRegisterAndTransferInOrder(t *testing.T) {
	reg := New()
	a := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	b := ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")

	var transferred []common.FID
	idx := &Indexer{registry: reg, onTransfer: func(fid common.FID, from, to ethcommon.Address, blockNumber uint64) {
		transferred = append(transferred, fid)
	}}

	idx.apply(ChainEvent{Kind: EventRegister, FID: 1, To: a, BlockNumber: 1})
	idx.apply(ChainEvent{Kind: EventTransfer, FID: 1, To: b, BlockNumber: 2})

	got, found := reg.CustodyOf(common.FID(1))
	require.True(t, found)
	assert.Equal(t, b, got)
	assert.Equal(t, []common.FID{1}, transferred)
}
