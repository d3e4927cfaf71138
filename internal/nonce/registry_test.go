package nonce

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestRegistryStartsAtZero(t *testing.T) {
	r := NewRegistry()
	for _, kind := range typeddata.Kinds() {
		assert.Equal(t, uint64(0), r.Current(alice, kind))
	}
}

func TestAdvanceConsumesExactlyOne(t *testing.T) {
	r := NewRegistry()

	for i := uint64(0); i < 5; i++ {
		require.NoError(t, r.Advance(alice, typeddata.KindAuctionBid, i))
		assert.Equal(t, i+1, r.Current(alice, typeddata.KindAuctionBid))
	}
}

func TestAdvanceMismatchLeavesCounter(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Advance(alice, typeddata.KindValueTransfer, 0))

	// Stale nonce (replay of the consumed one).
	err := r.Advance(alice, typeddata.KindValueTransfer, 0)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Equal(t, uint64(1), r.Current(alice, typeddata.KindValueTransfer))

	// Future nonce.
	err = r.Advance(alice, typeddata.KindValueTransfer, 7)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Equal(t, uint64(1), r.Current(alice, typeddata.KindValueTransfer))

	// The expected one still goes through.
	require.NoError(t, r.Advance(alice, typeddata.KindValueTransfer, 1))
}

func TestCountersAreIndependent(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Advance(alice, typeddata.KindAuctionCreate, 0))
	require.NoError(t, r.Advance(alice, typeddata.KindAuctionCreate, 1))
	require.NoError(t, r.Advance(alice, typeddata.KindAuctionBid, 0))

	// Other kinds of the same account are untouched.
	assert.Equal(t, uint64(2), r.Current(alice, typeddata.KindAuctionCreate))
	assert.Equal(t, uint64(1), r.Current(alice, typeddata.KindAuctionBid))
	assert.Equal(t, uint64(0), r.Current(alice, typeddata.KindValueTransfer))

	// Other accounts are untouched.
	assert.Equal(t, uint64(0), r.Current(bob, typeddata.KindAuctionCreate))
}
