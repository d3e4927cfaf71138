package engine

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xueqianLu/auctionhouse/internal/assets"
	"github.com/xueqianLu/auctionhouse/internal/events"
	"github.com/xueqianLu/auctionhouse/internal/ledger"
	"github.com/xueqianLu/auctionhouse/internal/nonce"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

func TestTransferValueAuthorized(t *testing.T) {
	f := newFixture(t)
	from := f.funded(100)
	to := f.funded(0)

	req := typeddata.TransferValue{
		From:   from.addr,
		To:     to.addr,
		Amount: big.NewInt(30),
		Nonce:  0,
	}
	require.NoError(t, f.eng.TransferValue(req, f.sign(req, from.key)))
	assert.Equal(t, big.NewInt(70), f.values.BalanceOf(from.addr))
	assert.Equal(t, big.NewInt(30), f.values.BalanceOf(to.addr))
	assert.Equal(t, uint64(1), f.eng.Nonce(from.addr, typeddata.KindValueTransfer))
}

func TestTransferValueRejectsBeforeNonceBurn(t *testing.T) {
	f := newFixture(t)
	from := f.funded(10)
	to := f.funded(0)

	// Overdraft is detected before authorization, so the nonce survives
	// and the principal can sign a corrected transfer with the same nonce.
	req := typeddata.TransferValue{From: from.addr, To: to.addr, Amount: big.NewInt(50), Nonce: 0}
	err := f.eng.TransferValue(req, f.sign(req, from.key))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, uint64(0), f.eng.Nonce(from.addr, typeddata.KindValueTransfer))

	retry := typeddata.TransferValue{From: from.addr, To: to.addr, Amount: big.NewInt(10), Nonce: 0}
	require.NoError(t, f.eng.TransferValue(retry, f.sign(retry, from.key)))
	assert.Equal(t, big.NewInt(10), f.values.BalanceOf(to.addr))
}

func TestApproveValueAuthorized(t *testing.T) {
	f := newFixture(t)
	owner := f.funded(100)
	spender := f.funded(0)

	req := typeddata.ApproveValue{Owner: owner.addr, Spender: spender.addr, Amount: big.NewInt(40), Nonce: 0}
	require.NoError(t, f.eng.ApproveValue(req, f.sign(req, owner.key)))
	assert.Equal(t, big.NewInt(40), f.values.Allowance(owner.addr, spender.addr))

	// Zero amount revokes.
	revoke := typeddata.ApproveValue{Owner: owner.addr, Spender: spender.addr, Amount: big.NewInt(0), Nonce: 1}
	require.NoError(t, f.eng.ApproveValue(revoke, f.sign(revoke, owner.key)))
	assert.Zero(t, f.values.Allowance(owner.addr, spender.addr).Sign())
}

func TestMintAssetAuthorized(t *testing.T) {
	f := newFixture(t)
	creator := f.funded(0)

	req := typeddata.MintAsset{Creator: creator.addr, AssetID: 7, AssetURI: "ipfs://seven", Nonce: 0}
	require.NoError(t, f.eng.MintAsset(req, f.sign(req, creator.key)))
	assert.Equal(t, creator.addr, f.owner(7))

	uri, err := f.assets.URI(7)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://seven", uri)

	// A duplicate id is rejected before the nonce burns.
	dup := typeddata.MintAsset{Creator: creator.addr, AssetID: 7, AssetURI: "ipfs://again", Nonce: 1}
	err = f.eng.MintAsset(dup, f.sign(dup, creator.key))
	assert.ErrorIs(t, err, assets.ErrAssetExists)
	assert.Equal(t, uint64(1), f.eng.Nonce(creator.addr, typeddata.KindAssetMint))
}

func TestTransferAssetAuthorized(t *testing.T) {
	f := newFixture(t)
	owner := f.funded(0)
	receiver := f.funded(0)
	f.mintAsset(owner, 1)

	req := typeddata.TransferAsset{From: owner.addr, To: receiver.addr, AssetID: 1, Nonce: 0}
	require.NoError(t, f.eng.TransferAsset(req, f.sign(req, owner.key)))
	assert.Equal(t, receiver.addr, f.owner(1))

	// The old owner cannot sign it away anymore.
	again := typeddata.TransferAsset{From: owner.addr, To: owner.addr, AssetID: 1, Nonce: 1}
	err := f.eng.TransferAsset(again, f.sign(again, owner.key))
	assert.ErrorIs(t, err, assets.ErrNotOwner)
}

func TestTransferAssetBlockedWhileListed(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	buyer := f.funded(0)
	f.listAsset(seller, 1, 10, time.Hour)

	// Custody sits with the engine for the duration of the auction.
	req := typeddata.TransferAsset{
		From:    seller.addr,
		To:      buyer.addr,
		AssetID: 1,
		Nonce:   f.eng.Nonce(seller.addr, typeddata.KindAssetTransfer),
	}
	err := f.eng.TransferAsset(req, f.sign(req, seller.key))
	assert.ErrorIs(t, err, assets.ErrNotOwner)
	assert.Equal(t, f.eng.InstanceAddress(), f.owner(1))
}

func TestApproveAssetAuthorized(t *testing.T) {
	f := newFixture(t)
	owner := f.funded(0)
	operator := f.funded(0)
	f.mintAsset(owner, 1)

	req := typeddata.ApproveAsset{Owner: owner.addr, Operator: operator.addr, AssetID: 1, Nonce: 0}
	require.NoError(t, f.eng.ApproveAsset(req, f.sign(req, owner.key)))
	assert.True(t, f.assets.HasApproval(1, operator.addr))

	// Clearing with the zero operator.
	revoke := typeddata.ApproveAsset{Owner: owner.addr, Operator: common.Address{}, AssetID: 1, Nonce: 1}
	require.NoError(t, f.eng.ApproveAsset(revoke, f.sign(revoke, owner.key)))
	assert.False(t, f.assets.HasApproval(1, operator.addr))
}

func TestMintValue(t *testing.T) {
	f := newFixture(t)
	to := f.funded(0)

	require.NoError(t, f.eng.MintValue(to.addr, big.NewInt(1000)))
	assert.Equal(t, big.NewInt(1000), f.values.BalanceOf(to.addr))

	assert.ErrorIs(t, f.eng.MintValue(to.addr, nil), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, f.eng.MintValue(to.addr, big.NewInt(0)), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, f.eng.MintValue(to.addr, big.NewInt(-3)), ledger.ErrInvalidAmount)
	assert.Equal(t, big.NewInt(1000), f.values.BalanceOf(to.addr))
}

// TestNonceMonotonicityPerKind runs N accepted operations of several kinds
// and checks each counter advanced exactly N times, independently.
func TestNonceMonotonicityPerKind(t *testing.T) {
	f := newFixture(t)
	acct := f.funded(1000)
	peer := f.funded(0)

	const n = 4
	for i := uint64(0); i < n; i++ {
		transfer := typeddata.TransferValue{From: acct.addr, To: peer.addr, Amount: big.NewInt(1), Nonce: i}
		require.NoError(t, f.eng.TransferValue(transfer, f.sign(transfer, acct.key)))

		approve := typeddata.ApproveValue{Owner: acct.addr, Spender: peer.addr, Amount: big.NewInt(int64(i)), Nonce: i}
		require.NoError(t, f.eng.ApproveValue(approve, f.sign(approve, acct.key)))
	}

	assert.Equal(t, uint64(n), f.eng.Nonce(acct.addr, typeddata.KindValueTransfer))
	assert.Equal(t, uint64(n), f.eng.Nonce(acct.addr, typeddata.KindValueApprove))
	assert.Equal(t, uint64(0), f.eng.Nonce(acct.addr, typeddata.KindAuctionBid))
	assert.Equal(t, uint64(0), f.eng.Nonce(peer.addr, typeddata.KindValueTransfer))
}

func TestReplayRejectedAcrossOperations(t *testing.T) {
	f := newFixture(t)
	acct := f.funded(100)
	peer := f.funded(0)

	req := typeddata.TransferValue{From: acct.addr, To: peer.addr, Amount: big.NewInt(5), Nonce: 0}
	sig := f.sign(req, acct.key)
	require.NoError(t, f.eng.TransferValue(req, sig))

	err := f.eng.TransferValue(req, sig)
	assert.ErrorIs(t, err, nonce.ErrMismatch)
	assert.Equal(t, big.NewInt(5), f.values.BalanceOf(peer.addr), "replay must not double-spend")
}

// TestEventTrail checks mutating operations append one record each, in
// operation order.
func TestEventTrail(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	bidder := f.funded(100)

	a := f.listAsset(seller, 1, 10, time.Hour) // mint, approve, create
	f.bid(bidder, a.ID, 20)
	f.advance(2 * time.Hour)
	_, err := f.eng.Finalize(a.ID)
	require.NoError(t, err)

	types := []events.Type{}
	for _, rec := range f.events.Tail(0) {
		types = append(types, rec.Type)
	}
	// funded() minted and approved through the collaborators directly, so
	// the trail starts at the signed asset mint.
	assert.Equal(t, []events.Type{
		events.TypeAssetMinted,
		events.TypeAssetApproved,
		events.TypeAuctionCreated,
		events.TypeBidPlaced,
		events.TypeAuctionSettled,
	}, types)

	for i, rec := range f.events.Tail(0) {
		assert.Equal(t, uint64(i+1), rec.Seq)
	}
}
