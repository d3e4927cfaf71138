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

// TestAuctionLifecycle walks a full auction: listing, two bidders trading
// the lead, settlement to the last high bidder, and the loser's refund.
func TestAuctionLifecycle(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	b := f.funded(500)
	c := f.funded(500)

	a := f.listAsset(seller, 1, 10, 90*time.Second)
	assert.Equal(t, f.eng.InstanceAddress(), f.owner(1), "asset moves into custody at listing")
	assert.Equal(t, StateOpen, a.State(f.now))
	assert.Zero(t, a.HighestBid.Sign())
	assert.Nil(t, a.HighestBidder)

	a = f.bid(b, a.ID, 50)
	assert.Equal(t, big.NewInt(50), a.HighestBid)
	assert.Equal(t, b.addr, *a.HighestBidder)
	f.checkEscrow()

	a = f.bid(c, a.ID, 100)
	assert.Equal(t, big.NewInt(100), a.HighestBid)
	assert.Equal(t, c.addr, *a.HighestBidder)
	assert.Equal(t, big.NewInt(50), f.eng.PendingWithdrawal(b.addr), "outbid amount becomes withdrawable")
	f.checkEscrow()

	a = f.bid(b, a.ID, 150)
	assert.Equal(t, big.NewInt(150), a.HighestBid)
	assert.Equal(t, b.addr, *a.HighestBidder)
	assert.Equal(t, big.NewInt(100), f.eng.PendingWithdrawal(c.addr))
	assert.Equal(t, big.NewInt(50), f.eng.PendingWithdrawal(b.addr), "earlier refund is untouched by a rebid")
	f.checkEscrow()

	f.advance(91 * time.Second)
	a, err := f.eng.Finalize(a.ID)
	require.NoError(t, err)
	assert.True(t, a.Settled)
	assert.Equal(t, StateSettled, a.State(f.now))
	assert.Equal(t, b.addr, f.owner(1), "asset goes to the winner")
	assert.Equal(t, big.NewInt(150), f.values.BalanceOf(seller.addr), "seller is paid the final price")
	f.checkEscrow()

	got, err := f.eng.Withdraw(c.addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), got)
	assert.Equal(t, big.NewInt(300), f.values.BalanceOf(b.addr), "winner has paid both bids so far")
	assert.Equal(t, big.NewInt(500), f.values.BalanceOf(c.addr), "loser is made whole")
	assert.Zero(t, f.eng.PendingWithdrawal(c.addr).Sign())
	f.checkEscrow()

	// B's own refund from the first bid is still there.
	got, err = f.eng.Withdraw(b.addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), got)
	assert.Equal(t, big.NewInt(350), f.values.BalanceOf(b.addr), "net cost to the winner is the final price")
	f.checkEscrow()
}

func TestCreateAuctionValidation(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	stranger := f.funded(0)

	create := func(s account, assetID uint64, start *big.Int, end uint64) error {
		req := typeddata.CreateAuction{
			Seller:     s.addr,
			AssetID:    assetID,
			StartPrice: start,
			EndTime:    end,
			Nonce:      f.eng.Nonce(s.addr, typeddata.KindAuctionCreate),
		}
		_, err := f.eng.CreateAuction(req, f.sign(req, s.key))
		return err
	}

	// Unknown asset.
	err := create(seller, 99, big.NewInt(10), f.endIn(time.Hour))
	assert.ErrorIs(t, err, assets.ErrUnknownAsset)

	f.mintAsset(seller, 1)

	// No custody approval yet.
	err = create(seller, 1, big.NewInt(10), f.endIn(time.Hour))
	assert.ErrorIs(t, err, ErrNotApprovedForCustody)

	f.approveCustody(seller, 1)

	// Someone other than the owner, even with a valid signature of their own.
	err = create(stranger, 1, big.NewInt(10), f.endIn(time.Hour))
	assert.ErrorIs(t, err, ErrNotApprovedForCustody)

	// End time bounds.
	err = create(seller, 1, big.NewInt(10), uint64(f.now.Unix()))
	assert.ErrorIs(t, err, ErrEndTimeInPast)
	err = create(seller, 1, big.NewInt(10), f.endIn(-time.Hour))
	assert.ErrorIs(t, err, ErrEndTimeInPast)
	err = create(seller, 1, big.NewInt(10), f.endIn(8*24*time.Hour))
	assert.ErrorIs(t, err, ErrEndTimeTooFar)

	// Start price must be a uint256.
	err = create(seller, 1, nil, f.endIn(time.Hour))
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	err = create(seller, 1, big.NewInt(-1), f.endIn(time.Hour))
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	// Nothing was created and custody never moved.
	assert.Empty(t, f.eng.Auctions())
	assert.Equal(t, seller.addr, f.owner(1))

	// A successful create, then the same asset again.
	require.NoError(t, create(seller, 1, big.NewInt(10), f.endIn(time.Hour)))
	err = create(seller, 1, big.NewInt(10), f.endIn(time.Hour))
	assert.ErrorIs(t, err, ErrAssetAlreadyAuctioned)
	assert.Len(t, f.eng.Auctions(), 1)
}

func TestCreateAuctionAuthorization(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	mallory := f.funded(0)
	f.mintAsset(seller, 1)
	f.approveCustody(seller, 1)

	req := typeddata.CreateAuction{
		Seller:     seller.addr,
		AssetID:    1,
		StartPrice: big.NewInt(10),
		EndTime:    f.endIn(time.Hour),
		Nonce:      f.eng.Nonce(seller.addr, typeddata.KindAuctionCreate),
	}

	// Mallory signs over the seller's fields.
	_, err := f.eng.CreateAuction(req, f.sign(req, mallory.key))
	assert.Error(t, err)

	// Wrong nonce, correctly signed.
	futureReq := req
	futureReq.Nonce = 5
	_, err = f.eng.CreateAuction(futureReq, f.sign(futureReq, seller.key))
	assert.ErrorIs(t, err, nonce.ErrMismatch)

	// Rejections leave everything untouched.
	assert.Empty(t, f.eng.Auctions())
	assert.Equal(t, seller.addr, f.owner(1))
	assert.Equal(t, uint64(0), f.eng.Nonce(seller.addr, typeddata.KindAuctionCreate))

	// The legitimate request still works, then its replay fails.
	sig := f.sign(req, seller.key)
	_, err = f.eng.CreateAuction(req, sig)
	require.NoError(t, err)
	_, err = f.eng.CreateAuction(req, sig)
	assert.ErrorIs(t, err, nonce.ErrMismatch)
	assert.Len(t, f.eng.Auctions(), 1)
}

func TestPlaceBidValidation(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	bidder := f.funded(1000)
	poor := f.funded(0)

	a := f.listAsset(seller, 1, 10, time.Hour)

	_, err := f.tryBid(bidder, common.HexToHash("0xdead"), 50)
	assert.ErrorIs(t, err, ErrAuctionNotFound)

	// Below start price, reported as the start-price variant of too-low.
	_, err = f.tryBid(bidder, a.ID, 5)
	assert.ErrorIs(t, err, ErrBidBelowStartPrice)
	assert.ErrorIs(t, err, ErrBidTooLow)

	f.bid(bidder, a.ID, 50)

	// Not above the current high, including exactly equal.
	_, err = f.tryBid(bidder, a.ID, 50)
	assert.ErrorIs(t, err, ErrBidTooLow)
	assert.NotErrorIs(t, err, ErrBidBelowStartPrice)
	_, err = f.tryBid(bidder, a.ID, 49)
	assert.ErrorIs(t, err, ErrBidTooLow)

	// No allowance at all.
	_, err = f.tryBid(poor, a.ID, 60)
	assert.ErrorIs(t, err, ledger.ErrInsufficientAllowance)

	// Allowance present, balance missing.
	require.NoError(t, f.values.Approve(poor.addr, f.eng.InstanceAddress(), big.NewInt(1000)))
	_, err = f.tryBid(poor, a.ID, 60)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// Failed bids never burn the nonce.
	assert.Equal(t, uint64(0), f.eng.Nonce(poor.addr, typeddata.KindAuctionBid))

	// Expiry closes bidding.
	f.advance(2 * time.Hour)
	_, err = f.tryBid(bidder, a.ID, 60)
	assert.ErrorIs(t, err, ErrAuctionEnded)

	// Settlement closes it for good.
	_, err = f.eng.Finalize(a.ID)
	require.NoError(t, err)
	_, err = f.tryBid(bidder, a.ID, 60)
	assert.ErrorIs(t, err, ErrAuctionSettled)

	// Through all rejections the books stayed consistent.
	f.checkEscrow()
}

// TestBidMonotonicity drives an increasing bid sequence and checks every
// displaced amount lands in pending withdrawals exactly once.
func TestBidMonotonicity(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	bidders := []account{f.funded(1000), f.funded(1000), f.funded(1000)}

	a := f.listAsset(seller, 1, 1, time.Hour)

	amounts := []int64{10, 20, 35, 50, 80, 120}
	for i, amount := range amounts {
		who := bidders[i%len(bidders)]
		got := f.bid(who, a.ID, amount)
		assert.Equal(t, big.NewInt(amount), got.HighestBid)
		assert.Equal(t, who.addr, *got.HighestBidder)
		f.checkEscrow()
	}

	// bidders[0] bid 10 and 50, both displaced. bidders[1] bid 20 and 80,
	// both displaced. bidders[2] bid 35 and the final 120.
	assert.Equal(t, big.NewInt(60), f.eng.PendingWithdrawal(bidders[0].addr))
	assert.Equal(t, big.NewInt(100), f.eng.PendingWithdrawal(bidders[1].addr))
	assert.Equal(t, big.NewInt(35), f.eng.PendingWithdrawal(bidders[2].addr))

	got, err := f.eng.Auction(a.ID)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(120), got.HighestBid)
}

func TestFinalizeWithoutBids(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	a := f.listAsset(seller, 1, 10, time.Hour)

	f.advance(time.Hour + time.Second)
	settled, err := f.eng.Finalize(a.ID)
	require.NoError(t, err)
	assert.True(t, settled.Settled)
	assert.Nil(t, settled.HighestBidder)
	assert.Equal(t, seller.addr, f.owner(1), "unsold asset returns to the seller")
	assert.Zero(t, f.values.BalanceOf(seller.addr).Sign())

	// The settlement record carries no winner and no amount.
	tail := f.events.Tail(1)
	require.Len(t, tail, 1)
	assert.Equal(t, events.TypeAuctionSettled, tail[0].Type)
	assert.Nil(t, tail[0].Winner)
	assert.Nil(t, tail[0].Amount)
}

func TestFinalizeValidation(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	bidder := f.funded(100)
	a := f.listAsset(seller, 1, 10, time.Hour)
	f.bid(bidder, a.ID, 40)

	_, err := f.eng.Finalize(common.HexToHash("0xdead"))
	assert.ErrorIs(t, err, ErrAuctionNotFound)

	// Too early.
	_, err = f.eng.Finalize(a.ID)
	assert.ErrorIs(t, err, ErrAuctionNotEnded)
	got, qerr := f.eng.Auction(a.ID)
	require.NoError(t, qerr)
	assert.False(t, got.Settled)

	// On time, then again.
	f.advance(2 * time.Hour)
	_, err = f.eng.Finalize(a.ID)
	require.NoError(t, err)
	_, err = f.eng.Finalize(a.ID)
	assert.ErrorIs(t, err, ErrAuctionAlreadySettled)

	// The double finalize paid the seller once.
	assert.Equal(t, big.NewInt(40), f.values.BalanceOf(seller.addr))
	f.checkEscrow()
}

func TestWithdrawIsIdempotent(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	loser := f.funded(100)
	winner := f.funded(100)

	a := f.listAsset(seller, 1, 10, time.Hour)
	f.bid(loser, a.ID, 20)
	f.bid(winner, a.ID, 30)

	got, err := f.eng.Withdraw(loser.addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(20), got)
	assert.Equal(t, big.NewInt(100), f.values.BalanceOf(loser.addr))
	assert.Zero(t, f.eng.PendingWithdrawal(loser.addr).Sign())

	_, err = f.eng.Withdraw(loser.addr)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
	assert.Equal(t, big.NewInt(100), f.values.BalanceOf(loser.addr), "failed withdrawal pays nothing")

	_, err = f.eng.Withdraw(f.funded(0).addr)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
}

// TestRelistAfterSettlement re-auctions the same asset and checks the
// per-asset history accumulates while the active index frees up.
func TestRelistAfterSettlement(t *testing.T) {
	f := newFixture(t)
	seller := f.funded(0)
	winner := f.funded(100)

	first := f.listAsset(seller, 1, 1, time.Hour)
	f.bid(winner, first.ID, 10)
	f.advance(2 * time.Hour)
	_, err := f.eng.Finalize(first.ID)
	require.NoError(t, err)
	assert.Equal(t, winner.addr, f.owner(1))

	// The new owner lists the same asset.
	f.approveCustody(winner, 1)
	req := typeddata.CreateAuction{
		Seller:     winner.addr,
		AssetID:    1,
		StartPrice: big.NewInt(5),
		EndTime:    f.endIn(time.Hour),
		Nonce:      f.eng.Nonce(winner.addr, typeddata.KindAuctionCreate),
	}
	second, err := f.eng.CreateAuction(req, f.sign(req, winner.key))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	history := f.eng.AssetAuctions(1)
	assert.Equal(t, []common.Hash{first.ID, second.ID}, history)
}
