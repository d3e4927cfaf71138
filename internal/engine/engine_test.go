package engine

import (
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xueqianLu/auctionhouse/internal/assets"
	"github.com/xueqianLu/auctionhouse/internal/events"
	"github.com/xueqianLu/auctionhouse/internal/ledger"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// fixture wires a complete engine over fresh collaborators with a manual
// clock. Tests drive time by moving f.now forward.
type fixture struct {
	t      *testing.T
	eng    *Engine
	values *ledger.Ledger
	assets *assets.Registry
	events *events.Log
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		values: ledger.NewLedger(),
		assets: assets.NewRegistry(),
		events: events.NewLog(),
		now:    time.Unix(1_700_000_000, 0).UTC(),
	}
	cfg := Config{
		Domain: typeddata.Domain{
			Name:              "AuctionHouse",
			Version:           "1",
			ChainID:           big.NewInt(1),
			VerifyingContract: common.HexToAddress("0x00000000000000000000000000000000000a0c71"),
		},
		MaxDuration: 7 * 24 * time.Hour,
	}
	f.eng = New(cfg, f.values, f.assets, f.events, zap.NewNop(), WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// endIn returns a unix end time d past the fixture's current instant.
func (f *fixture) endIn(d time.Duration) uint64 {
	return uint64(f.now.Add(d).Unix())
}

type account struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// funded creates a principal with the given spendable balance, already
// approving the engine to pull bids up to that amount.
func (f *fixture) funded(balance int64) account {
	f.t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(f.t, err)
	acct := account{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
	if balance > 0 {
		require.NoError(f.t, f.values.Mint(acct.addr, big.NewInt(balance)))
		require.NoError(f.t, f.values.Approve(acct.addr, f.eng.InstanceAddress(), big.NewInt(balance)))
	}
	return acct
}

func (f *fixture) sign(msg typeddata.Message, key *ecdsa.PrivateKey) []byte {
	f.t.Helper()
	sig, err := typeddata.Sign(typeddata.Digest(f.eng.Domain(), msg), key)
	require.NoError(f.t, err)
	return sig
}

// mintAsset registers an asset for owner through the signed mint path.
func (f *fixture) mintAsset(owner account, id uint64) {
	f.t.Helper()
	req := typeddata.MintAsset{
		Creator:  owner.addr,
		AssetID:  id,
		AssetURI: "ipfs://asset",
		Nonce:    f.eng.Nonce(owner.addr, typeddata.KindAssetMint),
	}
	require.NoError(f.t, f.eng.MintAsset(req, f.sign(req, owner.key)))
}

// approveCustody lets the engine take custody of owner's asset.
func (f *fixture) approveCustody(owner account, id uint64) {
	f.t.Helper()
	req := typeddata.ApproveAsset{
		Owner:    owner.addr,
		Operator: f.eng.InstanceAddress(),
		AssetID:  id,
		Nonce:    f.eng.Nonce(owner.addr, typeddata.KindAssetApprove),
	}
	require.NoError(f.t, f.eng.ApproveAsset(req, f.sign(req, owner.key)))
}

// listAsset mints, approves custody and opens an auction in one go.
func (f *fixture) listAsset(seller account, id uint64, startPrice int64, endIn time.Duration) Auction {
	f.t.Helper()
	f.mintAsset(seller, id)
	f.approveCustody(seller, id)
	req := typeddata.CreateAuction{
		Seller:     seller.addr,
		AssetID:    id,
		StartPrice: big.NewInt(startPrice),
		EndTime:    f.endIn(endIn),
		Nonce:      f.eng.Nonce(seller.addr, typeddata.KindAuctionCreate),
	}
	a, err := f.eng.CreateAuction(req, f.sign(req, seller.key))
	require.NoError(f.t, err)
	return a
}

// bid places a bid, failing the test on rejection.
func (f *fixture) bid(bidder account, auctionID common.Hash, amount int64) Auction {
	f.t.Helper()
	a, err := f.tryBid(bidder, auctionID, amount)
	require.NoError(f.t, err)
	return a
}

// tryBid places a bid with a fresh valid signature and current nonce,
// returning the engine's verdict.
func (f *fixture) tryBid(bidder account, auctionID common.Hash, amount int64) (Auction, error) {
	f.t.Helper()
	req := typeddata.PlaceBid{
		Bidder:    bidder.addr,
		AuctionID: auctionID,
		Amount:    big.NewInt(amount),
		Nonce:     f.eng.Nonce(bidder.addr, typeddata.KindAuctionBid),
	}
	return f.eng.PlaceBid(req, f.sign(req, bidder.key))
}

// owner asserts the registry's current owner of an asset.
func (f *fixture) owner(id uint64) common.Address {
	f.t.Helper()
	owner, err := f.assets.OwnerOf(id)
	require.NoError(f.t, err)
	return owner
}

// checkEscrow asserts the engine's held balance equals live high bids plus
// pending refunds, value conservation in escrow terms.
func (f *fixture) checkEscrow() {
	f.t.Helper()
	want := f.eng.PendingTotal()
	for _, a := range f.eng.Auctions() {
		if !a.Settled {
			want.Add(want, a.HighestBid)
		}
	}
	require.Zero(f.t, want.Cmp(f.eng.EscrowBalance()),
		"escrow %s should equal live bids plus pending %s", f.eng.EscrowBalance(), want)
}
