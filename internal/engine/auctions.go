package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/xueqianLu/auctionhouse/internal/events"
	"github.com/xueqianLu/auctionhouse/internal/ledger"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// CreateAuction opens an auction for req.AssetID and pulls the asset into
// engine custody. The request must be signed by the seller, who must own
// the asset and have pre-approved the engine as custodian.
func (e *Engine) CreateAuction(req typeddata.CreateAuction, sig []byte) (Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := uint64(e.now().Unix())

	if current, ok := e.activeByAsset[req.AssetID]; ok {
		return Auction{}, fmt.Errorf("%w: asset %d is in auction %s", ErrAssetAlreadyAuctioned, req.AssetID, current.Hex())
	}
	if err := checkAmount("start price", req.StartPrice); err != nil {
		return Auction{}, err
	}
	if req.EndTime <= now {
		return Auction{}, fmt.Errorf("%w: end %d, now %d", ErrEndTimeInPast, req.EndTime, now)
	}
	if max := uint64(e.maxDuration.Seconds()); req.EndTime-now > max {
		return Auction{}, fmt.Errorf("%w: end %d exceeds now+%ds", ErrEndTimeTooFar, req.EndTime, max)
	}
	owner, err := e.assets.OwnerOf(req.AssetID)
	if err != nil {
		return Auction{}, err
	}
	if owner != req.Seller || !e.assets.HasApproval(req.AssetID, e.instance) {
		return Auction{}, fmt.Errorf("%w: asset %d", ErrNotApprovedForCustody, req.AssetID)
	}
	if err := e.gate.Authorize(req, sig); err != nil {
		return Auction{}, err
	}

	a := &Auction{
		ID:         deriveAuctionID(req.Seller, req.AssetID, req.Nonce),
		Seller:     req.Seller,
		AssetID:    req.AssetID,
		StartPrice: new(big.Int).Set(req.StartPrice),
		HighestBid: new(big.Int),
		EndTime:    req.EndTime,
		CreatedAt:  e.now(),
	}
	e.auctions[a.ID] = a
	e.order = append(e.order, a.ID)
	e.activeByAsset[a.AssetID] = a.ID
	e.assetHistory[a.AssetID] = append(e.assetHistory[a.AssetID], a.ID)
	e.bySeller[a.Seller] = append(e.bySeller[a.Seller], a.ID)
	e.events.Append(events.Record{
		Type:       events.TypeAuctionCreated,
		AuctionID:  ptr(a.ID),
		AssetID:    ptr(a.AssetID),
		Seller:     ptr(a.Seller),
		StartPrice: new(big.Int).Set(a.StartPrice),
		EndTime:    ptr(a.EndTime),
	})

	// Ownership and approval were checked under this same lock, so the
	// custody pull cannot fail.
	if err := e.assets.Transfer(a.Seller, e.instance, a.AssetID); err != nil {
		e.log.Error("custody pull failed after checks", zap.Uint64("asset", a.AssetID), zap.Error(err))
		return Auction{}, err
	}

	e.log.Info("auction created",
		zap.String("auction", a.ID.Hex()),
		zap.String("seller", a.Seller.Hex()),
		zap.Uint64("asset", a.AssetID),
		zap.String("startPrice", a.StartPrice.String()),
		zap.Uint64("end", a.EndTime))
	return a.snapshot(), nil
}

// PlaceBid records req.Amount as the new highest bid and escrows it. The
// outbid party, if any, is credited for a later Withdraw; nothing is ever
// pushed back to them.
func (e *Engine) PlaceBid(req typeddata.PlaceBid, sig []byte) (Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := uint64(e.now().Unix())

	a, ok := e.auctions[req.AuctionID]
	if !ok {
		return Auction{}, fmt.Errorf("%w: %s", ErrAuctionNotFound, req.AuctionID.Hex())
	}
	if a.Settled {
		return Auction{}, fmt.Errorf("%w: %s", ErrAuctionSettled, a.ID.Hex())
	}
	if now >= a.EndTime {
		return Auction{}, fmt.Errorf("%w: ended at %d, now %d", ErrAuctionEnded, a.EndTime, now)
	}
	if err := checkAmount("bid", req.Amount); err != nil {
		return Auction{}, err
	}
	if req.Amount.Cmp(a.HighestBid) <= 0 {
		return Auction{}, fmt.Errorf("%w: %s not above %s", ErrBidTooLow, req.Amount, a.HighestBid)
	}
	if req.Amount.Cmp(a.StartPrice) < 0 {
		return Auction{}, fmt.Errorf("%w: %s under %s", ErrBidBelowStartPrice, req.Amount, a.StartPrice)
	}
	if allowed := e.values.Allowance(req.Bidder, e.instance); allowed.Cmp(req.Amount) < 0 {
		return Auction{}, fmt.Errorf("%w: approved %s, bid %s", ledger.ErrInsufficientAllowance, allowed, req.Amount)
	}
	if balance := e.values.BalanceOf(req.Bidder); balance.Cmp(req.Amount) < 0 {
		return Auction{}, fmt.Errorf("%w: holds %s, bid %s", ledger.ErrInsufficientBalance, balance, req.Amount)
	}
	if err := e.gate.Authorize(req, sig); err != nil {
		return Auction{}, err
	}

	if a.HighestBidder != nil {
		e.credit(*a.HighestBidder, a.HighestBid)
	}
	a.HighestBid = new(big.Int).Set(req.Amount)
	a.HighestBidder = ptr(req.Bidder)
	bids, ok := e.byBidder[req.Bidder]
	if !ok {
		bids = make(map[common.Hash]struct{})
		e.byBidder[req.Bidder] = bids
	}
	bids[a.ID] = struct{}{}
	e.events.Append(events.Record{
		Type:      events.TypeBidPlaced,
		AuctionID: ptr(a.ID),
		AssetID:   ptr(a.AssetID),
		Bidder:    ptr(req.Bidder),
		Amount:    new(big.Int).Set(req.Amount),
	})

	// Allowance and balance were checked under this same lock, so the pull
	// cannot fail.
	if err := e.values.TransferFrom(e.instance, req.Bidder, e.instance, req.Amount); err != nil {
		e.log.Error("bid escrow pull failed after checks", zap.String("auction", a.ID.Hex()), zap.Error(err))
		return Auction{}, err
	}

	e.log.Info("bid placed",
		zap.String("auction", a.ID.Hex()),
		zap.String("bidder", req.Bidder.Hex()),
		zap.String("amount", req.Amount.String()))
	return a.snapshot(), nil
}

// Finalize settles an ended auction. It takes no signature: anyone may
// settle once the end time has passed, so an absent party cannot wedge the
// exchange of asset and proceeds.
func (e *Engine) Finalize(auctionID common.Hash) (Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := uint64(e.now().Unix())

	a, ok := e.auctions[auctionID]
	if !ok {
		return Auction{}, fmt.Errorf("%w: %s", ErrAuctionNotFound, auctionID.Hex())
	}
	if a.Settled {
		return Auction{}, fmt.Errorf("%w: %s", ErrAuctionAlreadySettled, a.ID.Hex())
	}
	if now < a.EndTime {
		return Auction{}, fmt.Errorf("%w: ends at %d, now %d", ErrAuctionNotEnded, a.EndTime, now)
	}

	a.Settled = true
	delete(e.activeByAsset, a.AssetID)
	rec := events.Record{
		Type:      events.TypeAuctionSettled,
		AuctionID: ptr(a.ID),
		AssetID:   ptr(a.AssetID),
		Seller:    ptr(a.Seller),
	}
	if a.HighestBidder != nil {
		rec.Winner = ptr(*a.HighestBidder)
		rec.Amount = new(big.Int).Set(a.HighestBid)
	}
	e.events.Append(rec)

	// Custody moved in at creation and value at each bid, both under this
	// lock, so the handoffs cannot fail.
	if a.HighestBidder == nil {
		if err := e.assets.Transfer(e.instance, a.Seller, a.AssetID); err != nil {
			e.log.Error("custody return failed", zap.String("auction", a.ID.Hex()), zap.Error(err))
			return Auction{}, err
		}
	} else {
		if err := e.assets.Transfer(e.instance, *a.HighestBidder, a.AssetID); err != nil {
			e.log.Error("custody handoff failed", zap.String("auction", a.ID.Hex()), zap.Error(err))
			return Auction{}, err
		}
		if err := e.values.Transfer(e.instance, a.Seller, a.HighestBid); err != nil {
			e.log.Error("proceeds payout failed", zap.String("auction", a.ID.Hex()), zap.Error(err))
			return Auction{}, err
		}
	}

	e.log.Info("auction settled",
		zap.String("auction", a.ID.Hex()),
		zap.Bool("sold", a.HighestBidder != nil),
		zap.String("finalPrice", a.HighestBid.String()))
	return a.snapshot(), nil
}

// Withdraw pays out account's accumulated outbid refunds. It takes no
// signature; the credit can only ever move to the account it belongs to.
func (e *Engine) Withdraw(account common.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	amount, ok := e.pending[account]
	if !ok || amount.Sign() == 0 {
		return nil, fmt.Errorf("%w: account %s", ErrNothingToWithdraw, account.Hex())
	}
	delete(e.pending, account)
	e.events.Append(events.Record{
		Type:    events.TypeWithdrawal,
		Account: ptr(account),
		Amount:  new(big.Int).Set(amount),
	})

	// Every credit is matched by escrowed value, so the payout cannot fail.
	if err := e.values.Transfer(e.instance, account, amount); err != nil {
		e.log.Error("withdrawal payout failed", zap.String("account", account.Hex()), zap.Error(err))
		return nil, err
	}

	e.log.Info("withdrawal paid",
		zap.String("account", account.Hex()),
		zap.String("amount", amount.String()))
	return new(big.Int).Set(amount), nil
}
