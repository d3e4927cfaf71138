package engine

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// Queries never mutate and never fail except for lookups of unknown ids.
// Each returns detached copies, so callers can hold results outside the
// lock.

// Auction returns the auction with the given id.
func (e *Engine) Auction(id common.Hash) (Auction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.auctions[id]
	if !ok {
		return Auction{}, fmt.Errorf("%w: %s", ErrAuctionNotFound, id.Hex())
	}
	return a.snapshot(), nil
}

// Auctions returns every auction ever created, in creation order.
func (e *Engine) Auctions() []Auction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Auction, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.auctions[id].snapshot())
	}
	return out
}

// OpenAuctions returns the auctions still accepting bids right now.
func (e *Engine) OpenAuctions() []Auction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	now := e.now()
	out := make([]Auction, 0)
	for _, id := range e.order {
		if a := e.auctions[id]; a.State(now) == StateOpen {
			out = append(out, a.snapshot())
		}
	}
	return out
}

// AssetAuctions returns every auction id an asset has ever been listed
// under, oldest first.
func (e *Engine) AssetAuctions(assetID uint64) []common.Hash {
	e.mu.RLock()
	defer e.mu.RUnlock()
	history := e.assetHistory[assetID]
	out := make([]common.Hash, len(history))
	copy(out, history)
	return out
}

// SellerAuctions returns the auctions created by seller, oldest first.
func (e *Engine) SellerAuctions(seller common.Address) []Auction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := e.bySeller[seller]
	out := make([]Auction, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.auctions[id].snapshot())
	}
	return out
}

// BidderAuctions returns every auction bidder has ever bid on and the
// subset still open, both oldest first.
func (e *Engine) BidderAuctions(bidder common.Address) (all, open []Auction) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	participated := e.byBidder[bidder]
	if len(participated) == 0 {
		return nil, nil
	}
	now := e.now()
	for _, id := range e.order {
		if _, ok := participated[id]; !ok {
			continue
		}
		a := e.auctions[id]
		all = append(all, a.snapshot())
		if a.State(now) == StateOpen {
			open = append(open, a.snapshot())
		}
	}
	return all, open
}

// PendingWithdrawal returns account's withdrawable refund balance.
func (e *Engine) PendingWithdrawal(account common.Address) *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if amount, ok := e.pending[account]; ok {
		return new(big.Int).Set(amount)
	}
	return new(big.Int)
}

// Nonce returns the next nonce account must sign with for kind.
func (e *Engine) Nonce(account common.Address, kind typeddata.OperationKind) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gate.Nonce(account, kind)
}

// Now reports the engine's current time. Auction states derived elsewhere
// should use this clock so they agree with the engine's own decisions.
func (e *Engine) Now() time.Time {
	return e.now()
}

// BalanceOf returns account's spendable value balance.
func (e *Engine) BalanceOf(account common.Address) *big.Int {
	return e.values.BalanceOf(account)
}

// Allowance returns how much spender may pull from owner.
func (e *Engine) Allowance(owner, spender common.Address) *big.Int {
	return e.values.Allowance(owner, spender)
}

// AccountAssets lists the asset ids account currently owns, ascending.
func (e *Engine) AccountAssets(account common.Address) []uint64 {
	return e.assets.AssetsOf(account)
}

// Asset returns the owner, URI and approved custodian of an asset.
// approved is nil when no custody approval is outstanding.
func (e *Engine) Asset(id uint64) (owner common.Address, uri string, approved *common.Address, err error) {
	owner, err = e.assets.OwnerOf(id)
	if err != nil {
		return common.Address{}, "", nil, err
	}
	uri, err = e.assets.URI(id)
	if err != nil {
		return common.Address{}, "", nil, err
	}
	if op, ok := e.assets.Approved(id); ok {
		approved = &op
	}
	return owner, uri, approved, nil
}

// ActiveAuctionCount reports how many auctions are not yet settled.
func (e *Engine) ActiveAuctionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.activeByAsset)
}

// EscrowBalance reports the value currently held by the engine: live high
// bids plus not-yet-withdrawn refunds.
func (e *Engine) EscrowBalance() *big.Int {
	return e.values.BalanceOf(e.instance)
}

// PendingTotal reports the sum of all pending withdrawals.
func (e *Engine) PendingTotal() *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := new(big.Int)
	for _, amount := range e.pending {
		total.Add(total, amount)
	}
	return total
}
