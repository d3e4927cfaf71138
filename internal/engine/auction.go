package engine

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Auction lifecycle states as reported by State. "Ended" is derived from
// the clock, never stored: an auction past its end time that nobody has
// finalized yet simply reads as ended.
const (
	StateOpen    = "open"
	StateEnded   = "ended"
	StateSettled = "settled"
)

// Auction is one English auction run by the engine. HighestBidder is nil
// until the first bid lands. EndTime is a unix timestamp in seconds.
type Auction struct {
	ID            common.Hash
	Seller        common.Address
	AssetID       uint64
	StartPrice    *big.Int
	HighestBid    *big.Int
	HighestBidder *common.Address
	EndTime       uint64
	Settled       bool
	CreatedAt     time.Time
}

// State derives the lifecycle state at the given instant.
func (a *Auction) State(now time.Time) string {
	switch {
	case a.Settled:
		return StateSettled
	case uint64(now.Unix()) >= a.EndTime:
		return StateEnded
	default:
		return StateOpen
	}
}

// snapshot returns a detached copy safe to hand out of the lock.
func (a *Auction) snapshot() Auction {
	out := *a
	out.StartPrice = new(big.Int).Set(a.StartPrice)
	out.HighestBid = new(big.Int).Set(a.HighestBid)
	if a.HighestBidder != nil {
		bidder := *a.HighestBidder
		out.HighestBidder = &bidder
	}
	return out
}
