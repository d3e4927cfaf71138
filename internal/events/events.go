// Package events records what the auction house has done, in order, and
// fans new records out to live subscribers.
package events

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Type names follow "<subject>.<verb past>".
type Type string

const (
	TypeValueMinted      Type = "value.minted"
	TypeValueTransferred Type = "value.transferred"
	TypeValueApproved    Type = "value.approved"
	TypeAssetMinted      Type = "asset.minted"
	TypeAssetTransferred Type = "asset.transferred"
	TypeAssetApproved    Type = "asset.approved"
	TypeAuctionCreated   Type = "auction.created"
	TypeBidPlaced        Type = "auction.bid"
	TypeAuctionSettled   Type = "auction.settled"
	TypeWithdrawal       Type = "withdrawal"
)

// Record is one entry of the event log. Only the fields relevant to the
// record's type are set; the rest stay nil and are dropped from the JSON
// encoding.
type Record struct {
	ID   string    `json:"id"`
	Seq  uint64    `json:"seq"`
	Type Type      `json:"type"`
	Time time.Time `json:"time"`

	AuctionID  *common.Hash    `json:"auctionId,omitempty"`
	AssetID    *uint64         `json:"assetId,omitempty"`
	AssetURI   *string         `json:"assetUri,omitempty"`
	Seller     *common.Address `json:"seller,omitempty"`
	Bidder     *common.Address `json:"bidder,omitempty"`
	Winner     *common.Address `json:"winner,omitempty"`
	From       *common.Address `json:"from,omitempty"`
	To         *common.Address `json:"to,omitempty"`
	Owner      *common.Address `json:"owner,omitempty"`
	Spender    *common.Address `json:"spender,omitempty"`
	Operator   *common.Address `json:"operator,omitempty"`
	Account    *common.Address `json:"account,omitempty"`
	Amount     *big.Int        `json:"amount,omitempty"`
	StartPrice *big.Int        `json:"startPrice,omitempty"`
	EndTime    *uint64         `json:"endTime,omitempty"`
}

// Subscribers get a buffer this deep; a subscriber that falls further
// behind loses records rather than blocking the writer.
const subscriberBuffer = 64

// Log is an append-only event log. Sequence numbers start at 1 and never
// repeat or go backwards.
type Log struct {
	mu      sync.RWMutex
	records []Record
	lastSeq uint64
	subs    map[uint64]chan Record
	nextSub uint64
}

// NewLog returns an empty log with no subscribers.
func NewLog() *Log {
	return &Log{subs: make(map[uint64]chan Record)}
}

// Append stamps rec with the next sequence number, a fresh id and the
// current time, stores it, and delivers it to live subscribers. The
// stamped record is returned.
func (l *Log) Append(rec Record) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastSeq++
	rec.Seq = l.lastSeq
	rec.ID = uuid.NewString()
	rec.Time = time.Now().UTC()
	l.records = append(l.records, rec)

	for _, ch := range l.subs {
		select {
		case ch <- rec:
		default:
		}
	}
	return rec
}

// Count returns how many records have been appended.
func (l *Log) Count() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSeq
}

// Tail returns the most recent limit records in chronological order. A
// non-positive limit returns everything.
func (l *Log) Tail(limit int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(l.records) {
		start = len(l.records) - limit
	}
	out := make([]Record, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}

// Since returns every record with a sequence number greater than seq, in
// chronological order.
func (l *Log) Since(seq uint64) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Records are ordered by Seq; scan back from the end so recent cursors
	// stay cheap.
	idx := len(l.records)
	for idx > 0 && l.records[idx-1].Seq > seq {
		idx--
	}
	out := make([]Record, len(l.records)-idx)
	copy(out, l.records[idx:])
	return out
}

// Subscribe registers a live feed of appended records. The returned cancel
// function unregisters the feed and closes the channel; it is safe to call
// more than once.
func (l *Log) Subscribe() (<-chan Record, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	ch := make(chan Record, subscriberBuffer)
	l.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
