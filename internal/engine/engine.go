// Package engine runs the auction house: it authenticates signed requests,
// sequences every state change under one lock, and keeps the auction
// records, escrow bookkeeping and event log consistent with the value
// ledger and asset registry it drives.
package engine

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/xueqianLu/auctionhouse/internal/assets"
	"github.com/xueqianLu/auctionhouse/internal/events"
	"github.com/xueqianLu/auctionhouse/internal/gate"
	"github.com/xueqianLu/auctionhouse/internal/ledger"
	"github.com/xueqianLu/auctionhouse/internal/nonce"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// DefaultMaxDuration caps how far ahead an auction may end, measured from
// creation time. Kept as policy, not law: deployments override it in
// configuration.
const DefaultMaxDuration = 7 * 24 * time.Hour

var maxUint256 = new(big.Int).Lsh(big.NewInt(1), 256)

// Config carries the deployment identity and policy knobs of one engine.
type Config struct {
	// Domain scopes every accepted signature to this deployment. The
	// domain's verifying contract doubles as the engine's own account: the
	// address holding escrowed value and asset custody.
	Domain typeddata.Domain
	// MaxDuration bounds endTime at creation. Zero means
	// DefaultMaxDuration.
	MaxDuration time.Duration
}

// Engine is the single writer over all auction state. One mutex orders
// every mutating operation; checks run first, then the engine's own state
// changes (nonce, auction fields, pending withdrawals, events), and calls
// into the collaborators come last, so nothing outside ever observes a
// half-applied operation.
type Engine struct {
	mu sync.RWMutex

	domain      typeddata.Domain
	instance    common.Address
	maxDuration time.Duration

	gate   *gate.Gate
	values *ledger.Ledger
	assets *assets.Registry
	events *events.Log
	log    *zap.Logger
	now    func() time.Time

	auctions      map[common.Hash]*Auction
	order         []common.Hash
	activeByAsset map[uint64]common.Hash
	assetHistory  map[uint64][]common.Hash
	bySeller      map[common.Address][]common.Hash
	byBidder      map[common.Address]map[common.Hash]struct{}
	pending       map[common.Address]*big.Int
}

// Option adjusts an Engine at construction.
type Option func(*Engine)

// WithClock replaces the wall clock. Expiry is evaluated against this
// clock at call time; the engine never schedules anything.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New wires an engine over its collaborators. The nonce registry and gate
// are created here because the engine is their single writer.
func New(cfg Config, values *ledger.Ledger, registry *assets.Registry, eventLog *events.Log, logger *zap.Logger, opts ...Option) *Engine {
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = DefaultMaxDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		domain:        cfg.Domain,
		instance:      cfg.Domain.VerifyingContract,
		maxDuration:   cfg.MaxDuration,
		gate:          gate.New(cfg.Domain, nonce.NewRegistry()),
		values:        values,
		assets:        registry,
		events:        eventLog,
		log:           logger,
		now:           time.Now,
		auctions:      make(map[common.Hash]*Auction),
		activeByAsset: make(map[uint64]common.Hash),
		assetHistory:  make(map[uint64][]common.Hash),
		bySeller:      make(map[common.Address][]common.Hash),
		byBidder:      make(map[common.Address]map[common.Hash]struct{}),
		pending:       make(map[common.Address]*big.Int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Domain returns the domain requests must be signed under.
func (e *Engine) Domain() typeddata.Domain {
	return e.domain
}

// InstanceAddress returns the account holding escrowed value and asset
// custody.
func (e *Engine) InstanceAddress() common.Address {
	return e.instance
}

// deriveAuctionID computes a stable id from the creating request. The
// create nonce makes ids unique even when the same seller re-auctions the
// same asset.
func deriveAuctionID(seller common.Address, assetID, createNonce uint64) common.Hash {
	return crypto.Keccak256Hash(
		common.LeftPadBytes(seller.Bytes(), 32),
		common.LeftPadBytes(new(big.Int).SetUint64(assetID).Bytes(), 32),
		common.LeftPadBytes(new(big.Int).SetUint64(createNonce).Bytes(), 32),
	)
}

// checkAmount admits non-negative integers below 2^256, the range a signed
// uint256 field can carry.
func checkAmount(name string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 || amount.Cmp(maxUint256) >= 0 {
		return fmt.Errorf("%w: %s must be a uint256", ledger.ErrInvalidAmount, name)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

// credit adds amount to account's pending withdrawals.
func (e *Engine) credit(account common.Address, amount *big.Int) {
	current, ok := e.pending[account]
	if !ok {
		current = new(big.Int)
		e.pending[account] = current
	}
	current.Add(current, amount)
}
