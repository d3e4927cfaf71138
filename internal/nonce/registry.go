// Package nonce tracks the replay counters consumed by signed requests.
package nonce

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// ErrMismatch reports a request carrying a nonce other than the next
// expected one. Both stale (replayed) and future nonces land here.
var ErrMismatch = errors.New("nonce mismatch")

type key struct {
	account common.Address
	kind    typeddata.OperationKind
}

// Registry maps (account, operation kind) to the next expected nonce.
// Counters start at zero and advance by exactly one per accepted request.
//
// The registry does not lock itself: it is owned by the engine and every
// access happens under the engine's lock.
type Registry struct {
	counters map[key]uint64
}

// NewRegistry returns an empty registry. Every (account, kind) pair starts
// at nonce zero.
func NewRegistry() *Registry {
	return &Registry{counters: make(map[key]uint64)}
}

// Current returns the nonce the next request from account must carry for
// kind.
func (r *Registry) Current(account common.Address, kind typeddata.OperationKind) uint64 {
	return r.counters[key{account, kind}]
}

// Advance consumes n if it equals the current counter. On mismatch the
// counter is left untouched, so the expected request can still be submitted.
func (r *Registry) Advance(account common.Address, kind typeddata.OperationKind, n uint64) error {
	k := key{account, kind}
	current := r.counters[k]
	if n != current {
		return fmt.Errorf("%w: next expected %d, request has %d", ErrMismatch, current, n)
	}
	r.counters[k] = current + 1
	return nil
}
