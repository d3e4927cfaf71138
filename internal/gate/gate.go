// Package gate authenticates signed requests before the engine acts on
// them. A request passes only if its signature recovers to the account it
// claims to act for and its nonce is the next expected one.
package gate

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/internal/nonce"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// ErrUnauthorizedSigner reports a valid signature produced by a key other
// than the acting account's.
var ErrUnauthorizedSigner = errors.New("signer does not match acting account")

// Gate checks signatures and nonces under one deployment domain. Like the
// nonce registry it owns, it does not lock itself; the engine serializes
// all calls.
type Gate struct {
	domain typeddata.Domain
	nonces *nonce.Registry
}

// New returns a gate verifying against domain and consuming nonces from
// nonces.
func New(domain typeddata.Domain, nonces *nonce.Registry) *Gate {
	return &Gate{domain: domain, nonces: nonces}
}

// Verify checks sig over msg without consuming the nonce, and returns the
// recovered signer. Any failure leaves the registry untouched.
func (g *Gate) Verify(msg typeddata.Message, sig []byte) (common.Address, error) {
	digest := typeddata.Digest(g.domain, msg)
	signer, err := typeddata.RecoverSigner(digest, sig)
	if err != nil {
		return common.Address{}, err
	}
	if signer != msg.Account() {
		return common.Address{}, fmt.Errorf("%w: recovered %s, request acts for %s", ErrUnauthorizedSigner, signer.Hex(), msg.Account().Hex())
	}
	if current := g.nonces.Current(msg.Account(), msg.Kind()); msg.AuthNonce() != current {
		return common.Address{}, fmt.Errorf("%w: next expected %d, request has %d", nonce.ErrMismatch, current, msg.AuthNonce())
	}
	return signer, nil
}

// Authorize is Verify plus nonce consumption. After it returns nil the
// request's nonce is burned and a replay of the same bytes is rejected.
func (g *Gate) Authorize(msg typeddata.Message, sig []byte) error {
	if _, err := g.Verify(msg, sig); err != nil {
		return err
	}
	return g.nonces.Advance(msg.Account(), msg.Kind(), msg.AuthNonce())
}

// Nonce reports the next expected nonce for account and kind.
func (g *Gate) Nonce(account common.Address, kind typeddata.OperationKind) uint64 {
	return g.nonces.Current(account, kind)
}

// Domain returns the domain requests must be signed under.
func (g *Gate) Domain() typeddata.Domain {
	return g.domain
}
