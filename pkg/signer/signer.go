// Package signer manages the keys principals authorize operations with.
// Key storage is pluggable: encrypted files on disk or a remote Vault
// transit engine.
package signer

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// KeyManager defines the interface for managing signing keys. It abstracts
// the underlying key storage, which can be a local keystore or a remote
// service like Vault.
type KeyManager interface {
	// GetAccounts returns a list of all addresses managed by the KeyManager.
	GetAccounts() []common.Address

	// CreateKey generates a new key pair and returns the corresponding
	// address. The key is stored in the underlying storage backend.
	CreateKey() (common.Address, error)

	// SignDigest signs a 32-byte digest with the key for the given address.
	// The signature is 65 bytes, r then s then a recovery byte of 27 or 28.
	SignDigest(address common.Address, digest common.Hash) ([]byte, error)
}

// Signer produces authorization signatures scoped to one auction house
// domain. Anyone may later submit them; only the signing account is bound.
type Signer struct {
	keyManager KeyManager
	domain     typeddata.Domain
}

// NewSigner creates a new Signer with a given KeyManager.
func NewSigner(keyManager KeyManager, domain typeddata.Domain) *Signer {
	return &Signer{
		keyManager: keyManager,
		domain:     domain,
	}
}

// GetAccounts returns the list of accounts managed by the underlying KeyManager.
func (s *Signer) GetAccounts() []common.Address {
	return s.keyManager.GetAccounts()
}

// CreateKey creates a new account in the KeyManager and returns its address.
func (s *Signer) CreateKey() (common.Address, error) {
	return s.keyManager.CreateKey()
}

// Domain returns the domain signatures are scoped to.
func (s *Signer) Domain() typeddata.Domain {
	return s.domain
}

// SignMessage signs one operation message with the account's key.
func (s *Signer) SignMessage(address common.Address, msg typeddata.Message) ([]byte, error) {
	return s.keyManager.SignDigest(address, typeddata.Digest(s.domain, msg))
}
