// Package assets tracks ownership of unique assets and per-asset custody
// approvals.
package assets

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownAsset = errors.New("unknown asset")
	ErrAssetExists  = errors.New("asset already exists")
	ErrNotOwner     = errors.New("account does not own asset")
)

// Registry is an in-memory book of unique assets. Each asset has exactly
// one owner, at most one approved custodian, and an immutable URI set at
// mint time. Transfers clear the approval so custody rights never outlive
// the ownership that granted them.
type Registry struct {
	mu        sync.RWMutex
	owners    map[uint64]common.Address
	approvals map[uint64]common.Address
	uris      map[uint64]string
	holdings  map[common.Address]map[uint64]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		owners:    make(map[uint64]common.Address),
		approvals: make(map[uint64]common.Address),
		uris:      make(map[uint64]string),
		holdings:  make(map[common.Address]map[uint64]struct{}),
	}
}

// Mint registers a new asset under owner.
func (r *Registry) Mint(owner common.Address, id uint64, uri string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[id]; ok {
		return fmt.Errorf("%w: id %d", ErrAssetExists, id)
	}
	r.owners[id] = owner
	r.uris[id] = uri
	r.hold(owner, id)
	return nil
}

// Exists reports whether id has been minted.
func (r *Registry) Exists(id uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.owners[id]
	return ok
}

// OwnerOf returns the current owner of id.
func (r *Registry) OwnerOf(id uint64) (common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[id]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: id %d", ErrUnknownAsset, id)
	}
	return owner, nil
}

// URI returns the metadata reference recorded when id was minted.
func (r *Registry) URI(id uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.owners[id]; !ok {
		return "", fmt.Errorf("%w: id %d", ErrUnknownAsset, id)
	}
	return r.uris[id], nil
}

// Approve grants operator the right to take custody of id. The zero
// address clears any standing approval. Only the current owner may grant.
func (r *Registry) Approve(owner, operator common.Address, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.owners[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownAsset, id)
	}
	if current != owner {
		return fmt.Errorf("%w: %s is not the owner of %d", ErrNotOwner, owner.Hex(), id)
	}
	if operator == (common.Address{}) {
		delete(r.approvals, id)
		return nil
	}
	r.approvals[id] = operator
	return nil
}

// Approved returns the operator currently approved for id, if any.
func (r *Registry) Approved(id uint64) (common.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	operator, ok := r.approvals[id]
	return operator, ok
}

// HasApproval reports whether operator holds the standing approval for id.
func (r *Registry) HasApproval(id uint64, operator common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.approvals[id] == operator && operator != (common.Address{})
}

// Transfer moves id from its current owner to to and clears the approval.
func (r *Registry) Transfer(from, to common.Address, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.owners[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownAsset, id)
	}
	if current != from {
		return fmt.Errorf("%w: %s is not the owner of %d", ErrNotOwner, from.Hex(), id)
	}
	r.owners[id] = to
	delete(r.approvals, id)
	r.release(from, id)
	r.hold(to, id)
	return nil
}

// AssetsOf returns the ids owned by owner in ascending order.
func (r *Registry) AssetsOf(owner common.Address) []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	held := r.holdings[owner]
	ids := make([]uint64, 0, len(held))
	for id := range held {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) hold(owner common.Address, id uint64) {
	held, ok := r.holdings[owner]
	if !ok {
		held = make(map[uint64]struct{})
		r.holdings[owner] = held
	}
	held[id] = struct{}{}
}

func (r *Registry) release(owner common.Address, id uint64) {
	if held, ok := r.holdings[owner]; ok {
		delete(held, id)
		if len(held) == 0 {
			delete(r.holdings, owner)
		}
	}
}
