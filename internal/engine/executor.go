package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/xueqianLu/auctionhouse/internal/assets"
	"github.com/xueqianLu/auctionhouse/internal/events"
	"github.com/xueqianLu/auctionhouse/internal/ledger"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// The operations here let any submitter carry a principal's signed intent
// to the ledger and registry. Preconditions mirror the collaborator's own
// checks so rejections happen before the nonce burns.

// TransferValue executes a signed value transfer from req.From.
func (e *Engine) TransferValue(req typeddata.TransferValue, sig []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkAmount("amount", req.Amount); err != nil {
		return err
	}
	if balance := e.values.BalanceOf(req.From); balance.Cmp(req.Amount) < 0 {
		return fmt.Errorf("%w: holds %s, sends %s", ledger.ErrInsufficientBalance, balance, req.Amount)
	}
	if err := e.gate.Authorize(req, sig); err != nil {
		return err
	}

	e.events.Append(events.Record{
		Type:   events.TypeValueTransferred,
		From:   ptr(req.From),
		To:     ptr(req.To),
		Amount: new(big.Int).Set(req.Amount),
	})
	if err := e.values.Transfer(req.From, req.To, req.Amount); err != nil {
		e.log.Error("value transfer failed after checks", zap.Error(err))
		return err
	}
	e.log.Info("value transferred",
		zap.String("from", req.From.Hex()),
		zap.String("to", req.To.Hex()),
		zap.String("amount", req.Amount.String()))
	return nil
}

// ApproveValue executes a signed allowance grant from req.Owner.
func (e *Engine) ApproveValue(req typeddata.ApproveValue, sig []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkAmount("amount", req.Amount); err != nil {
		return err
	}
	if err := e.gate.Authorize(req, sig); err != nil {
		return err
	}

	e.events.Append(events.Record{
		Type:    events.TypeValueApproved,
		Owner:   ptr(req.Owner),
		Spender: ptr(req.Spender),
		Amount:  new(big.Int).Set(req.Amount),
	})
	if err := e.values.Approve(req.Owner, req.Spender, req.Amount); err != nil {
		e.log.Error("value approval failed after checks", zap.Error(err))
		return err
	}
	e.log.Info("value approved",
		zap.String("owner", req.Owner.Hex()),
		zap.String("spender", req.Spender.Hex()),
		zap.String("amount", req.Amount.String()))
	return nil
}

// MintAsset executes a signed asset mint; the creator becomes the owner.
func (e *Engine) MintAsset(req typeddata.MintAsset, sig []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.assets.Exists(req.AssetID) {
		return fmt.Errorf("%w: id %d", assets.ErrAssetExists, req.AssetID)
	}
	if err := e.gate.Authorize(req, sig); err != nil {
		return err
	}

	e.events.Append(events.Record{
		Type:     events.TypeAssetMinted,
		AssetID:  ptr(req.AssetID),
		AssetURI: ptr(req.AssetURI),
		Owner:    ptr(req.Creator),
	})
	if err := e.assets.Mint(req.Creator, req.AssetID, req.AssetURI); err != nil {
		e.log.Error("asset mint failed after checks", zap.Error(err))
		return err
	}
	e.log.Info("asset minted",
		zap.Uint64("asset", req.AssetID),
		zap.String("owner", req.Creator.Hex()))
	return nil
}

// TransferAsset executes a signed asset transfer from req.From. An asset
// in engine custody is owned by the engine, so sellers cannot move a
// listed asset out from under its auction.
func (e *Engine) TransferAsset(req typeddata.TransferAsset, sig []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	owner, err := e.assets.OwnerOf(req.AssetID)
	if err != nil {
		return err
	}
	if owner != req.From {
		return fmt.Errorf("%w: %s is not the owner of %d", assets.ErrNotOwner, req.From.Hex(), req.AssetID)
	}
	if err := e.gate.Authorize(req, sig); err != nil {
		return err
	}

	e.events.Append(events.Record{
		Type:    events.TypeAssetTransferred,
		AssetID: ptr(req.AssetID),
		From:    ptr(req.From),
		To:      ptr(req.To),
	})
	if err := e.assets.Transfer(req.From, req.To, req.AssetID); err != nil {
		e.log.Error("asset transfer failed after checks", zap.Error(err))
		return err
	}
	e.log.Info("asset transferred",
		zap.Uint64("asset", req.AssetID),
		zap.String("from", req.From.Hex()),
		zap.String("to", req.To.Hex()))
	return nil
}

// ApproveAsset executes a signed custody approval from req.Owner. The zero
// operator clears a standing approval.
func (e *Engine) ApproveAsset(req typeddata.ApproveAsset, sig []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	owner, err := e.assets.OwnerOf(req.AssetID)
	if err != nil {
		return err
	}
	if owner != req.Owner {
		return fmt.Errorf("%w: %s is not the owner of %d", assets.ErrNotOwner, req.Owner.Hex(), req.AssetID)
	}
	if err := e.gate.Authorize(req, sig); err != nil {
		return err
	}

	e.events.Append(events.Record{
		Type:     events.TypeAssetApproved,
		AssetID:  ptr(req.AssetID),
		Owner:    ptr(req.Owner),
		Operator: ptr(req.Operator),
	})
	if err := e.assets.Approve(req.Owner, req.Operator, req.AssetID); err != nil {
		e.log.Error("asset approval failed after checks", zap.Error(err))
		return err
	}
	e.log.Info("asset approved",
		zap.Uint64("asset", req.AssetID),
		zap.String("owner", req.Owner.Hex()),
		zap.String("operator", req.Operator.Hex()))
	return nil
}

// MintAssetDirect registers an asset without a signed request. It serves
// genesis seeding and operator issuance; principals go through MintAsset.
func (e *Engine) MintAssetDirect(owner common.Address, id uint64, uri string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.assets.Exists(id) {
		return fmt.Errorf("%w: id %d", assets.ErrAssetExists, id)
	}

	e.events.Append(events.Record{
		Type:     events.TypeAssetMinted,
		AssetID:  ptr(id),
		AssetURI: ptr(uri),
		Owner:    ptr(owner),
	})
	if err := e.assets.Mint(owner, id, uri); err != nil {
		e.log.Error("asset mint failed after checks", zap.Error(err))
		return err
	}
	e.log.Info("asset minted",
		zap.Uint64("asset", id),
		zap.String("owner", owner.Hex()))
	return nil
}

// MintValue credits brand new value to an account. There is no signed
// request type for this: it is the operator's provisioning path, guarded
// at the API layer, and the genesis path at boot.
func (e *Engine) MintValue(to common.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 || amount.Cmp(maxUint256) >= 0 {
		return fmt.Errorf("%w: mint amount must be a positive uint256", ledger.ErrInvalidAmount)
	}

	e.events.Append(events.Record{
		Type:    events.TypeValueMinted,
		Account: ptr(to),
		Amount:  new(big.Int).Set(amount),
	})
	if err := e.values.Mint(to, amount); err != nil {
		e.log.Error("value mint failed after checks", zap.Error(err))
		return err
	}
	e.log.Info("value minted",
		zap.String("account", to.Hex()),
		zap.String("amount", amount.String()))
	return nil
}
