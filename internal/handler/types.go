package handler

import (
	"math/big"
	"time"

	"github.com/xueqianLu/auctionhouse/internal/engine"
)

// TransferValueRequest represents a signed value transfer.
type TransferValueRequest struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Amount    *big.Int `json:"amount"`
	Nonce     uint64   `json:"nonce"`
	Signature string   `json:"signature"`
}

// ApproveValueRequest represents a signed allowance grant.
type ApproveValueRequest struct {
	Owner     string   `json:"owner"`
	Spender   string   `json:"spender"`
	Amount    *big.Int `json:"amount"`
	Nonce     uint64   `json:"nonce"`
	Signature string   `json:"signature"`
}

// MintAssetRequest represents a signed asset mint.
type MintAssetRequest struct {
	Creator   string `json:"creator"`
	AssetID   uint64 `json:"assetId"`
	AssetURI  string `json:"assetUri"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

// TransferAssetRequest represents a signed asset transfer.
type TransferAssetRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	AssetID   uint64 `json:"assetId"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

// ApproveAssetRequest represents a signed custody approval.
type ApproveAssetRequest struct {
	Owner     string `json:"owner"`
	Operator  string `json:"operator"`
	AssetID   uint64 `json:"assetId"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

// CreateAuctionRequest represents a signed auction listing.
type CreateAuctionRequest struct {
	Seller     string   `json:"seller"`
	AssetID    uint64   `json:"assetId"`
	StartPrice *big.Int `json:"startPrice"`
	EndTime    uint64   `json:"endTime"`
	Nonce      uint64   `json:"nonce"`
	Signature  string   `json:"signature"`
}

// PlaceBidRequest represents a signed bid. The auction id comes from the
// request path.
type PlaceBidRequest struct {
	Bidder    string   `json:"bidder"`
	Amount    *big.Int `json:"amount"`
	Nonce     uint64   `json:"nonce"`
	Signature string   `json:"signature"`
}

// WithdrawRequest represents a refund withdrawal. No signature: the engine
// only ever pays the named account.
type WithdrawRequest struct {
	Account string `json:"account"`
}

// WithdrawResponse reports the amount paid out.
type WithdrawResponse struct {
	Account string   `json:"account"`
	Amount  *big.Int `json:"amount"`
}

// MintValueRequest represents an admin request to issue value tokens.
type MintValueRequest struct {
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}

// AuctionResponse is the wire form of one auction.
type AuctionResponse struct {
	ID            string    `json:"id"`
	Seller        string    `json:"seller"`
	AssetID       uint64    `json:"assetId"`
	StartPrice    *big.Int  `json:"startPrice"`
	HighestBid    *big.Int  `json:"highestBid"`
	HighestBidder *string   `json:"highestBidder,omitempty"`
	EndTime       uint64    `json:"endTime"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AccountResponse aggregates everything known about an address.
type AccountResponse struct {
	Address           string            `json:"address"`
	Balance           *big.Int          `json:"balance"`
	PendingWithdrawal *big.Int          `json:"pendingWithdrawal"`
	Nonces            map[string]uint64 `json:"nonces"`
	Assets            []uint64          `json:"assets"`
}

// AssetResponse is the wire form of one registered asset.
type AssetResponse struct {
	AssetID  uint64   `json:"assetId"`
	Owner    string   `json:"owner"`
	AssetURI string   `json:"assetUri"`
	Approved *string  `json:"approved,omitempty"`
	Auctions []string `json:"auctions"`
}

// DomainResponse carries the signature scoping parameters clients must
// sign under, plus the derived separator for cross-checks.
type DomainResponse struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ChainID         uint64 `json:"chainId"`
	InstanceAddress string `json:"instanceAddress"`
	Separator       string `json:"separator"`
}

// ErrorResponse represents a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// auctionResponse converts an engine auction to its wire form, deriving
// the lifecycle state at now.
func auctionResponse(a engine.Auction, now time.Time) AuctionResponse {
	resp := AuctionResponse{
		ID:         a.ID.Hex(),
		Seller:     a.Seller.Hex(),
		AssetID:    a.AssetID,
		StartPrice: a.StartPrice,
		HighestBid: a.HighestBid,
		EndTime:    a.EndTime,
		State:      a.State(now),
		CreatedAt:  a.CreatedAt,
	}
	if a.HighestBidder != nil {
		bidder := a.HighestBidder.Hex()
		resp.HighestBidder = &bidder
	}
	return resp
}
