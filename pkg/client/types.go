package client

import (
	"math/big"
	"time"
)

// Auction is the wire form of one auction.
type Auction struct {
	ID            string    `json:"id"`
	Seller        string    `json:"seller"`
	AssetID       uint64    `json:"assetId"`
	StartPrice    *big.Int  `json:"startPrice"`
	HighestBid    *big.Int  `json:"highestBid"`
	HighestBidder string    `json:"highestBidder,omitempty"`
	EndTime       uint64    `json:"endTime"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Account aggregates everything the service knows about an address.
type Account struct {
	Address           string            `json:"address"`
	Balance           *big.Int          `json:"balance"`
	PendingWithdrawal *big.Int          `json:"pendingWithdrawal"`
	Nonces            map[string]uint64 `json:"nonces"`
	Assets            []uint64          `json:"assets"`
}

// Asset is the wire form of one registered asset.
type Asset struct {
	AssetID  uint64   `json:"assetId"`
	Owner    string   `json:"owner"`
	AssetURI string   `json:"assetUri"`
	Approved string   `json:"approved,omitempty"`
	Auctions []string `json:"auctions"`
}

// DomainInfo carries the signature scoping parameters of a service
// instance.
type DomainInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ChainID         uint64 `json:"chainId"`
	InstanceAddress string `json:"instanceAddress"`
	Separator       string `json:"separator"`
}

// Event is one record from the service's event log. Only the fields
// relevant to the record's type are set.
type Event struct {
	ID   string    `json:"id"`
	Seq  uint64    `json:"seq"`
	Type string    `json:"type"`
	Time time.Time `json:"time"`

	AuctionID  string   `json:"auctionId,omitempty"`
	AssetID    *uint64  `json:"assetId,omitempty"`
	AssetURI   string   `json:"assetUri,omitempty"`
	Seller     string   `json:"seller,omitempty"`
	Bidder     string   `json:"bidder,omitempty"`
	Winner     string   `json:"winner,omitempty"`
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Owner      string   `json:"owner,omitempty"`
	Spender    string   `json:"spender,omitempty"`
	Operator   string   `json:"operator,omitempty"`
	Account    string   `json:"account,omitempty"`
	Amount     *big.Int `json:"amount,omitempty"`
	StartPrice *big.Int `json:"startPrice,omitempty"`
	EndTime    *uint64  `json:"endTime,omitempty"`
}

type transferValueRequest struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Amount    *big.Int `json:"amount"`
	Nonce     uint64   `json:"nonce"`
	Signature string   `json:"signature"`
}

type approveValueRequest struct {
	Owner     string   `json:"owner"`
	Spender   string   `json:"spender"`
	Amount    *big.Int `json:"amount"`
	Nonce     uint64   `json:"nonce"`
	Signature string   `json:"signature"`
}

type mintAssetRequest struct {
	Creator   string `json:"creator"`
	AssetID   uint64 `json:"assetId"`
	AssetURI  string `json:"assetUri"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

type transferAssetRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	AssetID   uint64 `json:"assetId"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

type approveAssetRequest struct {
	Owner     string `json:"owner"`
	Operator  string `json:"operator"`
	AssetID   uint64 `json:"assetId"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

type createAuctionRequest struct {
	Seller     string   `json:"seller"`
	AssetID    uint64   `json:"assetId"`
	StartPrice *big.Int `json:"startPrice"`
	EndTime    uint64   `json:"endTime"`
	Nonce      uint64   `json:"nonce"`
	Signature  string   `json:"signature"`
}

type placeBidRequest struct {
	Bidder    string   `json:"bidder"`
	Amount    *big.Int `json:"amount"`
	Nonce     uint64   `json:"nonce"`
	Signature string   `json:"signature"`
}

type withdrawRequest struct {
	Account string `json:"account"`
}

type withdrawResponse struct {
	Account string   `json:"account"`
	Amount  *big.Int `json:"amount"`
}

type mintValueRequest struct {
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}
