package client

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

// GetAuction fetches one auction by id.
func (c *Client) GetAuction(id string) (*Auction, error) {
	var resp Auction
	if err := c.doRequest(http.MethodGet, "/v1/auctions/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Auctions lists every auction the service knows about.
func (c *Client) Auctions() ([]Auction, error) {
	var resp []Auction
	if err := c.doRequest(http.MethodGet, "/v1/auctions", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// OpenAuctions lists auctions still accepting bids.
func (c *Client) OpenAuctions() ([]Auction, error) {
	var resp []Auction
	if err := c.doRequest(http.MethodGet, "/v1/auctions?state=open", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SellerAuctions lists auctions created by seller.
func (c *Client) SellerAuctions(seller common.Address) ([]Auction, error) {
	var resp []Auction
	if err := c.doRequest(http.MethodGet, "/v1/auctions?seller="+seller.Hex(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BidderAuctions lists auctions where bidder holds or has held the high
// bid.
func (c *Client) BidderAuctions(bidder common.Address) ([]Auction, error) {
	var resp []Auction
	if err := c.doRequest(http.MethodGet, "/v1/auctions?bidder="+bidder.Hex(), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Account fetches the full view of one account: balance, pending
// withdrawal, nonces and owned assets.
func (c *Client) Account(address common.Address) (*Account, error) {
	var resp Account
	if err := c.doRequest(http.MethodGet, "/v1/accounts/"+address.Hex(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Asset fetches one registered asset by id.
func (c *Client) Asset(id uint64) (*Asset, error) {
	var resp Asset
	if err := c.doRequest(http.MethodGet, fmt.Sprintf("/v1/assets/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events returns the most recent limit events, oldest first. A limit of
// zero returns the whole log.
func (c *Client) Events(limit int) ([]Event, error) {
	var resp []Event
	if err := c.doRequest(http.MethodGet, fmt.Sprintf("/v1/events?limit=%d", limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// EventsSince returns every event with a sequence number greater than
// seq.
func (c *Client) EventsSince(seq uint64) ([]Event, error) {
	var resp []Event
	if err := c.doRequest(http.MethodGet, fmt.Sprintf("/v1/events?after=%d", seq), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
