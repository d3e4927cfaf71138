package client

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// sign produces a signature for msg with the client's key manager under
// the service's domain.
func (c *Client) sign(msg typeddata.Message) ([]byte, error) {
	if c.keys == nil {
		return nil, fmt.Errorf("client has no key manager configured")
	}
	domain, err := c.Domain()
	if err != nil {
		return nil, err
	}
	return c.keys.SignDigest(msg.Account(), typeddata.Digest(domain, msg))
}

// NextNonce returns the nonce account must sign with for its next
// operation of the given kind.
func (c *Client) NextNonce(account common.Address, kind typeddata.OperationKind) (uint64, error) {
	acct, err := c.Account(account)
	if err != nil {
		return 0, err
	}
	return acct.Nonces[kind.String()], nil
}

// Submit delivers an operation someone else signed. The submitter needs
// no relationship to the signing account; the signature alone carries
// the authorization.
func (c *Client) Submit(msg typeddata.Message, sig []byte) error {
	switch m := msg.(type) {
	case typeddata.TransferValue:
		return c.doRequest(http.MethodPost, "/v1/value/transfer", transferValueRequest{
			From:      m.From.Hex(),
			To:        m.To.Hex(),
			Amount:    m.Amount,
			Nonce:     m.Nonce,
			Signature: hexutil.Encode(sig),
		}, nil)
	case typeddata.ApproveValue:
		return c.doRequest(http.MethodPost, "/v1/value/approve", approveValueRequest{
			Owner:     m.Owner.Hex(),
			Spender:   m.Spender.Hex(),
			Amount:    m.Amount,
			Nonce:     m.Nonce,
			Signature: hexutil.Encode(sig),
		}, nil)
	case typeddata.MintAsset:
		return c.doRequest(http.MethodPost, "/v1/assets/mint", mintAssetRequest{
			Creator:   m.Creator.Hex(),
			AssetID:   m.AssetID,
			AssetURI:  m.AssetURI,
			Nonce:     m.Nonce,
			Signature: hexutil.Encode(sig),
		}, nil)
	case typeddata.TransferAsset:
		return c.doRequest(http.MethodPost, "/v1/assets/transfer", transferAssetRequest{
			From:      m.From.Hex(),
			To:        m.To.Hex(),
			AssetID:   m.AssetID,
			Nonce:     m.Nonce,
			Signature: hexutil.Encode(sig),
		}, nil)
	case typeddata.ApproveAsset:
		return c.doRequest(http.MethodPost, "/v1/assets/approve", approveAssetRequest{
			Owner:     m.Owner.Hex(),
			Operator:  m.Operator.Hex(),
			AssetID:   m.AssetID,
			Nonce:     m.Nonce,
			Signature: hexutil.Encode(sig),
		}, nil)
	case typeddata.CreateAuction:
		_, err := c.SubmitCreateAuction(m, sig)
		return err
	case typeddata.PlaceBid:
		_, err := c.SubmitPlaceBid(m, sig)
		return err
	default:
		return fmt.Errorf("unsupported message kind %s", msg.Kind())
	}
}

// SubmitCreateAuction delivers a pre-signed listing and returns the new
// auction.
func (c *Client) SubmitCreateAuction(m typeddata.CreateAuction, sig []byte) (*Auction, error) {
	var resp Auction
	err := c.doRequest(http.MethodPost, "/v1/auctions", createAuctionRequest{
		Seller:     m.Seller.Hex(),
		AssetID:    m.AssetID,
		StartPrice: m.StartPrice,
		EndTime:    m.EndTime,
		Nonce:      m.Nonce,
		Signature:  hexutil.Encode(sig),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitPlaceBid delivers a pre-signed bid and returns the updated
// auction.
func (c *Client) SubmitPlaceBid(m typeddata.PlaceBid, sig []byte) (*Auction, error) {
	var resp Auction
	err := c.doRequest(http.MethodPost, "/v1/auctions/"+m.AuctionID.Hex()+"/bids", placeBidRequest{
		Bidder:    m.Bidder.Hex(),
		Amount:    m.Amount,
		Nonce:     m.Nonce,
		Signature: hexutil.Encode(sig),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// TransferValue signs and submits a value transfer.
func (c *Client) TransferValue(from, to common.Address, amount *big.Int) error {
	nonce, err := c.NextNonce(from, typeddata.KindValueTransfer)
	if err != nil {
		return err
	}
	msg := typeddata.TransferValue{From: from, To: to, Amount: amount, Nonce: nonce}
	sig, err := c.sign(msg)
	if err != nil {
		return err
	}
	return c.Submit(msg, sig)
}

// ApproveValue signs and submits an allowance grant. A zero amount
// revokes the allowance.
func (c *Client) ApproveValue(owner, spender common.Address, amount *big.Int) error {
	nonce, err := c.NextNonce(owner, typeddata.KindValueApprove)
	if err != nil {
		return err
	}
	msg := typeddata.ApproveValue{Owner: owner, Spender: spender, Amount: amount, Nonce: nonce}
	sig, err := c.sign(msg)
	if err != nil {
		return err
	}
	return c.Submit(msg, sig)
}

// MintAsset signs and submits an asset mint; the creator becomes the
// owner.
func (c *Client) MintAsset(creator common.Address, assetID uint64, assetURI string) error {
	nonce, err := c.NextNonce(creator, typeddata.KindAssetMint)
	if err != nil {
		return err
	}
	msg := typeddata.MintAsset{Creator: creator, AssetID: assetID, AssetURI: assetURI, Nonce: nonce}
	sig, err := c.sign(msg)
	if err != nil {
		return err
	}
	return c.Submit(msg, sig)
}

// TransferAsset signs and submits an asset transfer.
func (c *Client) TransferAsset(from, to common.Address, assetID uint64) error {
	nonce, err := c.NextNonce(from, typeddata.KindAssetTransfer)
	if err != nil {
		return err
	}
	msg := typeddata.TransferAsset{From: from, To: to, AssetID: assetID, Nonce: nonce}
	sig, err := c.sign(msg)
	if err != nil {
		return err
	}
	return c.Submit(msg, sig)
}

// ApproveAsset signs and submits a custody approval. The zero operator
// clears it.
func (c *Client) ApproveAsset(owner, operator common.Address, assetID uint64) error {
	nonce, err := c.NextNonce(owner, typeddata.KindAssetApprove)
	if err != nil {
		return err
	}
	msg := typeddata.ApproveAsset{Owner: owner, Operator: operator, AssetID: assetID, Nonce: nonce}
	sig, err := c.sign(msg)
	if err != nil {
		return err
	}
	return c.Submit(msg, sig)
}

// CreateAuction signs and submits an auction listing.
func (c *Client) CreateAuction(seller common.Address, assetID uint64, startPrice *big.Int, endTime uint64) (*Auction, error) {
	nonce, err := c.NextNonce(seller, typeddata.KindAuctionCreate)
	if err != nil {
		return nil, err
	}
	msg := typeddata.CreateAuction{Seller: seller, AssetID: assetID, StartPrice: startPrice, EndTime: endTime, Nonce: nonce}
	sig, err := c.sign(msg)
	if err != nil {
		return nil, err
	}
	return c.SubmitCreateAuction(msg, sig)
}

// PlaceBid signs and submits a bid on an auction.
func (c *Client) PlaceBid(bidder common.Address, auctionID string, amount *big.Int) (*Auction, error) {
	nonce, err := c.NextNonce(bidder, typeddata.KindAuctionBid)
	if err != nil {
		return nil, err
	}
	msg := typeddata.PlaceBid{Bidder: bidder, AuctionID: common.HexToHash(auctionID), Amount: amount, Nonce: nonce}
	sig, err := c.sign(msg)
	if err != nil {
		return nil, err
	}
	return c.SubmitPlaceBid(msg, sig)
}

// Finalize settles an ended auction. No signature is needed; the outcome
// is fixed by the auction itself.
func (c *Client) Finalize(auctionID string) (*Auction, error) {
	var resp Auction
	err := c.doRequest(http.MethodPost, "/v1/auctions/"+auctionID+"/finalize", nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Withdraw pays out account's pending refunds and reports the amount.
func (c *Client) Withdraw(account common.Address) (*big.Int, error) {
	var resp withdrawResponse
	err := c.doRequest(http.MethodPost, "/v1/withdrawals", withdrawRequest{Account: account.Hex()}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Amount, nil
}

// MintValue issues new value tokens to an account. It requires admin
// credentials.
func (c *Client) MintValue(to common.Address, amount *big.Int) error {
	return c.doRequest(http.MethodPost, "/admin/value/mint", mintValueRequest{To: to.Hex(), Amount: amount}, nil)
}
