package main

import (
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/pkg/client"
	"github.com/xueqianLu/auctionhouse/pkg/signer"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

const (
	baseURL   = "http://localhost:2818"
	apiKey    = "admin"
	apiSecret = "admin-secret"
	keyDir    = "./example-keys"
	password  = "example-password"
)

func main() {
	keys, err := signer.NewLocalKeyManager(keyDir, password)
	if err != nil {
		log.Fatalf("Failed to open keystore: %v", err)
	}
	c := client.NewClient(baseURL,
		client.WithAdminCredentials(apiKey, apiSecret),
		client.WithKeyManager(keys),
	)

	// 1. Health Check
	fmt.Println("1. Performing Health Check...")
	health, err := c.Health()
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Printf("   Health status: %s\n\n", health)

	// 2. Fetch the signing domain
	fmt.Println("2. Fetching Signing Domain...")
	domain, err := c.Domain()
	if err != nil {
		log.Fatalf("Failed to fetch domain: %v", err)
	}
	fmt.Printf("   Domain: %s v%s (chain %s)\n\n", domain.Name, domain.Version, domain.ChainID)

	// 3. Create key pairs for a seller and two bidders
	fmt.Println("3. Creating Keys...")
	seller, err := keys.CreateKey()
	if err != nil {
		log.Fatalf("Failed to create seller key: %v", err)
	}
	alice, err := keys.CreateKey()
	if err != nil {
		log.Fatalf("Failed to create bidder key: %v", err)
	}
	bob, err := keys.CreateKey()
	if err != nil {
		log.Fatalf("Failed to create bidder key: %v", err)
	}
	fmt.Printf("   Seller: %s\n   Alice:  %s\n   Bob:    %s\n\n", seller.Hex(), alice.Hex(), bob.Hex())

	// 4. Fund the bidders with value tokens (admin only)
	fmt.Println("4. Minting Value Tokens...")
	if err := c.MintValue(alice, big.NewInt(1000)); err != nil {
		log.Fatalf("Failed to mint for alice: %v", err)
	}
	if err := c.MintValue(bob, big.NewInt(1000)); err != nil {
		log.Fatalf("Failed to mint for bob: %v", err)
	}
	fmt.Println("   Minted 1000 tokens each for alice and bob")

	// The service pulls escrow from allowances, so each bidder approves
	// the instance up front.
	instance := domain.VerifyingContract
	if err := c.ApproveValue(alice, instance, big.NewInt(1000)); err != nil {
		log.Fatalf("Alice's approval failed: %v", err)
	}
	if err := c.ApproveValue(bob, instance, big.NewInt(1000)); err != nil {
		log.Fatalf("Bob's approval failed: %v", err)
	}
	fmt.Println("   Both bidders approved the auction house for 1000")

	// 5. The seller mints an asset and hands custody rights to the house
	fmt.Println("5. Minting an Asset...")
	assetID := uint64(time.Now().UnixNano())
	if err := c.MintAsset(seller, assetID, "ipfs://QmExampleAsset"); err != nil {
		log.Fatalf("Failed to mint asset: %v", err)
	}
	if err := c.ApproveAsset(seller, instance, assetID); err != nil {
		log.Fatalf("Custody approval failed: %v", err)
	}
	fmt.Printf("   Asset %d minted to seller and approved for custody\n\n", assetID)

	// 6. The seller opens an auction ending shortly
	fmt.Println("6. Creating an Auction...")
	endTime := uint64(time.Now().Add(5 * time.Second).Unix())
	auction, err := c.CreateAuction(seller, assetID, big.NewInt(100), endTime)
	if err != nil {
		log.Fatalf("Failed to create auction: %v", err)
	}
	fmt.Printf("   Auction %s open until %d\n\n", auction.ID, auction.EndTime)

	// 7. Watch the event feed while the auction runs
	fmt.Println("7. Subscribing to Events...")
	feed, stopFeed, err := c.SubscribeEvents()
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	defer stopFeed()
	go func() {
		for ev := range feed {
			fmt.Printf("   [event %d] %s\n", ev.Seq, ev.Type)
		}
	}()

	// 8. Alice bids through her own client
	fmt.Println("8. Placing Bids...")
	if _, err := c.PlaceBid(alice, auction.ID, big.NewInt(150)); err != nil {
		log.Fatalf("Alice's bid failed: %v", err)
	}
	fmt.Println("   Alice bid 150")

	// 9. Bob signs his bid offline and a keyless relay submits it. The
	// relay never holds Bob's key; the signature alone authorizes the bid.
	fmt.Println("9. Submitting an Offline-Signed Bid via a Relay...")
	offline := signer.NewSigner(keys, domain)
	nonce, err := c.NextNonce(bob, typeddata.KindAuctionBid)
	if err != nil {
		log.Fatalf("Failed to fetch bob's nonce: %v", err)
	}
	bid := typeddata.PlaceBid{
		Bidder:    bob,
		AuctionID: common.HexToHash(auction.ID),
		Amount:    big.NewInt(200),
		Nonce:     nonce,
	}
	sig, err := offline.SignMessage(bob, bid)
	if err != nil {
		log.Fatalf("Failed to sign offline: %v", err)
	}
	relay := client.NewClient(baseURL)
	if err := relay.Submit(bid, sig); err != nil {
		log.Fatalf("Relay submission failed: %v", err)
	}
	fmt.Println("   Bob's relayed bid of 200 accepted")

	// 10. Wait out the auction and settle it
	fmt.Println("10. Finalizing...")
	time.Sleep(6 * time.Second)
	settled, err := c.Finalize(auction.ID)
	if err != nil {
		log.Fatalf("Failed to finalize: %v", err)
	}
	fmt.Printf("   Auction settled, winner %s at %s\n\n", settled.HighestBidder, settled.HighestBid)

	// 11. Alice withdraws her outbid refund
	fmt.Println("11. Withdrawing Refund...")
	refund, err := c.Withdraw(alice)
	if err != nil {
		log.Fatalf("Failed to withdraw: %v", err)
	}
	fmt.Printf("   Alice reclaimed %s tokens\n\n", refund)

	// 12. Review final state
	fmt.Println("12. Final State...")
	asset, err := c.Asset(assetID)
	if err != nil {
		log.Fatalf("Failed to fetch asset: %v", err)
	}
	sellerAcct, err := c.Account(seller)
	if err != nil {
		log.Fatalf("Failed to fetch seller account: %v", err)
	}
	fmt.Printf("   Asset %d now owned by %s\n", assetID, asset.Owner)
	fmt.Printf("   Seller balance: %s\n", sellerAcct.Balance)
}
