package typeddata

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Canonical EIP-712 type strings. Changing a single character here
// invalidates every signature of that kind, so treat them as frozen.
var (
	transferValueTypeHash = crypto.Keccak256Hash([]byte("TransferValue(address from,address to,uint256 amount,uint256 nonce)"))
	approveValueTypeHash  = crypto.Keccak256Hash([]byte("ApproveValue(address owner,address spender,uint256 amount,uint256 nonce)"))
	mintAssetTypeHash     = crypto.Keccak256Hash([]byte("MintAsset(address creator,uint256 assetId,string assetURI,uint256 nonce)"))
	transferAssetTypeHash = crypto.Keccak256Hash([]byte("TransferAsset(address from,address to,uint256 assetId,uint256 nonce)"))
	approveAssetTypeHash  = crypto.Keccak256Hash([]byte("ApproveAsset(address owner,address operator,uint256 assetId,uint256 nonce)"))
	createAuctionTypeHash = crypto.Keccak256Hash([]byte("CreateAuction(address seller,uint256 assetId,uint256 startPrice,uint256 endTime,uint256 nonce)"))
	placeBidTypeHash      = crypto.Keccak256Hash([]byte("PlaceBid(address bidder,bytes32 auctionId,uint256 amount,uint256 nonce)"))
)

// Message is any request a principal can sign. Account is the principal the
// message claims is acting; verification fails unless the recovered signer
// equals it. AuthNonce is the (account, kind) counter value the signer
// observed when the message was built.
type Message interface {
	Kind() OperationKind
	Account() common.Address
	AuthNonce() uint64
	StructHash() common.Hash
}

// TransferValue moves Amount from the signer's balance to To.
type TransferValue struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
	Nonce  uint64
}

func (m TransferValue) Kind() OperationKind     { return KindValueTransfer }
func (m TransferValue) Account() common.Address { return m.From }
func (m TransferValue) AuthNonce() uint64       { return m.Nonce }

func (m TransferValue) StructHash() common.Hash {
	return crypto.Keccak256Hash(
		transferValueTypeHash.Bytes(),
		encodeAddress(m.From),
		encodeAddress(m.To),
		encodeBig(m.Amount),
		encodeUint64(m.Nonce),
	)
}

// ApproveValue lets Spender pull up to Amount from the signer's balance.
type ApproveValue struct {
	Owner   common.Address
	Spender common.Address
	Amount  *big.Int
	Nonce   uint64
}

func (m ApproveValue) Kind() OperationKind     { return KindValueApprove }
func (m ApproveValue) Account() common.Address { return m.Owner }
func (m ApproveValue) AuthNonce() uint64       { return m.Nonce }

func (m ApproveValue) StructHash() common.Hash {
	return crypto.Keccak256Hash(
		approveValueTypeHash.Bytes(),
		encodeAddress(m.Owner),
		encodeAddress(m.Spender),
		encodeBig(m.Amount),
		encodeUint64(m.Nonce),
	)
}

// MintAsset registers a new asset owned by the signer.
type MintAsset struct {
	Creator  common.Address
	AssetID  uint64
	AssetURI string
	Nonce    uint64
}

func (m MintAsset) Kind() OperationKind     { return KindAssetMint }
func (m MintAsset) Account() common.Address { return m.Creator }
func (m MintAsset) AuthNonce() uint64       { return m.Nonce }

func (m MintAsset) StructHash() common.Hash {
	return crypto.Keccak256Hash(
		mintAssetTypeHash.Bytes(),
		encodeAddress(m.Creator),
		encodeUint64(m.AssetID),
		encodeString(m.AssetURI),
		encodeUint64(m.Nonce),
	)
}

// TransferAsset moves an asset the signer owns to To.
type TransferAsset struct {
	From    common.Address
	To      common.Address
	AssetID uint64
	Nonce   uint64
}

func (m TransferAsset) Kind() OperationKind     { return KindAssetTransfer }
func (m TransferAsset) Account() common.Address { return m.From }
func (m TransferAsset) AuthNonce() uint64       { return m.Nonce }

func (m TransferAsset) StructHash() common.Hash {
	return crypto.Keccak256Hash(
		transferAssetTypeHash.Bytes(),
		encodeAddress(m.From),
		encodeAddress(m.To),
		encodeUint64(m.AssetID),
		encodeUint64(m.Nonce),
	)
}

// ApproveAsset lets Operator take custody of one asset the signer owns.
type ApproveAsset struct {
	Owner    common.Address
	Operator common.Address
	AssetID  uint64
	Nonce    uint64
}

func (m ApproveAsset) Kind() OperationKind     { return KindAssetApprove }
func (m ApproveAsset) Account() common.Address { return m.Owner }
func (m ApproveAsset) AuthNonce() uint64       { return m.Nonce }

func (m ApproveAsset) StructHash() common.Hash {
	return crypto.Keccak256Hash(
		approveAssetTypeHash.Bytes(),
		encodeAddress(m.Owner),
		encodeAddress(m.Operator),
		encodeUint64(m.AssetID),
		encodeUint64(m.Nonce),
	)
}

// CreateAuction opens an English auction for one asset the signer owns.
// EndTime is an absolute unix timestamp in seconds.
type CreateAuction struct {
	Seller     common.Address
	AssetID    uint64
	StartPrice *big.Int
	EndTime    uint64
	Nonce      uint64
}

func (m CreateAuction) Kind() OperationKind     { return KindAuctionCreate }
func (m CreateAuction) Account() common.Address { return m.Seller }
func (m CreateAuction) AuthNonce() uint64       { return m.Nonce }

func (m CreateAuction) StructHash() common.Hash {
	return crypto.Keccak256Hash(
		createAuctionTypeHash.Bytes(),
		encodeAddress(m.Seller),
		encodeUint64(m.AssetID),
		encodeBig(m.StartPrice),
		encodeUint64(m.EndTime),
		encodeUint64(m.Nonce),
	)
}

// PlaceBid bids Amount of value on a running auction.
type PlaceBid struct {
	Bidder    common.Address
	AuctionID common.Hash
	Amount    *big.Int
	Nonce     uint64
}

func (m PlaceBid) Kind() OperationKind     { return KindAuctionBid }
func (m PlaceBid) Account() common.Address { return m.Bidder }
func (m PlaceBid) AuthNonce() uint64       { return m.Nonce }

func (m PlaceBid) StructHash() common.Hash {
	return crypto.Keccak256Hash(
		placeBidTypeHash.Bytes(),
		encodeAddress(m.Bidder),
		m.AuctionID.Bytes(),
		encodeBig(m.Amount),
		encodeUint64(m.Nonce),
	)
}
