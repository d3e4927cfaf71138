package typeddata

import "fmt"

// OperationKind partitions the nonce space. Every signable request type
// belongs to exactly one kind, and each (account, kind) pair carries its
// own counter.
type OperationKind uint8

const (
	KindValueTransfer OperationKind = iota
	KindValueApprove
	KindAssetMint
	KindAssetTransfer
	KindAssetApprove
	KindAuctionCreate
	KindAuctionBid
)

var kindNames = map[OperationKind]string{
	KindValueTransfer: "VALUE_TRANSFER",
	KindValueApprove:  "VALUE_APPROVE",
	KindAssetMint:     "ASSET_MINT",
	KindAssetTransfer: "ASSET_TRANSFER",
	KindAssetApprove:  "ASSET_APPROVE",
	KindAuctionCreate: "AUCTION_CREATE",
	KindAuctionBid:    "AUCTION_BID",
}

// Kinds returns all operation kinds in declaration order.
func Kinds() []OperationKind {
	return []OperationKind{
		KindValueTransfer,
		KindValueApprove,
		KindAssetMint,
		KindAssetTransfer,
		KindAssetApprove,
		KindAuctionCreate,
		KindAuctionBid,
	}
}

func (k OperationKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OperationKind(%d)", uint8(k))
}

// ParseKind converts a wire name such as "AUCTION_BID" back to its kind.
func ParseKind(name string) (OperationKind, error) {
	for kind, kn := range kindNames {
		if kn == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown operation kind %q", name)
}
