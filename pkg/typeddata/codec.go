// Package typeddata hashes and signs the typed requests accepted by the
// auction house. It follows the EIP-712 scheme: a domain separator keyed by
// deployment, a type hash per request kind, and a final digest of
// 0x19 0x01 || separator || structHash signed with secp256k1.
package typeddata

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignature covers malformed bytes as well as signatures that do
// not recover to any public key.
var ErrInvalidSignature = errors.New("invalid signature")

// SignatureLength is the expected r || s || v encoding length.
const SignatureLength = 65

// Digest returns the bytes a principal actually signs for msg under d.
func Digest(d Domain, msg Message) common.Hash {
	sep := d.Separator()
	structHash := msg.StructHash()
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, sep.Bytes(), structHash.Bytes())
}

// Sign produces a 65-byte r || s || v signature over digest with v in
// {27, 28}.
func Sign(digest common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// RecoverSigner returns the address whose key produced sig over digest.
// Both v in {0, 1} and v in {27, 28} are accepted.
func RecoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(sig))
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d out of range", ErrInvalidSignature, sig[64])
	}

	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	normalized[64] = v

	pub, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Field values are hashed as 32-byte words. Numeric fields are unsigned and
// below 2^256; callers validate range before hashing.

func encodeAddress(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

func encodeBig(n *big.Int) []byte {
	if n == nil {
		n = new(big.Int)
	}
	return common.LeftPadBytes(n.Bytes(), 32)
}

func encodeUint64(n uint64) []byte {
	return encodeBig(new(big.Int).SetUint64(n))
}

func encodeString(s string) []byte {
	return crypto.Keccak256([]byte(s))
}
