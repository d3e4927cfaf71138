package signer

import (
	"crypto/ecdsa"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// LocalKeyManager manages keys stored encrypted on local disk.
type LocalKeyManager struct {
	keyDir   string
	password string
	keys     map[common.Address]*ecdsa.PrivateKey
	mu       sync.RWMutex
}

// NewLocalKeyManager creates a new LocalKeyManager and loads existing keys from disk.
func NewLocalKeyManager(keyDir, password string) (*LocalKeyManager, error) {
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	km := &LocalKeyManager{
		keyDir:   keyDir,
		password: password,
		keys:     make(map[common.Address]*ecdsa.PrivateKey),
	}

	files, err := os.ReadDir(keyDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read key directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		keyJson, err := os.ReadFile(filepath.Join(keyDir, file.Name()))
		if err != nil {
			log.Printf("Warning: failed to read key file %s: %v", file.Name(), err)
			continue
		}
		key, err := keystore.DecryptKey(keyJson, password)
		if err != nil {
			log.Printf("Warning: failed to decrypt key file %s: %v", file.Name(), err)
			continue
		}
		km.keys[key.Address] = key.PrivateKey
	}

	return km, nil
}

// CreateKey generates a new key pair and saves it to disk encrypted.
func (km *LocalKeyManager) CreateKey() (common.Address, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to generate private key: %w", err)
	}
	return km.store(privateKey)
}

// ImportKey adds an existing hex-encoded private key to the keystore.
func (km *LocalKeyManager) ImportKey(hexKey string) (common.Address, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid private key: %w", err)
	}
	return km.store(privateKey)
}

func (km *LocalKeyManager) store(privateKey *ecdsa.PrivateKey) (common.Address, error) {
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	keyStruct := &keystore.Key{
		Address:    address,
		PrivateKey: privateKey,
	}
	keyJson, err := keystore.EncryptKey(keyStruct, km.password, keystore.StandardScryptN, keystore.StandardScryptP)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to encrypt private key: %w", err)
	}
	filePath := filepath.Join(km.keyDir, address.Hex()+".json")
	if err := os.WriteFile(filePath, keyJson, 0600); err != nil {
		return common.Address{}, fmt.Errorf("failed to save encrypted key: %w", err)
	}

	km.mu.Lock()
	defer km.mu.Unlock()
	km.keys[address] = privateKey

	return address, nil
}

// GetAccounts returns all managed account addresses.
func (km *LocalKeyManager) GetAccounts() []common.Address {
	km.mu.RLock()
	defer km.mu.RUnlock()

	var addresses []common.Address
	for addr := range km.keys {
		addresses = append(addresses, addr)
	}
	return addresses
}

// SignDigest signs a digest using a locally stored private key.
func (km *LocalKeyManager) SignDigest(address common.Address, digest common.Hash) ([]byte, error) {
	km.mu.RLock()
	privateKey, ok := km.keys[address]
	km.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("account not found: %s", address.Hex())
	}

	return typeddata.Sign(digest, privateKey)
}
