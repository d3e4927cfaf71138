// Package client provides a typed HTTP client for the auction house
// service. With a KeyManager attached it signs operations itself; without
// one it can still submit signatures produced elsewhere.
package client

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/pkg/signer"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

const (
	apiKeyHeader    = "X-API-Key"
	signatureHeader = "X-Signature"
	timestampHeader = "X-Timestamp"
)

// Client is a client for the auction house service.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	keys       signer.KeyManager
	httpClient *http.Client

	mu     sync.Mutex
	domain *typeddata.Domain
}

// Option configures a Client.
type Option func(*Client)

// WithAdminCredentials enables the authenticated admin endpoints.
func WithAdminCredentials(apiKey, apiSecret string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
		c.apiSecret = apiSecret
	}
}

// WithKeyManager lets the client sign operations with locally managed
// keys.
func WithKeyManager(keys signer.KeyManager) Option {
	return func(c *Client) { c.keys = keys }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a new auction house client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auction house returned status %d: %s", e.StatusCode, e.Message)
}

// Health checks the health of the service.
func (c *Client) Health() (string, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("service returned non-OK status: %s, body: %s", resp.Status, string(body))
	}

	return string(body), nil
}

// Domain returns the signature scoping parameters of the service, fetched
// once and cached for the client's lifetime.
func (c *Client) Domain() (typeddata.Domain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.domain != nil {
		return *c.domain, nil
	}

	var resp DomainInfo
	if err := c.doRequest(http.MethodGet, "/v1/domain", nil, &resp); err != nil {
		return typeddata.Domain{}, err
	}
	d := typeddata.Domain{
		Name:              resp.Name,
		Version:           resp.Version,
		ChainID:           new(big.Int).SetUint64(resp.ChainID),
		VerifyingContract: common.HexToAddress(resp.InstanceAddress),
	}
	c.domain = &d
	return d, nil
}

func (c *Client) doRequest(method, path string, data, result interface{}) error {
	var reqBody []byte
	var err error

	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		req.Header.Set(apiKeyHeader, c.apiKey)
		req.Header.Set(timestampHeader, timestamp)
		req.Header.Set(signatureHeader, c.calculateSignature(timestamp, reqBody))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &body); err == nil && body.Error != "" {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func (c *Client) calculateSignature(timestamp string, body []byte) string {
	payload := timestamp + string(body)
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
