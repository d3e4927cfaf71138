package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/xueqianLu/auctionhouse/internal/engine"
	"github.com/xueqianLu/auctionhouse/internal/metrics"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// CreateAuctionHandler handles signed auction listings.
type CreateAuctionHandler struct {
	engine *engine.Engine
}

// NewCreateAuctionHandler creates a new CreateAuctionHandler.
func NewCreateAuctionHandler(e *engine.Engine) *CreateAuctionHandler {
	return &CreateAuctionHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *CreateAuctionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.Seller) {
		http.Error(w, "Invalid seller address", http.StatusBadRequest)
		return
	}
	if req.StartPrice == nil {
		http.Error(w, "Start price is required", http.StatusBadRequest)
		return
	}
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		http.Error(w, "Invalid signature encoding", http.StatusBadRequest)
		return
	}

	auction, err := h.engine.CreateAuction(typeddata.CreateAuction{
		Seller:     common.HexToAddress(req.Seller),
		AssetID:    req.AssetID,
		StartPrice: req.StartPrice,
		EndTime:    req.EndTime,
		Nonce:      req.Nonce,
	}, sig)
	metrics.ObserveOperation("auction.create", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, auctionResponse(auction, h.engine.Now()))
}
