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

// PlaceBidHandler handles signed bids on one auction.
type PlaceBidHandler struct {
	engine *engine.Engine
}

// NewPlaceBidHandler creates a new PlaceBidHandler.
func NewPlaceBidHandler(e *engine.Engine) *PlaceBidHandler {
	return &PlaceBidHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *PlaceBidHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idBytes, err := hexutil.Decode(r.PathValue("id"))
	if err != nil || len(idBytes) != common.HashLength {
		http.Error(w, "Invalid auction id", http.StatusBadRequest)
		return
	}

	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.Bidder) {
		http.Error(w, "Invalid bidder address", http.StatusBadRequest)
		return
	}
	if req.Amount == nil {
		http.Error(w, "Amount is required", http.StatusBadRequest)
		return
	}
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		http.Error(w, "Invalid signature encoding", http.StatusBadRequest)
		return
	}

	auction, err := h.engine.PlaceBid(typeddata.PlaceBid{
		Bidder:    common.HexToAddress(req.Bidder),
		AuctionID: common.BytesToHash(idBytes),
		Amount:    req.Amount,
		Nonce:     req.Nonce,
	}, sig)
	metrics.ObserveOperation("auction.bid", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, auctionResponse(auction, h.engine.Now()))
}
