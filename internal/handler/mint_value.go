package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/internal/engine"
	"github.com/xueqianLu/auctionhouse/internal/metrics"
)

// MintValueHandler issues value tokens to an account. It must be mounted
// behind the admin auth middleware.
type MintValueHandler struct {
	engine *engine.Engine
}

// NewMintValueHandler creates a new MintValueHandler.
func NewMintValueHandler(e *engine.Engine) *MintValueHandler {
	return &MintValueHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *MintValueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MintValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.To) {
		http.Error(w, "Invalid to address", http.StatusBadRequest)
		return
	}
	if req.Amount == nil {
		http.Error(w, "Amount is required", http.StatusBadRequest)
		return
	}

	err := h.engine.MintValue(common.HexToAddress(req.To), req.Amount)
	metrics.ObserveOperation("value.mint", err)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
