package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/xueqianLu/auctionhouse/internal/engine"
	"github.com/xueqianLu/auctionhouse/internal/metrics"
)

// FinalizeAuctionHandler settles an ended auction. Anyone may call it;
// the outcome is fixed by the auction itself.
type FinalizeAuctionHandler struct {
	engine *engine.Engine
}

// NewFinalizeAuctionHandler creates a new FinalizeAuctionHandler.
func NewFinalizeAuctionHandler(e *engine.Engine) *FinalizeAuctionHandler {
	return &FinalizeAuctionHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *FinalizeAuctionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idBytes, err := hexutil.Decode(r.PathValue("id"))
	if err != nil || len(idBytes) != common.HashLength {
		http.Error(w, "Invalid auction id", http.StatusBadRequest)
		return
	}

	auction, err := h.engine.Finalize(common.BytesToHash(idBytes))
	metrics.ObserveOperation("auction.finalize", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, auctionResponse(auction, h.engine.Now()))
}
