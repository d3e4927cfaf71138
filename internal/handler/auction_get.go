package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/xueqianLu/auctionhouse/internal/engine"
)

// GetAuctionHandler serves one auction by id.
type GetAuctionHandler struct {
	engine *engine.Engine
}

// NewGetAuctionHandler creates a new GetAuctionHandler.
func NewGetAuctionHandler(e *engine.Engine) *GetAuctionHandler {
	return &GetAuctionHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *GetAuctionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idBytes, err := hexutil.Decode(r.PathValue("id"))
	if err != nil || len(idBytes) != common.HashLength {
		http.Error(w, "Invalid auction id", http.StatusBadRequest)
		return
	}

	auction, err := h.engine.Auction(common.BytesToHash(idBytes))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, auctionResponse(auction, h.engine.Now()))
}
