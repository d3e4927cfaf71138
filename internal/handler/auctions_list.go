package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/internal/engine"
)

// ListAuctionsHandler lists auctions in creation order, optionally
// narrowed by seller, bidder or lifecycle state.
type ListAuctionsHandler struct {
	engine *engine.Engine
}

// NewListAuctionsHandler creates a new ListAuctionsHandler.
func NewListAuctionsHandler(e *engine.Engine) *ListAuctionsHandler {
	return &ListAuctionsHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *ListAuctionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	state := q.Get("state")
	switch state {
	case "", engine.StateOpen, engine.StateEnded, engine.StateSettled:
	default:
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	var list []engine.Auction
	switch {
	case q.Get("seller") != "":
		seller := q.Get("seller")
		if !common.IsHexAddress(seller) {
			http.Error(w, "Invalid seller address", http.StatusBadRequest)
			return
		}
		list = h.engine.SellerAuctions(common.HexToAddress(seller))
	case q.Get("bidder") != "":
		bidder := q.Get("bidder")
		if !common.IsHexAddress(bidder) {
			http.Error(w, "Invalid bidder address", http.StatusBadRequest)
			return
		}
		list, _ = h.engine.BidderAuctions(common.HexToAddress(bidder))
	default:
		list = h.engine.Auctions()
	}

	now := h.engine.Now()
	resp := make([]AuctionResponse, 0, len(list))
	for _, a := range list {
		if state != "" && a.State(now) != state {
			continue
		}
		resp = append(resp, auctionResponse(a, now))
	}
	writeJSON(w, http.StatusOK, resp)
}
