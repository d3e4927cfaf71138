package handler

import (
	"net/http"
	"strconv"

	"github.com/xueqianLu/auctionhouse/internal/engine"
)

// GetAssetHandler serves one registered asset by id, including the ids
// of every auction it has been listed in.
type GetAssetHandler struct {
	engine *engine.Engine
}

// NewGetAssetHandler creates a new GetAssetHandler.
func NewGetAssetHandler(e *engine.Engine) *GetAssetHandler {
	return &GetAssetHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *GetAssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid asset id", http.StatusBadRequest)
		return
	}

	owner, uri, approved, err := h.engine.Asset(id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := AssetResponse{
		AssetID:  id,
		Owner:    owner.Hex(),
		AssetURI: uri,
		Auctions: make([]string, 0),
	}
	if approved != nil {
		operator := approved.Hex()
		resp.Approved = &operator
	}
	for _, auctionID := range h.engine.AssetAuctions(id) {
		resp.Auctions = append(resp.Auctions, auctionID.Hex())
	}
	writeJSON(w, http.StatusOK, resp)
}
