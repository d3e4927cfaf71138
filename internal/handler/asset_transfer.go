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

// TransferAssetHandler handles signed asset transfers.
type TransferAssetHandler struct {
	engine *engine.Engine
}

// NewTransferAssetHandler creates a new TransferAssetHandler.
func NewTransferAssetHandler(e *engine.Engine) *TransferAssetHandler {
	return &TransferAssetHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *TransferAssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TransferAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.From) {
		http.Error(w, "Invalid from address", http.StatusBadRequest)
		return
	}
	if !common.IsHexAddress(req.To) {
		http.Error(w, "Invalid to address", http.StatusBadRequest)
		return
	}
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		http.Error(w, "Invalid signature encoding", http.StatusBadRequest)
		return
	}

	err = h.engine.TransferAsset(typeddata.TransferAsset{
		From:    common.HexToAddress(req.From),
		To:      common.HexToAddress(req.To),
		AssetID: req.AssetID,
		Nonce:   req.Nonce,
	}, sig)
	metrics.ObserveOperation("asset.transfer", err)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
