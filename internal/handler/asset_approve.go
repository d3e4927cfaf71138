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

// ApproveAssetHandler handles signed custody approvals. Approving the
// zero address clears the approval.
type ApproveAssetHandler struct {
	engine *engine.Engine
}

// NewApproveAssetHandler creates a new ApproveAssetHandler.
func NewApproveAssetHandler(e *engine.Engine) *ApproveAssetHandler {
	return &ApproveAssetHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *ApproveAssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ApproveAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.Owner) {
		http.Error(w, "Invalid owner address", http.StatusBadRequest)
		return
	}
	if !common.IsHexAddress(req.Operator) {
		http.Error(w, "Invalid operator address", http.StatusBadRequest)
		return
	}
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		http.Error(w, "Invalid signature encoding", http.StatusBadRequest)
		return
	}

	err = h.engine.ApproveAsset(typeddata.ApproveAsset{
		Owner:    common.HexToAddress(req.Owner),
		Operator: common.HexToAddress(req.Operator),
		AssetID:  req.AssetID,
		Nonce:    req.Nonce,
	}, sig)
	metrics.ObserveOperation("asset.approve", err)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
