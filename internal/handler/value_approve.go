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

// ApproveValueHandler handles signed allowance grants. Approving zero
// revokes the allowance.
type ApproveValueHandler struct {
	engine *engine.Engine
}

// NewApproveValueHandler creates a new ApproveValueHandler.
func NewApproveValueHandler(e *engine.Engine) *ApproveValueHandler {
	return &ApproveValueHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *ApproveValueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ApproveValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.Owner) {
		http.Error(w, "Invalid owner address", http.StatusBadRequest)
		return
	}
	if !common.IsHexAddress(req.Spender) {
		http.Error(w, "Invalid spender address", http.StatusBadRequest)
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

	err = h.engine.ApproveValue(typeddata.ApproveValue{
		Owner:   common.HexToAddress(req.Owner),
		Spender: common.HexToAddress(req.Spender),
		Amount:  req.Amount,
		Nonce:   req.Nonce,
	}, sig)
	metrics.ObserveOperation("value.approve", err)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
