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

// TransferValueHandler handles signed value transfers.
type TransferValueHandler struct {
	engine *engine.Engine
}

// NewTransferValueHandler creates a new TransferValueHandler.
func NewTransferValueHandler(e *engine.Engine) *TransferValueHandler {
	return &TransferValueHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *TransferValueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TransferValueRequest
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
	if req.Amount == nil {
		http.Error(w, "Amount is required", http.StatusBadRequest)
		return
	}
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		http.Error(w, "Invalid signature encoding", http.StatusBadRequest)
		return
	}

	err = h.engine.TransferValue(typeddata.TransferValue{
		From:   common.HexToAddress(req.From),
		To:     common.HexToAddress(req.To),
		Amount: req.Amount,
		Nonce:  req.Nonce,
	}, sig)
	metrics.ObserveOperation("value.transfer", err)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
