package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/internal/engine"
	"github.com/xueqianLu/auctionhouse/internal/metrics"
)

// WithdrawHandler pays out an account's pending refunds.
type WithdrawHandler struct {
	engine *engine.Engine
}

// NewWithdrawHandler creates a new WithdrawHandler.
func NewWithdrawHandler(e *engine.Engine) *WithdrawHandler {
	return &WithdrawHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *WithdrawHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.Account) {
		http.Error(w, "Invalid account address", http.StatusBadRequest)
		return
	}

	account := common.HexToAddress(req.Account)
	amount, err := h.engine.Withdraw(account)
	metrics.ObserveOperation("withdraw", err)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WithdrawResponse{
		Account: account.Hex(),
		Amount:  amount,
	})
}
