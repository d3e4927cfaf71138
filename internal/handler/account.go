package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xueqianLu/auctionhouse/internal/engine"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// AccountHandler aggregates an address's balance, pending refunds, next
// nonces per operation kind and owned assets.
type AccountHandler struct {
	engine *engine.Engine
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(e *engine.Engine) *AccountHandler {
	return &AccountHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *AccountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	address := r.PathValue("address")
	if !common.IsHexAddress(address) {
		http.Error(w, "Invalid account address", http.StatusBadRequest)
		return
	}
	account := common.HexToAddress(address)

	nonces := make(map[string]uint64, len(typeddata.Kinds()))
	for _, kind := range typeddata.Kinds() {
		nonces[kind.String()] = h.engine.Nonce(account, kind)
	}

	writeJSON(w, http.StatusOK, AccountResponse{
		Address:           account.Hex(),
		Balance:           h.engine.BalanceOf(account),
		PendingWithdrawal: h.engine.PendingWithdrawal(account),
		Nonces:            nonces,
		Assets:            h.engine.AccountAssets(account),
	})
}
