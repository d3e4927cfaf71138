package handler

import (
	"net/http"

	"github.com/xueqianLu/auctionhouse/internal/engine"
)

// DomainHandler publishes the signature scoping parameters. Clients need
// these before they can produce a signature this instance will accept.
type DomainHandler struct {
	engine *engine.Engine
}

// NewDomainHandler creates a new DomainHandler.
func NewDomainHandler(e *engine.Engine) *DomainHandler {
	return &DomainHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *DomainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	domain := h.engine.Domain()
	writeJSON(w, http.StatusOK, DomainResponse{
		Name:            domain.Name,
		Version:         domain.Version,
		ChainID:         domain.ChainID.Uint64(),
		InstanceAddress: domain.VerifyingContract.Hex(),
		Separator:       domain.Separator().Hex(),
	})
}
