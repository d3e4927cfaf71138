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

// MintAssetHandler handles signed asset mints.
type MintAssetHandler struct {
	engine *engine.Engine
}

// NewMintAssetHandler creates a new MintAssetHandler.
func NewMintAssetHandler(e *engine.Engine) *MintAssetHandler {
	return &MintAssetHandler{engine: e}
}

// ServeHTTP implements the http.Handler interface.
func (h *MintAssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MintAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !common.IsHexAddress(req.Creator) {
		http.Error(w, "Invalid creator address", http.StatusBadRequest)
		return
	}
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		http.Error(w, "Invalid signature encoding", http.StatusBadRequest)
		return
	}

	err = h.engine.MintAsset(typeddata.MintAsset{
		Creator:  common.HexToAddress(req.Creator),
		AssetID:  req.AssetID,
		AssetURI: req.AssetURI,
		Nonce:    req.Nonce,
	}, sig)
	metrics.ObserveOperation("asset.mint", err)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
