package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xueqianLu/auctionhouse/internal/assets"
	"github.com/xueqianLu/auctionhouse/internal/engine"
	"github.com/xueqianLu/auctionhouse/internal/gate"
	"github.com/xueqianLu/auctionhouse/internal/ledger"
	"github.com/xueqianLu/auctionhouse/internal/nonce"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

// statusFor maps engine errors onto HTTP status codes. Authorization
// failures are 401, unknown entities 404, malformed values 400 and
// state conflicts 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, typeddata.ErrInvalidSignature),
		errors.Is(err, gate.ErrUnauthorizedSigner),
		errors.Is(err, nonce.ErrMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrAuctionNotFound),
		errors.Is(err, assets.ErrUnknownAsset):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, engine.ErrEndTimeInPast),
		errors.Is(err, engine.ErrEndTimeTooFar):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrAuctionSettled),
		errors.Is(err, engine.ErrAuctionAlreadySettled),
		errors.Is(err, engine.ErrAuctionNotEnded),
		errors.Is(err, engine.ErrAuctionEnded),
		errors.Is(err, engine.ErrAssetAlreadyAuctioned),
		errors.Is(err, engine.ErrNotApprovedForCustody),
		errors.Is(err, engine.ErrNothingToWithdraw),
		errors.Is(err, engine.ErrBidTooLow),
		errors.Is(err, assets.ErrAssetExists),
		errors.Is(err, assets.ErrNotOwner),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports a failed operation as JSON.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
