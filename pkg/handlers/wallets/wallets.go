package wallets

import (
	"context"
	"net/http"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/handlers/respond"
	"github.com/chris/funding-ledger/pkg/mapping"
	"github.com/chris/funding-ledger/pkg/wallet"
	"github.com/shopspring/decimal"
)

// TopUpper runs the top-up flow.
type TopUpper interface {
	TopUp(ctx context.Context, accountID string, amount decimal.Decimal, idempotencyKey string) (wallet.TopUpResult, error)
}

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Wallet TopUpper
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(w TopUpper) *WalletsHandler {
	return &WalletsHandler{Wallet: w}
}

// TopUp credits the wallet and its cashback. A cashback failure is reported in
// the body; the response is still 200 because the top-up committed.
func (h *WalletsHandler) TopUp(w http.ResponseWriter, r *http.Request, params api.TopUpParams) {
	var req api.TopUpRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	if req.AccountId == "" {
		respond.BadRequest(w, "account_id is required")
		return
	}

	key := ""
	if params.IdempotencyKey != nil {
		key = *params.IdempotencyKey
	}

	res, err := h.Wallet.TopUp(r.Context(), req.AccountId, req.Amount, key)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTopUpResponse(res))
}
