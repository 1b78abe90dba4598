package ledger

import (
	"context"
	"net/http"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/handlers/respond"
	"github.com/chris/funding-ledger/pkg/mapping"
	"github.com/chris/funding-ledger/pkg/models"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const defaultLimit = int32(20)

// LedgerReader is the read side of the coordinator.
type LedgerReader interface {
	Transaction(ctx context.Context, id string) (*models.TransactionRecord, error)
	History(ctx context.Context, accountID string, limit int32) ([]models.TransactionRecord, error)
}

// LedgerHandler holds the dependencies for ledger-related handlers.
type LedgerHandler struct {
	Ledger LedgerReader
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerReader) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger}
}

// ListAccountTransactions returns the most recent records of an account, oldest first.
func (h *LedgerHandler) ListAccountTransactions(w http.ResponseWriter, r *http.Request, accountId string, params api.ListAccountTransactionsParams) {
	limit := defaultLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 0 {
		respond.BadRequest(w, "limit must not be negative")
		return
	}

	records, err := h.Ledger.History(r.Context(), accountId, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	apiRecords := make([]*api.Transaction, len(records))
	for i := range records {
		apiRecords[i] = mapping.ToApiTransaction(&records[i])
	}
	respond.JSON(w, http.StatusOK, apiRecords)
}

// GetTransactionById returns a record with its effective status.
func (h *LedgerHandler) GetTransactionById(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	rec, err := h.Ledger.Transaction(r.Context(), transactionId.String())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTransaction(rec))
}
