package wallets_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/handlers/mocks"
	"github.com/chris/funding-ledger/pkg/handlers/wallets"
	"github.com/chris/funding-ledger/pkg/wallet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func topUpRequest(t *testing.T, accountID, amount string) *http.Request {
	t.Helper()
	body := fmt.Sprintf(`{"account_id": %q, "amount": %q}`, accountID, amount)
	return httptest.NewRequest(http.MethodPost, "/wallet/topup", bytes.NewBufferString(body))
}

func TestTopUp(t *testing.T) {
	key := "req-1"

	t.Run("Success", func(t *testing.T) {
		w := mocks.NewTopUpper(t)
		w.On("TopUp", mock.Anything, "acc", decimal.RequireFromString("50000"), "req-1").Return(wallet.TopUpResult{
			Balance:               decimal.RequireFromString("50500"),
			CashbackApplied:       true,
			TopUpTransactionID:    "top",
			CashbackTransactionID: "cb",
		}, nil).Once()

		h := wallets.NewWalletsHandler(w)
		rr := httptest.NewRecorder()
		h.TopUp(rr, topUpRequest(t, "acc", "50000"), api.TopUpParams{IdempotencyKey: &key})

		assert.Equal(t, http.StatusOK, rr.Code)
		var got api.TopUpResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "50500", got.Balance.String())
		assert.True(t, got.CashbackApplied)
		require.NotNil(t, got.CashbackTransactionId)
		assert.Equal(t, "cb", *got.CashbackTransactionId)
	})

	t.Run("Cashback failure is still a success", func(t *testing.T) {
		w := mocks.NewTopUpper(t)
		w.On("TopUp", mock.Anything, "acc", mock.Anything, "").Return(wallet.TopUpResult{
			Balance:            decimal.NewFromInt(100),
			TopUpTransactionID: "top",
			CashbackErr:        coordinator.ErrTimeout,
		}, nil).Once()

		h := wallets.NewWalletsHandler(w)
		rr := httptest.NewRecorder()
		h.TopUp(rr, topUpRequest(t, "acc", "100"), api.TopUpParams{})

		assert.Equal(t, http.StatusOK, rr.Code)
		var got api.TopUpResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.False(t, got.CashbackApplied)
		assert.NotNil(t, got.CashbackError)
	})

	errCases := []struct {
		name   string
		err    error
		status int
	}{
		{"Invalid amount", fmt.Errorf("%w: must be positive", coordinator.ErrInvalidAmount), http.StatusBadRequest},
		{"Timeout", coordinator.ErrTimeout, http.StatusConflict},
		{"Unknown account", fmt.Errorf("%w: acc", coordinator.ErrNotFound), http.StatusNotFound},
		{"Storage unavailable", coordinator.ErrStorageUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			w := mocks.NewTopUpper(t)
			w.On("TopUp", mock.Anything, "acc", mock.Anything, mock.Anything).Return(wallet.TopUpResult{}, tc.err).Once()

			h := wallets.NewWalletsHandler(w)
			rr := httptest.NewRecorder()
			h.TopUp(rr, topUpRequest(t, "acc", "-5"), api.TopUpParams{})

			assert.Equal(t, tc.status, rr.Code)
		})
	}

	t.Run("Missing account", func(t *testing.T) {
		h := wallets.NewWalletsHandler(mocks.NewTopUpper(t))
		rr := httptest.NewRecorder()
		h.TopUp(rr, topUpRequest(t, "", "5"), api.TopUpParams{})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
