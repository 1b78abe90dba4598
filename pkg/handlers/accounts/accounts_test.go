package accounts_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/handlers/accounts"
	handlermocks "github.com/chris/funding-ledger/pkg/handlers/mocks"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/chris/funding-ledger/pkg/storage/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(raw))
}

func strPtr(s string) *string { return &s }

func TestCreateAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("CreateAccount", mock.Anything, mock.MatchedBy(func(a *models.Account) bool {
			return a.ID == "acc-1" && len(a.ReferralCode) == 8
		})).Return(&models.Account{ID: "acc-1", ReferralCode: "ABCD1234"}, nil)

		h := accounts.NewAccountsHandler(mockStorage, nil)
		rr := httptest.NewRecorder()
		h.CreateAccount(rr, post(t, api.NewAccount{Id: strPtr("acc-1")}))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got api.Account
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "acc-1", got.Id)
		assert.True(t, got.Balance.IsZero())
		mockStorage.AssertExpectations(t)
	})

	t.Run("Referral code credits referrer", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccountByReferralCode", mock.Anything, "REF00001").Return(&models.Account{ID: "referrer"}, nil)
		mockStorage.On("CreateAccount", mock.Anything, mock.Anything).Return(&models.Account{ID: "new"}, nil)
		referrals := handlermocks.NewReferrals(t)
		referrals.On("GrantReferralBonus", mock.Anything, "referrer", "new").
			Return(&models.TransactionRecord{ID: "bonus", Amount: decimal.NewFromInt(1000)}, nil).Once()

		h := accounts.NewAccountsHandler(mockStorage, referrals)
		rr := httptest.NewRecorder()
		h.CreateAccount(rr, post(t, api.NewAccount{Id: strPtr("new"), ReferralCode: strPtr("REF00001")}))

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Bonus failure does not fail registration", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccountByReferralCode", mock.Anything, "REF00001").Return(&models.Account{ID: "referrer"}, nil)
		mockStorage.On("CreateAccount", mock.Anything, mock.Anything).Return(&models.Account{ID: "new"}, nil)
		referrals := handlermocks.NewReferrals(t)
		referrals.On("GrantReferralBonus", mock.Anything, "referrer", "new").Return(nil, errors.New("timeout")).Once()

		h := accounts.NewAccountsHandler(mockStorage, referrals)
		rr := httptest.NewRecorder()
		h.CreateAccount(rr, post(t, api.NewAccount{ReferralCode: strPtr("REF00001")}))

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Unknown referral code", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccountByReferralCode", mock.Anything, "NOPE").
			Return(nil, fmt.Errorf("%w: NOPE", storage.ErrAccountNotFound))

		h := accounts.NewAccountsHandler(mockStorage, nil)
		rr := httptest.NewRecorder()
		h.CreateAccount(rr, post(t, api.NewAccount{ReferralCode: strPtr("NOPE")}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockStorage.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("Already exists", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("CreateAccount", mock.Anything, mock.Anything).Return(nil, storage.ErrAccountExists)

		h := accounts.NewAccountsHandler(mockStorage, nil)
		rr := httptest.NewRecorder()
		h.CreateAccount(rr, post(t, api.NewAccount{Id: strPtr("dup")}))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Invalid body", func(t *testing.T) {
		h := accounts.NewAccountsHandler(new(mocks.Storage), nil)
		rr := httptest.NewRecorder()
		h.CreateAccount(rr, httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "acc").
			Return(&models.Account{ID: "acc", Balance: decimal.RequireFromString("50500")}, nil)

		h := accounts.NewAccountsHandler(mockStorage, nil)
		rr := httptest.NewRecorder()
		h.GetAccount(rr, httptest.NewRequest(http.MethodGet, "/accounts/acc", nil), "acc")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got api.Account
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "50500", got.Balance.String())
	})

	t.Run("Not Found", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "ghost").Return(nil, storage.ErrAccountNotFound)

		h := accounts.NewAccountsHandler(mockStorage, nil)
		rr := httptest.NewRecorder()
		h.GetAccount(rr, httptest.NewRequest(http.MethodGet, "/accounts/ghost", nil), "ghost")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
