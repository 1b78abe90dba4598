package accounts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/handlers/respond"
	"github.com/chris/funding-ledger/pkg/mapping"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/google/uuid"
)

// Referrals grants the referral bonus on registration.
type Referrals interface {
	GrantReferralBonus(ctx context.Context, referrerID, referredID string) (*models.TransactionRecord, error)
}

// AccountsHandler holds the dependencies for account-related handlers.
type AccountsHandler struct {
	Store     storage.AccountStore
	Referrals Referrals
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(store storage.AccountStore, referrals Referrals) *AccountsHandler {
	return &AccountsHandler{Store: store, Referrals: referrals}
}

// NewReferralCode returns a short code new accounts hand out to others.
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreateAccount registers an account with a zero balance. A valid referral
// code credits the referrer; an unknown code rejects the registration.
func (h *AccountsHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var newAccount api.NewAccount
	if err := respond.DecodeJSON(r, &newAccount); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var referrer *models.Account
	if newAccount.ReferralCode != nil && *newAccount.ReferralCode != "" {
		acc, err := h.Store.GetAccountByReferralCode(r.Context(), *newAccount.ReferralCode)
		if errors.Is(err, storage.ErrAccountNotFound) {
			respond.BadRequest(w, "Invalid referral code")
			return
		}
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		referrer = acc
	}

	id := uuid.NewString()
	if newAccount.Id != nil && *newAccount.Id != "" {
		id = *newAccount.Id
	}

	created, err := h.Store.CreateAccount(r.Context(), &models.Account{
		ID:           id,
		ReferralCode: NewReferralCode(),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if referrer != nil {
		if _, err := h.Referrals.GrantReferralBonus(r.Context(), referrer.ID, created.ID); err != nil {
			slog.Error("failed to grant referral bonus",
				slog.String("referrer_id", referrer.ID),
				slog.String("referred_id", created.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	respond.JSON(w, http.StatusCreated, mapping.ToApiAccount(created))
}

// GetAccount handles the logic for retrieving an account with its balance.
func (h *AccountsHandler) GetAccount(w http.ResponseWriter, r *http.Request, accountId string) {
	acc, err := h.Store.GetAccount(r.Context(), accountId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiAccount(acc))
}
