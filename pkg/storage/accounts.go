package storage

import (
	"context"

	"github.com/chris/funding-ledger/pkg/models"
)

// AccountStore defines the interface for managing accounts.
type AccountStore interface {
	// CreateAccount stores a new account with a zero balance.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetAccount retrieves an account by ID.
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// GetAccountByReferralCode resolves the owner of a referral code.
	GetAccountByReferralCode(ctx context.Context, code string) (*models.Account, error)

	// ListAccounts retrieves all accounts from the storage.
	ListAccounts(ctx context.Context) ([]models.Account, error)
}
