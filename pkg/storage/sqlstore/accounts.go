package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, balance, version, referral_code, created_at`

// CreateAccount inserts a new account with a zero balance.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	acc := *account
	acc.Balance = decimal.Zero
	acc.Version = 0
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?)`),
		acc.ID, acc.Balance.String(), acc.Version, nullString(acc.ReferralCode), toNanos(acc.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: account %s", storage.ErrAccountExists, acc.ID)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &acc, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		acc       models.Account
		code      sql.NullString
		createdAt int64
	)
	if err := row.Scan(&acc.ID, &acc.Balance, &acc.Version, &code, &createdAt); err != nil {
		return nil, err
	}
	acc.ReferralCode = code.String
	acc.CreatedAt = fromNanos(createdAt)
	return &acc, nil
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), accountID)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrAccountNotFound, accountID)
	}
	if err != nil {
		return nil, unavailable("read account", err)
	}
	return acc, nil
}

// GetAccountByReferralCode resolves the owner of a referral code.
func (s *Store) GetAccountByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+accountColumns+` FROM accounts WHERE referral_code = ?`), code)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: referral code %s", storage.ErrAccountNotFound, code)
	}
	if err != nil {
		return nil, unavailable("read account", err)
	}
	return acc, nil
}

// ListAccounts returns every account ordered by ID.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, unavailable("list accounts", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, unavailable("scan account", err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list accounts", err)
	}
	return accounts, nil
}
