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

const recordColumns = `id, account_id, kind, amount, balance_after, status, idempotency_key, reference_id, description, created_at`

// GetBalance returns the committed balance of an account.
func (s *Store) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT balance FROM accounts WHERE id = ?`), accountID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s", storage.ErrAccountNotFound, accountID)
	}
	if err != nil {
		return decimal.Zero, unavailable("read balance", err)
	}
	return balance, nil
}

// ApplyDelta runs the balance update and the record insert in one SQL transaction.
// On postgres the account row is locked with FOR UPDATE for the duration.
func (s *Store) ApplyDelta(ctx context.Context, rec *models.TransactionRecord, allowOverdraft bool) (newBalance decimal.Decimal, err error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, unavailable("begin ledger transaction", err)
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	selectAccount := `SELECT balance, version FROM accounts WHERE id = ?`
	if s.dialect == Postgres {
		selectAccount += ` FOR UPDATE`
	}

	var balance decimal.Decimal
	var version int64
	err = dbTx.QueryRowContext(ctx, s.rebind(selectAccount), rec.AccountID).Scan(&balance, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: %s", storage.ErrAccountNotFound, rec.AccountID)
	}
	if err != nil {
		return decimal.Zero, unavailable("read account", err)
	}

	if rec.IdempotencyKey != "" {
		var exists int
		err = dbTx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM transactions WHERE idempotency_key = ?`), rec.IdempotencyKey).Scan(&exists)
		if err == nil {
			return decimal.Zero, storage.ErrDuplicateIdempotencyKey
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, unavailable("check idempotency key", err)
		}
		err = nil
	}

	newBalance = balance.Add(rec.Amount)
	if newBalance.IsNegative() && !allowOverdraft {
		return decimal.Zero, storage.ErrInsufficientFunds
	}

	committed := *rec
	committed.BalanceAfter = newBalance
	committed.Status = models.COMMITTED
	if committed.Timestamp.IsZero() {
		committed.Timestamp = time.Now()
	}

	res, err := dbTx.ExecContext(ctx,
		s.rebind(`UPDATE accounts SET balance = ?, version = version + 1 WHERE id = ? AND version = ?`),
		newBalance.String(), committed.AccountID, version)
	if err != nil {
		return decimal.Zero, unavailable("update balance", err)
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		return decimal.Zero, storage.ErrConcurrentUpdate
	}

	_, err = dbTx.ExecContext(ctx,
		s.rebind(`INSERT INTO transactions (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		committed.ID, committed.AccountID, string(committed.Kind),
		committed.Amount.String(), committed.BalanceAfter.String(), string(committed.Status),
		nullString(committed.IdempotencyKey), nullString(committed.ReferenceID),
		committed.Description, toNanos(committed.Timestamp))
	if err != nil {
		if isUniqueViolation(err) {
			return decimal.Zero, storage.ErrDuplicateIdempotencyKey
		}
		return decimal.Zero, unavailable("insert transaction record", err)
	}

	if err = dbTx.Commit(); err != nil {
		return decimal.Zero, unavailable("commit ledger transaction", err)
	}

	*rec = committed
	return newBalance, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.TransactionRecord, error) {
	var (
		rec           models.TransactionRecord
		kind, status  string
		key, ref      sql.NullString
		createdAtNano int64
	)
	if err := row.Scan(&rec.ID, &rec.AccountID, &kind, &rec.Amount, &rec.BalanceAfter, &status, &key, &ref, &rec.Description, &createdAtNano); err != nil {
		return nil, err
	}
	rec.Kind = models.TransactionKind(kind)
	rec.Status = models.TransactionStatus(status)
	rec.IdempotencyKey = key.String
	rec.ReferenceID = ref.String
	rec.Timestamp = fromNanos(createdAtNano)
	return &rec, nil
}

func (s *Store) queryOneRecord(ctx context.Context, where string, arg any, notFound string) (*models.TransactionRecord, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+recordColumns+` FROM transactions WHERE `+where), arg)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrTransactionNotFound, notFound)
	}
	if err != nil {
		return nil, unavailable("read transaction", err)
	}
	return rec, nil
}

// GetTransaction retrieves a single ledger record by ID.
func (s *Store) GetTransaction(ctx context.Context, id string) (*models.TransactionRecord, error) {
	return s.queryOneRecord(ctx, `id = ?`, id, id)
}

// FindByIdempotencyKey looks a record up through the unique idempotency index.
func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*models.TransactionRecord, error) {
	return s.queryOneRecord(ctx, `idempotency_key = ?`, key, "key "+key)
}

// FindRefundFor returns the REFUND record referencing originalID.
func (s *Store) FindRefundFor(ctx context.Context, originalID string) (*models.TransactionRecord, error) {
	return s.queryOneRecord(ctx, `reference_id = ? AND kind = 'REFUND'`, originalID, "refund for "+originalID)
}

// ListTransactionsByAccount returns records in commit order. With a positive limit
// only the most recent records are returned.
func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID string, limit int32) ([]models.TransactionRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM transactions WHERE account_id = ? ORDER BY seq ASC`
	args := []any{accountID}
	if limit > 0 {
		query = `SELECT ` + recordColumns + ` FROM (
			SELECT seq, ` + recordColumns + ` FROM transactions WHERE account_id = ? ORDER BY seq DESC LIMIT ?
		) recent ORDER BY seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, unavailable("list transactions", err)
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, unavailable("scan transaction", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list transactions", err)
	}
	return records, nil
}
