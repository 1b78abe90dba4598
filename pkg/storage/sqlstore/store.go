// Package sqlstore implements storage.Storage on database/sql. SQLite (modernc.org/sqlite)
// is used for embedded deployments and tests; PostgreSQL (lib/pq) for shared ones.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect selects the SQL flavour and driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Store implements the Storage interface on a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// Open connects with the driver for dialect and applies the schema.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	var driver string
	switch dialect {
	case SQLite:
		driver = "sqlite"
	case Postgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported SQL dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// SQLite allows one writer; a single connection also keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrations returns the schema statements for the dialect.
// Each string is a single SQL statement.
func Migrations(dialect Dialect) []string {
	money, serial := "TEXT", "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == Postgres {
		money, serial = "NUMERIC(38, 8)", "BIGSERIAL PRIMARY KEY"
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			balance       %s NOT NULL,
			version       BIGINT NOT NULL DEFAULT 0,
			referral_code TEXT,
			created_at    BIGINT NOT NULL
		)`, money),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_referral_code ON accounts(referral_code)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS transactions (
			seq             %s,
			id              TEXT NOT NULL UNIQUE,
			account_id      TEXT NOT NULL REFERENCES accounts(id),
			kind            TEXT NOT NULL,
			amount          %s NOT NULL,
			balance_after   %s NOT NULL,
			status          TEXT NOT NULL,
			idempotency_key TEXT,
			reference_id    TEXT,
			description     TEXT NOT NULL DEFAULT '',
			created_at      BIGINT NOT NULL
		)`, serial, money, money),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_idempotency_key ON transactions(idempotency_key)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_reference ON transactions(reference_id)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			account_id     TEXT NOT NULL,
			transaction_id TEXT NOT NULL,
			type           TEXT NOT NULL,
			title          TEXT NOT NULL,
			message        TEXT NOT NULL,
			is_read        INTEGER NOT NULL DEFAULT 0,
			created_at     BIGINT NOT NULL,
			PRIMARY KEY (account_id, transaction_id)
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id                 TEXT PRIMARY KEY,
			owner_id           TEXT NOT NULL,
			config_id          TEXT,
			project_name       TEXT NOT NULL,
			description        TEXT NOT NULL DEFAULT '',
			data               TEXT NOT NULL DEFAULT '{}',
			fee_transaction_id TEXT NOT NULL,
			created_at         BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id)`,
	}
}

// Migrate applies the schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range Migrations(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func unavailable(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, storage.ErrStorageUnavailable, err)
}

func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
