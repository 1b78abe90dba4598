// Package memory is an in-process implementation of storage.Storage used for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

// Store keeps every entity in maps guarded by a single mutex, so each
// ApplyDelta is trivially atomic and every read is linearizable.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]*models.Account
	records       map[string]*models.TransactionRecord
	byAccount     map[string][]string
	byKey         map[string]string
	refunds       map[string]string
	notifications map[string]map[string]*models.Notification
	projects      map[string]*models.Project
	now           func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts:      make(map[string]*models.Account),
		records:       make(map[string]*models.TransactionRecord),
		byAccount:     make(map[string][]string),
		byKey:         make(map[string]string),
		refunds:       make(map[string]string),
		notifications: make(map[string]map[string]*models.Notification),
		projects:      make(map[string]*models.Project),
		now:           time.Now,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// GetBalance returns the committed balance of an account.
func (s *Store) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", storage.ErrAccountNotFound, accountID)
	}
	return acc.Balance, nil
}

// ApplyDelta applies rec.Amount and appends rec under one lock.
func (s *Store) ApplyDelta(ctx context.Context, rec *models.TransactionRecord, allowOverdraft bool) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[rec.AccountID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", storage.ErrAccountNotFound, rec.AccountID)
	}
	if rec.IdempotencyKey != "" {
		if _, dup := s.byKey[rec.IdempotencyKey]; dup {
			return decimal.Zero, storage.ErrDuplicateIdempotencyKey
		}
	}
	if _, dup := s.records[rec.ID]; dup {
		return decimal.Zero, fmt.Errorf("transaction %s already exists", rec.ID)
	}

	newBalance := acc.Balance.Add(rec.Amount)
	if newBalance.IsNegative() && !allowOverdraft {
		return decimal.Zero, storage.ErrInsufficientFunds
	}

	rec.BalanceAfter = newBalance
	rec.Status = models.COMMITTED
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}

	stored := *rec
	s.records[rec.ID] = &stored
	s.byAccount[rec.AccountID] = append(s.byAccount[rec.AccountID], rec.ID)
	if rec.IdempotencyKey != "" {
		s.byKey[rec.IdempotencyKey] = rec.ID
	}
	if rec.Kind == models.REFUND && rec.ReferenceID != "" {
		s.refunds[rec.ReferenceID] = rec.ID
	}
	acc.Balance = newBalance
	acc.Version++

	return newBalance, nil
}

// GetTransaction retrieves a single ledger record by ID.
func (s *Store) GetTransaction(ctx context.Context, id string) (*models.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrTransactionNotFound, id)
	}
	out := *rec
	return &out, nil
}

// ListTransactionsByAccount returns records in commit order, which is timestamp order.
func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID string, limit int32) ([]models.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAccount[accountID]
	if limit > 0 && int(limit) < len(ids) {
		ids = ids[len(ids)-int(limit):]
	}
	out := make([]models.TransactionRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.records[id])
	}
	return out, nil
}

// FindByIdempotencyKey looks a record up by its idempotency key.
func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*models.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %s", storage.ErrTransactionNotFound, key)
	}
	out := *s.records[id]
	return &out, nil
}

// FindRefundFor returns the REFUND that references originalID.
func (s *Store) FindRefundFor(ctx context.Context, originalID string) (*models.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.refunds[originalID]
	if !ok {
		return nil, fmt.Errorf("%w: refund for %s", storage.ErrTransactionNotFound, originalID)
	}
	out := *s.records[id]
	return &out, nil
}

// CreateAccount stores a new account with a zero balance.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrAccountExists, account.ID)
	}
	acc := *account
	acc.Balance = decimal.Zero
	acc.Version = 0
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = s.now()
	}
	s.accounts[acc.ID] = &acc
	out := acc
	return &out, nil
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrAccountNotFound, accountID)
	}
	out := *acc
	return &out, nil
}

// GetAccountByReferralCode scans for the owner of code.
func (s *Store) GetAccountByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.accounts {
		if code != "" && acc.ReferralCode == code {
			out := *acc
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: referral code %s", storage.ErrAccountNotFound, code)
}

// ListAccounts returns every account ordered by ID.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveNotification stores n once per transaction ID.
func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byTx, ok := s.notifications[n.AccountID]
	if !ok {
		byTx = make(map[string]*models.Notification)
		s.notifications[n.AccountID] = byTx
	}
	if _, dup := byTx[n.TransactionID]; dup {
		return false, nil
	}
	stored := *n
	if stored.Timestamp.IsZero() {
		stored.Timestamp = s.now()
	}
	byTx[n.TransactionID] = &stored
	return true, nil
}

// ListNotifications returns an account's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, accountID string) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, 0, len(s.notifications[accountID]))
	for _, n := range s.notifications[accountID] {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].TransactionID > out[j].TransactionID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// MarkNotificationsRead flips every unread notification of the account.
func (s *Store) MarkNotificationsRead(ctx context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notifications[accountID] {
		if !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

// CreateProject stores a new project.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[project.ID]; ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrProjectExists, project.ID)
	}
	p := *project
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.projects[p.ID] = &p
	out := p
	return &out, nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrProjectNotFound, id)
	}
	out := *p
	return &out, nil
}

// ListProjectsByOwner returns an owner's projects, oldest first.
func (s *Store) ListProjectsByOwner(ctx context.Context, ownerID string) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Project
	for _, p := range s.projects {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
