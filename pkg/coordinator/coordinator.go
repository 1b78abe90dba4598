// Package coordinator drives every balance mutation through the per-account
// critical section: lock, apply delta and log in one commit, unlock, notify.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/funding-ledger/pkg/locker"
	"github.com/chris/funding-ledger/pkg/metrics"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/notifier"
	"github.com/chris/funding-ledger/pkg/policy"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is a step of the per-operation state machine.
type State string

const (
	StateReceived State = "RECEIVED"
	StateLocked   State = "LOCKED"
	StateApplied  State = "APPLIED"
	StateLogged   State = "LOGGED"
	StateNotified State = "NOTIFIED"
	StateDone     State = "DONE"
	StateFailed   State = "FAILED"
)

const defaultConflictRetries = 3

// Coordinator is safe for concurrent use.
type Coordinator struct {
	ledger   storage.LedgerStore
	policy   *policy.Policy
	locker   locker.Locker
	notifier notifier.Notifier

	conflictRetries int
	newID           func() string
	logger          *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConflictRetries sets how many times ApplyDelta is retried after an
// optimistic concurrency conflict from the store.
func WithConflictRetries(n int) Option {
	return func(c *Coordinator) {
		if n >= 0 {
			c.conflictRetries = n
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIDGenerator overrides how transaction IDs are generated.
func WithIDGenerator(fn func() string) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New creates a Coordinator. A nil notifier disables notifications.
func New(ledger storage.LedgerStore, pol *policy.Policy, lk locker.Locker, n notifier.Notifier, opts ...Option) *Coordinator {
	if n == nil {
		n = notifier.NoOpNotifier{}
	}
	c := &Coordinator{
		ledger:          ledger,
		policy:          pol,
		locker:          lk,
		notifier:        n,
		conflictRetries: defaultConflictRetries,
		newID:           uuid.NewString,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the fee and cashback policy in use.
func (c *Coordinator) Policy() *policy.Policy {
	return c.policy
}

// Execute runs one balance mutation to completion. REFUND requests must go
// through Refund so the original record is validated.
func (c *Coordinator) Execute(ctx context.Context, req models.OperationRequest) (*models.TransactionRecord, error) {
	if req.Kind == models.REFUND {
		return nil, fmt.Errorf("%w: refunds must reference a transaction via Refund", ErrInvalidOperation)
	}
	return c.execute(ctx, req)
}

func (c *Coordinator) execute(ctx context.Context, req models.OperationRequest) (*models.TransactionRecord, error) {
	start := time.Now()
	kind := string(req.Kind)
	defer func() {
		metrics.OperationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	log := c.logger.With(
		slog.String("account_id", req.AccountID),
		slog.String("kind", kind),
		slog.String("idempotency_key", req.IdempotencyKey),
	)
	c.transition(log, req.Kind, StateReceived)

	if req.AccountID == "" {
		return nil, c.fail(log, req.Kind, "invalid", fmt.Errorf("%w: account id is required", ErrInvalidOperation))
	}
	amount, err := c.policy.ComputeAmount(req.Kind, req.BaseAmount)
	if err != nil {
		return nil, c.fail(log, req.Kind, "invalid", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, c.fail(log, req.Kind, "timeout", fmt.Errorf("%w: %w", ErrTimeout, err))
	}

	waitStart := time.Now()
	unlock, err := c.locker.Lock(ctx, req.AccountID)
	metrics.LockWait.Observe(time.Since(waitStart).Seconds())
	if err != nil {
		return nil, c.fail(log, req.Kind, "timeout", fmt.Errorf("%w: account %s: %w", ErrTimeout, req.AccountID, err))
	}
	c.transition(log, req.Kind, StateLocked)

	rec, replayed, err := c.commit(ctx, req, amount)
	unlock()
	if err != nil {
		return nil, c.fail(log, req.Kind, outcomeOf(err), err)
	}
	if replayed {
		log.Info("idempotent replay", slog.String("transaction_id", rec.ID))
		metrics.Operations.WithLabelValues(kind, "replayed").Inc()
		return rec, nil
	}
	c.transition(log, req.Kind, StateApplied)
	c.transition(log, req.Kind, StateLogged)

	// The record is final from here on; the caller's cancellation must not
	// suppress the notification.
	if err := c.notifier.Notify(context.WithoutCancel(ctx), rec.AccountID, notifier.SummaryOf(rec)); err != nil {
		log.Error("failed to dispatch notification",
			slog.String("transaction_id", rec.ID),
			slog.String("error", err.Error()),
		)
	}
	c.transition(log, req.Kind, StateNotified)
	c.transition(log, req.Kind, StateDone)
	metrics.Operations.WithLabelValues(kind, "committed").Inc()

	log.Info("transaction committed",
		slog.String("transaction_id", rec.ID),
		slog.String("amount", rec.Amount.String()),
		slog.String("balance_after", rec.BalanceAfter.String()),
	)
	return rec, nil
}

// commit must be called with the account lock held. It reports replayed=true
// when the idempotency key was already committed.
func (c *Coordinator) commit(ctx context.Context, req models.OperationRequest, amount decimal.Decimal) (*models.TransactionRecord, bool, error) {
	if req.IdempotencyKey != "" {
		existing, err := c.replay(ctx, req, amount)
		if err != nil || existing != nil {
			return existing, existing != nil, err
		}
	}

	rec := &models.TransactionRecord{
		ID:             c.newID(),
		AccountID:      req.AccountID,
		Kind:           req.Kind,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
		ReferenceID:    req.ReferenceID,
		Description:    req.Description,
	}

	// Once started, the commit is not abandoned on caller cancellation.
	commitCtx := context.WithoutCancel(ctx)
	for attempt := 0; ; attempt++ {
		_, err := c.ledger.ApplyDelta(commitCtx, rec, req.AllowOverdraft)
		switch {
		case err == nil:
			return rec, false, nil
		case errors.Is(err, storage.ErrConcurrentUpdate) && attempt < c.conflictRetries:
			continue
		case errors.Is(err, storage.ErrDuplicateIdempotencyKey):
			existing, rerr := c.replay(commitCtx, req, amount)
			if rerr != nil {
				return nil, false, rerr
			}
			if existing == nil {
				return nil, false, fmt.Errorf("%w: idempotency key %s reported as duplicate but not found", ErrStorageUnavailable, req.IdempotencyKey)
			}
			return existing, true, nil
		default:
			return nil, false, translate(err)
		}
	}
}

// replay returns the committed record for req's idempotency key, or nil.
// A caller-priced kind must repeat the committed amount; policy-priced kinds
// are matched on account and kind only so a config change cannot break a retry.
func (c *Coordinator) replay(ctx context.Context, req models.OperationRequest, amount decimal.Decimal) (*models.TransactionRecord, error) {
	existing, err := c.ledger.FindByIdempotencyKey(ctx, req.IdempotencyKey)
	if errors.Is(err, storage.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	if existing.AccountID != req.AccountID || existing.Kind != req.Kind {
		return nil, fmt.Errorf("%w: idempotency key %s already used for a %s on account %s",
			ErrInvalidOperation, req.IdempotencyKey, existing.Kind, existing.AccountID)
	}
	if callerPriced(req.Kind) && !existing.Amount.Equal(amount) {
		return nil, fmt.Errorf("%w: idempotency key %s already used for amount %s",
			ErrInvalidOperation, req.IdempotencyKey, existing.Amount)
	}
	return existing, nil
}

func callerPriced(kind models.TransactionKind) bool {
	return kind == models.TOPUP || kind == models.REFUND
}

func (c *Coordinator) transition(log *slog.Logger, kind models.TransactionKind, s State) {
	metrics.StateTransitions.WithLabelValues(string(kind), string(s)).Inc()
	log.Debug("state transition", slog.String("state", string(s)))
}

func (c *Coordinator) fail(log *slog.Logger, kind models.TransactionKind, outcome string, err error) error {
	c.transition(log, kind, StateFailed)
	metrics.Operations.WithLabelValues(string(kind), outcome).Inc()
	if outcome == "error" {
		log.Error("transaction failed", slog.String("error", err.Error()))
	} else {
		log.Warn("transaction rejected", slog.String("reason", outcome), slog.String("error", err.Error()))
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidOperation):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// translate maps store errors onto the coordinator taxonomy.
func translate(err error) error {
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds), errors.Is(err, storage.ErrStorageUnavailable):
		return err
	case errors.Is(err, storage.ErrAccountNotFound), errors.Is(err, storage.ErrTransactionNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
}
