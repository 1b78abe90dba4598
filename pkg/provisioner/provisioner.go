// Package provisioner charges a fee before a dependent resource is created and
// compensates with a refund when creation fails.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/metrics"
	"github.com/chris/funding-ledger/pkg/models"
)

// ErrFeeAlreadyRefunded is returned when an idempotent retry resolves to a fee
// that was refunded after an earlier failed creation.
var ErrFeeAlreadyRefunded = errors.New("fee was already refunded, retry with a new idempotency key")

// Charger is the part of the coordinator the provisioner needs.
type Charger interface {
	Execute(ctx context.Context, req models.OperationRequest) (*models.TransactionRecord, error)
	Refund(ctx context.Context, originalID string) (*models.TransactionRecord, error)
	Status(ctx context.Context, id string) (models.TransactionStatus, error)
}

var _ Charger = (*coordinator.Coordinator)(nil)

// CreateFunc creates the resource paid for by fee. It runs after the account
// lock has been released.
type CreateFunc func(ctx context.Context, fee *models.TransactionRecord) error

// Provisioner runs the debit, then provision-or-refund protocol.
type Provisioner struct {
	charger Charger
	logger  *slog.Logger
}

// New creates a Provisioner.
func New(charger Charger) *Provisioner {
	return &Provisioner{charger: charger, logger: slog.Default()}
}

// Provision debits the fee described by req and then calls create. If create
// fails the fee is refunded and the creation error is returned, joined with
// the refund error if compensation failed as well.
func (p *Provisioner) Provision(ctx context.Context, req models.OperationRequest, create CreateFunc) (*models.TransactionRecord, error) {
	fee, err := p.charger.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		status, err := p.charger.Status(ctx, fee.ID)
		if err != nil {
			return nil, err
		}
		if status == models.REVERSED {
			return nil, fmt.Errorf("%w: fee %s", ErrFeeAlreadyRefunded, fee.ID)
		}
	}

	createErr := create(ctx, fee)
	if createErr == nil {
		return fee, nil
	}

	// The fee is committed; the refund must go out even if the caller is gone.
	refund, refundErr := p.charger.Refund(context.WithoutCancel(ctx), fee.ID)
	if refundErr != nil {
		metrics.Compensations.WithLabelValues("failed").Inc()
		p.logger.Error("fee refund failed, manual compensation required",
			slog.String("account_id", fee.AccountID),
			slog.String("fee_transaction_id", fee.ID),
			slog.String("amount", fee.Amount.String()),
			slog.String("create_error", createErr.Error()),
			slog.String("refund_error", refundErr.Error()),
		)
		return nil, errors.Join(
			fmt.Errorf("failed to create resource: %w", createErr),
			fmt.Errorf("failed to refund fee %s: %w", fee.ID, refundErr),
		)
	}

	metrics.Compensations.WithLabelValues("refunded").Inc()
	p.logger.Warn("resource creation failed, fee refunded",
		slog.String("account_id", fee.AccountID),
		slog.String("fee_transaction_id", fee.ID),
		slog.String("refund_transaction_id", refund.ID),
		slog.String("error", createErr.Error()),
	)
	return nil, fmt.Errorf("failed to create resource (fee %s refunded): %w", fee.ID, createErr)
}
