package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chris/funding-ledger/pkg/metrics"
	"github.com/shopspring/decimal"
)

// AuditReport is the result of replaying an account's ledger.
type AuditReport struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Replayed  decimal.Decimal `json:"replayed"`
	Records   int             `json:"records"`
	// FirstBrokenRecord is the first record whose BalanceAfter disagrees with the running sum.
	FirstBrokenRecord string `json:"first_broken_record,omitempty"`
	Consistent        bool   `json:"consistent"`
}

// Audit replays every committed record of an account and compares the sum of
// signed amounts to the stored balance. The account lock is held while reading
// so the balance and the log describe the same point in time.
func (c *Coordinator) Audit(ctx context.Context, accountID string) (AuditReport, error) {
	report := AuditReport{AccountID: accountID}

	unlock, err := c.locker.Lock(ctx, accountID)
	if err != nil {
		return report, fmt.Errorf("%w: account %s: %w", ErrTimeout, accountID, err)
	}
	defer unlock()

	bal, err := c.ledger.GetBalance(ctx, accountID)
	if err != nil {
		return report, translate(err)
	}
	recs, err := c.ledger.ListTransactionsByAccount(ctx, accountID, 0)
	if err != nil {
		return report, translate(err)
	}

	running := decimal.Zero
	for _, rec := range recs {
		running = running.Add(rec.Amount)
		if report.FirstBrokenRecord == "" && !running.Equal(rec.BalanceAfter) {
			report.FirstBrokenRecord = rec.ID
		}
	}

	report.Balance = bal
	report.Replayed = running
	report.Records = len(recs)
	report.Consistent = running.Equal(bal) && report.FirstBrokenRecord == ""

	if !report.Consistent {
		metrics.AuditMismatches.Inc()
		c.logger.Error("ledger replay mismatch",
			slog.String("account_id", accountID),
			slog.String("balance", bal.String()),
			slog.String("replayed", running.String()),
			slog.String("first_broken_record", report.FirstBrokenRecord),
		)
	}
	return report, nil
}
