package main

import (
	"context"
	"log"

	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/storage"
)

// Auditor replays an account's ledger against its balance.
type Auditor interface {
	Audit(ctx context.Context, accountID string) (coordinator.AuditReport, error)
}

// Summary is the result of one reconciliation run.
type Summary struct {
	Accounts     int      `json:"accounts"`
	Inconsistent []string `json:"inconsistent"`
	Failed       []string `json:"failed"`
}

// Reconciler audits every account on a schedule.
type Reconciler struct {
	Accounts storage.AccountStore
	Auditor  Auditor
}

// NewReconciler creates a new Reconciler.
func NewReconciler(accounts storage.AccountStore, auditor Auditor) *Reconciler {
	return &Reconciler{Accounts: accounts, Auditor: auditor}
}

// HandleRequest is triggered by an EventBridge Schedule.
func (r *Reconciler) HandleRequest(ctx context.Context) (Summary, error) {
	log.Println("Starting ledger reconciliation...")

	accounts, err := r.Accounts.ListAccounts(ctx)
	if err != nil {
		log.Printf("ERROR: failed to list accounts: %v", err)
		return Summary{}, err
	}

	summary := Summary{Accounts: len(accounts)}
	for _, acc := range accounts {
		report, err := r.Auditor.Audit(ctx, acc.ID)
		if err != nil {
			log.Printf("ERROR: failed to audit account %s: %v", acc.ID, err)
			// Continue to the next account, don't let one failure stop the whole batch.
			summary.Failed = append(summary.Failed, acc.ID)
			continue
		}
		if !report.Consistent {
			log.Printf("MISMATCH: account %s balance %s replayed %s first broken record %q",
				acc.ID, report.Balance, report.Replayed, report.FirstBrokenRecord)
			summary.Inconsistent = append(summary.Inconsistent, acc.ID)
		}
	}

	log.Printf("Reconciliation finished: %d accounts, %d inconsistent, %d failed",
		summary.Accounts, len(summary.Inconsistent), len(summary.Failed))
	return summary, nil
}
