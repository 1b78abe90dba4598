package coordinator

import (
	"errors"

	"github.com/chris/funding-ledger/pkg/policy"
	"github.com/chris/funding-ledger/pkg/storage"
)

// The caller-visible error taxonomy. Errors from the policy and storage layers
// are re-exported so errors.Is works regardless of which layer produced them.
var (
	ErrInvalidAmount      = policy.ErrInvalidAmount
	ErrInvalidOperation   = policy.ErrInvalidOperation
	ErrInsufficientFunds  = storage.ErrInsufficientFunds
	ErrStorageUnavailable = storage.ErrStorageUnavailable

	// ErrTimeout is returned when the account lock was not acquired in time.
	// Nothing was applied, so the whole operation may be retried.
	ErrTimeout = errors.New("timed out waiting for account lock")

	// ErrNotFound is returned for an unknown account or transaction.
	ErrNotFound = errors.New("not found")
)
