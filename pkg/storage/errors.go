package storage

import "errors"

// ErrInsufficientFunds is returned when applying a delta would leave the balance negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrStorageUnavailable wraps any failure to durably read or commit ledger state.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrDuplicateIdempotencyKey is returned when a record with the same idempotency key is already committed.
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

// ErrConcurrentUpdate is returned when the account changed between read and commit.
var ErrConcurrentUpdate = errors.New("concurrent account update")

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectExists       = errors.New("project already exists")
)
