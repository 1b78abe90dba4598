// Package policy computes the signed amount of every balance-changing operation.
package policy

import (
	"errors"
	"fmt"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for a base amount that must be positive but is not.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidOperation is returned for an unknown kind or a fixed-amount kind given a base amount.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Config holds the tunable amounts. Amounts are in major currency units.
type Config struct {
	ProjectStartFee decimal.Decimal
	CashbackRate    decimal.Decimal
	ReferralBonus   decimal.Decimal
	// MinorUnits is the number of decimal places an amount may carry. Cashback
	// is rounded to it.
	MinorUnits int32
}

// DefaultConfig returns the platform defaults.
func DefaultConfig() Config {
	return Config{
		ProjectStartFee: decimal.NewFromInt(10000),
		CashbackRate:    decimal.RequireFromString("0.01"),
		ReferralBonus:   decimal.NewFromInt(1000),
		MinorUnits:      2,
	}
}

// Policy is a pure function of its Config. It is safe for concurrent use.
type Policy struct {
	cfg Config
}

// New validates cfg and returns a Policy.
func New(cfg Config) (*Policy, error) {
	if cfg.ProjectStartFee.IsNegative() {
		return nil, fmt.Errorf("project start fee must not be negative, got %s", cfg.ProjectStartFee)
	}
	if cfg.CashbackRate.IsNegative() || cfg.CashbackRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("cashback rate must be in [0, 1), got %s", cfg.CashbackRate)
	}
	if cfg.ReferralBonus.IsNegative() {
		return nil, fmt.Errorf("referral bonus must not be negative, got %s", cfg.ReferralBonus)
	}
	if cfg.MinorUnits < 0 {
		return nil, fmt.Errorf("minor units must not be negative, got %d", cfg.MinorUnits)
	}
	return &Policy{cfg: cfg}, nil
}

// Config returns a copy of the policy configuration.
func (p *Policy) Config() Config {
	return p.cfg
}

// ComputeAmount returns the signed delta for kind. Credits are positive, debits negative.
func (p *Policy) ComputeAmount(kind models.TransactionKind, base decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case models.PROJECT_FEE:
		if !base.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: project fee takes no base amount", ErrInvalidOperation)
		}
		return p.cfg.ProjectStartFee.Neg(), nil
	case models.TOPUP, models.REFUND:
		if !base.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidAmount, kind, base)
		}
		if !p.inMinorUnits(base) {
			return decimal.Zero, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, base, p.cfg.MinorUnits)
		}
		return base, nil
	case models.CASHBACK:
		if !base.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: cashback base must be positive, got %s", ErrInvalidAmount, base)
		}
		if !p.inMinorUnits(base) {
			return decimal.Zero, fmt.Errorf("%w: cashback base %s has more than %d decimal places", ErrInvalidAmount, base, p.cfg.MinorUnits)
		}
		return base.Mul(p.cfg.CashbackRate).RoundBank(p.cfg.MinorUnits), nil
	case models.REFERRAL_BONUS:
		if !base.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: referral bonus takes no base amount", ErrInvalidOperation)
		}
		return p.cfg.ReferralBonus, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, kind)
	}
}

// inMinorUnits reports whether amount is representable in the currency's minor unit.
func (p *Policy) inMinorUnits(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(p.cfg.MinorUnits))
}
