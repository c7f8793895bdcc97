// Package money provides currency-safe amounts and billing-period identity.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
)

// ParseAmount parses a decimal string into an amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, domain.ErrValidation)
	}
	return d, nil
}

// RequirePositive returns ErrValidation unless d > 0.
func RequirePositive(d decimal.Decimal, field string) error {
	if !d.IsPositive() {
		return fmt.Errorf("%s must be positive, got %s: %w", field, d, domain.ErrValidation)
	}
	return nil
}

// RequireNonNegative returns ErrValidation if d < 0.
func RequireNonNegative(d decimal.Decimal, field string) error {
	if d.IsNegative() {
		return fmt.Errorf("%s must not be negative, got %s: %w", field, d, domain.ErrValidation)
	}
	return nil
}
