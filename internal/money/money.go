// Package money converts between decimal amounts used at the API edge
// and integer cents used for storage and summation.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid money amount")
)

// MaxCents is the largest storable amount: 99,999,999.99.
const MaxCents int64 = 9_999_999_999

// Exponent bounds accepted by ToCents. Rescaling a decimal costs time in
// proportion to its exponent, so values outside these are refused first.
const (
	minExponent = -20
	maxExponent = 10
)

// FromCents returns cents as a decimal with two fractional digits.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents converts a non-negative amount with at most two fractional
// digits into cents. Anything else is rejected rather than rounded.
func ToCents(d decimal.Decimal) (int64, error) {
	switch exp := d.Exponent(); {
	case exp < minExponent:
		return 0, fmt.Errorf("%w: too many decimal places", ErrInvalidAmount)
	case exp > maxExponent:
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("%w: at most 2 decimal places", ErrInvalidAmount)
	}
	shifted := d.Shift(2)
	if shifted.GreaterThan(decimal.NewFromInt(MaxCents)) {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return shifted.IntPart(), nil
}

// Sum adds cents values; int64 summation never accumulates rounding error.
func Sum(cents ...int64) int64 {
	var total int64
	for _, c := range cents {
		total += c
	}
	return total
}
