package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantities and amounts are stored as DECIMAL(18,4)
const (
	DecimalScale     = 4
	decimalIntDigits = 18 - DecimalScale
)

var decimalLimit = decimal.New(1, decimalIntDigits)

// CheckStoredDecimal rejects values the storage columns would round or
// overflow: more than four fractional digits, or an absolute value of 10^14
// or more. Trailing zeros beyond the scale are accepted.
func CheckStoredDecimal(label string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(DecimalScale)) {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("%s cannot have more than %d decimal places", label, DecimalScale))
	}
	if d.Abs().GreaterThanOrEqual(decimalLimit) {
		return ErrInvalidInput.WithMessage(label + " is too large")
	}
	return nil
}

// RoundStored rounds a computed value to the stored scale, half away from
// zero as PostgreSQL does.
func RoundStored(d decimal.Decimal) decimal.Decimal {
	return d.Round(DecimalScale)
}
