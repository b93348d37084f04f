package provider

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a decimal amount into an integer count of minor units
// (kuruş for TRY), rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// MinorUnitString is ToMinorUnits formatted as a bare integer string, e.g. "14990"
func MinorUnitString(amount decimal.Decimal) string {
	return fmt.Sprintf("%d", ToMinorUnits(amount))
}

// FromMinorUnits converts minor units back into a decimal amount
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// FormatPrice renders an amount with exactly two fractional digits, e.g. "12.30"
func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ValidateAmount rejects totals that are not at least one minor unit once rounded
func ValidateAmount(amount decimal.Decimal) error {
	if ToMinorUnits(amount) <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	return nil
}
