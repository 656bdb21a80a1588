// Package money holds currency helpers shared by the cart, order and checkout
// code. Amounts are decimal major units (e.g. naira); the payment gateway
// works in minor units (e.g. kobo).
package money

import "github.com/shopspring/decimal"

// MinorUnitExponent is the number of decimal places between the major and
// minor currency unit.
const MinorUnitExponent = 2

var minorFactor = decimal.New(1, MinorUnitExponent)

// ToMinor converts a major-unit amount to integer minor units, rounding half
// away from zero.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(minorFactor).Round(0).IntPart()
}

// FromMinor converts integer minor units back to a major-unit amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -MinorUnitExponent)
}

// LineTotal is price * quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
