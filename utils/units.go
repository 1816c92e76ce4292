package utils

import (
	"math/big"

	"github.com/michaelpento.lv/deltabot/types"

	"github.com/shopspring/decimal"
)

// ToUnits converts a subunit amount to whole units
func ToUnits(amount *big.Int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -types.Decimals)
}

// Humanize formats a subunit amount as whole units, e.g. 1500000000000 -> "1500"
func Humanize(amount *big.Int) string {
	if amount == nil {
		return "<nil>"
	}
	return ToUnits(amount).String()
}

// FromUnits converts whole units to subunits, truncating below one subunit
func FromUnits(units decimal.Decimal) *big.Int {
	return units.Shift(types.Decimals).BigInt()
}
