package generator

import (
	"fmt"
	"math"
)

// AmericanToDecimal converts American odds to decimal odds.
// +150 pays 2.50, -120 pays 1.8333...; zero is not valid American
// notation and converts to 0.
func AmericanToDecimal(american int) float64 {
	switch {
	case american > 0:
		return 1 + float64(american)/100
	case american < 0:
		return 1 + 100/float64(-american)
	default:
		return 0
	}
}

// ParlayDecimal multiplies the legs' decimal odds together.
func ParlayDecimal(american []int) float64 {
	product := 1.0
	for _, odds := range american {
		product *= AmericanToDecimal(odds)
	}
	return product
}

// FormatPayout renders a payout in 2-decimal steps, rounding half up.
// Payouts are always quoted against the fixed 1 unit stake.
func FormatPayout(decimalOdds float64) string {
	return fmt.Sprintf("%.2f", math.Round(decimalOdds*100)/100)
}
