package calculator

import "github.com/shopspring/decimal"

// SettlementThreshold is the largest amount treated as floating point noise.
// Settlements at or below it are never emitted.
const SettlementThreshold = 0.01

// Round2 rounds x to two decimal places, half away from zero.
// Rounding happens on the shortest decimal representation of x, so 1.005
// becomes 1.01 rather than 1.00.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// share returns one participant's part of amount.
func share(amount float64, participants int) float64 {
	return amount / float64(participants)
}
