// Package report holds the arithmetic behind QC reports. Rates use decimal math so that
// exported percentages match what spreadsheet users recompute by hand.
package report

import "github.com/shopspring/decimal"

const ratePlaces = 2

var (
	hundred = decimal.NewFromInt(100)
	million = decimal.NewFromInt(1_000_000)
)

// AcceptanceRate returns accepted/judged in percent, rounded half-up to 2 places.
// Zero judged lots yield zero.
func AcceptanceRate(accepted int64, judged int64) decimal.Decimal {
	if judged <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(accepted).
		Mul(hundred).
		DivRound(decimal.NewFromInt(judged), ratePlaces)
}

// DPPM is defective parts per million sampled, rounded to 2 places.
func DPPM(defects int64, sampled int64) decimal.Decimal {
	if sampled <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(defects).
		Mul(million).
		DivRound(decimal.NewFromInt(sampled), ratePlaces)
}
