// Package units converts between the human-facing representations of
// loan terms and the integer encodings the ledger uses: decimal
// currency amounts vs 18-decimal base units, percentages vs basis
// points, days vs seconds.
package units

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point scale of the ledger currency.
const Decimals = 18

const secondsPerDay = 24 * 60 * 60

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidRate   = errors.New("invalid rate")
)

// ToBaseUnits parses a decimal currency string into integer base
// units. Negative, unparseable, or finer-than-18-decimals inputs are
// rejected; precision is never silently dropped.
func ToBaseUnits(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if d.IsNegative() {
		return nil, ErrInvalidAmount
	}
	shifted := d.Shift(Decimals)
	if !shifted.IsInteger() {
		return nil, ErrInvalidAmount
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits renders integer base units as a decimal currency
// string. Trailing zeros are trimmed, so the round trip through
// ToBaseUnits is exact.
func FromBaseUnits(baseUnits *big.Int) string {
	return decimal.NewFromBigInt(baseUnits, -Decimals).String()
}

// PercentToBasisPoints converts a percentage to integer basis points
// (1% = 100 bp), rounding to the nearest point.
func PercentToBasisPoints(percent float64) (int64, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent <= 0 {
		return 0, ErrInvalidRate
	}
	return int64(math.Round(percent * 100)), nil
}

// BasisPointsToPercent is the inverse of PercentToBasisPoints.
func BasisPointsToPercent(bp int64) float64 {
	return float64(bp) / 100
}

func DaysToSeconds(days int64) int64 {
	return days * secondsPerDay
}

// SecondsToDays floors partial days, matching the ledger's integer
// duration arithmetic.
func SecondsToDays(seconds int64) int64 {
	return seconds / secondsPerDay
}
