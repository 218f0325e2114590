// Package display turns decoded loans into render-ready records. It
// is total: bad input degrades to sane defaults, never an error. The
// interest figures here are floating-point display estimates; the
// exact integer repayment amount is computed by the gateway.
package display

import (
	"strconv"
	"time"

	"microloan-client/internal/domain/loan"
)

const defaultDurationDays = 30

const dash = "-"

type Loan struct {
	ID               uint64  `json:"id"`
	Borrower         string  `json:"borrower"`
	Lender           string  `json:"lender"`
	Amount           string  `json:"amount"`
	InterestRate     float64 `json:"interest_rate"`
	DurationDays     int64   `json:"duration_days"`
	Interest         string  `json:"interest"`
	TotalReturn      string  `json:"total_return"`
	CreatedAt        string  `json:"created_at"`
	FundedAt         string  `json:"funded_at"`
	DueDate          string  `json:"due_date"`
	IsCollateralized bool    `json:"is_collateralized"`
	CollateralAmount string  `json:"collateral_amount"`
	Status           string  `json:"status"`
}

type Stats struct {
	ActiveLoans     uint64 `json:"active_loans"`
	TotalVolume     string `json:"total_volume"`
	AvgInterestRate string `json:"avg_interest_rate"`
}

// Build renders one loan for display.
func Build(l loan.Loan) Loan {
	principal, err := strconv.ParseFloat(l.Amount, 64)
	if err != nil {
		principal = 0
	}
	duration := l.DurationDays
	if duration <= 0 {
		duration = defaultDurationDays
	}
	interest := principal * l.InterestRate / 100
	total := principal + interest

	out := Loan{
		ID:               l.ID,
		Borrower:         l.Borrower.Hex(),
		Lender:           l.Lender.Hex(),
		Amount:           FormatAmount(principal),
		InterestRate:     l.InterestRate,
		DurationDays:     duration,
		Interest:         FormatAmount(interest),
		TotalReturn:      FormatAmount(total),
		CreatedAt:        dash,
		FundedAt:         dash,
		DueDate:          dash,
		IsCollateralized: l.IsCollateralized,
		CollateralAmount: "0",
		Status:           l.Status.String(),
	}
	if l.IsCollateralized {
		if collateral, err := strconv.ParseFloat(l.CollateralAmount, 64); err == nil {
			out.CollateralAmount = FormatAmount(collateral)
		}
	}
	if !l.CreatedAt.IsZero() {
		out.CreatedAt = l.CreatedAt.Format(time.DateOnly)
	}
	if !l.FundedAt.IsZero() {
		out.FundedAt = l.FundedAt.Format(time.DateOnly)
	}
	switch {
	case !l.DueAt.IsZero():
		out.DueDate = l.DueAt.Format(time.DateOnly)
	case !l.FundedAt.IsZero():
		out.DueDate = l.FundedAt.AddDate(0, 0, int(duration)).Format(time.DateOnly)
	case !l.CreatedAt.IsZero():
		// Not yet funded: estimate from creation.
		out.DueDate = l.CreatedAt.AddDate(0, 0, int(duration)).Format(time.DateOnly)
	}
	return out
}

// BuildAll renders a batch, preserving order.
func BuildAll(loans []loan.Loan) []Loan {
	out := make([]Loan, len(loans))
	for i, l := range loans {
		out[i] = Build(l)
	}
	return out
}

// BuildStats renders the platform aggregate panel.
func BuildStats(activeLoans uint64, totalVolume string, avgRate float64) Stats {
	volume, err := strconv.ParseFloat(totalVolume, 64)
	if err != nil {
		volume = 0
	}
	return Stats{
		ActiveLoans:     activeLoans,
		TotalVolume:     FormatAmount(volume),
		AvgInterestRate: strconv.FormatFloat(avgRate, 'f', 2, 64) + "%",
	}
}

// FormatAmount applies the precision tiers: scientific notation below
// 0.0001 so dust amounts stay visible, 8 decimals below 0.01, 4
// otherwise.
func FormatAmount(v float64) string {
	switch {
	case v > 0 && v < 0.0001:
		return strconv.FormatFloat(v, 'e', 8, 64)
	case v < 0.01:
		return strconv.FormatFloat(v, 'f', 8, 64)
	default:
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
}
