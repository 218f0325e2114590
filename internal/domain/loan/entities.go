package loan

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Status mirrors the contract's LoanStatus enum. The numeric values
// are the wire encoding and must not be reordered.
type Status uint8

const (
	StatusPending Status = iota
	StatusActive
	StatusFunded
	StatusRepaid
	StatusDefaulted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Active"
	case StatusFunded:
		return "Funded"
	case StatusRepaid:
		return "Repaid"
	case StatusDefaulted:
		return "Defaulted"
	}
	return "Unknown"
}

// Loan is the client-side decoded snapshot of a remote loan. Amounts
// are decimal currency strings, the rate is a percentage, and the
// duration is whole days; the integer wire encodings live in
// domain/chain.
type Loan struct {
	ID               uint64         `json:"id"`
	Borrower         common.Address `json:"borrower"`
	Lender           common.Address `json:"lender"`
	Amount           string         `json:"amount"`
	InterestRate     float64        `json:"interest_rate"`
	DurationDays     int64          `json:"duration_days"`
	CreatedAt        time.Time      `json:"created_at"`
	FundedAt         time.Time      `json:"funded_at"`
	DueAt            time.Time      `json:"due_at"`
	IsCollateralized bool           `json:"is_collateralized"`
	CollateralAmount string         `json:"collateral_amount"`
	Status           Status         `json:"status"`
}

// Funded reports whether the loan has a lender attached.
func (l Loan) Funded() bool {
	return l.Status == StatusFunded || l.Status == StatusRepaid || l.Status == StatusDefaulted
}

func (l Loan) StatusText() string { return l.Status.String() }
