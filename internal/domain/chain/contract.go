// Package chain defines the wire-level view of the MicroLoanPlatform
// contract: the loan tuple as the ABI returns it, plus the interfaces
// the gateway needs from a connected chain client. Implementations
// live in infrastructure/eth; tests use the func-field mocks in
// testutil/chainmock.
package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"microloan-client/internal/domain/loan"
	"microloan-client/pkg/units"
)

// LoanRecord is the Loan tuple returned by getLoanDetails. Field
// names and order match the ABI components; the abi package binds by
// name when unpacking.
type LoanRecord struct {
	Id               *big.Int
	Borrower         common.Address
	Lender           common.Address
	Amount           *big.Int
	InterestRate     *big.Int
	Duration         *big.Int
	CreatedTimestamp *big.Int
	FundedTimestamp  *big.Int
	DueTimestamp     *big.Int
	IsCollateralized bool
	CollateralAmount *big.Int
	Status           uint8
}

// Empty reports whether the record is the contract's zero value. A
// created loan always has a positive amount, so an all-zero tuple
// means the id was never assigned.
func (r LoanRecord) Empty() bool {
	return r.Amount == nil || r.Amount.Sign() == 0
}

// Decode converts the wire record into the client-facing Loan.
// Sentinel-zero timestamps stay as zero time.Times.
func (r LoanRecord) Decode() loan.Loan {
	l := loan.Loan{
		Borrower:         r.Borrower,
		Lender:           r.Lender,
		Amount:           units.FromBaseUnits(r.Amount),
		IsCollateralized: r.IsCollateralized,
		CollateralAmount: "0",
		Status:           loan.Status(r.Status),
	}
	if r.Id != nil {
		l.ID = r.Id.Uint64()
	}
	if r.InterestRate != nil {
		l.InterestRate = units.BasisPointsToPercent(r.InterestRate.Int64())
	}
	if r.Duration != nil {
		l.DurationDays = units.SecondsToDays(r.Duration.Int64())
	}
	if r.IsCollateralized && r.CollateralAmount != nil {
		l.CollateralAmount = units.FromBaseUnits(r.CollateralAmount)
	}
	if ts := r.CreatedTimestamp; ts != nil && ts.Sign() > 0 {
		l.CreatedAt = time.Unix(ts.Int64(), 0).UTC()
	}
	if ts := r.FundedTimestamp; ts != nil && ts.Sign() > 0 {
		l.FundedAt = time.Unix(ts.Int64(), 0).UTC()
	}
	if ts := r.DueTimestamp; ts != nil && ts.Sign() > 0 {
		l.DueAt = time.Unix(ts.Int64(), 0).UTC()
	}
	return l
}

// Contract is the fixed ABI surface of the deployed loan contract.
// Write methods submit a signed transaction and return without
// waiting for inclusion; value-transferring calls take the transfer
// amount in base units.
type Contract interface {
	CreateLoan(ctx context.Context, amount, rateBp, durationSec *big.Int, collateralized bool, value *big.Int) (*types.Transaction, error)
	FundLoan(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error)
	RepayLoan(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error)
	MarkDefaulted(ctx context.Context, id *big.Int) (*types.Transaction, error)

	LoanDetails(ctx context.Context, id *big.Int) (LoanRecord, error)
	BorrowerLoans(ctx context.Context, borrower common.Address) ([]*big.Int, error)
	LenderLoans(ctx context.Context, lender common.Address) ([]*big.Int, error)
	AvailableLoans(ctx context.Context) ([]*big.Int, error)
	LoanCount(ctx context.Context) (*big.Int, error)
	TotalVolume(ctx context.Context) (*big.Int, error)
	ActiveLoanCount(ctx context.Context) (*big.Int, error)
	AverageRate(ctx context.Context) (*big.Int, error)

	// CreatedLoanID extracts the new loan id from a LoanCreated event
	// in the receipt. Contracts that do not emit the event yield
	// ok=false, which is acceptable.
	CreatedLoanID(receipt *types.Receipt) (id uint64, ok bool)
}

// Provider is the slice of the wallet/node surface the gateway uses
// outside of contract calls.
type Provider interface {
	ChainID(ctx context.Context) (*big.Int, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
	Receipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}
