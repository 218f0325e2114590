// Package chainmock provides func-field mocks for the domain/chain
// interfaces. Only the methods a test configures do anything; the
// rest fail loudly.
package chainmock

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"microloan-client/internal/domain/chain"
)

var errNotConfigured = errors.New("chainmock: method not configured")

// Contract satisfies chain.Contract.
type Contract struct {
	CreateLoanFn      func(ctx context.Context, amount, rateBp, durationSec *big.Int, collateralized bool, value *big.Int) (*types.Transaction, error)
	FundLoanFn        func(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error)
	RepayLoanFn       func(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error)
	MarkDefaultedFn   func(ctx context.Context, id *big.Int) (*types.Transaction, error)
	LoanDetailsFn     func(ctx context.Context, id *big.Int) (chain.LoanRecord, error)
	BorrowerLoansFn   func(ctx context.Context, borrower common.Address) ([]*big.Int, error)
	LenderLoansFn     func(ctx context.Context, lender common.Address) ([]*big.Int, error)
	AvailableLoansFn  func(ctx context.Context) ([]*big.Int, error)
	LoanCountFn       func(ctx context.Context) (*big.Int, error)
	TotalVolumeFn     func(ctx context.Context) (*big.Int, error)
	ActiveLoanCountFn func(ctx context.Context) (*big.Int, error)
	AverageRateFn     func(ctx context.Context) (*big.Int, error)
	CreatedLoanIDFn   func(receipt *types.Receipt) (uint64, bool)
}

func (m *Contract) CreateLoan(ctx context.Context, amount, rateBp, durationSec *big.Int, collateralized bool, value *big.Int) (*types.Transaction, error) {
	if m.CreateLoanFn != nil {
		return m.CreateLoanFn(ctx, amount, rateBp, durationSec, collateralized, value)
	}
	return nil, errNotConfigured
}

func (m *Contract) FundLoan(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error) {
	if m.FundLoanFn != nil {
		return m.FundLoanFn(ctx, id, value)
	}
	return nil, errNotConfigured
}

func (m *Contract) RepayLoan(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error) {
	if m.RepayLoanFn != nil {
		return m.RepayLoanFn(ctx, id, value)
	}
	return nil, errNotConfigured
}

func (m *Contract) MarkDefaulted(ctx context.Context, id *big.Int) (*types.Transaction, error) {
	if m.MarkDefaultedFn != nil {
		return m.MarkDefaultedFn(ctx, id)
	}
	return nil, errNotConfigured
}

func (m *Contract) LoanDetails(ctx context.Context, id *big.Int) (chain.LoanRecord, error) {
	if m.LoanDetailsFn != nil {
		return m.LoanDetailsFn(ctx, id)
	}
	return chain.LoanRecord{}, errNotConfigured
}

func (m *Contract) BorrowerLoans(ctx context.Context, borrower common.Address) ([]*big.Int, error) {
	if m.BorrowerLoansFn != nil {
		return m.BorrowerLoansFn(ctx, borrower)
	}
	return nil, errNotConfigured
}

func (m *Contract) LenderLoans(ctx context.Context, lender common.Address) ([]*big.Int, error) {
	if m.LenderLoansFn != nil {
		return m.LenderLoansFn(ctx, lender)
	}
	return nil, errNotConfigured
}

func (m *Contract) AvailableLoans(ctx context.Context) ([]*big.Int, error) {
	if m.AvailableLoansFn != nil {
		return m.AvailableLoansFn(ctx)
	}
	return nil, errNotConfigured
}

func (m *Contract) LoanCount(ctx context.Context) (*big.Int, error) {
	if m.LoanCountFn != nil {
		return m.LoanCountFn(ctx)
	}
	return nil, errNotConfigured
}

func (m *Contract) TotalVolume(ctx context.Context) (*big.Int, error) {
	if m.TotalVolumeFn != nil {
		return m.TotalVolumeFn(ctx)
	}
	return nil, errNotConfigured
}

func (m *Contract) ActiveLoanCount(ctx context.Context) (*big.Int, error) {
	if m.ActiveLoanCountFn != nil {
		return m.ActiveLoanCountFn(ctx)
	}
	return nil, errNotConfigured
}

func (m *Contract) AverageRate(ctx context.Context) (*big.Int, error) {
	if m.AverageRateFn != nil {
		return m.AverageRateFn(ctx)
	}
	return nil, errNotConfigured
}

func (m *Contract) CreatedLoanID(receipt *types.Receipt) (uint64, bool) {
	if m.CreatedLoanIDFn != nil {
		return m.CreatedLoanIDFn(receipt)
	}
	return 0, false
}

// Provider satisfies chain.Provider.
type Provider struct {
	ChainIDFn func(ctx context.Context) (*big.Int, error)
	BalanceFn func(ctx context.Context, account common.Address) (*big.Int, error)
	ReceiptFn func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

func (m *Provider) ChainID(ctx context.Context) (*big.Int, error) {
	if m.ChainIDFn != nil {
		return m.ChainIDFn(ctx)
	}
	return nil, errNotConfigured
}

func (m *Provider) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	if m.BalanceFn != nil {
		return m.BalanceFn(ctx, account)
	}
	return nil, errNotConfigured
}

func (m *Provider) Receipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if m.ReceiptFn != nil {
		return m.ReceiptFn(ctx, txHash)
	}
	return nil, errNotConfigured
}

// Tx builds a throwaway legacy transaction for write-path tests.
func Tx(nonce uint64) *types.Transaction {
	return types.NewTransaction(nonce, common.Address{}, big.NewInt(0), 21000, big.NewInt(1), nil)
}
