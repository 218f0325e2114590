package gateway

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"microloan-client/internal/domain/loan"
)

// Synthetic records served when the chain cannot be read. They are
// deliberately plausible (the UI renders them as-is) but always travel
// under SourceFallback so logs and tests can tell them apart.

var (
	sampleBorrower = common.HexToAddress("0x33D8af5C27B4Df100Bb959E7241FA5175fc28dBB")
	zeroAddress    = common.Address{}
)

// placeholderLoan stands in for a single unreadable loan: the id is
// echoed back, parties are zeroed, status is Pending.
func placeholderLoan(id uint64, now time.Time) loan.Loan {
	return loan.Loan{
		ID:               id,
		Borrower:         zeroAddress,
		Lender:           zeroAddress,
		Amount:           "0.1",
		InterestRate:     5,
		DurationDays:     30,
		CreatedAt:        now.UTC(),
		CollateralAmount: "0",
		Status:           loan.StatusPending,
	}
}

func sampleAvailableLoans(now time.Time) []loan.Loan {
	return []loan.Loan{
		{
			ID:               0,
			Borrower:         sampleBorrower,
			Lender:           zeroAddress,
			Amount:           "0.1",
			InterestRate:     5,
			DurationDays:     30,
			CreatedAt:        now.UTC(),
			IsCollateralized: true,
			CollateralAmount: "0.05",
			Status:           loan.StatusActive,
		},
		{
			ID:               1,
			Borrower:         sampleBorrower,
			Lender:           zeroAddress,
			Amount:           "0.0000000001",
			InterestRate:     7,
			DurationDays:     60,
			CreatedAt:        now.UTC(),
			CollateralAmount: "0",
			Status:           loan.StatusActive,
		},
	}
}

func sampleRoleLoans(role Role, addr common.Address, now time.Time) []loan.Loan {
	if role == RoleLender {
		created := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
		funded := created.AddDate(0, 0, 1)
		return []loan.Loan{
			{
				ID:               100,
				Borrower:         common.HexToAddress("0x3F8CB69d9c0ED01923F11c829BaE4D9a4CB6c82C"),
				Lender:           addr,
				Amount:           "0.05",
				InterestRate:     6,
				DurationDays:     45,
				CreatedAt:        created,
				FundedAt:         funded,
				DueAt:            funded.AddDate(0, 0, 45),
				IsCollateralized: true,
				CollateralAmount: "0.025",
				Status:           loan.StatusFunded,
			},
		}
	}
	return []loan.Loan{
		{
			ID:               0,
			Borrower:         addr,
			Lender:           zeroAddress,
			Amount:           "0.1",
			InterestRate:     5,
			DurationDays:     30,
			CreatedAt:        now.UTC(),
			CollateralAmount: "0",
			Status:           loan.StatusPending,
		},
		{
			ID:               1,
			Borrower:         addr,
			Lender:           zeroAddress,
			Amount:           "0.0000000001",
			InterestRate:     7,
			DurationDays:     60,
			CreatedAt:        now.UTC(),
			CollateralAmount: "0",
			Status:           loan.StatusPending,
		},
	}
}
