package gateway

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"microloan-client/internal/domain/chain"
	"microloan-client/internal/domain/loan"
	"microloan-client/internal/domain/txlog"
	"microloan-client/internal/testutil/chainmock"
	"microloan-client/internal/testutil/txlogmock"
)

var (
	testAccount  = common.HexToAddress("0x7F8CB69d9c0ED01923F11c829BaE4D9a4CB6c82C")
	testBorrower = common.HexToAddress("0x33D8af5C27B4Df100Bb959E7241FA5175fc28dBB")
	errRemote    = errors.New("rpc: connection refused")
)

func newTestGateway(c *chainmock.Contract, p *chainmock.Provider, j txlog.Repository) *Gateway {
	sm := NewSessionManager(func(ctx context.Context) (*Session, error) {
		return &Session{Account: testAccount, ChainID: big.NewInt(31337), Contract: c, Provider: p}, nil
	}, big.NewInt(31337))
	g := New(sm, j)
	g.pollInterval = time.Millisecond
	return g
}

func wei(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad wei literal " + s)
	}
	return n
}

// fundedRecord is a 1.0-unit loan at 5%, funded by testAccount's
// counterparty, due well in the past.
func fundedRecord(id int64, borrower, lender common.Address) chain.LoanRecord {
	return chain.LoanRecord{
		Id:               big.NewInt(id),
		Borrower:         borrower,
		Lender:           lender,
		Amount:           wei("1000000000000000000"),
		InterestRate:     big.NewInt(500),
		Duration:         big.NewInt(30 * 86400),
		CreatedTimestamp: big.NewInt(1600000000),
		FundedTimestamp:  big.NewInt(1600003600),
		DueTimestamp:     big.NewInt(1600003600 + 30*86400),
		CollateralAmount: big.NewInt(0),
		Status:           uint8(loan.StatusFunded),
	}
}

// ----- createLoan -----

func TestCreateLoan_ConvertsAndSubmits(t *testing.T) {
	var got struct {
		amount, rateBp, durationSec, value *big.Int
		collateralized                     bool
	}
	var journaled *txlog.Entry
	c := &chainmock.Contract{
		CreateLoanFn: func(ctx context.Context, amount, rateBp, durationSec *big.Int, collateralized bool, value *big.Int) (*types.Transaction, error) {
			got.amount, got.rateBp, got.durationSec, got.collateralized, got.value = amount, rateBp, durationSec, collateralized, value
			return chainmock.Tx(1), nil
		},
	}
	j := &txlogmock.Repo{RecordFn: func(ctx context.Context, e *txlog.Entry) error {
		journaled = e
		return nil
	}}
	g := newTestGateway(c, &chainmock.Provider{}, j)

	sub, err := g.CreateLoan(context.Background(), CreateLoanInput{
		Amount:          "0.5",
		InterestPercent: 7.5,
		DurationDays:    60,
		Collateralized:  true,
	})
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	if got.amount.Cmp(wei("500000000000000000")) != 0 {
		t.Errorf("amount = %s", got.amount)
	}
	if got.rateBp.Int64() != 750 {
		t.Errorf("rateBp = %s", got.rateBp)
	}
	if got.durationSec.Int64() != 60*86400 {
		t.Errorf("durationSec = %s", got.durationSec)
	}
	if !got.collateralized {
		t.Error("collateralized flag not passed")
	}
	// Unspecified collateral defaults to half the principal.
	if got.value.Cmp(wei("250000000000000000")) != 0 {
		t.Errorf("value = %s", got.value)
	}
	if sub.Operation != txlog.OpCreate || sub.LoanID != nil {
		t.Errorf("submitted tx: %+v", sub)
	}
	if journaled == nil || journaled.Operation != txlog.OpCreate || journaled.Account != testAccount.Hex() {
		t.Errorf("journal entry: %+v", journaled)
	}
}

func TestCreateLoan_ExplicitCollateral(t *testing.T) {
	c := &chainmock.Contract{
		CreateLoanFn: func(ctx context.Context, amount, rateBp, durationSec *big.Int, collateralized bool, value *big.Int) (*types.Transaction, error) {
			if value.Cmp(wei("200000000000000000")) != 0 {
				t.Errorf("value = %s", value)
			}
			return chainmock.Tx(1), nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	_, err := g.CreateLoan(context.Background(), CreateLoanInput{
		Amount: "1", InterestPercent: 5, DurationDays: 30,
		Collateralized: true, Collateral: "0.2",
	})
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
}

func TestCreateLoan_ValidationBeforeRemote(t *testing.T) {
	c := &chainmock.Contract{
		CreateLoanFn: func(ctx context.Context, amount, rateBp, durationSec *big.Int, collateralized bool, value *big.Int) (*types.Transaction, error) {
			t.Fatal("remote call issued for invalid input")
			return nil, nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)

	cases := []struct {
		in   CreateLoanInput
		want error
	}{
		{CreateLoanInput{Amount: "abc", InterestPercent: 5, DurationDays: 30}, loan.ErrInvalidAmount},
		{CreateLoanInput{Amount: "-1", InterestPercent: 5, DurationDays: 30}, loan.ErrInvalidAmount},
		{CreateLoanInput{Amount: "0", InterestPercent: 5, DurationDays: 30}, loan.ErrInvalidAmount},
		{CreateLoanInput{Amount: "1", InterestPercent: 0, DurationDays: 30}, loan.ErrInvalidRate},
		{CreateLoanInput{Amount: "1", InterestPercent: -2, DurationDays: 30}, loan.ErrInvalidRate},
		{CreateLoanInput{Amount: "1", InterestPercent: 5, DurationDays: 30, Collateralized: true, Collateral: "x"}, loan.ErrInvalidAmount},
	}
	for _, c := range cases {
		if _, err := g.CreateLoan(context.Background(), c.in); !errors.Is(err, c.want) {
			t.Errorf("CreateLoan(%+v) err = %v, want %v", c.in, err, c.want)
		}
	}
}

// ----- fundLoan -----

func TestFundLoan_TransfersPrincipal(t *testing.T) {
	rec := chain.LoanRecord{
		Id:           big.NewInt(3),
		Borrower:     testBorrower,
		Amount:       wei("100000000000000000"),
		InterestRate: big.NewInt(500),
		Duration:     big.NewInt(30 * 86400),
		Status:       uint8(loan.StatusActive),
	}
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
		FundLoanFn: func(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error) {
			if id.Int64() != 3 {
				t.Errorf("id = %s", id)
			}
			if value.Cmp(rec.Amount) != 0 {
				t.Errorf("value = %s, want exact principal", value)
			}
			return chainmock.Tx(2), nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	sub, err := g.FundLoan(context.Background(), 3)
	if err != nil {
		t.Fatalf("FundLoan: %v", err)
	}
	if sub.LoanID == nil || *sub.LoanID != 3 {
		t.Errorf("LoanID = %v", sub.LoanID)
	}
}

func TestFundLoan_RepaidRejectedWithoutRemoteCall(t *testing.T) {
	rec := fundedRecord(4, testBorrower, testAccount)
	rec.Status = uint8(loan.StatusRepaid)
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
		FundLoanFn: func(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error) {
			t.Fatal("fund transaction submitted for repaid loan")
			return nil, nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	if _, err := g.FundLoan(context.Background(), 4); !errors.Is(err, loan.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestFundLoan_NotFound(t *testing.T) {
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) {
			return chain.LoanRecord{}, errRemote
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	if _, err := g.FundLoan(context.Background(), 99); !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// A zeroed tuple means the contract never assigned the id.
	c.LoanDetailsFn = func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) {
		return chain.LoanRecord{Amount: big.NewInt(0)}, nil
	}
	if _, err := g.FundLoan(context.Background(), 99); !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("empty record err = %v, want ErrNotFound", err)
	}
}

// ----- repayLoan -----

func TestRepayLoan_ExactInterestTruncation(t *testing.T) {
	rec := fundedRecord(5, testAccount, testBorrower) // borrower is the caller
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
		RepayLoanFn: func(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error) {
			// 1.0 at 5%: 1.05 exactly, in base units.
			if value.Cmp(wei("1050000000000000000")) != 0 {
				t.Errorf("repayment = %s, want 1050000000000000000", value)
			}
			return chainmock.Tx(3), nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	if _, err := g.RepayLoan(context.Background(), 5); err != nil {
		t.Fatalf("RepayLoan: %v", err)
	}
}

func TestRepayLoan_OnlyBorrower(t *testing.T) {
	rec := fundedRecord(5, testBorrower, testAccount) // caller is the lender here
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
		RepayLoanFn: func(ctx context.Context, id *big.Int, value *big.Int) (*types.Transaction, error) {
			t.Fatal("repay submitted by non-borrower")
			return nil, nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	if _, err := g.RepayLoan(context.Background(), 5); !errors.Is(err, loan.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestRepayLoan_PendingRejected(t *testing.T) {
	rec := fundedRecord(5, testAccount, testBorrower)
	rec.Status = uint8(loan.StatusPending)
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	if _, err := g.RepayLoan(context.Background(), 5); !errors.Is(err, loan.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestTotalRepayment(t *testing.T) {
	cases := []struct {
		amount, rateBp, want string
	}{
		{"1000000000000000000", "500", "1050000000000000000"},
		{"1000000000000000000", "0", "1000000000000000000"},
		// truncation toward zero, never rounding
		{"3", "500", "3"},    // 3*500/10000 = 0.15 -> 0
		{"999", "100", "1008"}, // 999*100/10000 = 9.99 -> 9
	}
	for _, c := range cases {
		got := TotalRepayment(wei(c.amount), wei(c.rateBp))
		if got.String() != c.want {
			t.Errorf("TotalRepayment(%s, %s) = %s, want %s", c.amount, c.rateBp, got, c.want)
		}
	}
}

// ----- markDefaulted -----

func TestMarkDefaulted(t *testing.T) {
	rec := fundedRecord(6, testBorrower, testAccount) // caller is the lender
	submitted := false
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
		MarkDefaultedFn: func(ctx context.Context, id *big.Int) (*types.Transaction, error) {
			submitted = true
			return chainmock.Tx(4), nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	if _, err := g.MarkDefaulted(context.Background(), 6); err != nil {
		t.Fatalf("MarkDefaulted: %v", err)
	}
	if !submitted {
		t.Fatal("transaction not submitted")
	}
}

func TestMarkDefaulted_OnlyLender(t *testing.T) {
	rec := fundedRecord(6, testAccount, testBorrower) // caller is the borrower
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	if _, err := g.MarkDefaulted(context.Background(), 6); !errors.Is(err, loan.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestMarkDefaulted_NotYetDue(t *testing.T) {
	rec := fundedRecord(6, testBorrower, testAccount)
	due := time.Now().Add(24 * time.Hour)
	rec.DueTimestamp = big.NewInt(due.Unix())
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
		MarkDefaultedFn: func(ctx context.Context, id *big.Int) (*types.Transaction, error) {
			t.Fatal("default submitted before due date")
			return nil, nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	if _, err := g.MarkDefaulted(context.Background(), 6); !errors.Is(err, loan.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

// ----- reads -----

func TestGetLoanDetails_FallbackOnFailure(t *testing.T) {
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) {
			return chain.LoanRecord{}, errRemote
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetLoanDetails(context.Background(), 42)
	if res.Source != SourceFallback {
		t.Errorf("Source = %s", res.Source)
	}
	if res.Loan.ID != 42 {
		t.Errorf("placeholder did not echo id: %d", res.Loan.ID)
	}
	if res.Loan.Status != loan.StatusPending {
		t.Errorf("placeholder status = %v", res.Loan.Status)
	}
	if res.Loan.Borrower != (common.Address{}) || res.Loan.Lender != (common.Address{}) {
		t.Errorf("placeholder addresses not zeroed: %+v", res.Loan)
	}
}

func TestGetLoanDetails_Live(t *testing.T) {
	rec := fundedRecord(7, testBorrower, testAccount)
	c := &chainmock.Contract{
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) { return rec, nil },
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetLoanDetails(context.Background(), 7)
	if res.Source != SourceLive {
		t.Errorf("Source = %s", res.Source)
	}
	if res.Loan.Amount != "1" || res.Loan.InterestRate != 5 {
		t.Errorf("decoded loan: %+v", res.Loan)
	}
}

func TestGetLoansFor_EmptyIsLive(t *testing.T) {
	c := &chainmock.Contract{
		BorrowerLoansFn: func(ctx context.Context, borrower common.Address) ([]*big.Int, error) {
			return nil, nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetLoansFor(context.Background(), RoleBorrower, testBorrower)
	if res.Source != SourceLive {
		t.Errorf("Source = %s", res.Source)
	}
	if len(res.Loans) != 0 {
		t.Errorf("loans = %+v", res.Loans)
	}
}

func TestGetLoansFor_FailureServesSamples(t *testing.T) {
	c := &chainmock.Contract{
		LenderLoansFn: func(ctx context.Context, lender common.Address) ([]*big.Int, error) {
			return nil, errRemote
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetLoansFor(context.Background(), RoleLender, testAccount)
	if res.Source != SourceFallback {
		t.Errorf("Source = %s", res.Source)
	}
	if len(res.Loans) == 0 {
		t.Fatal("sample set empty")
	}
	if res.Loans[0].Lender != testAccount {
		t.Errorf("sample lender = %s, want caller echoed", res.Loans[0].Lender.Hex())
	}
}

func TestGetLoansFor_ResolvesConcurrentlyInOrder(t *testing.T) {
	c := &chainmock.Contract{
		BorrowerLoansFn: func(ctx context.Context, borrower common.Address) ([]*big.Int, error) {
			return []*big.Int{big.NewInt(2), big.NewInt(0), big.NewInt(9)}, nil
		},
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) {
			if id.Int64() == 0 {
				return chain.LoanRecord{}, errRemote // one bad read degrades to a placeholder
			}
			rec := fundedRecord(id.Int64(), testBorrower, testAccount)
			rec.Id = new(big.Int).Set(id)
			return rec, nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetLoansFor(context.Background(), RoleBorrower, testBorrower)
	if res.Source != SourceLive {
		t.Fatalf("Source = %s", res.Source)
	}
	if len(res.Loans) != 3 {
		t.Fatalf("len = %d", len(res.Loans))
	}
	if res.Loans[0].ID != 2 || res.Loans[1].ID != 0 || res.Loans[2].ID != 9 {
		t.Errorf("order not preserved: %d %d %d", res.Loans[0].ID, res.Loans[1].ID, res.Loans[2].ID)
	}
	if res.Loans[1].Status != loan.StatusPending {
		t.Errorf("failed read did not degrade to placeholder: %+v", res.Loans[1])
	}
}

func TestGetAvailableLoans_ProbeFallback(t *testing.T) {
	// Aggregate view fails; the probe walks ids and keeps fundable ones.
	c := &chainmock.Contract{
		AvailableLoansFn: func(ctx context.Context) ([]*big.Int, error) { return nil, errRemote },
		LoanCountFn:      func(ctx context.Context) (*big.Int, error) { return big.NewInt(3), nil },
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) {
			rec := fundedRecord(id.Int64(), testBorrower, common.Address{})
			rec.Id = new(big.Int).Set(id)
			if id.Int64() == 1 {
				rec.Status = uint8(loan.StatusActive)
			}
			return rec, nil
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetAvailableLoans(context.Background())
	if res.Source != SourceLive {
		t.Fatalf("Source = %s", res.Source)
	}
	if len(res.Loans) != 1 || res.Loans[0].ID != 1 {
		t.Fatalf("probed loans: %+v", res.Loans)
	}
}

func TestGetAvailableLoans_BothPathsEmptyServesSamples(t *testing.T) {
	c := &chainmock.Contract{
		AvailableLoansFn: func(ctx context.Context) ([]*big.Int, error) { return nil, errRemote },
		LoanCountFn:      func(ctx context.Context) (*big.Int, error) { return nil, errRemote },
		LoanDetailsFn: func(ctx context.Context, id *big.Int) (chain.LoanRecord, error) {
			return chain.LoanRecord{}, errRemote
		},
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetAvailableLoans(context.Background())
	if res.Source != SourceFallback {
		t.Errorf("Source = %s", res.Source)
	}
	if len(res.Loans) == 0 {
		t.Fatal("sample set must not be empty")
	}
	for _, l := range res.Loans {
		if !l.Status.CanFund() {
			t.Errorf("sample loan %d not fundable: %v", l.ID, l.Status)
		}
	}
}

func TestGetAvailableLoans_EmptyAggregateAlsoSamples(t *testing.T) {
	// The aggregate succeeding with zero loans still serves samples;
	// the marketplace view is never rendered empty.
	c := &chainmock.Contract{
		AvailableLoansFn: func(ctx context.Context) ([]*big.Int, error) { return []*big.Int{}, nil },
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetAvailableLoans(context.Background())
	if res.Source != SourceFallback || len(res.Loans) == 0 {
		t.Fatalf("Source = %s, len = %d", res.Source, len(res.Loans))
	}
}

func TestGetPlatformStats(t *testing.T) {
	c := &chainmock.Contract{
		ActiveLoanCountFn: func(ctx context.Context) (*big.Int, error) { return big.NewInt(12), nil },
		TotalVolumeFn:     func(ctx context.Context) (*big.Int, error) { return wei("2500000000000000000"), nil },
		AverageRateFn:     func(ctx context.Context) (*big.Int, error) { return big.NewInt(625), nil },
	}
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetPlatformStats(context.Background())
	if res.Source != SourceLive {
		t.Errorf("Source = %s", res.Source)
	}
	if res.Stats.ActiveLoans != 12 || res.Stats.TotalVolume != "2.5" || res.Stats.AvgInterestRate != 6.25 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestGetPlatformStats_ZerosOnFailure(t *testing.T) {
	c := &chainmock.Contract{} // every read fails
	g := newTestGateway(c, &chainmock.Provider{}, nil)
	res := g.GetPlatformStats(context.Background())
	if res.Source != SourceFallback {
		t.Errorf("Source = %s", res.Source)
	}
	if res.Stats.ActiveLoans != 0 || res.Stats.TotalVolume != "0" || res.Stats.AvgInterestRate != 0 {
		t.Errorf("stats = %+v, want zeros", res.Stats)
	}
}

// ----- receipt polling -----

func TestAwaitReceipt_RetriesThenConfirms(t *testing.T) {
	var calls int
	rcpt := &types.Receipt{BlockNumber: big.NewInt(10)}
	var confirmedHash string
	var confirmedID *uint64
	p := &chainmock.Provider{
		ReceiptFn: func(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("not found")
			}
			return rcpt, nil
		},
	}
	c := &chainmock.Contract{
		CreatedLoanIDFn: func(receipt *types.Receipt) (uint64, bool) { return 77, true },
	}
	j := &txlogmock.Repo{MarkConfirmedFn: func(ctx context.Context, txHash string, blockNumber uint64, loanID *uint64) error {
		confirmedHash, confirmedID = txHash, loanID
		return nil
	}}
	g := newTestGateway(c, p, j)

	sub := SubmittedTx{Hash: chainmock.Tx(1).Hash(), Operation: txlog.OpCreate}
	conf, err := g.AwaitReceipt(context.Background(), sub, 5)
	if err != nil {
		t.Fatalf("AwaitReceipt: %v", err)
	}
	if calls != 3 {
		t.Errorf("polled %d times", calls)
	}
	if conf.LoanID == nil || *conf.LoanID != 77 {
		t.Errorf("LoanID = %v, want 77 from creation event", conf.LoanID)
	}
	if confirmedHash != sub.Hash.Hex() || confirmedID == nil || *confirmedID != 77 {
		t.Errorf("journal confirm: hash=%s id=%v", confirmedHash, confirmedID)
	}
}

func TestAwaitReceipt_Timeout(t *testing.T) {
	p := &chainmock.Provider{
		ReceiptFn: func(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
			return nil, errors.New("not found")
		},
	}
	g := newTestGateway(&chainmock.Contract{}, p, nil)
	_, err := g.AwaitReceipt(context.Background(), SubmittedTx{Hash: chainmock.Tx(1).Hash()}, 3)
	if !errors.Is(err, loan.ErrConfirmationTimeout) {
		t.Fatalf("err = %v, want ErrConfirmationTimeout", err)
	}
}

func TestAwaitReceipt_Cancellable(t *testing.T) {
	p := &chainmock.Provider{
		ReceiptFn: func(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
			return nil, errors.New("not found")
		},
	}
	g := newTestGateway(&chainmock.Contract{}, p, nil)
	g.pollInterval = time.Hour // cancellation must not wait out the poll timer

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := g.AwaitReceipt(ctx, SubmittedTx{Hash: chainmock.Tx(1).Hash()}, 10)
		done <- err
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poller leaked after cancellation")
	}
}

// ----- journal resilience -----

func TestWriteSucceedsWhenJournalFails(t *testing.T) {
	c := &chainmock.Contract{
		CreateLoanFn: func(ctx context.Context, amount, rateBp, durationSec *big.Int, collateralized bool, value *big.Int) (*types.Transaction, error) {
			return chainmock.Tx(1), nil
		},
	}
	j := &txlogmock.Repo{RecordFn: func(ctx context.Context, e *txlog.Entry) error {
		return errors.New("journal db down")
	}}
	g := newTestGateway(c, &chainmock.Provider{}, j)
	if _, err := g.CreateLoan(context.Background(), CreateLoanInput{Amount: "1", InterestPercent: 5, DurationDays: 30}); err != nil {
		t.Fatalf("CreateLoan failed on journal error: %v", err)
	}
}
