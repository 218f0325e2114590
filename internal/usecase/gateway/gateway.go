// Package gateway is the single boundary between the client and the
// remote loan contract. Every read degrades to tagged fallback data
// instead of surfacing chain errors; writes validate against the
// status model before spending the user's gas, and are never retried.
package gateway

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"

	"microloan-client/internal/domain/chain"
	"microloan-client/internal/domain/loan"
	"microloan-client/internal/domain/txlog"
	"microloan-client/pkg/units"
)

// Source tags read results: fallback data renders identically to live
// data but is distinguishable for logging and tests.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
)

// DefaultReceiptAttempts bounds confirmation polling when the caller
// does not say otherwise.
const DefaultReceiptAttempts = 10

// defaultProbeCount is how many ids the availability probe scans when
// even the count query fails.
const defaultProbeCount = 10

type LoanResult struct {
	Loan   loan.Loan `json:"loan"`
	Source Source    `json:"source"`
	Epoch  uint64    `json:"epoch"`
}

type LoanListResult struct {
	Loans  []loan.Loan `json:"loans"`
	Source Source      `json:"source"`
	Epoch  uint64      `json:"epoch"`
}

type PlatformStats struct {
	ActiveLoans     uint64  `json:"active_loans"`
	TotalVolume     string  `json:"total_volume"`
	AvgInterestRate float64 `json:"avg_interest_rate"`
}

type StatsResult struct {
	Stats  PlatformStats `json:"stats"`
	Source Source        `json:"source"`
	Epoch  uint64        `json:"epoch"`
}

// SubmittedTx is the pending-transaction handle returned by every
// write. The caller awaits confirmation separately.
type SubmittedTx struct {
	Hash      common.Hash     `json:"hash"`
	Operation txlog.Operation `json:"operation"`
	LoanID    *uint64         `json:"loan_id,omitempty"`
	Epoch     uint64          `json:"epoch"`
}

// Confirmation is a mined transaction plus the loan id, once known.
// For creations the id comes from the LoanCreated event and may be
// absent if the contract did not emit one.
type Confirmation struct {
	Receipt *types.Receipt `json:"-"`
	LoanID  *uint64        `json:"loan_id,omitempty"`
}

type CreateLoanInput struct {
	Amount          string
	InterestPercent float64
	DurationDays    int64
	Collateralized  bool
	// Collateral is the decimal amount to escrow; empty means half
	// the principal.
	Collateral string
}

type Gateway struct {
	sessions     *SessionManager
	journal      txlog.Repository // nil disables journaling
	now          func() time.Time
	pollInterval time.Duration
}

func New(sessions *SessionManager, journal txlog.Repository) *Gateway {
	return &Gateway{
		sessions:     sessions,
		journal:      journal,
		now:          time.Now,
		pollInterval: time.Second,
	}
}

// Stale reports whether a result epoch predates the current session.
// Callers drop stale results after an account or network switch.
func (g *Gateway) Stale(epoch uint64) bool {
	return epoch != g.sessions.Epoch()
}

// CreateLoan validates and converts the entered terms, then submits
// the creation transaction. For collateralized loans the collateral
// rides along as the transferred value.
func (g *Gateway) CreateLoan(ctx context.Context, in CreateLoanInput) (SubmittedTx, error) {
	log.Printf("gateway: createLoan amount=%s rate=%v duration=%dd collateralized=%v",
		in.Amount, in.InterestPercent, in.DurationDays, in.Collateralized)

	amount, err := units.ToBaseUnits(in.Amount)
	if err != nil {
		return SubmittedTx{}, err
	}
	if amount.Sign() == 0 {
		return SubmittedTx{}, fmt.Errorf("amount must be positive: %w", units.ErrInvalidAmount)
	}
	rateBp, err := units.PercentToBasisPoints(in.InterestPercent)
	if err != nil {
		return SubmittedTx{}, err
	}

	value := big.NewInt(0)
	if in.Collateralized {
		if in.Collateral != "" {
			if value, err = units.ToBaseUnits(in.Collateral); err != nil {
				return SubmittedTx{}, err
			}
		} else {
			value = new(big.Int).Div(amount, big.NewInt(2))
		}
	}

	s, err := g.sessions.Current(ctx)
	if err != nil {
		return SubmittedTx{}, err
	}
	tx, err := s.Contract.CreateLoan(ctx, amount,
		big.NewInt(rateBp), big.NewInt(units.DaysToSeconds(in.DurationDays)),
		in.Collateralized, value)
	if err != nil {
		return SubmittedTx{}, fmt.Errorf("createLoan: %w", err)
	}
	log.Printf("gateway: createLoan submitted tx=%s", tx.Hash().Hex())
	g.record(ctx, s, txlog.OpCreate, nil, value, tx)
	return SubmittedTx{Hash: tx.Hash(), Operation: txlog.OpCreate, Epoch: s.Epoch}, nil
}

// FundLoan reads the loan, verifies it is still open for funding, and
// transfers exactly the principal.
func (g *Gateway) FundLoan(ctx context.Context, id uint64) (SubmittedTx, error) {
	log.Printf("gateway: fundLoan loan=%d", id)
	s, rec, err := g.readForWrite(ctx, id)
	if err != nil {
		return SubmittedTx{}, err
	}
	st := loan.Status(rec.Status)
	if _, err := st.Next(loan.ActionFund); err != nil {
		return SubmittedTx{}, fmt.Errorf("loan %d is %s: %w", id, st, err)
	}
	tx, err := s.Contract.FundLoan(ctx, new(big.Int).SetUint64(id), rec.Amount)
	if err != nil {
		return SubmittedTx{}, fmt.Errorf("fundLoan: %w", err)
	}
	log.Printf("gateway: fundLoan submitted loan=%d tx=%s value=%s", id, tx.Hash().Hex(), rec.Amount)
	g.record(ctx, s, txlog.OpFund, &id, rec.Amount, tx)
	return SubmittedTx{Hash: tx.Hash(), Operation: txlog.OpFund, LoanID: &id, Epoch: s.Epoch}, nil
}

// RepayLoan transfers principal plus interest, with the interest
// truncated toward zero exactly as the ledger computes it.
func (g *Gateway) RepayLoan(ctx context.Context, id uint64) (SubmittedTx, error) {
	log.Printf("gateway: repayLoan loan=%d", id)
	s, rec, err := g.readForWrite(ctx, id)
	if err != nil {
		return SubmittedTx{}, err
	}
	st := loan.Status(rec.Status)
	if _, err := st.Next(loan.ActionRepay); err != nil {
		return SubmittedTx{}, fmt.Errorf("loan %d is %s: %w", id, st, err)
	}
	if rec.Borrower != s.Account {
		return SubmittedTx{}, fmt.Errorf("only the borrower may repay loan %d: %w", id, loan.ErrNotAuthorized)
	}

	total := TotalRepayment(rec.Amount, rec.InterestRate)
	tx, err := s.Contract.RepayLoan(ctx, new(big.Int).SetUint64(id), total)
	if err != nil {
		return SubmittedTx{}, fmt.Errorf("repayLoan: %w", err)
	}
	log.Printf("gateway: repayLoan submitted loan=%d tx=%s value=%s", id, tx.Hash().Hex(), total)
	g.record(ctx, s, txlog.OpRepay, &id, total, tx)
	return SubmittedTx{Hash: tx.Hash(), Operation: txlog.OpRepay, LoanID: &id, Epoch: s.Epoch}, nil
}

// MarkDefaulted declares a past-due funded loan defaulted. The local
// due-date check is advisory; the contract verifies independently.
func (g *Gateway) MarkDefaulted(ctx context.Context, id uint64) (SubmittedTx, error) {
	log.Printf("gateway: markDefaulted loan=%d", id)
	s, rec, err := g.readForWrite(ctx, id)
	if err != nil {
		return SubmittedTx{}, err
	}
	st := loan.Status(rec.Status)
	if _, err := st.Next(loan.ActionDefault); err != nil {
		return SubmittedTx{}, fmt.Errorf("loan %d is %s: %w", id, st, err)
	}
	if rec.Lender != s.Account {
		return SubmittedTx{}, fmt.Errorf("only the lender may default loan %d: %w", id, loan.ErrNotAuthorized)
	}
	if due := rec.DueTimestamp; due != nil && due.Sign() > 0 {
		dueAt := time.Unix(due.Int64(), 0)
		if g.now().Before(dueAt) {
			return SubmittedTx{}, fmt.Errorf("loan %d not due until %s: %w",
				id, dueAt.UTC().Format(time.RFC3339), loan.ErrInvalidTransition)
		}
	}
	tx, err := s.Contract.MarkDefaulted(ctx, new(big.Int).SetUint64(id))
	if err != nil {
		return SubmittedTx{}, fmt.Errorf("markDefaulted: %w", err)
	}
	log.Printf("gateway: markDefaulted submitted loan=%d tx=%s", id, tx.Hash().Hex())
	g.record(ctx, s, txlog.OpDefault, &id, big.NewInt(0), tx)
	return SubmittedTx{Hash: tx.Hash(), Operation: txlog.OpDefault, LoanID: &id, Epoch: s.Epoch}, nil
}

// GetLoanDetails never fails: on any remote problem it returns a
// clearly tagged placeholder so the view layer has something to
// render.
func (g *Gateway) GetLoanDetails(ctx context.Context, id uint64) LoanResult {
	s, err := g.sessions.Current(ctx)
	if err != nil {
		log.Printf("gateway: getLoanDetails loan=%d no session, serving placeholder: %v", id, err)
		return LoanResult{Loan: placeholderLoan(id, g.now()), Source: SourceFallback, Epoch: g.sessions.Epoch()}
	}
	rec, err := s.Contract.LoanDetails(ctx, new(big.Int).SetUint64(id))
	if err != nil {
		log.Printf("gateway: getLoanDetails loan=%d read failed, serving placeholder: %v", id, err)
		return LoanResult{Loan: placeholderLoan(id, g.now()), Source: SourceFallback, Epoch: s.Epoch}
	}
	return LoanResult{Loan: rec.Decode(), Source: SourceLive, Epoch: s.Epoch}
}

// GetLoansFor lists a role's loans and resolves them concurrently.
// An empty list is a legitimate outcome; only a failed lookup falls
// back to samples.
func (g *Gateway) GetLoansFor(ctx context.Context, role Role, addr common.Address) LoanListResult {
	log.Printf("gateway: getLoansFor role=%s addr=%s", role, addr.Hex())
	s, err := g.sessions.Current(ctx)
	if err != nil {
		log.Printf("gateway: getLoansFor no session, serving samples: %v", err)
		return LoanListResult{Loans: sampleRoleLoans(role, addr, g.now()), Source: SourceFallback, Epoch: g.sessions.Epoch()}
	}

	var ids []*big.Int
	if role == RoleLender {
		ids, err = s.Contract.LenderLoans(ctx, addr)
	} else {
		ids, err = s.Contract.BorrowerLoans(ctx, addr)
	}
	if err != nil {
		log.Printf("gateway: getLoansFor role=%s lookup failed, serving samples: %v", role, err)
		return LoanListResult{Loans: sampleRoleLoans(role, addr, g.now()), Source: SourceFallback, Epoch: s.Epoch}
	}
	if len(ids) == 0 {
		return LoanListResult{Loans: []loan.Loan{}, Source: SourceLive, Epoch: s.Epoch}
	}
	return LoanListResult{Loans: g.resolveAll(ctx, s, ids), Source: SourceLive, Epoch: s.Epoch}
}

// GetAvailableLoans tries the aggregate view first, then probes ids
// one by one, and finally serves samples so the marketplace page is
// never empty.
func (g *Gateway) GetAvailableLoans(ctx context.Context) LoanListResult {
	log.Print("gateway: getAvailableLoans")
	s, err := g.sessions.Current(ctx)
	if err != nil {
		log.Printf("gateway: getAvailableLoans no session, serving samples: %v", err)
		return LoanListResult{Loans: sampleAvailableLoans(g.now()), Source: SourceFallback, Epoch: g.sessions.Epoch()}
	}

	ids, err := s.Contract.AvailableLoans(ctx)
	if err != nil {
		log.Printf("gateway: getAvailableLoans aggregate read failed, probing ids: %v", err)
		ids = g.probeAvailable(ctx, s)
	}
	if len(ids) == 0 {
		log.Print("gateway: getAvailableLoans empty, serving samples")
		return LoanListResult{Loans: sampleAvailableLoans(g.now()), Source: SourceFallback, Epoch: s.Epoch}
	}
	return LoanListResult{Loans: g.resolveAll(ctx, s, ids), Source: SourceLive, Epoch: s.Epoch}
}

// probeAvailable scans loan ids sequentially and keeps the ones still
// open for funding. Individual read failures skip that id.
func (g *Gateway) probeAvailable(ctx context.Context, s *Session) []*big.Int {
	count := int64(defaultProbeCount)
	if n, err := s.Contract.LoanCount(ctx); err == nil {
		count = n.Int64()
	} else {
		log.Printf("gateway: loan count unavailable, probing %d ids: %v", count, err)
	}

	var ids []*big.Int
	for i := int64(0); i < count; i++ {
		rec, err := s.Contract.LoanDetails(ctx, big.NewInt(i))
		if err != nil {
			log.Printf("gateway: probe loan=%d read failed: %v", i, err)
			continue
		}
		if !rec.Empty() && loan.Status(rec.Status).CanFund() {
			ids = append(ids, big.NewInt(i))
		}
	}
	return ids
}

// GetPlatformStats surfaces zeros on failure, never samples.
func (g *Gateway) GetPlatformStats(ctx context.Context) StatsResult {
	log.Print("gateway: getPlatformStats")
	stats := PlatformStats{TotalVolume: "0"}
	s, err := g.sessions.Current(ctx)
	if err != nil {
		log.Printf("gateway: getPlatformStats no session: %v", err)
		return StatsResult{Stats: stats, Source: SourceFallback, Epoch: g.sessions.Epoch()}
	}

	src := SourceLive
	if n, err := s.Contract.ActiveLoanCount(ctx); err == nil {
		stats.ActiveLoans = n.Uint64()
	} else {
		log.Printf("gateway: activeLoans read failed: %v", err)
		src = SourceFallback
	}
	if v, err := s.Contract.TotalVolume(ctx); err == nil {
		stats.TotalVolume = units.FromBaseUnits(v)
	} else {
		log.Printf("gateway: totalLoanVolume read failed: %v", err)
		src = SourceFallback
	}
	if r, err := s.Contract.AverageRate(ctx); err == nil {
		stats.AvgInterestRate = units.BasisPointsToPercent(r.Int64())
	} else {
		log.Printf("gateway: getAverageInterestRate read failed: %v", err)
		src = SourceFallback
	}
	return StatsResult{Stats: stats, Source: src, Epoch: s.Epoch}
}

// Balance reads the connected account's balance as a decimal string.
func (g *Gateway) Balance(ctx context.Context) (string, error) {
	s, err := g.sessions.Current(ctx)
	if err != nil {
		return "0", err
	}
	b, err := s.Provider.Balance(ctx, s.Account)
	if err != nil {
		return "0", fmt.Errorf("balance: %w", err)
	}
	return units.FromBaseUnits(b), nil
}

// AwaitReceipt polls once per second until the transaction is mined,
// the context is cancelled, or maxAttempts is exhausted. This is the
// only retry loop in the gateway; writes themselves never retry.
func (g *Gateway) AwaitReceipt(ctx context.Context, sub SubmittedTx, maxAttempts int) (*Confirmation, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultReceiptAttempts
	}
	s, err := g.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		rcpt, err := s.Provider.Receipt(ctx, sub.Hash)
		if err == nil && rcpt != nil {
			log.Printf("gateway: tx=%s confirmed in block %d", sub.Hash.Hex(), rcpt.BlockNumber.Uint64())
			return g.confirmed(ctx, s, sub, rcpt), nil
		}
		if err != nil {
			log.Printf("gateway: receipt tx=%s attempt %d/%d: %v", sub.Hash.Hex(), attempt, maxAttempts, err)
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.pollInterval):
		}
	}
	return nil, fmt.Errorf("tx %s unconfirmed after %d attempts: %w", sub.Hash.Hex(), maxAttempts, loan.ErrConfirmationTimeout)
}

func (g *Gateway) confirmed(ctx context.Context, s *Session, sub SubmittedTx, rcpt *types.Receipt) *Confirmation {
	c := &Confirmation{Receipt: rcpt, LoanID: sub.LoanID}
	if sub.Operation == txlog.OpCreate {
		if id, ok := s.Contract.CreatedLoanID(rcpt); ok {
			c.LoanID = &id
			log.Printf("gateway: tx=%s created loan %d", sub.Hash.Hex(), id)
		}
	}
	if g.journal != nil {
		if err := g.journal.MarkConfirmed(ctx, sub.Hash.Hex(), rcpt.BlockNumber.Uint64(), c.LoanID); err != nil {
			log.Printf("gateway: journal confirm tx=%s: %v", sub.Hash.Hex(), err)
		}
	}
	return c
}

// TotalRepayment is principal plus floor(principal*rateBp/10000),
// matching the contract's integer arithmetic exactly.
func TotalRepayment(amount, rateBp *big.Int) *big.Int {
	interest := new(big.Int).Mul(amount, rateBp)
	interest.Div(interest, big.NewInt(10000))
	return interest.Add(interest, amount)
}

// readForWrite fetches current loan state ahead of a mutating call.
// A failed or empty read means the write would burn gas on a loan the
// chain does not know.
func (g *Gateway) readForWrite(ctx context.Context, id uint64) (*Session, chain.LoanRecord, error) {
	s, err := g.sessions.Current(ctx)
	if err != nil {
		return nil, chain.LoanRecord{}, err
	}
	rec, err := s.Contract.LoanDetails(ctx, new(big.Int).SetUint64(id))
	if err != nil {
		return nil, chain.LoanRecord{}, fmt.Errorf("loan %d: %w", id, loan.ErrNotFound)
	}
	if rec.Empty() {
		return nil, chain.LoanRecord{}, fmt.Errorf("loan %d: %w", id, loan.ErrNotFound)
	}
	return s, rec, nil
}

func (g *Gateway) record(ctx context.Context, s *Session, op txlog.Operation, loanID *uint64, value *big.Int, tx *types.Transaction) {
	if g.journal == nil {
		return
	}
	e := &txlog.Entry{
		TxHash:    tx.Hash().Hex(),
		Operation: op,
		LoanID:    loanID,
		Account:   s.Account.Hex(),
		ValueWei:  value.String(),
		Status:    txlog.StatusSubmitted,
	}
	if err := g.journal.Record(ctx, e); err != nil {
		// Journaling is best effort; the write already went out.
		log.Printf("gateway: journal record tx=%s: %v", e.TxHash, err)
	}
}

func (g *Gateway) resolveAll(ctx context.Context, s *Session, ids []*big.Int) []loan.Loan {
	out := make([]loan.Loan, len(ids))
	eg, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		eg.Go(func() error {
			rec, err := s.Contract.LoanDetails(ctx, id)
			if err != nil {
				log.Printf("gateway: resolve loan=%s read failed, placeholder: %v", id, err)
				out[i] = placeholderLoan(id.Uint64(), g.now())
				return nil
			}
			out[i] = rec.Decode()
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors
	return out
}
