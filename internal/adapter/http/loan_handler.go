package http

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"microloan-client/internal/domain/txlog"
	"microloan-client/internal/usecase/display"
	"microloan-client/internal/usecase/gateway"
)

// Service is the gateway surface the handlers depend on.
type Service interface {
	CreateLoan(ctx context.Context, in gateway.CreateLoanInput) (gateway.SubmittedTx, error)
	FundLoan(ctx context.Context, id uint64) (gateway.SubmittedTx, error)
	RepayLoan(ctx context.Context, id uint64) (gateway.SubmittedTx, error)
	MarkDefaulted(ctx context.Context, id uint64) (gateway.SubmittedTx, error)
	GetLoanDetails(ctx context.Context, id uint64) gateway.LoanResult
	GetLoansFor(ctx context.Context, role gateway.Role, addr common.Address) gateway.LoanListResult
	GetAvailableLoans(ctx context.Context) gateway.LoanListResult
	GetPlatformStats(ctx context.Context) gateway.StatsResult
	Balance(ctx context.Context) (string, error)
	AwaitReceipt(ctx context.Context, sub gateway.SubmittedTx, maxAttempts int) (*gateway.Confirmation, error)
}

type LoanHandler struct {
	svc     Service
	journal txlog.Repository // nil disables transaction lookups by journal
}

func NewLoanHandler(svc Service, journal txlog.Repository) *LoanHandler {
	return &LoanHandler{svc: svc, journal: journal}
}

func (h *LoanHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/loans", h.CreateLoan)
	e.POST("/loans/:id/fund", h.FundLoan)
	e.POST("/loans/:id/repay", h.RepayLoan)
	e.POST("/loans/:id/default", h.MarkDefaulted)
	e.GET("/loans/available", h.AvailableLoans)
	e.GET("/loans/:id", h.GetLoan)
	e.GET("/borrowers/:addr/loans", h.BorrowerLoans)
	e.GET("/lenders/:addr/loans", h.LenderLoans)
	e.GET("/stats", h.Stats)
	e.GET("/balance", h.GetBalance)
	e.GET("/transactions/:hash", h.GetTransaction)
	e.GET("/accounts/:addr/transactions", h.AccountTransactions)
}

func (h *LoanHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

type createLoanReq struct {
	Amount           string  `json:"amount"            validate:"required,amount"`
	InterestRate     float64 `json:"interest_rate"     validate:"required,gt=0,lte=100"`
	DurationDays     int64   `json:"duration_days"     validate:"required,gte=1"`
	IsCollateralized bool    `json:"is_collateralized"`
	CollateralAmount string  `json:"collateral_amount" validate:"omitempty,amount"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	sub, err := h.svc.CreateLoan(c.Request().Context(), gateway.CreateLoanInput{
		Amount:          req.Amount,
		InterestPercent: req.InterestRate,
		DurationDays:    req.DurationDays,
		Collateralized:  req.IsCollateralized,
		Collateral:      req.CollateralAmount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, sub)
}

func (h *LoanHandler) FundLoan(c echo.Context) error {
	return h.write(c, h.svc.FundLoan)
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	return h.write(c, h.svc.RepayLoan)
}

func (h *LoanHandler) MarkDefaulted(c echo.Context) error {
	return h.write(c, h.svc.MarkDefaulted)
}

func (h *LoanHandler) write(c echo.Context, op func(context.Context, uint64) (gateway.SubmittedTx, error)) error {
	id, err := loanIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	sub, err := op(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, sub)
}

type loanResp struct {
	Loan   display.Loan   `json:"loan"`
	Source gateway.Source `json:"source"`
	Epoch  uint64         `json:"epoch"`
}

type loanListResp struct {
	Loans  []display.Loan `json:"loans"`
	Source gateway.Source `json:"source"`
	Epoch  uint64         `json:"epoch"`
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := loanIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	res := h.svc.GetLoanDetails(c.Request().Context(), id)
	return c.JSON(http.StatusOK, loanResp{Loan: display.Build(res.Loan), Source: res.Source, Epoch: res.Epoch})
}

func (h *LoanHandler) AvailableLoans(c echo.Context) error {
	res := h.svc.GetAvailableLoans(c.Request().Context())
	return c.JSON(http.StatusOK, loanListResp{Loans: display.BuildAll(res.Loans), Source: res.Source, Epoch: res.Epoch})
}

func (h *LoanHandler) BorrowerLoans(c echo.Context) error {
	return h.roleLoans(c, gateway.RoleBorrower)
}

func (h *LoanHandler) LenderLoans(c echo.Context) error {
	return h.roleLoans(c, gateway.RoleLender)
}

func (h *LoanHandler) roleLoans(c echo.Context, role gateway.Role) error {
	raw := c.Param("addr")
	if !common.IsHexAddress(raw) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid address"})
	}
	res := h.svc.GetLoansFor(c.Request().Context(), role, common.HexToAddress(raw))
	return c.JSON(http.StatusOK, loanListResp{Loans: display.BuildAll(res.Loans), Source: res.Source, Epoch: res.Epoch})
}

type statsResp struct {
	Stats  display.Stats  `json:"stats"`
	Source gateway.Source `json:"source"`
	Epoch  uint64         `json:"epoch"`
}

func (h *LoanHandler) Stats(c echo.Context) error {
	res := h.svc.GetPlatformStats(c.Request().Context())
	view := display.BuildStats(res.Stats.ActiveLoans, res.Stats.TotalVolume, res.Stats.AvgInterestRate)
	return c.JSON(http.StatusOK, statsResp{Stats: view, Source: res.Source, Epoch: res.Epoch})
}

func (h *LoanHandler) GetBalance(c echo.Context) error {
	b, err := h.svc.Balance(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"balance": b})
}

var reTxHash = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

type txResp struct {
	TxHash      string  `json:"tx_hash"`
	Status      string  `json:"status"`
	BlockNumber uint64  `json:"block_number,omitempty"`
	LoanID      *uint64 `json:"loan_id,omitempty"`
	GasUsed     uint64  `json:"gas_used,omitempty"`
}

// GetTransaction waits for a submitted transaction to confirm. The
// journal, when present, recovers the operation and loan id so
// creations report the id minted on chain.
func (h *LoanHandler) GetTransaction(c echo.Context) error {
	raw := c.Param("hash")
	if !reTxHash.MatchString(raw) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid transaction hash"})
	}
	ctx := c.Request().Context()

	sub := gateway.SubmittedTx{Hash: common.HexToHash(raw)}
	if h.journal != nil {
		if entry, err := h.journal.GetByTxHash(ctx, raw); err == nil {
			sub.Operation = entry.Operation
			sub.LoanID = entry.LoanID
		}
	}

	conf, err := h.svc.AwaitReceipt(ctx, sub, gateway.DefaultReceiptAttempts)
	if err != nil {
		return writeError(c, err)
	}
	resp := txResp{TxHash: raw, Status: "confirmed", LoanID: conf.LoanID}
	if conf.Receipt != nil {
		resp.BlockNumber = conf.Receipt.BlockNumber.Uint64()
		resp.GasUsed = conf.Receipt.GasUsed
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *LoanHandler) AccountTransactions(c echo.Context) error {
	raw := c.Param("addr")
	if !common.IsHexAddress(raw) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid address"})
	}
	if h.journal == nil {
		return c.JSON(http.StatusOK, map[string]any{"transactions": []txlog.Entry{}})
	}
	entries, err := h.journal.ListByAccount(c.Request().Context(), common.HexToAddress(raw).Hex())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "journal unavailable"})
	}
	if entries == nil {
		entries = []txlog.Entry{}
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": entries})
}

func loanIDParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
