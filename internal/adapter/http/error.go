package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"microloan-client/internal/domain/loan"
	"microloan-client/pkg/units"
)

// Rejection reasons attached to failed writes so the caller can tell a
// cancelled signature from an empty wallet from a reverted call.
const (
	reasonDeclined         = "declined"
	reasonUnderfunded      = "underfunded"
	reasonContractRejected = "contract-rejected"
	reasonOther            = "other"
)

func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, units.ErrInvalidAmount), errors.Is(err, units.ErrInvalidRate),
		errors.Is(err, loan.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrRemoteUnavailable):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.Is(err, loan.ErrConfirmationTimeout):
		return c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: err.Error()})
	}

	reason := classifyRejection(err)
	status := http.StatusBadGateway
	if reason == reasonDeclined || reason == reasonUnderfunded {
		status = http.StatusBadRequest
	}
	return c.JSON(status, ErrorResponse{Error: err.Error(), Reason: reason})
}

// classifyRejection sorts raw node/signer error text into the coarse
// buckets the UI reacts to.
func classifyRejection(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"),
		strings.Contains(msg, "action_rejected"):
		return reasonDeclined
	case strings.Contains(msg, "insufficient funds"), strings.Contains(msg, "insufficient balance"):
		return reasonUnderfunded
	case strings.Contains(msg, "execution reverted"), strings.Contains(msg, "revert"),
		strings.Contains(msg, "always failing transaction"):
		return reasonContractRejected
	default:
		return reasonOther
	}
}
