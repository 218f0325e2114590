package loan

import (
	"errors"

	"microloan-client/pkg/units"
)

var (
	// ErrInvalidAmount and ErrInvalidRate alias the conversion-layer
	// sentinels so callers can match either package.
	ErrInvalidAmount = units.ErrInvalidAmount
	ErrInvalidRate   = units.ErrInvalidRate

	ErrInvalidTransition   = errors.New("invalid loan state transition")
	ErrNotAuthorized       = errors.New("caller not authorized for this loan")
	ErrNotFound            = errors.New("loan not found")
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")
	ErrRemoteUnavailable   = errors.New("chain connection unavailable")
)
