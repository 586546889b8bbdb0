package tec

import "errors"

// Sentinel error kinds reported by the evaluator. Record-level errors
// (ErrInvalidBreakpoints, ErrMissingField, ErrUnknownCarrier) indicate a
// malformed record and abort model construction. The remaining kinds are
// per-call feasibility violations; the caller decides whether an infeasible
// candidate is fatal.
var (
	ErrInvalidBreakpoints   = errors.New("invalid breakpoints")
	ErrMissingField         = errors.New("missing required field")
	ErrUnknownCarrier       = errors.New("unknown carrier")
	ErrSizeOutOfBounds      = errors.New("size out of bounds")
	ErrBelowMinPartLoad     = errors.New("load below minimum part load")
	ErrMinUptimeViolation   = errors.New("minimum uptime not reached")
	ErrMinDowntimeViolation = errors.New("minimum downtime not reached")
	ErrMaxStartupsExceeded  = errors.New("maximum startup count exceeded")
	ErrRampRateExceeded     = errors.New("ramp rate exceeded")
	ErrInvalidTransition    = errors.New("invalid status transition")
)
