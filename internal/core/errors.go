package core

import "fmt"

// Error is a structured error with a stable code and an optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so wrapped instances compare equal to their base.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError attaches a cause to a base error, keeping its code and message.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors. Messages double as the user-facing error payload, so
// the screening and data messages keep the exact wording clients match on.
var (
	// Request and date-range errors
	ErrInvalidRange    = &Error{Code: "INVALID_RANGE", Message: "end date must be after start date"}
	ErrDegenerateRange = &Error{Code: "DEGENERATE_RANGE", Message: "date range spans zero elapsed time"}

	// Per-request structural failures
	ErrNoMatch     = &Error{Code: "NO_MATCH", Message: "No stocks matched the filter criteria."}
	ErrNoPriceData = &Error{Code: "NO_PRICE_DATA", Message: "No historical data available for selected stocks."}
	ErrEmptySeries = &Error{Code: "NO_PRICE_DATA", Message: "No valid rebalance periods with data."}

	// Per-symbol data fetch failures, absorbed at the selector/simulator
	// boundary and never fatal for the run
	ErrProviderUnavailable = &Error{Code: "PROVIDER_UNAVAILABLE", Message: "provider unavailable"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// API errors
	ErrJobNotFound      = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}
	ErrArtifactNotFound = &Error{Code: "ARTIFACT_NOT_FOUND", Message: "export artifact not found"}
)
