package domain

import (
	"errors"
	"fmt"

	"git.appkode.ru/pub/go/failure"

	"trade_pilot/pkg/errcodes"
)

// AppError is a domain error carrying a machine-readable code.
type AppError struct {
	Code    failure.ErrorCode
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NewError(code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func WrapError(err error, code failure.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// Reasonf refines a sentinel with a human-readable reason while keeping it
// matchable with errors.Is.
func Reasonf(sentinel *AppError, format string, args ...any) *AppError {
	return WrapError(sentinel, sentinel.Code, fmt.Sprintf(format, args...))
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain.
func GetCode(err error) (failure.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// Negotiation outcomes. Item-local ones abandon the current item, the rest end
// the session.
var (
	ErrSensingFailure       = NewError(errcodes.SensingFailure, "sensing failure")
	ErrUnprofitable         = NewError(errcodes.Unprofitable, "unprofitable")
	ErrVerificationMismatch = NewError(errcodes.VerificationMismatch, "item name mismatch")
	ErrSkipped              = NewError(errcodes.ItemSkipped, "item skipped")

	ErrBudgetExhausted = NewError(errcodes.BudgetExhausted, "budget exhausted")
	ErrStockExhausted  = NewError(errcodes.StockExhausted, "no sellable item left")
	ErrStopped         = NewError(errcodes.SessionStopped, "session stopped")

	ErrCatalogMalformed = NewError(errcodes.CatalogMalformed, "catalog malformed")
	ErrCatalogRow       = NewError(errcodes.CatalogRowInvalid, "catalog row invalid")
	ErrInvalidConfig    = NewError(errcodes.InvalidConfig, "invalid configuration")
	ErrInvalidLayout    = NewError(errcodes.InvalidLayout, "invalid screen layout")
	ErrLedger           = NewError(errcodes.LedgerUnavailable, "ledger unavailable")
	ErrReport           = NewError(errcodes.ReportWriteFailed, "report write failed")

	ErrAlreadyRunning = NewError(errcodes.SessionAlreadyRunning, "session is already running")
	ErrNotRunning     = NewError(errcodes.SessionNotRunning, "session is not running")
)

// IsItemLocal reports whether err only abandons the current item.
func IsItemLocal(err error) bool {
	return errors.Is(err, ErrSensingFailure) ||
		errors.Is(err, ErrUnprofitable) ||
		errors.Is(err, ErrVerificationMismatch) ||
		errors.Is(err, ErrSkipped)
}

// IsGracefulHalt reports whether err ends the session without being a failure.
func IsGracefulHalt(err error) bool {
	return errors.Is(err, ErrBudgetExhausted) ||
		errors.Is(err, ErrStockExhausted) ||
		errors.Is(err, ErrStopped)
}
