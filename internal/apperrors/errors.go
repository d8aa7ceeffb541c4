package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Broad error categories. Handlers map these onto HTTP status codes; services
// wrap them with context via fmt.Errorf("...: %w", err).
var (
	// ErrNotFound indicates that a requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates that input data failed validation checks.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrForbidden indicates the caller lacks the privilege for the attempted action.
	// Deliberately carries no detail about which check failed.
	ErrForbidden = errors.New("insufficient privilege")

	// ErrConflict indicates the operation is not permitted in the entity's current state.
	ErrConflict = errors.New("operation conflicts with current state")

	// ErrInternal indicates an unexpected failure that is not the caller's fault.
	ErrInternal = errors.New("internal error")
)

// Entry/line validation errors. Each wraps ErrValidation so callers can match
// either the specific rule or the broad category with errors.Is.
var (
	ErrNoLines        = fmt.Errorf("%w: entry has no lines", ErrValidation)
	ErrTooFewLines    = fmt.Errorf("%w: entry must have at least two lines", ErrValidation)
	ErrMissingAccount = fmt.Errorf("%w: line references an unknown account", ErrValidation)
	ErrNoDebit        = fmt.Errorf("%w: entry has no debit line", ErrValidation)
	ErrNoCredit       = fmt.Errorf("%w: entry has no credit line", ErrValidation)
	ErrOutOfBalance   = fmt.Errorf("%w: total debits do not equal total credits", ErrValidation)
	ErrNegativeAmount = fmt.Errorf("%w: line amounts must not be negative", ErrValidation)
	ErrBothAmountsSet = fmt.Errorf("%w: line must not carry both a debit and a credit", ErrValidation)
	ErrNoAmountSet    = fmt.Errorf("%w: line must carry a debit or a credit", ErrValidation)
)

// State machine errors.
var (
	// ErrNotPending is returned when an edit, delete, approve or reject is
	// attempted on an entry that is no longer PENDING.
	ErrNotPending = fmt.Errorf("%w: entry is not pending", ErrConflict)

	// ErrMissingReason is returned when a rejection carries no reason.
	ErrMissingReason = fmt.Errorf("%w: a rejection reason is required", ErrValidation)
)

// Account integrity errors.
var (
	ErrDuplicateAccountNumber = fmt.Errorf("%w: account number already in use", ErrDuplicate)
	ErrDuplicateAccountName   = fmt.Errorf("%w: account name already in use", ErrDuplicate)
	ErrInvalidAccountNumber   = fmt.Errorf("%w: account number must contain digits only", ErrValidation)
	ErrNonZeroBalance         = fmt.Errorf("%w: account balance must be zero to deactivate", ErrConflict)
)

// Statement parameter errors.
var (
	ErrMissingDateRange = fmt.Errorf("%w: start and end dates are required", ErrValidation)
	ErrMissingAsOfDate  = fmt.Errorf("%w: an as-of date is required", ErrValidation)
)

// ErrPostingFailed is returned when the atomic posting of an approved entry
// could not complete. The whole approval rolls back; the caller may retry.
var ErrPostingFailed = errors.New("posting failed")

// OutOfBalanceError reports the debit/credit totals of a rejected line set so
// the caller can build a precise message.
type OutOfBalanceError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *OutOfBalanceError) Error() string {
	return fmt.Sprintf("total debits %s do not equal total credits %s (difference %s)",
		e.Debits.StringFixed(2), e.Credits.StringFixed(2), e.Debits.Sub(e.Credits).Abs().StringFixed(2))
}

func (e *OutOfBalanceError) Unwrap() error { return ErrOutOfBalance }

// AppError attaches an HTTP status hint to a wrapped error. Used by the
// repository layer for infrastructure failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
