/*
errors.go - Error kinds for leave operations

ERROR CATEGORIES:
  1. Client errors - NotFound, InvalidDate, Overlap, QuotaExceeded.
     Recovered by the service boundary and shown to the user.
  2. IOFault - storage or filesystem failure. Aborts the current operation.

USAGE:
  if errors.Is(err, leave.ErrOverlap) { ... }

  var qe *leave.QuotaExceededError
  if errors.As(err, &qe) {
      fmt.Println(qe.Used, qe.Requested, qe.Limit)
  }

SEE ALSO:
  - validator.go: Produces the client errors
  - store/sqlite: Wraps driver errors with ErrIOFault
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when the employee does not exist.
	ErrNotFound = errors.New("employee not found")

	// ErrInvalidDate is returned for a malformed date or an inverted range.
	ErrInvalidDate = errors.New("invalid date")

	// ErrOverlap is returned when the requested range intersects a booked one.
	ErrOverlap = errors.New("leave overlaps with an existing request")

	// ErrQuotaExceeded is returned when the request would exceed the annual quota.
	ErrQuotaExceeded = errors.New("annual leave quota exceeded")

	// ErrIOFault is returned when storage or the filesystem fails.
	ErrIOFault = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateError names the offending field.
type InvalidDateError struct {
	Field  string // "start", "end" or "range"
	Value  string
	Reason error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid %s date %q: %v", e.Field, e.Value, e.Reason)
}

func (e *InvalidDateError) Unwrap() []error {
	return []error{ErrInvalidDate, e.Reason}
}

// OverlapError reports the requested range that collided.
type OverlapError struct {
	EmployeeID EmployeeID
	Requested  calendar.Range
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("leave %s for %s overlaps with an existing request", e.Requested, e.EmployeeID)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// QuotaExceededError carries the numbers behind a quota rejection.
type QuotaExceededError struct {
	EmployeeID EmployeeID
	Used       decimal.Decimal
	Requested  decimal.Decimal
	Limit      decimal.Decimal
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: used %s, requested %s, limit %s",
		e.Used, e.Requested, e.Limit)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// NotFoundError names the missing employee.
type NotFoundError struct {
	EmployeeID EmployeeID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %q not found", e.EmployeeID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// Kind classifies an error for presentation layers.
type Kind string

const (
	KindNone          Kind = ""
	KindNotFound      Kind = "not_found"
	KindInvalidDate   Kind = "invalid_date"
	KindOverlap       Kind = "overlap"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindIOFault       Kind = "io_fault"
)

// KindOf maps err to its Kind. Unknown errors are treated as IO faults.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidDate):
		return KindInvalidDate
	case errors.Is(err, ErrOverlap):
		return KindOverlap
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	default:
		return KindIOFault
	}
}

// IsClientError returns true if the error is due to invalid user input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrQuotaExceeded)
}

// IsNotFound returns true if the error indicates a missing employee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IOFault wraps a storage error so that both ErrIOFault and the cause match
// errors.Is.
func IOFault(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrIOFault, op, err)
}
