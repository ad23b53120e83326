/*
Package leave implements leave tracking: applying for leave, viewing and
exporting an employee's history.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: Someone who can take leave (loaded externally, read-only here)
  - Record:   One booked leave period, append-only
  - Balance:  Quota, days used and days remaining, derived from records

INVARIANTS (enforced by Validator before every insert):
  1. Record.Period.Start <= Record.Period.End
  2. No two records of the same employee overlap (inclusive boundaries)
  3. Sum of record durations never exceeds the annual quota

PRECISION:
  Day amounts use decimal.Decimal so that a fractional quota (22.5 days)
  never drifts through float arithmetic.

SEE ALSO:
  - validator.go: Overlap and quota rules
  - service.go:   Apply / View / Export orchestration
  - result.go:    Request/Result core used by the presentation layers
*/
package leave

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/calendar"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RecordID int64

// =============================================================================
// EMPLOYEE
// =============================================================================

type Employee struct {
	ID   EmployeeID
	Name string
}

// =============================================================================
// RECORD - one booked leave period
// =============================================================================

type Record struct {
	ID         RecordID
	EmployeeID EmployeeID
	Period     calendar.Range
	Type       string
	Reason     string
}

// Duration is the inclusive number of days booked.
func (r Record) Duration() int { return r.Period.Days() }

// Days returns the duration as a decimal amount.
func (r Record) Days() decimal.Decimal { return decimal.NewFromInt(int64(r.Duration())) }

// =============================================================================
// BALANCE - derived, never stored
// =============================================================================

type Balance struct {
	EmployeeID EmployeeID
	Quota      decimal.Decimal
	Used       decimal.Decimal
	Remaining  decimal.Decimal
}

func newBalance(id EmployeeID, quota, used decimal.Decimal) Balance {
	return Balance{
		EmployeeID: id,
		Quota:      quota,
		Used:       used,
		Remaining:  quota.Sub(used),
	}
}

// ApplyRequest is the raw input of an apply operation. Dates are still
// strings here; the Validator parses them.
type ApplyRequest struct {
	EmployeeID EmployeeID
	Start      string
	End        string
	LeaveType  string
	Reason     string
}

// ExportResult describes a finished export. Count is zero, and Path empty,
// when the employee had nothing to export.
type ExportResult struct {
	EmployeeID EmployeeID
	Count      int
	Path       string
}
