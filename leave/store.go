package leave

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/calendar"
)

// =============================================================================
// STORE - persistence of leave records (append-only)
// =============================================================================

// Store persists leave records. There is no Update or Delete: records are
// only ever appended. Implementations wrap every storage failure with
// ErrIOFault (see IOFault).
type Store interface {
	// EmployeeExists reports whether the employee is known.
	EmployeeExists(ctx context.Context, id EmployeeID) (bool, error)

	// SumUsedDays returns the total inclusive days booked, zero if none.
	SumUsedDays(ctx context.Context, id EmployeeID) (decimal.Decimal, error)

	// HasOverlap reports whether any booked range intersects r, inclusive.
	HasOverlap(ctx context.Context, id EmployeeID, r calendar.Range) (bool, error)

	// InsertRecord appends a record and returns its assigned id.
	InsertRecord(ctx context.Context, rec Record) (RecordID, error)

	// ListRecords returns all records ordered by start date ascending.
	ListRecords(ctx context.Context, id EmployeeID) ([]Record, error)
}

// TxStore wraps Store with transaction support.
// If fn returns an error the transaction is rolled back.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}

// EmployeeStore gives access to the employee table. Employees are loaded
// externally; the service only reads them.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}
