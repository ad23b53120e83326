/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  leave package types. Dates are YYYY-MM-DD strings; day amounts are
  decimals, serialized as JSON strings.

NAMING CONVENTION:
  - *DTO:      Response types returned to clients
  - *Request:  Request body types from clients
  - *Response: Response wrappers

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// LEAVES
// =============================================================================

// LeaveDTO represents one booked leave record.
type LeaveDTO struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Days       int    `json:"days"`
	LeaveType  string `json:"leave_type"`
	Reason     string `json:"reason"`
}

// ApplyLeaveRequest is the body of POST /api/employees/{id}/leaves.
type ApplyLeaveRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason"`
}

// ApplyLeaveResponse is returned after a successful apply.
type ApplyLeaveResponse struct {
	Leave   LeaveDTO   `json:"leave"`
	Balance BalanceDTO `json:"balance"`
	Message string     `json:"message"`
}

// =============================================================================
// BALANCE / EXPORT
// =============================================================================

// BalanceDTO shows quota usage for one employee.
type BalanceDTO struct {
	EmployeeID string          `json:"employee_id"`
	Quota      decimal.Decimal `json:"quota"`
	Used       decimal.Decimal `json:"used"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// ExportDTO describes a finished export. Exported is 0 and Path empty when
// there was nothing to write.
type ExportDTO struct {
	EmployeeID string `json:"employee_id"`
	Exported   int    `json:"exported"`
	Path       string `json:"path,omitempty"`
	Message    string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	return EmployeeDTO{ID: string(e.ID), Name: e.Name}
}

func toLeaveDTO(r leave.Record) LeaveDTO {
	return LeaveDTO{
		ID:         int64(r.ID),
		EmployeeID: string(r.EmployeeID),
		StartDate:  r.Period.Start.String(),
		EndDate:    r.Period.End.String(),
		Days:       r.Duration(),
		LeaveType:  r.Type,
		Reason:     r.Reason,
	}
}

func toBalanceDTO(b leave.Balance) BalanceDTO {
	return BalanceDTO{
		EmployeeID: string(b.EmployeeID),
		Quota:      b.Quota,
		Used:       b.Used,
		Remaining:  b.Remaining,
	}
}
