/*
handlers.go - HTTP API handlers for leave tracking

PURPOSE:
  Exposes the leave service over REST. Handlers translate HTTP into
  leave.Requests, call Service.Handle and translate the Result back. No
  business rule lives here.

ENDPOINTS:
  GET    /api/employees                 List all employees
  GET    /api/employees/{id}/leaves     Leave history, by start date
  POST   /api/employees/{id}/leaves     Apply for leave
  GET    /api/employees/{id}/balance    Quota, used and remaining days
  POST   /api/employees/{id}/export     Write <id>_leaves.csv on the server

ERROR HANDLING:
  Errors are returned as JSON (ErrorResponse) with a status per error kind:
  - 400: Invalid date, malformed body
  - 404: Unknown employee
  - 409: Overlap with an existing leave
  - 422: Annual quota exceeded
  - 500: Storage or filesystem failure

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-tracker/leave"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc    *leave.Service
	logger *zap.Logger
}

// NewHandler creates a handler over svc. A nil logger disables logging.
func NewHandler(svc *leave.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger.Named("api")}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.svc.Employees(r.Context())
	if err != nil {
		h.logger.Error("list employees failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeaves returns the employee's leave history.
// GET /api/employees/{id}/leaves
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Handle(r.Context(), leave.Request{
		Action:     leave.ActionView,
		EmployeeID: employeeID(r),
	})
	if !res.OK() {
		writeResultError(w, res)
		return
	}

	dtos := make([]LeaveDTO, len(res.Records))
	for i, rec := range res.Records {
		dtos[i] = toLeaveDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApplyLeave books a leave.
// POST /api/employees/{id}/leaves
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var req ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res := h.svc.Handle(r.Context(), leave.Request{
		Action:     leave.ActionApply,
		EmployeeID: employeeID(r),
		Start:      req.StartDate,
		End:        req.EndDate,
		LeaveType:  req.LeaveType,
		Reason:     req.Reason,
	})
	if !res.OK() {
		writeResultError(w, res)
		return
	}

	writeJSON(w, http.StatusCreated, ApplyLeaveResponse{
		Leave:   toLeaveDTO(*res.Record),
		Balance: toBalanceDTO(*res.Balance),
		Message: res.Message,
	})
}

// GetBalance returns quota usage.
// GET /api/employees/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Handle(r.Context(), leave.Request{
		Action:     leave.ActionBalance,
		EmployeeID: employeeID(r),
	})
	if !res.OK() {
		writeResultError(w, res)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*res.Balance))
}

// ExportLeaves writes the employee's history as CSV in the export directory.
// POST /api/employees/{id}/export
func (h *Handler) ExportLeaves(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Handle(r.Context(), leave.Request{
		Action:     leave.ActionExport,
		EmployeeID: employeeID(r),
	})
	if !res.OK() {
		writeResultError(w, res)
		return
	}

	dto := ExportDTO{EmployeeID: string(employeeID(r)), Message: res.Message}
	if res.Export != nil {
		dto.Exported = res.Export.Count
		dto.Path = res.Export.Path
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeID(r *http.Request) leave.EmployeeID {
	return leave.EmployeeID(chi.URLParam(r, "id"))
}

// statusFor maps a failed Result to its HTTP status.
func statusFor(res leave.Result) int {
	switch res.Kind {
	case leave.KindNotFound:
		return http.StatusNotFound
	case leave.KindInvalidDate:
		return http.StatusBadRequest
	case leave.KindOverlap:
		return http.StatusConflict
	case leave.KindQuotaExceeded:
		return http.StatusUnprocessableEntity
	case leave.KindIOFault:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeResultError(w http.ResponseWriter, res leave.Result) {
	resp := ErrorResponse{Error: res.Message, Kind: string(res.Kind)}
	if res.Err != nil && res.Outcome == leave.OutcomeFault {
		resp.Details = res.Err.Error()
	}
	writeJSON(w, statusFor(res), resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
