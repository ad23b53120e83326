package leave

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// REQUEST / RESULT - presentation-independent core
// =============================================================================
//
// Presentation layers (interactive shell, HTTP) build a Request, call Handle
// and render the Result. They never talk to the Store directly and never
// decide on their own whether something succeeded.

type Action string

const (
	ActionApply   Action = "apply"
	ActionView    Action = "view"
	ActionExport  Action = "export"
	ActionBalance Action = "balance"
)

// Request is one user operation with its raw inputs.
type Request struct {
	Action     Action
	EmployeeID EmployeeID

	// Apply only
	Start     string
	End       string
	LeaveType string
	Reason    string
}

type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeInfo     Outcome = "info"     // nothing to do, not an error
	OutcomeRejected Outcome = "rejected" // validation error
	OutcomeFault    Outcome = "fault"    // storage or filesystem failure
)

// Result is the outcome of Handle. Only the fields relevant to the action
// are set.
type Result struct {
	Action  Action
	Outcome Outcome
	Kind    Kind
	Message string

	Record  *Record
	Records []Record
	Balance *Balance
	Export  *ExportResult

	Err error
}

// OK is true for success and informational outcomes.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeInfo
}

// errUnknownAction is reported for a Request with an unsupported Action.
var errUnknownAction = errors.New("unknown action")

// Handle runs a request and converts every error into a Result. It never
// panics on validation errors and never returns a nil Result.
func (s *Service) Handle(ctx context.Context, req Request) Result {
	switch req.Action {
	case ActionApply:
		rec, bal, err := s.apply(ctx, ApplyRequest{
			EmployeeID: req.EmployeeID,
			Start:      req.Start,
			End:        req.End,
			LeaveType:  req.LeaveType,
			Reason:     req.Reason,
		})
		if err != nil {
			return failed(req.Action, err)
		}
		return Result{
			Action:  req.Action,
			Outcome: OutcomeSuccess,
			Message: fmt.Sprintf("Leave applied successfully: %d day(s), %s remaining.",
				rec.Duration(), bal.Remaining),
			Record:  &rec,
			Balance: &bal,
		}

	case ActionView:
		records, err := s.View(ctx, req.EmployeeID)
		if err != nil {
			return failed(req.Action, err)
		}
		if len(records) == 0 {
			return Result{Action: req.Action, Outcome: OutcomeInfo, Message: "No leaves found.", Records: records}
		}
		return Result{
			Action:  req.Action,
			Outcome: OutcomeSuccess,
			Message: fmt.Sprintf("%d leave record(s).", len(records)),
			Records: records,
		}

	case ActionExport:
		res, err := s.Export(ctx, req.EmployeeID)
		if err != nil {
			return failed(req.Action, err)
		}
		if res.Count == 0 {
			return Result{Action: req.Action, Outcome: OutcomeInfo, Message: "No leaves to export.", Export: &res}
		}
		return Result{
			Action:  req.Action,
			Outcome: OutcomeSuccess,
			Message: fmt.Sprintf("Leave history exported to %s", res.Path),
			Export:  &res,
		}

	case ActionBalance:
		bal, err := s.Balance(ctx, req.EmployeeID)
		if err != nil {
			return failed(req.Action, err)
		}
		return Result{
			Action:  req.Action,
			Outcome: OutcomeSuccess,
			Message: fmt.Sprintf("Used %s of %s day(s), %s remaining.", bal.Used, bal.Quota, bal.Remaining),
			Balance: &bal,
		}

	default:
		err := fmt.Errorf("%w: %q", errUnknownAction, req.Action)
		return Result{Action: req.Action, Outcome: OutcomeRejected, Message: err.Error(), Err: err}
	}
}

func failed(action Action, err error) Result {
	kind := KindOf(err)
	outcome := OutcomeRejected
	if kind == KindIOFault {
		outcome = OutcomeFault
	}
	return Result{
		Action:  action,
		Outcome: outcome,
		Kind:    kind,
		Message: Message(err),
		Err:     err,
	}
}

// Message renders err as a user-facing sentence.
func Message(err error) string {
	var (
		qe *QuotaExceededError
		de *InvalidDateError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &qe):
		return fmt.Sprintf("Leave denied. Quota exceeded: Used %s, Requested %s, Limit %s",
			qe.Used, qe.Requested, qe.Limit)
	case errors.Is(err, ErrOverlap):
		return "Leave overlaps with an existing request."
	case errors.Is(err, ErrNotFound):
		return "Employee ID not found."
	case errors.As(err, &de):
		if de.Field == "range" {
			return "End date is before start date."
		}
		return fmt.Sprintf("Invalid %s date %q, expected YYYY-MM-DD.", de.Field, de.Value)
	case errors.Is(err, ErrInvalidDate):
		return "Invalid date."
	default:
		return fmt.Sprintf("Operation aborted: %v", err)
	}
}
