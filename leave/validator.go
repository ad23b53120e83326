package leave

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/calendar"
)

// Validator checks an ApplyRequest against the stored history. It has no
// side effects; the caller performs the insert.
//
// Checks run in a fixed order and stop at the first failure:
//  1. employee exists          -> NotFoundError
//  2. dates parse, end >= start -> InvalidDateError
//  3. no overlap with history  -> OverlapError
//  4. used + duration <= quota -> QuotaExceededError
type Validator struct {
	Store Store
	Quota decimal.Decimal
}

// Validate returns the record to insert (without an id) and the balance the
// employee will have once it is inserted.
func (v *Validator) Validate(ctx context.Context, req ApplyRequest) (Record, Balance, error) {
	exists, err := v.Store.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		return Record{}, Balance{}, err
	}
	if !exists {
		return Record{}, Balance{}, &NotFoundError{EmployeeID: req.EmployeeID}
	}

	period, err := parsePeriod(req.Start, req.End)
	if err != nil {
		return Record{}, Balance{}, err
	}

	overlap, err := v.Store.HasOverlap(ctx, req.EmployeeID, period)
	if err != nil {
		return Record{}, Balance{}, err
	}
	if overlap {
		return Record{}, Balance{}, &OverlapError{EmployeeID: req.EmployeeID, Requested: period}
	}

	used, err := v.Store.SumUsedDays(ctx, req.EmployeeID)
	if err != nil {
		return Record{}, Balance{}, err
	}

	rec := Record{
		EmployeeID: req.EmployeeID,
		Period:     period,
		Type:       req.LeaveType,
		Reason:     req.Reason,
	}
	requested := rec.Days()
	if used.Add(requested).GreaterThan(v.Quota) {
		return Record{}, Balance{}, &QuotaExceededError{
			EmployeeID: req.EmployeeID,
			Used:       used,
			Requested:  requested,
			Limit:      v.Quota,
		}
	}

	return rec, newBalance(req.EmployeeID, v.Quota, used.Add(requested)), nil
}

func parsePeriod(start, end string) (calendar.Range, error) {
	s, err := calendar.Parse(start)
	if err != nil {
		return calendar.Range{}, &InvalidDateError{Field: "start", Value: start, Reason: err}
	}
	e, err := calendar.Parse(end)
	if err != nil {
		return calendar.Range{}, &InvalidDateError{Field: "end", Value: end, Reason: err}
	}
	r, err := calendar.NewRange(s, e)
	if err != nil {
		return calendar.Range{}, &InvalidDateError{Field: "range", Value: start + ".." + end, Reason: err}
	}
	return r, nil
}
