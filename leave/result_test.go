package leave_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-tracker/leave"
)

func TestHandle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	steps := []struct {
		name    string
		req     leave.Request
		outcome leave.Outcome
		kind    leave.Kind
		message string
	}{
		{
			name:    "view empty",
			req:     leave.Request{Action: leave.ActionView, EmployeeID: "E1"},
			outcome: leave.OutcomeInfo,
			message: "No leaves found.",
		},
		{
			name:    "export empty",
			req:     leave.Request{Action: leave.ActionExport, EmployeeID: "E1"},
			outcome: leave.OutcomeInfo,
			message: "No leaves to export.",
		},
		{
			name: "apply",
			req: leave.Request{Action: leave.ActionApply, EmployeeID: "E1",
				Start: "2024-01-01", End: "2024-01-05", LeaveType: "Casual", Reason: "trip"},
			outcome: leave.OutcomeSuccess,
			message: "Leave applied successfully: 5 day(s), 15 remaining.",
		},
		{
			name: "apply overlapping",
			req: leave.Request{Action: leave.ActionApply, EmployeeID: "E1",
				Start: "2024-01-03", End: "2024-01-04"},
			outcome: leave.OutcomeRejected,
			kind:    leave.KindOverlap,
			message: "Leave overlaps with an existing request.",
		},
		{
			name: "apply over quota",
			req: leave.Request{Action: leave.ActionApply, EmployeeID: "E1",
				Start: "2024-01-06", End: "2024-01-22"},
			outcome: leave.OutcomeRejected,
			kind:    leave.KindQuotaExceeded,
			message: "Leave denied. Quota exceeded: Used 5, Requested 17, Limit 20",
		},
		{
			name: "apply inverted",
			req: leave.Request{Action: leave.ActionApply, EmployeeID: "E1",
				Start: "2024-02-05", End: "2024-02-01"},
			outcome: leave.OutcomeRejected,
			kind:    leave.KindInvalidDate,
			message: "End date is before start date.",
		},
		{
			name: "apply malformed",
			req: leave.Request{Action: leave.ActionApply, EmployeeID: "E1",
				Start: "2024-02-01", End: "Feb 5"},
			outcome: leave.OutcomeRejected,
			kind:    leave.KindInvalidDate,
			message: `Invalid end date "Feb 5", expected YYYY-MM-DD.`,
		},
		{
			name:    "balance",
			req:     leave.Request{Action: leave.ActionBalance, EmployeeID: "E1"},
			outcome: leave.OutcomeSuccess,
			message: "Used 5 of 20 day(s), 15 remaining.",
		},
		{
			name:    "view",
			req:     leave.Request{Action: leave.ActionView, EmployeeID: "E1"},
			outcome: leave.OutcomeSuccess,
			message: "1 leave record(s).",
		},
		{
			name:    "view unknown",
			req:     leave.Request{Action: leave.ActionView, EmployeeID: "E404"},
			outcome: leave.OutcomeRejected,
			kind:    leave.KindNotFound,
			message: "Employee ID not found.",
		},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			res := svc.Handle(ctx, step.req)
			assert.Equal(t, step.req.Action, res.Action)
			assert.Equal(t, step.outcome, res.Outcome)
			assert.Equal(t, step.kind, res.Kind)
			assert.Equal(t, step.message, res.Message)
			assert.Equal(t, step.outcome != leave.OutcomeRejected, res.OK())
		})
	}
}

func TestHandle_ExportSuccess(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	res := svc.Handle(ctx, leave.Request{Action: leave.ActionApply, EmployeeID: "E2", Start: "2024-03-01", End: "2024-03-01"})
	require.True(t, res.OK())
	require.NotNil(t, res.Record)
	require.NotNil(t, res.Balance)

	res = svc.Handle(ctx, leave.Request{Action: leave.ActionExport, EmployeeID: "E2"})
	assert.Equal(t, leave.OutcomeSuccess, res.Outcome)
	require.NotNil(t, res.Export)
	assert.Equal(t, 1, res.Export.Count)
	assert.Equal(t, "Leave history exported to "+res.Export.Path, res.Message)
}

func TestHandle_UnknownAction(t *testing.T) {
	svc, _ := newService(t)

	res := svc.Handle(context.Background(), leave.Request{Action: "delete", EmployeeID: "E1"})
	assert.Equal(t, leave.OutcomeRejected, res.Outcome)
	assert.Error(t, res.Err)
	assert.False(t, res.OK())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, leave.KindNone, leave.KindOf(nil))
	assert.Equal(t, leave.KindNotFound, leave.KindOf(&leave.NotFoundError{EmployeeID: "E1"}))
	assert.Equal(t, leave.KindIOFault, leave.KindOf(errors.New("surprise")))
	assert.Equal(t, leave.KindIOFault, leave.KindOf(leave.IOFault("op", errors.New("x"))))
	assert.Nil(t, leave.IOFault("op", nil))
}
