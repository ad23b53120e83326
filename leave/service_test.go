package leave_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-tracker/leave"
	"github.com/warp/leave-tracker/store/memory"
)

func newService(t *testing.T) (*leave.Service, *memory.Memory) {
	t.Helper()
	store := memory.WithEmployees(
		leave.Employee{ID: "E1", Name: "Alice"},
		leave.Employee{ID: "E2", Name: "Bob"},
	)
	cfg := leave.DefaultConfig()
	cfg.ExportDir = t.TempDir()
	return leave.NewService(store, cfg, nil), store
}

func apply(emp, start, end string) leave.ApplyRequest {
	return leave.ApplyRequest{
		EmployeeID: leave.EmployeeID(emp),
		Start:      start,
		End:        end,
		LeaveType:  "Casual",
		Reason:     "trip",
	}
}

// The worked example: book, collide, then run out of quota.
func TestService_Apply_Example(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	// GIVEN: E1 books Jan 1-5
	rec, err := svc.Apply(ctx, apply("E1", "2024-01-01", "2024-01-05"))
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, 5, rec.Duration())

	bal, err := svc.Balance(ctx, "E1")
	require.NoError(t, err)
	assert.True(t, bal.Used.Equal(decimal.NewFromInt(5)))
	assert.True(t, bal.Remaining.Equal(decimal.NewFromInt(15)))

	// WHEN: Jan 3-4 is requested
	_, err = svc.Apply(ctx, apply("E1", "2024-01-03", "2024-01-04"))

	// THEN: overlap
	assert.ErrorIs(t, err, leave.ErrOverlap)

	// WHEN: Jan 6-22 (17 days) is requested
	_, err = svc.Apply(ctx, apply("E1", "2024-01-06", "2024-01-22"))

	// THEN: 5 + 17 > 20
	var qe *leave.QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "5", qe.Used.String())
	assert.Equal(t, "17", qe.Requested.String())
	assert.Equal(t, "20", qe.Limit.String())

	// Rejected requests leave no trace
	records, err := svc.View(ctx, "E1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestService_Apply_QuotaIsCumulative(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, apply("E1", "2024-03-01", "2024-03-15"))
	require.NoError(t, err)

	_, err = svc.Apply(ctx, apply("E1", "2024-05-01", "2024-05-15"))
	assert.ErrorIs(t, err, leave.ErrQuotaExceeded)

	// Quota is per employee.
	_, err = svc.Apply(ctx, apply("E2", "2024-05-01", "2024-05-15"))
	assert.NoError(t, err)
}

func TestService_Apply_ExactlyQuota(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, apply("E1", "2024-01-01", "2024-01-20"))
	require.NoError(t, err)

	bal, err := svc.Balance(ctx, "E1")
	require.NoError(t, err)
	assert.True(t, bal.Remaining.IsZero())

	_, err = svc.Apply(ctx, apply("E1", "2024-02-01", "2024-02-01"))
	assert.ErrorIs(t, err, leave.ErrQuotaExceeded)
}

func TestService_Apply_BoundaryTouchIsOverlap(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, apply("E1", "2024-01-12", "2024-01-15"))
	require.NoError(t, err)

	_, err = svc.Apply(ctx, apply("E1", "2024-01-10", "2024-01-12"))
	assert.ErrorIs(t, err, leave.ErrOverlap)

	_, err = svc.Apply(ctx, apply("E1", "2024-01-15", "2024-01-16"))
	assert.ErrorIs(t, err, leave.ErrOverlap)

	_, err = svc.Apply(ctx, apply("E1", "2024-01-16", "2024-01-16"))
	assert.NoError(t, err)
}

func TestService_Apply_UnknownEmployee(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end string
	}{
		{"valid dates", "2024-01-01", "2024-01-02"},
		{"malformed dates", "yesterday", "2024-13-45"},
		{"inverted range", "2024-01-05", "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(ctx, apply("E404", tt.start, tt.end))
			assert.ErrorIs(t, err, leave.ErrNotFound)
			assert.NotErrorIs(t, err, leave.ErrInvalidDate)
		})
	}
}

func TestService_Apply_InvalidDates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end string
		field      string
	}{
		{"malformed start", "2024/01/01", "2024-01-02", "start"},
		{"impossible end", "2024-02-01", "2024-02-30", "end"},
		{"inverted", "2024-01-05", "2024-01-01", "range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(ctx, apply("E1", tt.start, tt.end))

			var de *leave.InvalidDateError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Field)
			assert.ErrorIs(t, err, leave.ErrInvalidDate)
			assert.True(t, leave.IsClientError(err))
		})
	}
}

func TestService_View(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	records, err := svc.View(ctx, "E1")
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "E1", Start: "2024-04-02", End: "2024-04-04", LeaveType: "Sick", Reason: "flu, again",
	})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, apply("E1", "2024-02-01", "2024-02-01"))
	require.NoError(t, err)

	records, err = svc.View(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-02-01", records[0].Period.Start.String())
	assert.Equal(t, "2024-04-02", records[1].Period.Start.String())
	assert.Equal(t, "2024-04-04", records[1].Period.End.String())
	assert.Equal(t, "Sick", records[1].Type)
	assert.Equal(t, "flu, again", records[1].Reason)
	assert.Equal(t, 3, records[1].Duration())

	_, err = svc.View(ctx, "E404")
	assert.True(t, leave.IsNotFound(err))
}

func TestService_Export(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	t.Run("no records writes nothing", func(t *testing.T) {
		res, err := svc.Export(ctx, "E2")
		require.NoError(t, err)
		assert.Zero(t, res.Count)
		assert.Empty(t, res.Path)

		_, statErr := os.Stat(filepath.Join(svc.Config().ExportDir, "E2_leaves.csv"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("writes csv", func(t *testing.T) {
		_, err := svc.Apply(ctx, leave.ApplyRequest{
			EmployeeID: "E1", Start: "2024-01-01", End: "2024-01-05", LeaveType: "Casual", Reason: "trip, north",
		})
		require.NoError(t, err)

		res, err := svc.Export(ctx, "E1")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Count)
		assert.Equal(t, filepath.Join(svc.Config().ExportDir, "E1_leaves.csv"), res.Path)

		data, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t,
			"ID,Employee ID,Start,End,Type,Reason\n"+
				"1,E1,2024-01-01,2024-01-05,Casual,\"trip, north\"\n",
			string(data))
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.Export(ctx, "E404")
		assert.ErrorIs(t, err, leave.ErrNotFound)
	})

	t.Run("missing directory is a fault", func(t *testing.T) {
		store := memory.WithEmployees(leave.Employee{ID: "E1", Name: "Alice"})
		cfg := leave.DefaultConfig()
		cfg.ExportDir = filepath.Join(t.TempDir(), "does", "not", "exist")
		broken := leave.NewService(store, cfg, nil)

		_, err := broken.Apply(ctx, apply("E1", "2024-01-01", "2024-01-01"))
		require.NoError(t, err)

		_, err = broken.Export(ctx, "E1")
		assert.ErrorIs(t, err, leave.ErrIOFault)
		assert.False(t, leave.IsClientError(err))
	})
}

func TestService_CustomQuota(t *testing.T) {
	store := memory.WithEmployees(leave.Employee{ID: "E1", Name: "Alice"})
	svc := leave.NewService(store, leave.Config{AnnualQuota: decimal.RequireFromString("2.5")}, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, apply("E1", "2024-01-01", "2024-01-02"))
	require.NoError(t, err)

	_, err = svc.Apply(ctx, apply("E1", "2024-01-03", "2024-01-03"))
	assert.ErrorIs(t, err, leave.ErrQuotaExceeded)

	bal, err := svc.Balance(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, "0.5", bal.Remaining.String())
	assert.Equal(t, ".", svc.Config().ExportDir)
}

func TestService_Employees(t *testing.T) {
	svc, _ := newService(t)

	all, err := svc.Employees(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alice", all[0].Name)
}
