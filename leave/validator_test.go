package leave_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-tracker/calendar"
	"github.com/warp/leave-tracker/leave"
)

// mockStore is a leave.Store without transaction support.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) EmployeeExists(ctx context.Context, id leave.EmployeeID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) SumUsedDays(ctx context.Context, id leave.EmployeeID) (decimal.Decimal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockStore) HasOverlap(ctx context.Context, id leave.EmployeeID, r calendar.Range) (bool, error) {
	args := m.Called(ctx, id, r)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) InsertRecord(ctx context.Context, rec leave.Record) (leave.RecordID, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(leave.RecordID), args.Error(1)
}

func (m *mockStore) ListRecords(ctx context.Context, id leave.EmployeeID) ([]leave.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]leave.Record), args.Error(1)
}

func TestValidator_UnknownEmployeeStopsFirst(t *testing.T) {
	store := new(mockStore)
	store.On("EmployeeExists", mock.Anything, leave.EmployeeID("E9")).Return(false, nil)

	v := leave.Validator{Store: store, Quota: decimal.NewFromInt(20)}
	_, _, err := v.Validate(context.Background(), apply("E9", "not-a-date", "2024-01-01"))

	assert.ErrorIs(t, err, leave.ErrNotFound)
	store.AssertNotCalled(t, "HasOverlap", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SumUsedDays", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestValidator_BadDatesSkipStore(t *testing.T) {
	store := new(mockStore)
	store.On("EmployeeExists", mock.Anything, leave.EmployeeID("E1")).Return(true, nil)

	v := leave.Validator{Store: store, Quota: decimal.NewFromInt(20)}
	_, _, err := v.Validate(context.Background(), apply("E1", "2024-01-05", "2024-01-01"))

	assert.ErrorIs(t, err, leave.ErrInvalidDate)
	assert.ErrorIs(t, err, calendar.ErrInverted)
	store.AssertNotCalled(t, "HasOverlap", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidator_OverlapBeforeQuota(t *testing.T) {
	store := new(mockStore)
	store.On("EmployeeExists", mock.Anything, leave.EmployeeID("E1")).Return(true, nil)
	store.On("HasOverlap", mock.Anything, leave.EmployeeID("E1"), mock.Anything).Return(true, nil)

	v := leave.Validator{Store: store, Quota: decimal.NewFromInt(20)}
	_, _, err := v.Validate(context.Background(), apply("E1", "2024-01-01", "2024-01-30"))

	var oe *leave.OverlapError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "[2024-01-01, 2024-01-30]", oe.Requested.String())
	store.AssertNotCalled(t, "SumUsedDays", mock.Anything, mock.Anything)
}

func TestValidator_Success(t *testing.T) {
	store := new(mockStore)
	store.On("EmployeeExists", mock.Anything, leave.EmployeeID("E1")).Return(true, nil)
	store.On("HasOverlap", mock.Anything, leave.EmployeeID("E1"), mock.Anything).Return(false, nil)
	store.On("SumUsedDays", mock.Anything, leave.EmployeeID("E1")).Return(decimal.NewFromInt(15), nil)

	v := leave.Validator{Store: store, Quota: decimal.NewFromInt(20)}
	rec, bal, err := v.Validate(context.Background(), apply("E1", "2024-02-01", "2024-02-05"))

	require.NoError(t, err)
	assert.Zero(t, rec.ID, "validator never assigns ids")
	assert.Equal(t, 5, rec.Duration())
	assert.Equal(t, "Casual", rec.Type)
	assert.True(t, bal.Used.Equal(decimal.NewFromInt(20)))
	assert.True(t, bal.Remaining.IsZero())
	store.AssertNotCalled(t, "InsertRecord", mock.Anything, mock.Anything)
}

func TestValidator_StoreFaultPropagates(t *testing.T) {
	diskErr := errors.New("disk I/O error")
	store := new(mockStore)
	store.On("EmployeeExists", mock.Anything, leave.EmployeeID("E1")).Return(false, leave.IOFault("employee exists", diskErr))

	v := leave.Validator{Store: store, Quota: decimal.NewFromInt(20)}
	_, _, err := v.Validate(context.Background(), apply("E1", "2024-01-01", "2024-01-01"))

	assert.ErrorIs(t, err, leave.ErrIOFault)
	assert.ErrorIs(t, err, diskErr)
	assert.Equal(t, leave.KindIOFault, leave.KindOf(err))
}

// A store without WithTx still gets exactly one insert after validation.
func TestService_Apply_PlainStore(t *testing.T) {
	store := new(mockStore)
	store.On("EmployeeExists", mock.Anything, leave.EmployeeID("E1")).Return(true, nil)
	store.On("HasOverlap", mock.Anything, leave.EmployeeID("E1"), mock.Anything).Return(false, nil)
	store.On("SumUsedDays", mock.Anything, leave.EmployeeID("E1")).Return(decimal.Zero, nil)
	store.On("InsertRecord", mock.Anything, mock.MatchedBy(func(r leave.Record) bool {
		return r.EmployeeID == "E1" && r.Period.Start.String() == "2024-01-01" && r.Reason == "trip"
	})).Return(leave.RecordID(42), nil).Once()

	svc := leave.NewService(store, leave.DefaultConfig(), nil)
	rec, err := svc.Apply(context.Background(), apply("E1", "2024-01-01", "2024-01-03"))

	require.NoError(t, err)
	assert.Equal(t, leave.RecordID(42), rec.ID)
	store.AssertExpectations(t)
}

func TestService_Handle_InsertFault(t *testing.T) {
	store := new(mockStore)
	store.On("EmployeeExists", mock.Anything, mock.Anything).Return(true, nil)
	store.On("HasOverlap", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	store.On("SumUsedDays", mock.Anything, mock.Anything).Return(decimal.Zero, nil)
	store.On("InsertRecord", mock.Anything, mock.Anything).
		Return(leave.RecordID(0), leave.IOFault("insert record", errors.New("database is locked")))

	svc := leave.NewService(store, leave.DefaultConfig(), nil)
	res := svc.Handle(context.Background(), leave.Request{
		Action: leave.ActionApply, EmployeeID: "E1", Start: "2024-01-01", End: "2024-01-01",
	})

	assert.False(t, res.OK())
	assert.Equal(t, leave.OutcomeFault, res.Outcome)
	assert.Equal(t, leave.KindIOFault, res.Kind)
	assert.Contains(t, res.Message, "Operation aborted")
	assert.Contains(t, res.Message, "database is locked")
	assert.Nil(t, res.Record)
}

func TestService_Employees_Unsupported(t *testing.T) {
	svc := leave.NewService(new(mockStore), leave.DefaultConfig(), nil)

	_, err := svc.Employees(context.Background())
	assert.ErrorIs(t, err, leave.ErrIOFault)
}
