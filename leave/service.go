/*
service.go - Leave service: apply, view, export

PURPOSE:
  Orchestrates the Store and Validator. Every operation follows the same
  lifecycle: validate -> commit -> report. Validation fully precedes the
  single insert, so a rejected request leaves no partial state.

ATOMICITY:
  When the store implements TxStore, the overlap/quota checks and the insert
  of Apply run inside one transaction, so two concurrent applies cannot both
  pass the quota check.

CONFIGURATION:
  Quota and export directory come from Config, passed at construction.
  There is no package-level mutable state.

SEE ALSO:
  - validator.go: Rules checked before the insert
  - result.go:    Request/Result wrapper used by shell and api
  - export.go:    CSV artifact
*/
package leave

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultAnnualQuota is the number of leave days an employee may book.
const DefaultAnnualQuota = 20

// Config holds the service settings.
type Config struct {
	AnnualQuota decimal.Decimal
	ExportDir   string
}

// DefaultConfig returns a 20-day quota and exports to the working directory.
func DefaultConfig() Config {
	return Config{
		AnnualQuota: decimal.NewFromInt(DefaultAnnualQuota),
		ExportDir:   ".",
	}
}

// Service is the leave tracking service.
type Service struct {
	store     Store
	employees EmployeeStore // nil if the store can't list employees
	cfg       Config
	logger    *zap.Logger
}

// NewService creates a service. A nil logger disables logging.
func NewService(store Store, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}
	s := &Service{
		store:  store,
		cfg:    cfg,
		logger: logger.Named("leave.service"),
	}
	if es, ok := store.(EmployeeStore); ok {
		s.employees = es
	}
	return s
}

// Config returns the settings the service was built with.
func (s *Service) Config() Config { return s.cfg }

// =============================================================================
// APPLY
// =============================================================================

// Apply validates and books a leave request, returning the stored record.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (Record, error) {
	rec, _, err := s.apply(ctx, req)
	return rec, err
}

func (s *Service) apply(ctx context.Context, req ApplyRequest) (Record, Balance, error) {
	log := s.logger.With(zap.String("employee_id", string(req.EmployeeID)))
	log.Debug("apply leave requested",
		zap.String("start_date", req.Start),
		zap.String("end_date", req.End),
		zap.String("leave_type", req.LeaveType),
	)

	var (
		rec     Record
		balance Balance
	)
	book := func(st Store) error {
		v := Validator{Store: st, Quota: s.cfg.AnnualQuota}
		r, b, err := v.Validate(ctx, req)
		if err != nil {
			return err
		}
		id, err := st.InsertRecord(ctx, r)
		if err != nil {
			return err
		}
		r.ID = id
		rec, balance = r, b
		return nil
	}

	var err error
	if txs, ok := s.store.(TxStore); ok {
		err = txs.WithTx(ctx, book)
	} else {
		err = book(s.store)
	}
	if err != nil {
		if IsClientError(err) {
			log.Warn("apply leave rejected", zap.Error(err))
		} else {
			log.Error("apply leave failed", zap.Error(err))
		}
		return Record{}, Balance{}, err
	}

	log.Info("apply leave success",
		zap.Int64("record_id", int64(rec.ID)),
		zap.Int("days", rec.Duration()),
		zap.String("remaining", balance.Remaining.String()),
	)
	return rec, balance, nil
}

// =============================================================================
// VIEW / BALANCE
// =============================================================================

// CheckEmployee returns a NotFoundError if the employee is unknown.
func (s *Service) CheckEmployee(ctx context.Context, id EmployeeID) error {
	exists, err := s.store.EmployeeExists(ctx, id)
	if err != nil {
		s.logger.Error("employee lookup failed", zap.String("employee_id", string(id)), zap.Error(err))
		return err
	}
	if !exists {
		return &NotFoundError{EmployeeID: id}
	}
	return nil
}

// View returns the employee's records ordered by start date.
func (s *Service) View(ctx context.Context, id EmployeeID) ([]Record, error) {
	if err := s.CheckEmployee(ctx, id); err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, id)
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("employee_id", string(id)), zap.Error(err))
		return nil, err
	}
	return records, nil
}

// Balance returns quota, used and remaining days.
func (s *Service) Balance(ctx context.Context, id EmployeeID) (Balance, error) {
	if err := s.CheckEmployee(ctx, id); err != nil {
		return Balance{}, err
	}
	used, err := s.store.SumUsedDays(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	return newBalance(id, s.cfg.AnnualQuota, used), nil
}

// Employees lists every known employee.
func (s *Service) Employees(ctx context.Context) ([]Employee, error) {
	if s.employees == nil {
		return nil, IOFault("list employees", errors.New("store does not list employees"))
	}
	return s.employees.ListEmployees(ctx)
}

// =============================================================================
// EXPORT
// =============================================================================

// Export writes the employee's history to <ExportDir>/<id>_leaves.csv.
// An employee without records gets ExportResult{Count: 0} and no file.
func (s *Service) Export(ctx context.Context, id EmployeeID) (ExportResult, error) {
	records, err := s.View(ctx, id)
	if err != nil {
		return ExportResult{}, err
	}
	if len(records) == 0 {
		s.logger.Info("nothing to export", zap.String("employee_id", string(id)))
		return ExportResult{EmployeeID: id}, nil
	}

	name, err := ExportFileName(id)
	if err != nil {
		return ExportResult{}, IOFault("export", err)
	}
	path := filepath.Join(s.cfg.ExportDir, name)
	if err := writeExportFile(path, records); err != nil {
		s.logger.Error("export failed", zap.String("path", path), zap.Error(err))
		return ExportResult{}, IOFault("export", err)
	}

	s.logger.Info("export success",
		zap.String("employee_id", string(id)),
		zap.String("path", path),
		zap.Int("count", len(records)),
	)
	return ExportResult{EmployeeID: id, Count: len(records), Path: path}, nil
}
