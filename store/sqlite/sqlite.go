/*
Package sqlite provides a SQLite-backed implementation of the leave storage
interfaces.

INTERFACES IMPLEMENTED:
  leave.Store:         Leave record persistence
  leave.TxStore:       Check-and-insert inside one transaction
  leave.EmployeeStore: Employee lookups

APPEND-ONLY:
  The leaves table is never updated or deleted from. There is no method
  that would do it.

KEY TABLES:
  employees: emp_id (PK), name. Loaded externally (bootstrap script).
  leaves:    id (autoincrement), emp_id, start_date, end_date, leave_type,
             reason. Dates are ISO-8601 strings (YYYY-MM-DD), so string
             comparison is date comparison.

CONNECTIONS:
  The pool is limited to a single connection. Every call acquires it and
  releases it before returning; nothing is held between calls. This also
  keeps ":memory:" databases alive and shared for the store's lifetime.

ERRORS:
  Every driver error is wrapped with leave.ErrIOFault.

USAGE:
  store, err := sqlite.New("./leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := leave.NewService(store, leave.DefaultConfig(), logger)

SEE ALSO:
  - leave/store.go: Interface definitions
  - store/memory:   In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/calendar"
	"github.com/warp/leave-tracker/leave"
)

// Store implements the leave storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ leave.TxStore       = (*Store)(nil)
	_ leave.EmployeeStore = (*Store)(nil)
)

// New opens (creating if needed) the database at dbPath and migrates it.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// NewFromDB wraps an already opened handle. No migration is run.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		emp_id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	-- Leave records (append-only)
	CREATE TABLE IF NOT EXISTS leaves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		emp_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		leave_type TEXT,
		reason TEXT,
		FOREIGN KEY (emp_id) REFERENCES employees(emp_id)
	);

	-- Overlap, sum and list queries all filter by employee
	CREATE INDEX IF NOT EXISTS idx_leaves_emp_start
		ON leaves(emp_id, start_date);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// LoadScript executes a bootstrap SQL script (several statements) in one
// transaction.
func (s *Store) LoadScript(ctx context.Context, r io.Reader) error {
	script, err := io.ReadAll(r)
	if err != nil {
		return leave.IOFault("read script", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return leave.IOFault("begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return leave.IOFault("load script", err)
	}
	if err := tx.Commit(); err != nil {
		return leave.IOFault("commit", err)
	}
	return nil
}

// =============================================================================
// LEAVE STORE (leave.Store interface)
// =============================================================================

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) EmployeeExists(ctx context.Context, id leave.EmployeeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return employeeExists(ctx, s.db, id)
}

func (s *Store) SumUsedDays(ctx context.Context, id leave.EmployeeID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumUsedDays(ctx, s.db, id)
}

func (s *Store) HasOverlap(ctx context.Context, id leave.EmployeeID, r calendar.Range) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hasOverlap(ctx, s.db, id, r)
}

// InsertRecord appends a leave record.
func (s *Store) InsertRecord(ctx context.Context, rec leave.Record) (leave.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertRecord(ctx, s.db, rec)
}

// ListRecords returns the employee's records ordered by start date.
func (s *Store) ListRecords(ctx context.Context, id leave.EmployeeID) ([]leave.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRecords(ctx, s.db, id)
}

func employeeExists(ctx context.Context, q querier, id leave.EmployeeID) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM employees WHERE emp_id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, leave.IOFault("employee exists", err)
	}
	return true, nil
}

func sumUsedDays(ctx context.Context, q querier, id leave.EmployeeID) (decimal.Decimal, error) {
	query := `
		SELECT SUM(julianday(end_date) - julianday(start_date) + 1)
		FROM leaves WHERE emp_id = ?
	`

	var used decimal.NullDecimal
	if err := q.QueryRowContext(ctx, query, id).Scan(&used); err != nil {
		return decimal.Zero, leave.IOFault("sum used days", err)
	}
	if !used.Valid {
		return decimal.Zero, nil
	}
	return used.Decimal, nil
}

func hasOverlap(ctx context.Context, q querier, id leave.EmployeeID, r calendar.Range) (bool, error) {
	// Inclusive on both ends: ranges that only touch still overlap.
	query := `
		SELECT EXISTS (
			SELECT 1 FROM leaves
			WHERE emp_id = ?
			  AND NOT (end_date < ? OR start_date > ?)
		)
	`

	var overlap bool
	err := q.QueryRowContext(ctx, query, id, r.Start.String(), r.End.String()).Scan(&overlap)
	if err != nil {
		return false, leave.IOFault("overlap check", err)
	}
	return overlap, nil
}

func insertRecord(ctx context.Context, q querier, rec leave.Record) (leave.RecordID, error) {
	query := `
		INSERT INTO leaves (emp_id, start_date, end_date, leave_type, reason)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := q.ExecContext(ctx, query,
		rec.EmployeeID,
		rec.Period.Start.String(),
		rec.Period.End.String(),
		rec.Type,
		rec.Reason,
	)
	if err != nil {
		return 0, leave.IOFault("insert record", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, leave.IOFault("insert record", err)
	}
	return leave.RecordID(id), nil
}

func listRecords(ctx context.Context, q querier, id leave.EmployeeID) ([]leave.Record, error) {
	// date() returns plain text, so DATE-typed columns of databases created
	// by older tools are not turned into time.Time by the driver.
	query := `
		SELECT id, emp_id, date(start_date), date(end_date), leave_type, reason
		FROM leaves
		WHERE emp_id = ?
		ORDER BY start_date ASC, id ASC
	`

	rows, err := q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, leave.IOFault("list records", err)
	}
	defer rows.Close()

	records := []leave.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, leave.IOFault("list records", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, leave.IOFault("list records", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (leave.Record, error) {
	var (
		rec        leave.Record
		start, end sql.NullString
		leaveType  sql.NullString
		reason     sql.NullString
	)

	if err := rows.Scan(&rec.ID, &rec.EmployeeID, &start, &end, &leaveType, &reason); err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	period, err := calendar.ParseRange(start.String, end.String)
	if err != nil {
		return rec, fmt.Errorf("record %d has bad dates: %w", rec.ID, err)
	}
	rec.Period = period
	rec.Type = leaveType.String
	rec.Reason = reason.String
	return rec, nil
}

// =============================================================================
// TRANSACTIONAL STORE (leave.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The transaction is
// committed only if fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return leave.IOFault("begin", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return leave.IOFault("commit", err)
	}
	return nil
}

type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) EmployeeExists(ctx context.Context, id leave.EmployeeID) (bool, error) {
	return employeeExists(ctx, ts.tx, id)
}

func (ts *txStore) SumUsedDays(ctx context.Context, id leave.EmployeeID) (decimal.Decimal, error) {
	return sumUsedDays(ctx, ts.tx, id)
}

func (ts *txStore) HasOverlap(ctx context.Context, id leave.EmployeeID, r calendar.Range) (bool, error) {
	return hasOverlap(ctx, ts.tx, id, r)
}

func (ts *txStore) InsertRecord(ctx context.Context, rec leave.Record) (leave.RecordID, error) {
	return insertRecord(ctx, ts.tx, rec)
}

func (ts *txStore) ListRecords(ctx context.Context, id leave.EmployeeID) ([]leave.Record, error) {
	return listRecords(ctx, ts.tx, id)
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// SaveEmployee inserts or renames an employee. Used by bootstrap tooling and
// tests; the leave service never writes employees.
func (s *Store) SaveEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (emp_id, name)
		VALUES (?, ?)
		ON CONFLICT(emp_id) DO UPDATE SET
			name = excluded.name
	`

	if _, err := s.db.ExecContext(ctx, query, emp.ID, emp.Name); err != nil {
		return leave.IOFault("save employee", err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID. Returns nil, nil when missing.
func (s *Store) GetEmployee(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp leave.Employee
	err := s.db.QueryRowContext(ctx,
		"SELECT emp_id, name FROM employees WHERE emp_id = ?",
		id,
	).Scan(&emp.ID, &emp.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, leave.IOFault("get employee", err)
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT emp_id, name FROM employees ORDER BY name, emp_id",
	)
	if err != nil {
		return nil, leave.IOFault("list employees", err)
	}
	defer rows.Close()

	employees := []leave.Employee{}
	for rows.Next() {
		var emp leave.Employee
		if err := rows.Scan(&emp.ID, &emp.Name); err != nil {
			return nil, leave.IOFault("list employees", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, leave.IOFault("list employees", err)
	}
	return employees, nil
}
