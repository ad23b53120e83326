// Package memory provides an in-memory leave.Store for tests and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/calendar"
	"github.com/warp/leave-tracker/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[leave.EmployeeID]leave.Employee
	records   map[leave.EmployeeID][]leave.Record
	nextID    leave.RecordID
}

var (
	_ leave.TxStore       = (*Memory)(nil)
	_ leave.EmployeeStore = (*Memory)(nil)
)

func New() *Memory {
	return &Memory{
		employees: make(map[leave.EmployeeID]leave.Employee),
		records:   make(map[leave.EmployeeID][]leave.Record),
		nextID:    1,
	}
}

// WithEmployees is a convenience for tests.
func WithEmployees(emps ...leave.Employee) *Memory {
	m := New()
	for _, e := range emps {
		m.employees[e.ID] = e
	}
	return m
}

func (m *Memory) EmployeeExists(_ context.Context, id leave.EmployeeID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.employees[id]
	return ok, nil
}

func (m *Memory) SumUsedDays(_ context.Context, id leave.EmployeeID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sumLocked(id), nil
}

func (m *Memory) HasOverlap(_ context.Context, id leave.EmployeeID, r calendar.Range) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overlapLocked(id, r), nil
}

// InsertRecord appends a record. Append-only.
func (m *Memory) InsertRecord(_ context.Context, rec leave.Record) (leave.RecordID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(rec), nil
}

func (m *Memory) ListRecords(_ context.Context, id leave.EmployeeID) ([]leave.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(id), nil
}

func (m *Memory) sumLocked(id leave.EmployeeID) decimal.Decimal {
	total := decimal.Zero
	for _, r := range m.records[id] {
		total = total.Add(r.Days())
	}
	return total
}

func (m *Memory) overlapLocked(id leave.EmployeeID, r calendar.Range) bool {
	for _, existing := range m.records[id] {
		if existing.Period.Overlaps(r) {
			return true
		}
	}
	return false
}

func (m *Memory) insertLocked(rec leave.Record) leave.RecordID {
	rec.ID = m.nextID
	m.nextID++

	recs := m.records[rec.EmployeeID]
	// Binary search for insertion point to keep start-date order.
	i := sort.Search(len(recs), func(i int) bool {
		return recs[i].Period.Start.After(rec.Period.Start)
	})
	recs = append(recs, leave.Record{})
	copy(recs[i+1:], recs[i:])
	recs[i] = rec
	m.records[rec.EmployeeID] = recs
	return rec.ID
}

func (m *Memory) listLocked(id leave.EmployeeID) []leave.Record {
	result := make([]leave.Record, len(m.records[id]))
	copy(result, m.records[id])
	return result
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp leave.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]leave.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn with the store locked. Simulated with a snapshot and
// a restore on error.
func (m *Memory) WithTx(_ context.Context, fn func(leave.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	records map[leave.EmployeeID][]leave.Record
	nextID  leave.RecordID
}

func (m *Memory) snapshot() memorySnapshot {
	recs := make(map[leave.EmployeeID][]leave.Record, len(m.records))
	for k, v := range m.records {
		recs[k] = append([]leave.Record{}, v...)
	}
	return memorySnapshot{records: recs, nextID: m.nextID}
}

func (m *Memory) restore(s memorySnapshot) {
	m.records = s.records
	m.nextID = s.nextID
}

// txView is the Store handed to WithTx callbacks. The parent lock is
// already held.
type txView struct {
	parent *Memory
}

func (tv *txView) EmployeeExists(_ context.Context, id leave.EmployeeID) (bool, error) {
	_, ok := tv.parent.employees[id]
	return ok, nil
}

func (tv *txView) SumUsedDays(_ context.Context, id leave.EmployeeID) (decimal.Decimal, error) {
	return tv.parent.sumLocked(id), nil
}

func (tv *txView) HasOverlap(_ context.Context, id leave.EmployeeID, r calendar.Range) (bool, error) {
	return tv.parent.overlapLocked(id, r), nil
}

func (tv *txView) InsertRecord(_ context.Context, rec leave.Record) (leave.RecordID, error) {
	return tv.parent.insertLocked(rec), nil
}

func (tv *txView) ListRecords(_ context.Context, id leave.EmployeeID) ([]leave.Record, error) {
	return tv.parent.listLocked(id), nil
}
