package store

import (
	"context"
	"sync"
)

// Memory is an in-memory Store with the same semantics as the DynamoDB
// adapter. It backs unit tests; a mutex stands in for the store's atomic
// counter guarantees.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]Row

	// FailNext, when set, makes the next call return ErrUnavailable.
	// Lets tests exercise partial-completion reporting.
	FailNext map[string]bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables:   make(map[string][]Row),
		FailNext: make(map[string]bool),
	}
}

func (m *Memory) failNext(op string) bool {
	if m.FailNext[op] {
		m.FailNext[op] = false
		return true
	}
	return false
}

func (m *Memory) Get(_ context.Context, table, keyField, keyValue string) (Row, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext("get") {
		return nil, false, ErrUnavailable
	}
	for _, r := range m.tables[table] {
		if r.String(keyField) == keyValue {
			return r.Clone(), true, nil
		}
	}
	return nil, false, nil
}

func (m *Memory) GetByIndex(_ context.Context, table, indexField, value string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext("getbyindex") {
		return nil, ErrUnavailable
	}
	var out []Row
	for _, r := range m.tables[table] {
		if r.String(indexField) == value {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *Memory) Scan(_ context.Context, table string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext("scan") {
		return nil, ErrUnavailable
	}
	rows := m.tables[table]
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Clone())
	}
	return out, nil
}

// Write upserts by the row's value for the table's key field, which is
// inferred as the first field written with table registration, or replaces
// nothing and appends when no key matches.
func (m *Memory) Write(_ context.Context, table string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext("write") {
		return ErrUnavailable
	}
	keyField := m.keyField(table, row)
	if keyField != "" {
		for i, r := range m.tables[table] {
			if r.String(keyField) == row.String(keyField) {
				m.tables[table][i] = row.Clone()
				return nil
			}
		}
	}
	m.tables[table] = append(m.tables[table], row.Clone())
	return nil
}

func (m *Memory) Delete(_ context.Context, table, keyField, keyValue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext("delete") {
		return ErrUnavailable
	}
	rows := m.tables[table]
	for i, r := range rows {
		if r.String(keyField) == keyValue {
			m.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) Increment(_ context.Context, table, keyField, keyValue, valueField string, by int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext("increment") {
		return ErrUnavailable
	}
	for _, r := range m.tables[table] {
		if r.String(keyField) == keyValue {
			r[valueField] = r.Int(valueField) + by
			return nil
		}
	}
	return nil
}

func (m *Memory) Decrement(ctx context.Context, table, keyField, keyValue, valueField string, by int) error {
	return m.Increment(ctx, table, keyField, keyValue, valueField, -by)
}

// keyField infers the primary key attribute from the attributes present on
// the row, matching the key schema of the deployed tables.
func (m *Memory) keyField(_ string, row Row) string {
	for _, f := range []string{"player_uuid", "team_uuid", "sport_name", "pair_key", "university"} {
		if _, ok := row[f]; ok {
			return f
		}
	}
	return ""
}
