// Package store abstracts the document store backing the roster tables.
// Rows are schemaless attribute maps; lookups go through the primary key or
// a secondary index, and counters are mutated only through atomic
// increment/decrement so concurrent registrations cannot lose updates.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrUnavailable wraps infrastructure failures from the backing store.
// Absence of an item is never reported through it; lookups return a found
// flag instead.
var ErrUnavailable = errors.New("store unavailable")

// Row is one document. Attribute values are strings, numbers, or bools.
type Row map[string]any

// Store is the adapter the core operates against. Implementations must make
// Increment and Decrement atomic at the store level.
type Store interface {
	// Get fetches the row whose key field equals keyValue. found is false
	// when no row matches; err is reserved for infrastructure failure.
	Get(ctx context.Context, table, keyField, keyValue string) (row Row, found bool, err error)

	// GetByIndex fetches all rows whose indexed field equals value.
	GetByIndex(ctx context.Context, table, indexField, value string) ([]Row, error)

	// Scan returns every row in the table.
	Scan(ctx context.Context, table string) ([]Row, error)

	// Write upserts a row keyed by its primary key attribute.
	Write(ctx context.Context, table string, row Row) error

	// Delete removes the row whose key field equals keyValue. Deleting an
	// absent row is not an error.
	Delete(ctx context.Context, table, keyField, keyValue string) error

	// Increment atomically adds by to a numeric field of the row whose key
	// field equals keyValue.
	Increment(ctx context.Context, table, keyField, keyValue, valueField string, by int) error

	// Decrement atomically subtracts by from a numeric field.
	Decrement(ctx context.Context, table, keyField, keyValue, valueField string, by int) error
}

// String returns the named attribute as a string.
func (r Row) String(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int returns the named attribute as an int. Document stores hand numbers
// back in several shapes depending on the codec.
func (r Row) Int(field string) int {
	switch v := r[field].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Int64 returns the named attribute as an int64.
func (r Row) Int64(field string) int64 {
	switch v := r[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool returns the named attribute as a bool.
func (r Row) Bool(field string) bool {
	v, _ := r[field].(bool)
	return v
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
