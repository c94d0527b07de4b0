// Package mock provides scriptable bridge doubles for unit tests. The
// doubles count every call so tests can assert that validation failures
// never reach the host.
package mock

import (
	"context"
	"fmt"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
)

// Call records one bridge invocation.
type Call struct {
	Op        string
	URI       string
	Values    bridge.Values
	Rows      []bridge.Values
	Selection string
	Args      []string
}

// Bridge is a scriptable bridge.Bridge. Zero value is usable: every call
// succeeds with empty results.
type Bridge struct {
	Calls []Call

	QueryFunc      func(uri string, projection []string, selection string, args []string, sort string) (bridge.RowSet, error)
	InsertFunc     func(uri string, values bridge.Values) (string, error)
	UpdateFunc     func(uri string, values bridge.Values, selection string, args []string) (int64, error)
	DeleteFunc     func(uri string, selection string, args []string) (int64, error)
	BulkInsertFunc func(uri string, rows []bridge.Values) (int64, error)
	SyncFunc       func() error
}

// CallCount returns the total number of bridge invocations recorded.
func (b *Bridge) CallCount() int { return len(b.Calls) }

func (b *Bridge) Query(_ context.Context, uri string, projection []string, selection string, args []string, sort string) (bridge.RowSet, error) {
	b.Calls = append(b.Calls, Call{Op: "query", URI: uri, Selection: selection, Args: args})
	if b.QueryFunc != nil {
		return b.QueryFunc(uri, projection, selection, args, sort)
	}
	return NewRowSet(nil), nil
}

func (b *Bridge) Insert(_ context.Context, uri string, values bridge.Values) (string, error) {
	b.Calls = append(b.Calls, Call{Op: "insert", URI: uri, Values: values})
	if b.InsertFunc != nil {
		return b.InsertFunc(uri, values)
	}
	return uri + "/1", nil
}

func (b *Bridge) Update(_ context.Context, uri string, values bridge.Values, selection string, args []string) (int64, error) {
	b.Calls = append(b.Calls, Call{Op: "update", URI: uri, Values: values, Selection: selection, Args: args})
	if b.UpdateFunc != nil {
		return b.UpdateFunc(uri, values, selection, args)
	}
	return 1, nil
}

func (b *Bridge) Delete(_ context.Context, uri string, selection string, args []string) (int64, error) {
	b.Calls = append(b.Calls, Call{Op: "delete", URI: uri, Selection: selection, Args: args})
	if b.DeleteFunc != nil {
		return b.DeleteFunc(uri, selection, args)
	}
	return 1, nil
}

func (b *Bridge) BulkInsert(_ context.Context, uri string, rows []bridge.Values) (int64, error) {
	b.Calls = append(b.Calls, Call{Op: "bulkInsert", URI: uri, Rows: rows})
	if b.BulkInsertFunc != nil {
		return b.BulkInsertFunc(uri, rows)
	}
	return int64(len(rows)), nil
}

func (b *Bridge) RequestSync(_ context.Context) error {
	b.Calls = append(b.Calls, Call{Op: "sync"})
	if b.SyncFunc != nil {
		return b.SyncFunc()
	}
	return nil
}

// RowSet is an in-memory bridge.RowSet with release tracking.
type RowSet struct {
	Columns  []string
	Rows     [][]any
	Released int

	pos int
}

// NewRowSet builds a row set from column names and rows. A nil columns
// slice yields an empty, zero-column set.
func NewRowSet(columns []string, rows ...[]any) *RowSet {
	return &RowSet{Columns: columns, Rows: rows, pos: -1}
}

func (r *RowSet) MoveToFirst() (bool, error) {
	if len(r.Rows) == 0 {
		return false, nil
	}
	r.pos = 0
	return true, nil
}

func (r *RowSet) MoveToNext() (bool, error) {
	if r.pos+1 >= len(r.Rows) {
		r.pos = len(r.Rows)
		return false, nil
	}
	r.pos++
	return true, nil
}

func (r *RowSet) Count() (int, error) { return len(r.Rows), nil }

func (r *RowSet) ColumnNames() ([]string, error) { return r.Columns, nil }

func (r *RowSet) GetString(col int) (string, error) {
	v, err := r.value(col)
	if err != nil || v == nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func (r *RowSet) GetInt64(col int) (int64, error) {
	v, err := r.value(col)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("column %d is %T, not an integer", col, v)
	}
}

func (r *RowSet) GetFloat64(col int) (float64, error) {
	v, err := r.value(col)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("column %d is %T, not a float", col, v)
	}
}

func (r *RowSet) IsNull(col int) (bool, error) {
	v, err := r.value(col)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

func (r *RowSet) Release() error {
	r.Released++
	return nil
}

func (r *RowSet) value(col int) (any, error) {
	if r.pos < 0 || r.pos >= len(r.Rows) {
		return nil, fmt.Errorf("row set not positioned on a row")
	}
	row := r.Rows[r.pos]
	if col < 0 || col >= len(row) {
		return nil, fmt.Errorf("column %d out of range", col)
	}
	return row[col], nil
}
