package wsbridge

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// rowSet is the client side of a remote cursor. Rows arrive materialized
// with the query response; Release still has to travel back so the
// endpoint can close the provider cursor it is holding open.
type rowSet struct {
	bridge  *WebSocketBridge
	handle  string
	columns []string
	rows    [][]any
	pos     int
}

func newRowSet(ws *WebSocketBridge, res QueryResult) *rowSet {
	return &rowSet{
		bridge:  ws,
		handle:  res.Cursor,
		columns: res.Columns,
		rows:    res.Rows,
		pos:     -1,
	}
}

func (r *rowSet) MoveToFirst() (bool, error) {
	if len(r.rows) == 0 {
		return false, nil
	}
	r.pos = 0
	return true, nil
}

func (r *rowSet) MoveToNext() (bool, error) {
	if r.pos+1 >= len(r.rows) {
		r.pos = len(r.rows)
		return false, nil
	}
	r.pos++
	return true, nil
}

func (r *rowSet) Count() (int, error) { return len(r.rows), nil }

func (r *rowSet) ColumnNames() ([]string, error) { return r.columns, nil }

func (r *rowSet) GetString(col int) (string, error) {
	v, err := r.value(col)
	if err != nil || v == nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (r *rowSet) GetInt64(col int) (int64, error) {
	v, err := r.value(col)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		parsed, perr := strconv.ParseInt(n, 10, 64)
		if perr != nil {
			return 0, fmt.Errorf("column %d: %q is not an integer", col, n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("column %d: %T is not an integer", col, v)
	}
}

func (r *rowSet) GetFloat64(col int) (float64, error) {
	v, err := r.value(col)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		parsed, perr := strconv.ParseFloat(n, 64)
		if perr != nil {
			return 0, fmt.Errorf("column %d: %q is not a float", col, n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("column %d: %T is not a float", col, v)
	}
}

func (r *rowSet) IsNull(col int) (bool, error) {
	v, err := r.value(col)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

// Release frees the endpoint's cursor. The round trip gets its own
// deadline because the caller's context may already be done.
func (r *rowSet) Release() error {
	if r.handle == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := r.bridge.send(ctx, nil, MethodCloseCursor, r.handle)
	r.handle = ""
	return err
}

func (r *rowSet) value(col int) (any, error) {
	if r.pos < 0 || r.pos >= len(r.rows) {
		return nil, fmt.Errorf("row set not positioned on a row")
	}
	row := r.rows[r.pos]
	if col < 0 || col >= len(row) {
		return nil, fmt.Errorf("column %d out of range", col)
	}
	return row[col], nil
}
