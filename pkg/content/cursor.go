// Package content implements row access on top of a bridge: the cursor
// over remote result sets and the query/write builders.
package content

import (
	"fmt"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
)

// Cursor owns one remote result-set handle. It is not safe for concurrent
// use. Close releases the handle exactly once; every other operation on a
// closed cursor fails with constants.ErrCursorClosed.
type Cursor struct {
	rows   bridge.RowSet
	closed bool

	cols     []string
	colIndex map[string]int
}

// NewCursor wraps a result-set handle. The handle must not be nil.
func NewCursor(rows bridge.RowSet) (*Cursor, error) {
	if rows == nil {
		return nil, constants.ErrNilRowSet
	}
	return &Cursor{rows: rows, colIndex: make(map[string]int)}, nil
}

// MoveToFirst positions the cursor on the first row. It reports false on
// an empty result set.
func (c *Cursor) MoveToFirst() (bool, error) {
	if c.closed {
		return false, constants.ErrCursorClosed
	}
	return c.rows.MoveToFirst()
}

// MoveToNext advances to the next row, reporting false past the last one.
func (c *Cursor) MoveToNext() (bool, error) {
	if c.closed {
		return false, constants.ErrCursorClosed
	}
	return c.rows.MoveToNext()
}

// Count returns the number of rows in the result set.
func (c *Cursor) Count() (int, error) {
	if c.closed {
		return 0, constants.ErrCursorClosed
	}
	return c.rows.Count()
}

// ColumnNames returns the result-set columns in projection order.
func (c *Cursor) ColumnNames() ([]string, error) {
	if c.closed {
		return nil, constants.ErrCursorClosed
	}
	if err := c.loadColumns(); err != nil {
		return nil, err
	}
	out := make([]string, len(c.cols))
	copy(out, c.cols)
	return out, nil
}

// ColumnCount returns the number of columns.
func (c *Cursor) ColumnCount() (int, error) {
	if c.closed {
		return 0, constants.ErrCursorClosed
	}
	if err := c.loadColumns(); err != nil {
		return 0, err
	}
	return len(c.cols), nil
}

// ColumnIndex resolves a column name to its index. Lookups are cached for
// the lifetime of the cursor. An unknown name is an input error.
func (c *Cursor) ColumnIndex(name string) (int, error) {
	if c.closed {
		return 0, constants.ErrCursorClosed
	}
	if idx, ok := c.colIndex[name]; ok {
		return idx, nil
	}
	if err := c.loadColumns(); err != nil {
		return 0, err
	}
	for i, col := range c.cols {
		if col == name {
			c.colIndex[name] = i
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no such column %q", constants.ErrInvalidInput, name)
}

// GetStringAt reads the column at index of the current row. Null reads
// as "".
func (c *Cursor) GetStringAt(index int) (string, error) {
	if err := c.checkIndex(index); err != nil {
		return "", err
	}
	return c.rows.GetString(index)
}

// GetInt64At reads the column at index of the current row as an integer.
func (c *Cursor) GetInt64At(index int) (int64, error) {
	if err := c.checkIndex(index); err != nil {
		return 0, err
	}
	return c.rows.GetInt64(index)
}

// GetFloat64At reads the column at index of the current row as a float.
func (c *Cursor) GetFloat64At(index int) (float64, error) {
	if err := c.checkIndex(index); err != nil {
		return 0, err
	}
	return c.rows.GetFloat64(index)
}

// IsNullAt reports whether the column at index of the current row is
// null.
func (c *Cursor) IsNullAt(index int) (bool, error) {
	if err := c.checkIndex(index); err != nil {
		return false, err
	}
	return c.rows.IsNull(index)
}

// GetString reads the named column of the current row. Null reads as "".
func (c *Cursor) GetString(name string) (string, error) {
	idx, err := c.ColumnIndex(name)
	if err != nil {
		return "", err
	}
	return c.rows.GetString(idx)
}

// GetInt64 reads the named column of the current row as an integer.
func (c *Cursor) GetInt64(name string) (int64, error) {
	idx, err := c.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	return c.rows.GetInt64(idx)
}

// GetFloat64 reads the named column of the current row as a float.
func (c *Cursor) GetFloat64(name string) (float64, error) {
	idx, err := c.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	return c.rows.GetFloat64(idx)
}

// IsNull reports whether the named column of the current row is null.
func (c *Cursor) IsNull(name string) (bool, error) {
	idx, err := c.ColumnIndex(name)
	if err != nil {
		return false, err
	}
	return c.rows.IsNull(idx)
}

func (c *Cursor) checkIndex(index int) error {
	if c.closed {
		return constants.ErrCursorClosed
	}
	if err := c.loadColumns(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.cols) {
		return fmt.Errorf("%w: column index %d out of range", constants.ErrInvalidInput, index)
	}
	return nil
}

// Close releases the remote handle. Closing an already closed cursor is a
// no-op; the handle is released at most once.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rows.Release()
}

func (c *Cursor) loadColumns() error {
	if c.cols != nil {
		return nil
	}
	cols, err := c.rows.ColumnNames()
	if err != nil {
		return err
	}
	c.cols = cols
	return nil
}
