package content

import (
	"context"
	"fmt"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
)

// QueryBuilder assembles a row query against one resource path.
type QueryBuilder struct {
	bridge     bridge.Bridge
	uri        string
	projection []string
	selection  string
	args       []string
	sortOrder  string
}

// Query starts a query against uri.
func Query(b bridge.Bridge, uri string) *QueryBuilder {
	return &QueryBuilder{bridge: b, uri: uri}
}

// Projection restricts the returned columns.
func (q *QueryBuilder) Projection(cols ...string) *QueryBuilder {
	q.projection = cols
	return q
}

// Selection sets the filter clause and its positional arguments.
func (q *QueryBuilder) Selection(clause string, args ...string) *QueryBuilder {
	q.selection = clause
	q.args = args
	return q
}

// SortOrder sets the ordering clause.
func (q *QueryBuilder) SortOrder(order string) *QueryBuilder {
	q.sortOrder = order
	return q
}

// Execute runs the query and hands ownership of the cursor to the caller.
func (q *QueryBuilder) Execute(ctx context.Context) (*Cursor, error) {
	if q.bridge == nil {
		return nil, constants.ErrNilBridge
	}
	if err := validateProjection(q.projection); err != nil {
		return nil, err
	}
	if err := validateSelection(q.selection); err != nil {
		return nil, err
	}

	rows, err := q.bridge.Query(ctx, q.uri, q.projection, q.selection, q.args, q.sortOrder)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.uri, err)
	}
	return NewCursor(rows)
}

// Collect iterates the whole cursor, mapping every row through fn, and
// closes the cursor before returning.
func Collect[T any](c *Cursor, fn func(*Cursor) (T, error)) ([]T, error) {
	defer c.Close()

	var out []T
	ok, err := c.MoveToFirst()
	if err != nil {
		return nil, err
	}
	for ok {
		item, err := fn(c)
		if err != nil {
			return nil, err
		}
		out = append(out, item)

		ok, err = c.MoveToNext()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
