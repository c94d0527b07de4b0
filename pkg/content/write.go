package content

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
)

// InsertBuilder assembles a single-row insert.
type InsertBuilder struct {
	bridge bridge.Bridge
	uri    string
	values bridge.Values
}

// Insert starts an insert into uri.
func Insert(b bridge.Bridge, uri string) *InsertBuilder {
	return &InsertBuilder{bridge: b, uri: uri}
}

// Values sets the row to insert.
func (i *InsertBuilder) Values(v bridge.Values) *InsertBuilder {
	i.values = v
	return i
}

// Execute inserts the row and returns the id parsed from the last segment
// of the returned resource path.
func (i *InsertBuilder) Execute(ctx context.Context) (int64, error) {
	path, err := i.ExecutePath(ctx)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(LastPathSegment(path), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: insert returned non-numeric id in %q", constants.ErrMalformedRow, path)
	}
	return id, nil
}

// ExecutePath inserts the row and returns the raw resource path of the
// new row. An empty path from the host is a failed insert.
func (i *InsertBuilder) ExecutePath(ctx context.Context) (string, error) {
	if i.bridge == nil {
		return "", constants.ErrNilBridge
	}
	if len(i.values) == 0 {
		return "", fmt.Errorf("%w: insert without values", constants.ErrInvalidInput)
	}

	path, err := i.bridge.Insert(ctx, i.uri, i.values)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", i.uri, err)
	}
	if path == "" {
		return "", fmt.Errorf("%w: insert into %s returned no resource path", constants.ErrBridge, i.uri)
	}
	return path, nil
}

// UpdateBuilder assembles an update against one resource path.
type UpdateBuilder struct {
	bridge    bridge.Bridge
	uri       string
	values    bridge.Values
	selection string
	args      []string
}

// Update starts an update against uri.
func Update(b bridge.Bridge, uri string) *UpdateBuilder {
	return &UpdateBuilder{bridge: b, uri: uri}
}

// Values sets the columns to write.
func (u *UpdateBuilder) Values(v bridge.Values) *UpdateBuilder {
	u.values = v
	return u
}

// Selection sets the filter clause and its positional arguments.
func (u *UpdateBuilder) Selection(clause string, args ...string) *UpdateBuilder {
	u.selection = clause
	u.args = args
	return u
}

// Execute runs the update and returns the affected-row count. Zero rows
// is a valid outcome; classifying it is left to the caller.
func (u *UpdateBuilder) Execute(ctx context.Context) (int64, error) {
	if u.bridge == nil {
		return 0, constants.ErrNilBridge
	}
	if len(u.values) == 0 {
		return 0, fmt.Errorf("%w: update without values", constants.ErrInvalidInput)
	}
	if err := validateSelection(u.selection); err != nil {
		return 0, err
	}

	n, err := u.bridge.Update(ctx, u.uri, u.values, u.selection, u.args)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", u.uri, err)
	}
	return n, nil
}

// DeleteBuilder assembles a delete against one resource path.
type DeleteBuilder struct {
	bridge    bridge.Bridge
	uri       string
	selection string
	args      []string
}

// Delete starts a delete against uri.
func Delete(b bridge.Bridge, uri string) *DeleteBuilder {
	return &DeleteBuilder{bridge: b, uri: uri}
}

// Selection sets the filter clause and its positional arguments.
func (d *DeleteBuilder) Selection(clause string, args ...string) *DeleteBuilder {
	d.selection = clause
	d.args = args
	return d
}

// Execute runs the delete and returns the affected-row count.
func (d *DeleteBuilder) Execute(ctx context.Context) (int64, error) {
	if d.bridge == nil {
		return 0, constants.ErrNilBridge
	}
	if err := validateSelection(d.selection); err != nil {
		return 0, err
	}

	n, err := d.bridge.Delete(ctx, d.uri, d.selection, d.args)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", d.uri, err)
	}
	return n, nil
}

// BulkInsertBuilder assembles a multi-row insert.
type BulkInsertBuilder struct {
	bridge bridge.Bridge
	uri    string
	rows   []bridge.Values
}

// BulkInsert starts a bulk insert into uri.
func BulkInsert(b bridge.Bridge, uri string) *BulkInsertBuilder {
	return &BulkInsertBuilder{bridge: b, uri: uri}
}

// Rows appends rows to insert.
func (b *BulkInsertBuilder) Rows(rows ...bridge.Values) *BulkInsertBuilder {
	b.rows = append(b.rows, rows...)
	return b
}

// Execute inserts the rows and returns the count the host reports. The
// count may be lower than the number of rows sent; the caller decides
// what a short count means.
func (b *BulkInsertBuilder) Execute(ctx context.Context) (int64, error) {
	if b.bridge == nil {
		return 0, constants.ErrNilBridge
	}
	if len(b.rows) == 0 {
		return 0, fmt.Errorf("%w: bulk insert without rows", constants.ErrInvalidInput)
	}

	n, err := b.bridge.BulkInsert(ctx, b.uri, b.rows)
	if err != nil {
		return 0, fmt.Errorf("bulk insert %s: %w", b.uri, err)
	}
	return n, nil
}

// LastPathSegment returns the final segment of a resource path. Hosts
// encode new row ids and stored media filenames there.
func LastPathSegment(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
