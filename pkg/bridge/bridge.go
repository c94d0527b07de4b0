// Package bridge defines the boundary between this library and whatever
// mechanism carries row operations into the flashcards host. How a process
// attaches to the host is out of scope here; implementations only have to
// satisfy these interfaces.
package bridge

import "context"

// Values holds the column/value pairs of a single row write.
type Values map[string]any

// Bridge carries row-oriented operations to the host content interface.
// URIs are the resource paths from the contract package. Selection clauses
// and their arguments are forwarded verbatim.
type Bridge interface {
	// Query opens a result set. The returned handle is owned by the caller
	// and must be released exactly once.
	Query(ctx context.Context, uri string, projection []string, selection string, selectionArgs []string, sortOrder string) (RowSet, error)

	// Insert adds one row and returns the resource path of the new row.
	// An empty path means the host rejected the insert.
	Insert(ctx context.Context, uri string, values Values) (string, error)

	// Update modifies the rows matched by the selection and returns the
	// affected-row count. Zero is a valid count, not an error.
	Update(ctx context.Context, uri string, values Values, selection string, selectionArgs []string) (int64, error)

	// Delete removes the rows matched by the selection and returns the
	// affected-row count.
	Delete(ctx context.Context, uri string, selection string, selectionArgs []string) (int64, error)

	// BulkInsert adds rows in one round trip and returns the host-reported
	// count, which may be lower than len(values) when the host skips rows.
	BulkInsert(ctx context.Context, uri string, values []Values) (int64, error)
}

// RowSet is the opaque handle to one remote result set. Positioning starts
// before the first row. Implementations do not have to be safe for
// concurrent use; the owning cursor serializes access.
type RowSet interface {
	MoveToFirst() (bool, error)
	MoveToNext() (bool, error)
	Count() (int, error)
	ColumnNames() ([]string, error)

	// GetString reads the value at the column index of the current row.
	// Null values read as the empty string.
	GetString(col int) (string, error)
	GetInt64(col int) (int64, error)
	GetFloat64(col int) (float64, error)
	IsNull(col int) (bool, error)

	// Release frees the remote handle. Called exactly once by the owner.
	Release() error
}

// Syncer is implemented by bridges that can ask the host to start a
// collection sync.
type Syncer interface {
	RequestSync(ctx context.Context) error
}
