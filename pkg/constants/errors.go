package constants

import "errors"

// Errors distinguishing the failure classes surfaced by this library.
// They are meant to be matched with errors.Is; call sites add context
// by wrapping with fmt.Errorf and %w.
var (
	// ErrHostUnavailable indicates the flashcards host app is not installed,
	// not running, or its content interface did not answer.
	ErrHostUnavailable = errors.New("flashcards host unavailable")

	// ErrPermissionDenied indicates the read-write database permission has
	// not been granted to the caller.
	ErrPermissionDenied = errors.New("read-write permission denied")

	// ErrNotFound indicates the addressed row does not exist, or that a
	// single-row update affected zero rows.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates caller-supplied data failed validation
	// before any host call was made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBridge indicates a transport-level fault between this process and
	// the host.
	ErrBridge = errors.New("bridge fault")

	// ErrMalformedRow indicates host data that does not parse into the
	// expected shape.
	ErrMalformedRow = errors.New("malformed row")
)
var (
	ErrCursorClosed = errors.New("cursor is closed")
	ErrTimeout      = errors.New("timeout")
	ErrNilBridge    = errors.New("bridge is not set")
	ErrNilRowSet    = errors.New("row set handle is not set")
)
