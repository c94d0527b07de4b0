package bridge

import (
	"fmt"

	"github.com/ankidroid/flashcards.go/pkg/constants"
)

// Fault codes reported by remote bridge endpoints.
const (
	CodeInternal         = -32000
	CodeHostUnavailable  = -32001
	CodePermissionDenied = -32002
	CodeNotFound         = -32003
	CodeInvalidParams    = -32602
	CodeParse            = -32700
)

// RemoteError is a failure reported by the far side of a bridge. Unwrap
// maps the code onto the library's sentinel errors so callers can use
// errors.Is without knowing the wire codes.
type RemoteError struct {
	Code    int    `json:"code" cbor:"code"`
	Message string `json:"message" cbor:"message"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("host error %d: %s", e.Code, e.Message)
}

func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case CodeHostUnavailable:
		return constants.ErrHostUnavailable
	case CodePermissionDenied:
		return constants.ErrPermissionDenied
	case CodeNotFound:
		return constants.ErrNotFound
	case CodeInvalidParams, CodeParse:
		return constants.ErrInvalidInput
	default:
		return constants.ErrBridge
	}
}
