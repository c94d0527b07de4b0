package wsbridge

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
)

// RPC method names understood by a bridge endpoint.
const (
	MethodQuery       = "query"
	MethodInsert      = "insert"
	MethodUpdate      = "update"
	MethodDelete      = "delete"
	MethodBulkInsert  = "bulkInsert"
	MethodCloseCursor = "closeCursor"
	MethodSync        = "sync"
)

// RPCRequest is one framed request to the bridge endpoint.
type RPCRequest struct {
	ID     string `cbor:"id" json:"id"`
	Method string `cbor:"method" json:"method"`
	Params []any  `cbor:"params" json:"params"`
}

// RPCResponse is one framed response. Exactly one of Error and Result is
// meaningful.
type RPCResponse struct {
	ID     string              `cbor:"id" json:"id"`
	Error  *bridge.RemoteError `cbor:"error,omitempty" json:"error,omitempty"`
	Result cbor.RawMessage     `cbor:"result,omitempty" json:"result,omitempty"`
}

// QueryResult carries a materialized result set plus the remote cursor
// handle that must be released with MethodCloseCursor.
type QueryResult struct {
	Cursor  string   `cbor:"cursor" json:"cursor"`
	Columns []string `cbor:"columns" json:"columns"`
	Rows    [][]any  `cbor:"rows" json:"rows"`
}
