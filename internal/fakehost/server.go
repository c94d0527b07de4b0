package fakehost

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/lxzan/gws"

	"github.com/ankidroid/flashcards.go/internal/codec"
	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/bridge/wsbridge"
)

// Server exposes a Host over the websocket bridge protocol so transport
// tests can run against a real socket. Cursors opened by query frames are
// parked in a registry until a closeCursor frame releases them.
type Server struct {
	host *Host
	addr string

	marshaler   codec.Marshaler
	unmarshaler codec.Unmarshaler

	server   *gws.Server
	listener net.Listener

	mu      sync.Mutex
	cursors map[string]bridge.RowSet
}

// NewServer wraps host. Use addr "127.0.0.1:0" to bind an ephemeral port.
func NewServer(host *Host, addr string) *Server {
	s := &Server{
		host:        host,
		addr:        addr,
		marshaler:   codec.Cbor{},
		unmarshaler: codec.Cbor{},
		cursors:     make(map[string]bridge.RowSet),
	}
	s.server = gws.NewServer(&handler{server: s}, &gws.ServerOption{})
	s.server.OnError = func(_ net.Conn, err error) {
		if !errors.Is(err, net.ErrClosed) {
			log.Printf("fakehost server error: %v", err)
		}
	}
	return s
}

// Start begins accepting connections.
func (s *Server) Start() error {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	go func() {
		if err := s.server.RunListener(listener); err != nil && !errors.Is(err, net.ErrClosed) {
			if !strings.Contains(err.Error(), "use of closed network connection") {
				log.Printf("fakehost server stopped: %v", err)
			}
		}
	}()
	return nil
}

// Stop closes the listener.
func (s *Server) Stop() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// URL returns the ws endpoint of the running server.
func (s *Server) URL() string {
	return "ws://" + s.listener.Addr().String()
}

// OpenCursors reports cursors that were opened but not yet released.
func (s *Server) OpenCursors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cursors)
}

type handler struct {
	gws.BuiltinEventHandler
	server *Server
}

func (h *handler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.WritePong(payload)
}

func (h *handler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	var req wsbridge.RPCRequest
	if err := h.server.unmarshaler.Unmarshal(message.Bytes(), &req); err != nil {
		h.reply(socket, wsbridge.RPCResponse{
			Error: &bridge.RemoteError{Code: bridge.CodeParse, Message: "request frame did not decode"},
		})
		return
	}

	result, err := h.server.dispatch(req)
	res := wsbridge.RPCResponse{ID: req.ID}
	if err != nil {
		var remote *bridge.RemoteError
		if !errors.As(err, &remote) {
			remote = &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
		}
		res.Error = remote
	} else if result != nil {
		raw, merr := h.server.marshaler.Marshal(result)
		if merr != nil {
			res.Error = &bridge.RemoteError{Code: bridge.CodeInternal, Message: merr.Error()}
		} else {
			res.Result = raw
		}
	}
	h.reply(socket, res)
}

func (h *handler) reply(socket *gws.Conn, res wsbridge.RPCResponse) {
	data, err := h.server.marshaler.Marshal(res)
	if err != nil {
		log.Printf("fakehost: marshal response: %v", err)
		return
	}
	_ = socket.WriteMessage(gws.OpcodeBinary, data)
}

func (s *Server) dispatch(req wsbridge.RPCRequest) (any, error) {
	ctx := context.Background()
	switch req.Method {
	case wsbridge.MethodQuery:
		if len(req.Params) != 5 {
			return nil, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "query expects 5 params"}
		}
		rows, err := s.host.Query(ctx,
			asString(req.Params[0]), asStrings(req.Params[1]),
			asString(req.Params[2]), asStrings(req.Params[3]), asString(req.Params[4]))
		if err != nil {
			return nil, err
		}
		return s.parkCursor(rows)

	case wsbridge.MethodInsert:
		if len(req.Params) != 2 {
			return nil, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "insert expects 2 params"}
		}
		path, err := s.host.Insert(ctx, asString(req.Params[0]), asValues(req.Params[1]))
		if err != nil {
			return nil, err
		}
		return path, nil

	case wsbridge.MethodUpdate:
		if len(req.Params) != 4 {
			return nil, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "update expects 4 params"}
		}
		return s.host.Update(ctx,
			asString(req.Params[0]), asValues(req.Params[1]),
			asString(req.Params[2]), asStrings(req.Params[3]))

	case wsbridge.MethodDelete:
		if len(req.Params) != 3 {
			return nil, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "delete expects 3 params"}
		}
		return s.host.Delete(ctx,
			asString(req.Params[0]), asString(req.Params[1]), asStrings(req.Params[2]))

	case wsbridge.MethodBulkInsert:
		if len(req.Params) != 2 {
			return nil, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "bulkInsert expects 2 params"}
		}
		rows, ok := req.Params[1].([]any)
		if !ok {
			return nil, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "bulkInsert rows must be a list"}
		}
		values := make([]bridge.Values, len(rows))
		for i, row := range rows {
			values[i] = asValues(row)
		}
		return s.host.BulkInsert(ctx, asString(req.Params[0]), values)

	case wsbridge.MethodCloseCursor:
		if len(req.Params) != 1 {
			return nil, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "closeCursor expects 1 param"}
		}
		return nil, s.releaseCursor(asString(req.Params[0]))

	case wsbridge.MethodSync:
		return nil, s.host.RequestSync(ctx)

	default:
		return nil, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "unknown method " + req.Method}
	}
}

// parkCursor materializes the row set for the wire and keeps the handle
// until the client releases it.
func (s *Server) parkCursor(rows bridge.RowSet) (*wsbridge.QueryResult, error) {
	cols, err := rows.ColumnNames()
	if err != nil {
		return nil, err
	}

	res := &wsbridge.QueryResult{
		Cursor:  uuid.Must(uuid.NewV4()).String(),
		Columns: cols,
	}

	ok, err := rows.MoveToFirst()
	if err != nil {
		return nil, err
	}
	for ok {
		row := make([]any, len(cols))
		for i := range cols {
			null, err := rows.IsNull(i)
			if err != nil {
				return nil, err
			}
			if null {
				row[i] = nil
				continue
			}
			row[i], err = rows.GetString(i)
			if err != nil {
				return nil, err
			}
		}
		res.Rows = append(res.Rows, row)
		ok, err = rows.MoveToNext()
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.cursors[res.Cursor] = rows
	s.mu.Unlock()
	return res, nil
}

func (s *Server) releaseCursor(id string) error {
	s.mu.Lock()
	rows, ok := s.cursors[id]
	delete(s.cursors, id)
	s.mu.Unlock()
	if !ok {
		return &bridge.RemoteError{Code: bridge.CodeNotFound, Message: "unknown cursor " + id}
	}
	return rows.Release()
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = asString(item)
	}
	return out
}

func asValues(v any) bridge.Values {
	out := bridge.Values{}
	switch m := v.(type) {
	case map[any]any:
		for key, val := range m {
			out[asString(key)] = val
		}
	case map[string]any:
		for key, val := range m {
			out[key] = val
		}
	}
	return out
}
