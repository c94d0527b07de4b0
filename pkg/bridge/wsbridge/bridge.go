// Package wsbridge carries bridge operations over a websocket to a
// companion endpoint that is already attached to the flashcards host.
// Frames are CBOR-encoded request/response pairs matched by id.
package wsbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	gorilla "github.com/gorilla/websocket"

	"github.com/ankidroid/flashcards.go/internal/codec"
	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/logger"
)

// DefaultDialer requests the cbor subprotocol.
var DefaultDialer = &gorilla.Dialer{
	Proxy:            gorilla.DefaultDialer.Proxy,
	HandshakeTimeout: gorilla.DefaultDialer.HandshakeTimeout,
	Subprotocols:     []string{"cbor"},
}

// WebSocketBridge implements bridge.Bridge and bridge.Syncer over one
// websocket connection.
type WebSocketBridge struct {
	url     string
	dialer  *gorilla.Dialer
	timeout time.Duration
	log     logger.Logger

	marshaler   codec.Marshaler
	unmarshaler codec.Unmarshaler

	conn      *gorilla.Conn
	writeLock sync.Mutex

	respLock  sync.RWMutex
	respChans map[string]chan RPCResponse

	closeOnce sync.Once
	closeChan chan struct{}
}

// Option configures a WebSocketBridge.
type Option func(*WebSocketBridge)

// WithTimeout bounds every round trip. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(ws *WebSocketBridge) { ws.timeout = d }
}

// WithLogger routes transport events to log.
func WithLogger(log logger.Logger) Option {
	return func(ws *WebSocketBridge) { ws.log = log }
}

// WithDialer replaces the dialer used by Connect.
func WithDialer(d *gorilla.Dialer) Option {
	return func(ws *WebSocketBridge) { ws.dialer = d }
}

// New builds a bridge for the endpoint at url. Connect must be called
// before use.
func New(url string, opts ...Option) *WebSocketBridge {
	ws := &WebSocketBridge{
		url:         url,
		dialer:      DefaultDialer,
		timeout:     constants.DefaultBridgeTimeout,
		log:         logger.Nop{},
		marshaler:   codec.Cbor{},
		unmarshaler: codec.Cbor{},
		respChans:   make(map[string]chan RPCResponse),
		closeChan:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ws)
	}
	return ws
}

// Connect dials the endpoint and starts the read loop.
func (ws *WebSocketBridge) Connect(ctx context.Context) error {
	conn, _, err := ws.dialer.DialContext(ctx, ws.url, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", constants.ErrHostUnavailable, ws.url, err)
	}
	ws.conn = conn
	go ws.readLoop()
	return nil
}

// Close sends a close frame, then tears down the connection. Pending
// calls fail when their response channels drop.
func (ws *WebSocketBridge) Close(ctx context.Context) error {
	var err error
	ws.closeOnce.Do(func() {
		close(ws.closeChan)
		if ws.conn == nil {
			return
		}
		msg := gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, "")
		deadline := time.Now().Add(time.Second)
		if d, ok := ctx.Deadline(); ok {
			deadline = d
		}
		if werr := ws.conn.WriteControl(gorilla.CloseMessage, msg, deadline); werr != nil {
			ws.log.Error("failed to write close frame", "error", werr)
		}
		err = ws.conn.Close()
	})
	return err
}

func (ws *WebSocketBridge) readLoop() {
	for {
		_, data, err := ws.conn.ReadMessage()
		if err != nil {
			select {
			case <-ws.closeChan:
			default:
				ws.log.Error("bridge read failed", "error", err)
			}
			ws.dropPending()
			return
		}

		var res RPCResponse
		if err := ws.unmarshaler.Unmarshal(data, &res); err != nil {
			ws.log.Error("bridge frame did not decode", "error", err)
			continue
		}

		ws.respLock.RLock()
		ch, ok := ws.respChans[res.ID]
		ws.respLock.RUnlock()
		if !ok {
			ws.log.Debug("response for unknown request id", "id", res.ID)
			continue
		}
		ch <- res
	}
}

func (ws *WebSocketBridge) dropPending() {
	ws.respLock.Lock()
	defer ws.respLock.Unlock()
	for id, ch := range ws.respChans {
		close(ch)
		delete(ws.respChans, id)
	}
}

func (ws *WebSocketBridge) registerResponse(id string) (chan RPCResponse, error) {
	ws.respLock.Lock()
	defer ws.respLock.Unlock()
	if _, ok := ws.respChans[id]; ok {
		return nil, fmt.Errorf("request id %s already in flight", id)
	}
	ch := make(chan RPCResponse, 1)
	ws.respChans[id] = ch
	return ch, nil
}

func (ws *WebSocketBridge) unregisterResponse(id string) {
	ws.respLock.Lock()
	defer ws.respLock.Unlock()
	delete(ws.respChans, id)
}

// send performs one round trip. A nil dest discards the result payload.
func (ws *WebSocketBridge) send(ctx context.Context, dest any, method string, params ...any) error {
	if ws.conn == nil {
		return fmt.Errorf("%w: bridge is not connected", constants.ErrHostUnavailable)
	}
	if ws.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ws.timeout)
		defer cancel()
	}

	select {
	case <-ws.closeChan:
		return fmt.Errorf("%w: bridge is closed", constants.ErrBridge)
	default:
	}

	id := uuid.Must(uuid.NewV4()).String()
	req := RPCRequest{ID: id, Method: method, Params: params}

	ch, err := ws.registerResponse(id)
	if err != nil {
		return err
	}
	defer ws.unregisterResponse(id)

	data, err := ws.marshaler.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	ws.writeLock.Lock()
	err = ws.conn.WriteMessage(gorilla.BinaryMessage, data)
	ws.writeLock.Unlock()
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", constants.ErrBridge, method, err)
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", constants.ErrTimeout, method)
		}
		return ctx.Err()
	case res, open := <-ch:
		if !open {
			return fmt.Errorf("%w: connection lost while awaiting %s", constants.ErrBridge, method)
		}
		if res.Error != nil {
			return fmt.Errorf("%s: %w", method, res.Error)
		}
		if dest == nil || res.Result == nil {
			return nil
		}
		raw, err := res.Result.MarshalCBOR()
		if err != nil {
			return fmt.Errorf("read %s result: %w", method, err)
		}
		if err := ws.unmarshaler.Unmarshal(raw, dest); err != nil {
			return fmt.Errorf("%w: decode %s result: %v", constants.ErrMalformedRow, method, err)
		}
		return nil
	}
}

var _ bridge.Bridge = (*WebSocketBridge)(nil)
var _ bridge.Syncer = (*WebSocketBridge)(nil)

// Query opens a remote cursor. The endpoint materializes the rows into
// the response; the handle still has to be released so the endpoint can
// free the underlying provider cursor.
func (ws *WebSocketBridge) Query(ctx context.Context, uri string, projection []string, selection string, selectionArgs []string, sortOrder string) (bridge.RowSet, error) {
	var res QueryResult
	if err := ws.send(ctx, &res, MethodQuery, uri, projection, selection, selectionArgs, sortOrder); err != nil {
		return nil, err
	}
	return newRowSet(ws, res), nil
}

func (ws *WebSocketBridge) Insert(ctx context.Context, uri string, values bridge.Values) (string, error) {
	var path string
	if err := ws.send(ctx, &path, MethodInsert, uri, values); err != nil {
		return "", err
	}
	return path, nil
}

func (ws *WebSocketBridge) Update(ctx context.Context, uri string, values bridge.Values, selection string, selectionArgs []string) (int64, error) {
	var n int64
	if err := ws.send(ctx, &n, MethodUpdate, uri, values, selection, selectionArgs); err != nil {
		return 0, err
	}
	return n, nil
}

func (ws *WebSocketBridge) Delete(ctx context.Context, uri string, selection string, selectionArgs []string) (int64, error) {
	var n int64
	if err := ws.send(ctx, &n, MethodDelete, uri, selection, selectionArgs); err != nil {
		return 0, err
	}
	return n, nil
}

func (ws *WebSocketBridge) BulkInsert(ctx context.Context, uri string, values []bridge.Values) (int64, error) {
	var n int64
	if err := ws.send(ctx, &n, MethodBulkInsert, uri, values); err != nil {
		return 0, err
	}
	return n, nil
}

// RequestSync asks the host to start a collection sync.
func (ws *WebSocketBridge) RequestSync(ctx context.Context) error {
	return ws.send(ctx, nil, MethodSync)
}
