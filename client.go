// Package flashcards is a client for the flashcard data of a running
// AnkiDroid-compatible host app, reached through its row-oriented content
// interface. The package covers notes, decks, note types and card state;
// how the process attaches to the host is delegated to a bridge
// implementation.
package flashcards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/content"
	"github.com/ankidroid/flashcards.go/pkg/contract"
	"github.com/ankidroid/flashcards.go/pkg/logger"
)

// MaxFieldLength is the longest value accepted for one note field.
const MaxFieldLength = 131072

var validate = validator.New()

// Client exposes the flashcard operations over one bridge.
type Client struct {
	bridge bridge.Bridge
	log    logger.Logger
	gate   *SyncGate

	// includeModelID controls whether note inserts carry the model id
	// explicitly. When false the host infers the model from the deck's
	// current note type, which older hosts require.
	includeModelID bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes the client's log events to log.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithSyncCooldown replaces the default interval between sync triggers.
func WithSyncCooldown(d time.Duration) Option {
	return func(c *Client) { c.gate = NewSyncGate(d) }
}

// WithoutModelIDOnInsert makes note inserts omit the model id column.
func WithoutModelIDOnInsert() Option {
	return func(c *Client) { c.includeModelID = false }
}

// New builds a Client over b.
func New(b bridge.Bridge, opts ...Option) (*Client, error) {
	if b == nil {
		return nil, constants.ErrNilBridge
	}
	c := &Client{
		bridge:         b,
		log:            logger.Nop{},
		gate:           NewSyncGate(constants.DefaultSyncCooldown),
		includeModelID: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Available checks that the host's content interface answers. The error
// carries the failure class when it does not.
func (c *Client) Available(ctx context.Context) error {
	cur, err := content.Query(c.bridge, contract.DecksURI).Execute(ctx)
	if err != nil {
		return fmt.Errorf("host availability check: %w", err)
	}
	return cur.Close()
}

// isNameConflict reports whether an insert failure looks like a unique
// name collision, which deck and model creation can hit when another
// writer wins the race.
func isNameConflict(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", constants.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", constants.ErrInvalidInput, verrs)
		}
		return fmt.Errorf("%w: %v", constants.ErrInvalidInput, err)
	}
	return nil
}
