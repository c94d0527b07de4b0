package flashcards

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
)

var (
	// ErrSyncOnCooldown means a sync was requested before the cooldown
	// since the previous request elapsed.
	ErrSyncOnCooldown = errors.New("sync request is on cooldown")

	// ErrSyncUnsupported means the underlying bridge cannot forward sync
	// requests to the host.
	ErrSyncUnsupported = errors.New("bridge does not support sync requests")
)

// SyncGate rate-limits sync requests. The host treats each request as a
// full collection sync, so back-to-back triggers only waste battery and
// bandwidth on the device.
type SyncGate struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     time.Time
	now      func() time.Time
}

// NewSyncGate returns a gate with the given cooldown. A non-positive
// cooldown disables the gate.
func NewSyncGate(cooldown time.Duration) *SyncGate {
	return &SyncGate{cooldown: cooldown, now: time.Now}
}

// allow records a request if the cooldown has elapsed.
func (g *SyncGate) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if !g.last.IsZero() && g.cooldown > 0 && now.Sub(g.last) < g.cooldown {
		return false
	}
	g.last = now
	return true
}

// Remaining returns how long until the next sync request is allowed.
func (g *SyncGate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last.IsZero() || g.cooldown <= 0 {
		return 0
	}
	remaining := g.cooldown - g.now().Sub(g.last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the cooldown so the next request goes through.
func (g *SyncGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = time.Time{}
}

// TriggerSync asks the host to sync its collection, subject to the
// client's cooldown gate.
func (c *Client) TriggerSync(ctx context.Context) error {
	if !c.gate.allow() {
		return fmt.Errorf("%w: %s remaining", ErrSyncOnCooldown, c.gate.Remaining().Round(time.Second))
	}
	return c.requestSync(ctx)
}

// ForceSync asks the host to sync regardless of the cooldown, and resets
// the gate as if a gated sync had just run.
func (c *Client) ForceSync(ctx context.Context) error {
	if err := c.requestSync(ctx); err != nil {
		return err
	}
	c.gate.Reset()
	c.gate.allow()
	return nil
}

func (c *Client) requestSync(ctx context.Context) error {
	syncer, ok := c.bridge.(bridge.Syncer)
	if !ok {
		return ErrSyncUnsupported
	}
	if err := syncer.RequestSync(ctx); err != nil {
		return err
	}
	c.log.Info("sync requested")
	return nil
}
