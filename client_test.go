package flashcards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankidroid/flashcards.go/internal/fakehost"
	"github.com/ankidroid/flashcards.go/internal/mock"
	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
)

func newTestClient(t *testing.T) (*Client, *fakehost.Host) {
	t.Helper()

	host, err := fakehost.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Close() })

	c, err := New(host)
	require.NoError(t, err)
	return c, host
}

func TestNewRejectsNilBridge(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrNilBridge)
}

func TestAvailable(t *testing.T) {
	c, _ := newTestClient(t)
	require.NoError(t, c.Available(context.Background()))
}

func TestAvailableReportsHostDown(t *testing.T) {
	b := &mock.Bridge{
		QueryFunc: func(string, []string, string, []string, string) (bridge.RowSet, error) {
			return nil, &bridge.RemoteError{Code: bridge.CodeHostUnavailable, Message: "not running"}
		},
	}
	c, err := New(b)
	require.NoError(t, err)

	err = c.Available(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrHostUnavailable)
}

func TestIsNameConflict(t *testing.T) {
	assert.True(t, isNameConflict(&bridge.RemoteError{Code: bridge.CodeInternal, Message: "Deck name already exists: German"}))
	assert.True(t, isNameConflict(&bridge.RemoteError{Code: bridge.CodeInternal, Message: "Model Already Exists"}))
	assert.False(t, isNameConflict(&bridge.RemoteError{Code: bridge.CodeInternal, Message: "disk I/O error"}))
	assert.False(t, isNameConflict(nil))
}
