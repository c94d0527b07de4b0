package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroLoggerWritesStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.Info("deck created", "deck_id", int64(42), "name", "Spanish")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"message":"deck created"`)
	assert.Contains(t, out, `"deck_id":42`)
	assert.Contains(t, out, `"name":"Spanish"`)
	assert.Contains(t, out, `"level":"info"`)
}

func TestZeroLoggerOddArgsDoNotPanic(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	assert.NotPanics(t, func() {
		log.Warn("short count", "expected")
	})
	assert.Contains(t, buf.String(), "short count")
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop{}.Error("ignored", "k", "v")
		Nop{}.Debug("ignored")
	})
}
