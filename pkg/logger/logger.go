// Package logger is the logging seam of the library. Components log
// through the Logger interface; the default implementation writes
// structured events via zerolog.
package logger

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Logger accepts a message and alternating key/value pairs.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZeroLogger adapts a zerolog.Logger to the Logger interface.
type ZeroLogger struct {
	log zerolog.Logger
}

// New returns a ZeroLogger writing timestamped events to w.
func New(w io.Writer) *ZeroLogger {
	return &ZeroLogger{log: zerolog.New(w).With().Timestamp().Logger()}
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(l zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{log: l}
}

func (z *ZeroLogger) Error(msg string, args ...any) { emit(z.log.Error(), msg, args) }
func (z *ZeroLogger) Warn(msg string, args ...any)  { emit(z.log.Warn(), msg, args) }
func (z *ZeroLogger) Info(msg string, args ...any)  { emit(z.log.Info(), msg, args) }
func (z *ZeroLogger) Debug(msg string, args ...any) { emit(z.log.Debug(), msg, args) }

func emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}

// Nop discards everything. It is the default when no logger is configured.
type Nop struct{}

func (Nop) Error(string, ...any) {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Info(string, ...any)  {}
func (Nop) Debug(string, ...any) {}
