// Package logging wraps zerolog with key/value call sites and request-scoped context fields.
package logging

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a zerolog.Logger that takes alternating key/value pairs
type Logger struct {
	zl zerolog.Logger
}

var global atomic.Pointer[Logger]

func init() {
	global.Store(NewDevelopment())
}

// NewDevelopment writes human-readable lines to stdout at debug level
func NewDevelopment() *Logger {
	return NewWithWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, zerolog.DebugLevel)
}

// NewNop discards everything
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// NewWithWriter writes JSON lines (or whatever w renders) at level and above
func NewWithWriter(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// SetGlobal replaces the logger returned by Global and used by FromContext
func SetGlobal(logger *Logger) {
	global.Store(logger)
}

// Global returns the process-wide logger
func Global() *Logger {
	return global.Load()
}

// pairs turns key/value varargs into a field map. Non-string keys and a dangling key are
// skipped; errors are stored as their message so JSON output keeps them.
func pairs(kv []interface{}) map[string]interface{} {
	if len(kv) < 2 {
		return nil
	}
	out := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if err, isErr := kv[i+1].(error); isErr && err != nil {
			out[key] = err.Error()
			continue
		}
		out[key] = kv[i+1]
	}
	return out
}

func (l *Logger) log(e *zerolog.Event, msg string, kv []interface{}) {
	if e == nil {
		return
	}
	if fields := pairs(kv); len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msg(msg)
}

// Debug logs at debug level
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(l.zl.Debug(), msg, kv) }

// Info logs at info level
func (l *Logger) Info(msg string, kv ...interface{}) { l.log(l.zl.Info(), msg, kv) }

// Warn logs at warn level
func (l *Logger) Warn(msg string, kv ...interface{}) { l.log(l.zl.Warn(), msg, kv) }

// Error logs at error level
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(l.zl.Error(), msg, kv) }

// Fatal logs and exits with status 1
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.log(l.zl.Fatal(), msg, kv) }

// With returns a child logger that adds kv to every entry
func (l *Logger) With(kv ...interface{}) *Logger {
	fields := pairs(kv)
	if len(fields) == 0 {
		return l
	}
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// WithContext returns a child logger carrying the request and session IDs stored in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l.With(extractContextFields(ctx)...)
}
