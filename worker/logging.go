package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/azfunc/worker-go/rpc"
)

type loggerContextKey struct{}

// Logger returns the logger scoped to the invocation the context belongs to.
// Entries written to it reach the worker's own logger and are also relayed to
// the host as individual log frames tagged with the invocation id, in
// emission order, until the invocation's response has been sent. Outside an
// invocation it returns a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// invocationLogger builds the logger handed to a handler: the worker's
// configured logger teed with a relay core that mirrors entries to the host.
func (w *Worker) invocationLogger(state *invocationState) *zap.Logger {
	relay := &logRelay{
		worker:   w,
		state:    state,
		category: "Function." + state.fn.Metadata.Name,
	}
	return w.options.Logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, relay)
	}))
}

// logRelay is a [zapcore.Core] that forwards entries to the host as log
// frames. Entries below the threshold the host set for the category at init
// are dropped, as are entries written after the invocation's response frame.
type logRelay struct {
	worker   *Worker
	state    *invocationState
	category string
	fields   []zapcore.Field
}

var _ zapcore.Core = (*logRelay)(nil)

func (c *logRelay) Enabled(level zapcore.Level) bool {
	return c.worker.categoryEnabled(c.category, wireLevel(level))
}

func (c *logRelay) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(c.fields[:len(c.fields):len(c.fields)], fields...)
	return &clone
}

func (c *logRelay) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *logRelay) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	frame := &rpc.Log{
		InvocationID: c.state.id,
		Category:     c.category,
		Level:        wireLevel(entry.Level),
		Message:      entry.Message,
	}
	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)
	if len(all) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, field := range all {
			field.AddTo(enc)
		}
		if v, ok := enc.Fields["error"]; ok {
			frame.Exception = &rpc.Exception{
				Message: fmt.Sprint(v),
				Source:  c.state.fn.Metadata.Name,
			}
		}
		if props, err := json.Marshal(enc.Fields); err == nil {
			frame.Properties = string(props)
		}
	}
	// Frames enqueue under the invocation's lock so a log entry can never
	// land behind the terminal response it belongs in front of.
	c.state.mu.Lock()
	if !c.state.responded {
		c.worker.enqueue(&rpc.StreamingMessage{RequestID: c.state.requestID, Content: frame})
	}
	c.state.mu.Unlock()
	return nil
}

func (c *logRelay) Sync() error { return nil }

func wireLevel(level zapcore.Level) rpc.Level {
	switch {
	case level <= zapcore.DebugLevel:
		return rpc.LevelDebug
	case level == zapcore.InfoLevel:
		return rpc.LevelInformation
	case level == zapcore.WarnLevel:
		return rpc.LevelWarning
	case level == zapcore.ErrorLevel:
		return rpc.LevelError
	default:
		return rpc.LevelCritical
	}
}

// categoryEnabled applies the per-category thresholds the host sent at init.
// Categories without an explicit threshold pass everything through.
func (w *Worker) categoryEnabled(category string, level rpc.Level) bool {
	w.hostMu.RLock()
	threshold, ok := w.logCategories[category]
	w.hostMu.RUnlock()
	if !ok {
		return true
	}
	if threshold == rpc.LevelNone {
		return false
	}
	return level >= threshold
}
