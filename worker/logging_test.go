package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/azfunc/worker-go/bindings"
	"github.com/azfunc/worker-go/rpc"
)

func TestInvocationLogRelay(t *testing.T) {
	manifest := []Registration{{
		Name: "Chatty",
		Handler: HandlerFunc(func(ctx context.Context, _ *Invocation) (*Result, error) {
			logger := Logger(ctx)
			logger.Info("processing item", zap.String("item", "thing"), zap.Int("count", 3))
			logger.Error("processing failed", zap.Error(errors.New("bad input")))
			return &Result{Outputs: map[string]bindings.Value{"result": bindings.String("done")}}, nil
		}),
	}}
	_, host, _ := startTestWorker(t, manifest, Options{})
	host.handshake()
	host.loadOK("f1", stringPipelineMetadata("Chatty"))

	host.invoke("req-1", "inv-1", "f1", stringParam("name", "x"))

	// Log frames precede the response and arrive in emission order.
	msg := host.recv()
	require.Equal(t, "req-1", msg.RequestID)
	first := requireContent[*rpc.Log](t, msg)
	require.Equal(t, "inv-1", first.InvocationID)
	require.Equal(t, "Function.Chatty", first.Category)
	require.Equal(t, rpc.LevelInformation, first.Level)
	require.Equal(t, "processing item", first.Message)
	var props map[string]any
	require.NoError(t, json.Unmarshal([]byte(first.Properties), &props))
	require.Equal(t, map[string]any{"item": "thing", "count": float64(3)}, props)

	second := requireContent[*rpc.Log](t, host.recv())
	require.Equal(t, rpc.LevelError, second.Level)
	require.NotNil(t, second.Exception)
	require.Equal(t, "bad input", second.Exception.Message)
	require.Equal(t, "Chatty", second.Exception.Source)

	response := host.recvInvocationResponse("inv-1")
	require.Equal(t, rpc.StatusSuccess, response.Result.Status)
}

func TestLogRelay_CategoryThreshold(t *testing.T) {
	manifest := []Registration{{
		Name: "Chatty",
		Handler: HandlerFunc(func(ctx context.Context, _ *Invocation) (*Result, error) {
			logger := Logger(ctx)
			logger.Info("too quiet for the host")
			logger.Warn("loud enough")
			return nil, nil
		}),
	}}
	_, host, _ := startTestWorker(t, manifest, Options{})

	host.send("init-1", &rpc.WorkerInitRequest{
		HostVersion:   "4.28.1",
		LogCategories: map[string]rpc.Level{"Function.Chatty": rpc.LevelWarning},
	})
	requireContent[*rpc.WorkerInitResponse](t, host.recv())
	host.loadOK("f1", stringPipelineMetadata("Chatty"))

	host.invoke("req-1", "inv-1", "f1", stringParam("name", "x"))
	frame := requireContent[*rpc.Log](t, host.recv())
	require.Equal(t, "loud enough", frame.Message)
	require.Equal(t, rpc.LevelWarning, frame.Level)

	response := host.recvInvocationResponse("inv-1")
	require.Equal(t, rpc.StatusSuccess, response.Result.Status)
}

func TestLogRelay_DropsEntriesAfterResponse(t *testing.T) {
	w, err := New(nil, Options{
		WorkerID: "worker-1",
		Host:     "localhost",
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	fn := &Function{ID: "f1", Metadata: &rpc.FunctionMetadata{Name: "Quiet"}}
	state := &invocationState{id: "inv-1", requestID: "req-1", fn: fn}
	logger := w.invocationLogger(state)

	logger.Info("before response")
	require.Len(t, w.outbox, 1)

	state.mu.Lock()
	state.responded = true
	state.mu.Unlock()
	logger.Info("after response")
	require.Len(t, w.outbox, 1)

	msg := <-w.outbox
	require.Equal(t, "req-1", msg.RequestID)
	frame := requireContent[*rpc.Log](t, msg)
	require.Equal(t, "before response", frame.Message)
	require.Equal(t, "inv-1", frame.InvocationID)
}

func TestLogRelay_WithFieldsCarryOver(t *testing.T) {
	w, err := New(nil, Options{
		WorkerID: "worker-1",
		Host:     "localhost",
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	fn := &Function{ID: "f1", Metadata: &rpc.FunctionMetadata{Name: "Scoped"}}
	state := &invocationState{id: "inv-1", requestID: "req-1", fn: fn}
	logger := w.invocationLogger(state).With(zap.String("stage", "resize"))

	logger.Info("done", zap.Int("pixels", 42))
	frame := requireContent[*rpc.Log](t, <-w.outbox)
	var props map[string]any
	require.NoError(t, json.Unmarshal([]byte(frame.Properties), &props))
	require.Equal(t, map[string]any{"stage": "resize", "pixels": float64(42)}, props)
}

func TestWireLevel(t *testing.T) {
	levels := []struct {
		zap  zapcore.Level
		wire rpc.Level
	}{
		{zapcore.DebugLevel, rpc.LevelDebug},
		{zapcore.InfoLevel, rpc.LevelInformation},
		{zapcore.WarnLevel, rpc.LevelWarning},
		{zapcore.ErrorLevel, rpc.LevelError},
		{zapcore.DPanicLevel, rpc.LevelCritical},
		{zapcore.PanicLevel, rpc.LevelCritical},
		{zapcore.FatalLevel, rpc.LevelCritical},
	}
	for _, l := range levels {
		require.Equal(t, l.wire, wireLevel(l.zap), "zap level %s", l.zap)
	}
}

func TestCategoryEnabled(t *testing.T) {
	w, err := New(nil, Options{WorkerID: "worker-1", Host: "localhost"})
	require.NoError(t, err)
	w.hostMu.Lock()
	w.logCategories = map[string]rpc.Level{
		"Function.Quiet": rpc.LevelNone,
		"Function.Terse": rpc.LevelError,
	}
	w.hostMu.Unlock()

	require.True(t, w.categoryEnabled("Function.Unlisted", rpc.LevelDebug))
	require.False(t, w.categoryEnabled("Function.Quiet", rpc.LevelCritical))
	require.False(t, w.categoryEnabled("Function.Terse", rpc.LevelWarning))
	require.True(t, w.categoryEnabled("Function.Terse", rpc.LevelError))
	require.True(t, w.categoryEnabled("Function.Terse", rpc.LevelCritical))
}
