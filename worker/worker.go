// Package worker implements the invocation protocol engine of a Functions
// language worker: it opens the event stream to the host, completes the init
// handshake, loads functions from an explicit registration manifest, executes
// invocations concurrently with cooperative cancellation, and relays logs and
// responses back over a single serialized write path.
//
// The engine is transport-agnostic behind [Transport]. Production workers
// dial the host's gRPC endpoint; tests and in-process hosts use [Pipe].
package worker

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blang/semver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/azfunc/worker-go/rpc"
)

// Version is the worker version reported to the host on the init response
// when [Options.Version] is empty.
const Version = "1.0.0"

// Capability names exchanged during the init handshake. Capability maps are
// immutable once exchanged.
const (
	// CapabilityHandlesWorkerTerminate advertises that the worker drains
	// and exits on a terminate frame instead of relying on process kill.
	CapabilityHandlesWorkerTerminate = "HandlesWorkerTerminateMessage"
	// CapabilityHandlesInvocationCancel advertises cooperative
	// cancellation of in-flight invocations.
	CapabilityHandlesInvocationCancel = "HandlesInvocationCancelMessage"
	// CapabilityWorkerStatus advertises that status requests are answered.
	CapabilityWorkerStatus = "WorkerStatus"
	// CapabilityRawHTTPBodyBytes asks the host to deliver HTTP bodies as
	// raw bytes in addition to the negotiated body value.
	CapabilityRawHTTPBodyBytes = "RawHttpBodyBytes"
	// CapabilityRPCHTTPBodyOnly asks the host not to duplicate HTTP
	// trigger data into trigger metadata.
	CapabilityRPCHTTPBodyOnly = "RpcHttpBodyOnly"
)

const outboxBuffer = 256

// Options configure a [Worker].
type Options struct {
	// Host is the address of the host's RPC endpoint. Required unless
	// Transport is set.
	Host string
	// Port of the host's RPC endpoint. Required unless Transport is set.
	Port int
	// WorkerID identifies this worker to the host. Required; sent on the
	// start-stream frame.
	WorkerID string
	// RequestID stamps frames the worker originates, such as the
	// start-stream frame and heartbeats. Optional.
	RequestID string
	// MaxMessageSize caps frame sizes in bytes.
	// Defaults to [DefaultMaxMessageSize].
	MaxMessageSize int
	// Version reported on the init response. Defaults to [Version].
	Version string
	// Capabilities advertised to the host at init, merged over the
	// defaults (terminate, cancellation, and status handling).
	Capabilities map[string]string
	// RequiredHostCapabilities lists capabilities the host must advertise
	// at init. A missing one fails the handshake.
	RequiredHostCapabilities []string
	// MinimumHostVersion is a semantic version floor for the host.
	// Empty disables the check.
	MinimumHostVersion string
	// HeartbeatInterval between keep-alive frames once initialized.
	// Defaults to 30 seconds; negative disables heartbeats.
	HeartbeatInterval time.Duration
	// MaxConcurrentInvocations caps handler executions running in
	// parallel. Zero or negative means unbounded.
	MaxConcurrentInvocations int
	// ReloadQuiesceTimeout bounds how long an environment reload waits
	// for in-flight invocations to drain before it is rejected.
	// Defaults to 5 seconds.
	ReloadQuiesceTimeout time.Duration
	// Logger for the worker's own diagnostics and the base of the loggers
	// handed to handlers. Defaults to a no-op logger.
	Logger *zap.Logger
	// Transport overrides dialing, for tests or in-process hosting. When
	// set, Host and Port are ignored.
	Transport Transport
}

// Worker multiplexes function invocations over one event stream to a
// Functions host. Construct with [New], then drive with [Run].
type Worker struct {
	options Options
	logger  *zap.SugaredLogger

	registry  *registry
	table     *invocationTable
	semaphore chan struct{}

	capabilities       map[string]string
	minimumHostVersion semver.Version

	transport Transport
	outbox    chan *rpc.StreamingMessage
	invokeCtx context.Context

	state    atomic.Int32
	draining atomic.Bool
	started  atomic.Bool

	hostMu           sync.RWMutex
	hostCapabilities map[string]string
	logCategories    map[string]rpc.Level

	closeOnce sync.Once
	closed    chan struct{}
}

// errTerminated marks an orderly stream end; Run converts it to nil.
var errTerminated = errors.New("worker terminated")

// New builds a worker serving the functions in manifest. The manifest is the
// only way handlers become invocable; nothing is discovered from globals.
func New(manifest []Registration, options Options) (*Worker, error) {
	if options.WorkerID == "" {
		return nil, errors.New("no worker id")
	}
	if options.Transport == nil && options.Host == "" {
		return nil, errors.New("no host address and no transport")
	}
	if options.Version == "" {
		options.Version = Version
	}
	if options.HeartbeatInterval == 0 {
		options.HeartbeatInterval = 30 * time.Second
	}
	if options.ReloadQuiesceTimeout == 0 {
		options.ReloadQuiesceTimeout = 5 * time.Second
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	var minimum semver.Version
	if options.MinimumHostVersion != "" {
		var err error
		minimum, err = semver.ParseTolerant(options.MinimumHostVersion)
		if err != nil {
			return nil, fmt.Errorf("minimum host version: %w", err)
		}
	}
	reg, err := newRegistry(manifest)
	if err != nil {
		return nil, err
	}

	capabilities := map[string]string{
		CapabilityHandlesWorkerTerminate:  "true",
		CapabilityHandlesInvocationCancel: "true",
		CapabilityWorkerStatus:            "true",
	}
	maps.Copy(capabilities, options.Capabilities)

	w := &Worker{
		options:            options,
		logger:             options.Logger.Sugar().With("worker_id", options.WorkerID),
		registry:           reg,
		table:              newInvocationTable(),
		capabilities:       capabilities,
		minimumHostVersion: minimum,
		outbox:             make(chan *rpc.StreamingMessage, outboxBuffer),
		closed:             make(chan struct{}),
	}
	if options.MaxConcurrentInvocations > 0 {
		w.semaphore = make(chan struct{}, options.MaxConcurrentInvocations)
	}
	return w, nil
}

// Run connects to the host (unless a transport was supplied), sends the
// start-stream frame, and serves the stream until it ends. It returns nil
// after an orderly end: a terminate request, the host closing the stream, or
// ctx being cancelled. Any other stream failure, and every protocol
// violation, is returned as an error.
//
// Run may be called once. Invocations still executing when it returns were
// cancelled and their frames are dropped.
func (w *Worker) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("worker already started")
	}
	if w.options.Transport != nil {
		w.transport = w.options.Transport
	} else {
		transport, err := Dial(ctx, DialOptions{
			Host:           w.options.Host,
			Port:           w.options.Port,
			MaxMessageSize: w.options.MaxMessageSize,
		})
		if err != nil {
			return err
		}
		w.transport = transport
	}
	defer w.transport.Close()

	if err := w.transport.Send(&rpc.StreamingMessage{
		RequestID: w.options.RequestID,
		Content:   &rpc.StartStream{WorkerID: w.options.WorkerID},
	}); err != nil {
		return fmt.Errorf("send start stream: %w", err)
	}
	w.logger.Infow("event stream open")

	group, groupCtx := errgroup.WithContext(ctx)
	w.invokeCtx = groupCtx
	group.Go(func() error { return w.readLoop(groupCtx) })
	group.Go(func() error { return w.writeLoop(groupCtx) })
	group.Go(func() error { return w.heartbeatLoop(groupCtx) })
	group.Go(func() error {
		// Unblock the transport when the group dies for any reason.
		select {
		case <-groupCtx.Done():
			w.shutdown()
		case <-w.closed:
		}
		return nil
	})

	err := group.Wait()
	w.shutdown()
	if err == nil || errors.Is(err, errTerminated) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// setState moves the lifecycle forward. Closed is terminal.
func (w *Worker) setState(s State) {
	for {
		current := w.state.Load()
		if State(current) == StateClosed {
			return
		}
		if w.state.CompareAndSwap(current, int32(s)) {
			return
		}
	}
}

// InFlight returns the number of invocations currently outstanding.
func (w *Worker) InFlight() int {
	return w.table.size()
}

// FunctionCount returns the number of loaded functions.
func (w *Worker) FunctionCount() int {
	return w.registry.size()
}

// WorkerID returns the identifier this worker reports to the host.
func (w *Worker) WorkerID() string {
	return w.options.WorkerID
}

// HostCapabilities returns a copy of the capability map the host advertised
// at init, or nil before the handshake completes.
func (w *Worker) HostCapabilities() map[string]string {
	w.hostMu.RLock()
	defer w.hostMu.RUnlock()
	return maps.Clone(w.hostCapabilities)
}

// enqueue submits a frame to the serialized write path. Frames enqueued
// after shutdown are dropped.
func (w *Worker) enqueue(msg *rpc.StreamingMessage) {
	select {
	case w.outbox <- msg:
	case <-w.closed:
	}
}

func (w *Worker) isClosed() bool {
	select {
	case <-w.closed:
		return true
	default:
		return false
	}
}

// shutdown tears the worker down exactly once: terminal state, closed
// signal, transport closed.
func (w *Worker) shutdown() {
	w.closeOnce.Do(func() {
		w.logger.Infow("worker closing")
		w.state.Store(int32(StateClosed))
		close(w.closed)
		if w.transport != nil {
			w.transport.Close()
		}
	})
}

// protocolError reports a stream contract violation: it asks the host for a
// restart and returns the error that kills the read loop. The action frame
// bypasses the outbox so it still leaves if the write loop is already gone.
func (w *Worker) protocolError(format string, args ...any) error {
	perr := &ProtocolError{Message: fmt.Sprintf(format, args...)}
	w.logger.Errorw("protocol error", "error", perr.Message)
	frame := &rpc.StreamingMessage{
		RequestID: w.options.RequestID,
		Content:   &rpc.WorkerActionResponse{Action: rpc.WorkerActionRestart, Reason: perr.Message},
	}
	if err := w.transport.Send(frame); err != nil {
		w.logger.Warnw("failed to send restart action", "error", err)
	}
	return perr
}

func successResult() *rpc.StatusResult {
	return &rpc.StatusResult{Status: rpc.StatusSuccess}
}

func failureResult(message string) *rpc.StatusResult {
	return &rpc.StatusResult{
		Status:    rpc.StatusFailure,
		Result:    message,
		Exception: &rpc.Exception{Message: message},
	}
}

func failureFromError(err error, source string) *rpc.StatusResult {
	return &rpc.StatusResult{
		Status:    rpc.StatusFailure,
		Result:    err.Error(),
		Exception: &rpc.Exception{Message: err.Error(), Source: source},
	}
}

func cancelledResult(message string) *rpc.StatusResult {
	return &rpc.StatusResult{Status: rpc.StatusCancelled, Result: message}
}
