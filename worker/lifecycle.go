package worker

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/blang/semver"

	"github.com/azfunc/worker-go/rpc"
)

// State is the worker's position in its lifecycle. Transitions only move
// forward: AwaitingInit, Initialized, Ready, Terminating, Closed.
type State int32

const (
	// StateAwaitingInit means the stream is open but the init handshake
	// has not completed. A failed handshake stays here so the host may
	// retry.
	StateAwaitingInit State = iota
	// StateInitialized means the handshake succeeded and the worker is
	// waiting for its first function load.
	StateInitialized
	// StateReady means at least one function load request has been
	// processed and invocations are being accepted.
	StateReady
	// StateTerminating means a terminate request arrived and in-flight
	// invocations are draining.
	StateTerminating
	// StateClosed means the stream is torn down and [Worker.Run] has
	// returned or is about to.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingInit:
		return "awaiting_init"
	case StateInitialized:
		return "initialized"
	case StateReady:
		return "ready"
	case StateTerminating:
		return "terminating"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const defaultTerminateGrace = 10 * time.Second

// handleInit validates the host and completes the handshake. A failed
// validation responds Failure and leaves the worker awaiting init; the host
// is expected to tear the stream down next.
func (w *Worker) handleInit(requestID string, req *rpc.WorkerInitRequest) error {
	if w.State() != StateAwaitingInit {
		return w.protocolError("init request in state %s", w.State())
	}
	result := w.validateHost(req)
	if result.Status == rpc.StatusSuccess {
		w.hostMu.Lock()
		w.hostCapabilities = maps.Clone(req.Capabilities)
		w.logCategories = maps.Clone(req.LogCategories)
		w.hostMu.Unlock()
		w.setState(StateInitialized)
		w.logger.Infow("worker initialized",
			"host_version", req.HostVersion,
			"host_capabilities", len(req.Capabilities),
		)
	} else {
		w.logger.Warnw("rejected init request", "reason", result.Result)
	}
	w.enqueue(&rpc.StreamingMessage{
		RequestID: requestID,
		Content: &rpc.WorkerInitResponse{
			WorkerVersion: w.options.Version,
			Capabilities:  maps.Clone(w.capabilities),
			Result:        result,
		},
	})
	return nil
}

// validateHost checks the init request against the configured version floor
// and required capability list.
func (w *Worker) validateHost(req *rpc.WorkerInitRequest) *rpc.StatusResult {
	if w.options.MinimumHostVersion != "" {
		hostVersion, err := semver.ParseTolerant(req.HostVersion)
		if err != nil {
			return failureResult(fmt.Sprintf("cannot parse host version %q: %v", req.HostVersion, err))
		}
		if hostVersion.LT(w.minimumHostVersion) {
			return failureResult(fmt.Sprintf("host version %s is below the minimum %s", req.HostVersion, w.options.MinimumHostVersion))
		}
	}
	for _, name := range w.options.RequiredHostCapabilities {
		if req.Capabilities[name] == "" {
			return failureResult(fmt.Sprintf("host does not advertise required capability %q", name))
		}
	}
	return successResult()
}

// handleLoad installs a function in the registry and reports the outcome.
// The first load request moves the worker to Ready whatever its outcome.
func (w *Worker) handleLoad(requestID string, req *rpc.FunctionLoadRequest) error {
	switch w.State() {
	case StateAwaitingInit:
		return w.protocolError("function load request before init")
	case StateInitialized:
		w.setState(StateReady)
	case StateTerminating, StateClosed:
		w.enqueue(&rpc.StreamingMessage{
			RequestID: requestID,
			Content: &rpc.FunctionLoadResponse{
				FunctionID: req.FunctionID,
				Result:     failureResult("worker is shutting down"),
			},
		})
		return nil
	}

	response := &rpc.FunctionLoadResponse{FunctionID: req.FunctionID, Result: successResult()}
	if fn, err := w.registry.load(req); err != nil {
		w.logger.Warnw("function load failed", "function_id", req.FunctionID, "error", err)
		response.Result = failureFromError(err, "")
	} else {
		w.logger.Infow("function loaded", "function_id", fn.ID, "function", fn.Name())
	}
	w.enqueue(&rpc.StreamingMessage{RequestID: requestID, Content: response})
	return nil
}

// handleTerminate drains in-flight invocations within the grace period and
// tears the worker down. The contract expects no response frame.
func (w *Worker) handleTerminate(req *rpc.WorkerTerminate) {
	grace := defaultTerminateGrace
	if req.GracePeriod != nil {
		grace = req.GracePeriod.AsDuration()
	}
	w.draining.Store(true)
	w.setState(StateTerminating)
	w.logger.Infow("terminate requested", "grace_period", grace, "in_flight", w.table.size())
	w.table.cancelAll()
	if !w.table.awaitIdle(context.Background(), grace) {
		w.logger.Warnw("grace period elapsed with invocations still in flight", "in_flight", w.table.size())
	}
	// A nil frame makes the write loop flush every queued response and
	// then close the stream.
	w.enqueue(nil)
}

// handleReload applies a new environment after reaching quiescence. New
// invocations are rejected while it waits; if in-flight work does not drain
// within the configured timeout the reload fails and neither the environment
// nor the registry is touched.
func (w *Worker) handleReload(ctx context.Context, requestID string, req *rpc.FunctionEnvironmentReloadRequest) {
	respond := func(result *rpc.StatusResult) {
		w.enqueue(&rpc.StreamingMessage{
			RequestID: requestID,
			Content:   &rpc.FunctionEnvironmentReloadResponse{Result: result},
		})
	}
	if !w.draining.CompareAndSwap(false, true) {
		respond(failureResult("another reload or a shutdown is in progress"))
		return
	}
	result := w.reloadEnvironment(ctx, req)
	// Stop rejecting invocations before the host can see the response.
	w.draining.Store(false)
	respond(result)
}

// reloadEnvironment waits for quiescence and swaps the process environment.
// The registry is cleared only on success; a failed reload leaves both the
// environment and the loaded functions untouched.
func (w *Worker) reloadEnvironment(ctx context.Context, req *rpc.FunctionEnvironmentReloadRequest) *rpc.StatusResult {
	if !w.table.awaitIdle(ctx, w.options.ReloadQuiesceTimeout) {
		return failureResult(fmt.Sprintf(
			"%d invocations still in flight after %s; environment unchanged",
			w.table.size(), w.options.ReloadQuiesceTimeout,
		))
	}
	if err := applyEnvironment(req.EnvironmentVariables); err != nil {
		return failureFromError(err, "")
	}
	w.registry.clear()
	w.logger.Infow("environment reloaded", "variables", len(req.EnvironmentVariables))
	return successResult()
}

func (w *Worker) handleStatus(requestID string) {
	w.enqueue(&rpc.StreamingMessage{RequestID: requestID, Content: &rpc.WorkerStatusResponse{}})
}

// File change notices are advisory. The worker records them and leaves any
// restart decision to the host.
func (w *Worker) handleFileChange(req *rpc.FileChangeEventRequest) {
	w.logger.Infow("file change notice", "change", req.Type, "path", req.FullPath)
}

// heartbeatLoop emits keep-alive frames once the handshake has completed.
func (w *Worker) heartbeatLoop(ctx context.Context) error {
	if w.options.HeartbeatInterval < 0 {
		return nil
	}
	ticker := time.NewTicker(w.options.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s := w.State(); s == StateInitialized || s == StateReady {
				w.enqueue(&rpc.StreamingMessage{
					RequestID: w.options.RequestID,
					Content:   &rpc.WorkerHeartbeat{},
				})
			}
		case <-w.closed:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
