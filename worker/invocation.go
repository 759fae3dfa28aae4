package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/azfunc/worker-go/bindings"
	"github.com/azfunc/worker-go/rpc"
)

// invocationState tracks one in-flight invocation. responded flips exactly
// once under mu: whichever of handler completion, cooperative cancellation,
// or the grace-period timer gets there first emits the terminal frame; later
// attempts are discarded. Log frames enqueue under the same lock, so an
// invocation's logs always precede its response on the write path.
type invocationState struct {
	id        string
	requestID string
	fn        *Function
	cancel    context.CancelFunc

	mu        sync.Mutex
	responded bool
	grace     *time.Timer
}

func (s *invocationState) armGraceTimer(d time.Duration, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grace != nil {
		s.grace.Stop()
	}
	s.grace = time.AfterFunc(d, fire)
}

func (s *invocationState) stopGraceTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grace != nil {
		s.grace.Stop()
		s.grace = nil
	}
}

// invocationTable tracks in-flight invocations and provides the quiescence
// barrier used by environment reload and terminate.
type invocationTable struct {
	mu      sync.Mutex
	entries map[string]*invocationState
	idle    chan struct{}
}

func newInvocationTable() *invocationTable {
	return &invocationTable{entries: make(map[string]*invocationState)}
}

func (t *invocationTable) add(s *invocationState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[s.id]; ok {
		return fmt.Errorf("invocation %q is already in flight", s.id)
	}
	t.entries[s.id] = s
	return nil
}

func (t *invocationTable) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
	if len(t.entries) == 0 && t.idle != nil {
		close(t.idle)
		t.idle = nil
	}
}

func (t *invocationTable) get(id string) (*invocationState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.entries[id]
	return s, ok
}

func (t *invocationTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *invocationTable) cancelAll() {
	t.mu.Lock()
	states := make([]*invocationState, 0, len(t.entries))
	for _, s := range t.entries {
		states = append(states, s)
	}
	t.mu.Unlock()
	for _, s := range states {
		s.cancel()
	}
}

// awaitIdle blocks until no invocations are in flight, the timeout elapses,
// or ctx is cancelled, and reports whether quiescence was reached.
func (t *invocationTable) awaitIdle(ctx context.Context, timeout time.Duration) bool {
	t.mu.Lock()
	if len(t.entries) == 0 {
		t.mu.Unlock()
		return true
	}
	if t.idle == nil {
		t.idle = make(chan struct{})
	}
	idle := t.idle
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-idle:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// startInvocation routes an invocation request. It never blocks on the
// invocation itself: either it emits a synchronous failure, or it registers
// the invocation and hands it to its own goroutine.
func (w *Worker) startInvocation(requestID string, req *rpc.InvocationRequest) {
	respond := func(result *rpc.StatusResult) {
		w.enqueue(&rpc.StreamingMessage{
			RequestID: requestID,
			Content:   &rpc.InvocationResponse{InvocationID: req.InvocationID, Result: result},
		})
	}
	if w.draining.Load() || w.State() >= StateTerminating {
		respond(failureResult("worker is not accepting new invocations"))
		return
	}
	fn, ok := w.registry.lookup(req.FunctionID)
	if !ok {
		respond(failureResult(fmt.Sprintf("function %q is not loaded", req.FunctionID)))
		return
	}

	ctx, cancel := context.WithCancel(w.invokeCtx)
	state := &invocationState{id: req.InvocationID, requestID: requestID, fn: fn, cancel: cancel}
	if err := w.table.add(state); err != nil {
		cancel()
		respond(failureResult(err.Error()))
		return
	}
	go w.runInvocation(ctx, state, req)
}

// runInvocation executes one invocation from input conversion through the
// terminal response. Faults never escape: a handler error or panic fails this
// invocation only.
func (w *Worker) runInvocation(ctx context.Context, state *invocationState, req *rpc.InvocationRequest) {
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("handler panic: %v", r)
			w.logger.Errorw("handler panic",
				"invocation_id", state.id,
				"function", state.fn.Name(),
				"panic", r,
			)
			w.respondInvocation(state, &rpc.InvocationResponse{
				InvocationID: state.id,
				Result: &rpc.StatusResult{
					Status: rpc.StatusFailure,
					Result: message,
					Exception: &rpc.Exception{
						Message:    message,
						StackTrace: string(debug.Stack()),
						Source:     state.fn.Name(),
					},
				},
			})
		}
		w.finishInvocation(state)
	}()

	if w.semaphore != nil {
		select {
		case w.semaphore <- struct{}{}:
			defer func() { <-w.semaphore }()
		case <-ctx.Done():
			w.respondInvocation(state, &rpc.InvocationResponse{
				InvocationID: state.id,
				Result:       cancelledResult("invocation cancelled before it started"),
			})
			return
		}
	}

	invocation, err := convertInputs(state.fn, req)
	if err != nil {
		w.respondInvocation(state, &rpc.InvocationResponse{
			InvocationID: state.id,
			Result:       failureFromError(err, state.fn.Name()),
		})
		return
	}

	result, err := state.fn.Handler.Invoke(withLogger(ctx, w.invocationLogger(state)), invocation)
	if err != nil {
		response := &rpc.InvocationResponse{InvocationID: state.id}
		if ctx.Err() != nil {
			response.Result = cancelledResult(err.Error())
		} else {
			response.Result = failureFromError(err, state.fn.Name())
		}
		w.respondInvocation(state, response)
		return
	}

	outputs, returnValue, err := convertOutputs(state.fn, result)
	if err != nil {
		w.respondInvocation(state, &rpc.InvocationResponse{
			InvocationID: state.id,
			Result:       failureFromError(err, state.fn.Name()),
		})
		return
	}
	w.respondInvocation(state, &rpc.InvocationResponse{
		InvocationID: state.id,
		OutputData:   outputs,
		Result:       successResult(),
		ReturnValue:  returnValue,
	})
}

// respondInvocation emits the invocation's terminal frame. The first caller
// wins; a late handler completion after a forced cancel, or the reverse,
// is dropped so the host never sees two responses for one invocation id.
func (w *Worker) respondInvocation(state *invocationState, response *rpc.InvocationResponse) {
	state.mu.Lock()
	if state.responded {
		state.mu.Unlock()
		w.logger.Debugw("discarding duplicate invocation response", "invocation_id", state.id)
		return
	}
	state.responded = true
	if state.grace != nil {
		state.grace.Stop()
		state.grace = nil
	}
	w.enqueue(&rpc.StreamingMessage{RequestID: state.requestID, Content: response})
	state.mu.Unlock()
}

func (w *Worker) finishInvocation(state *invocationState) {
	state.stopGraceTimer()
	state.cancel()
	w.table.remove(state.id)
}

// cancelInvocation handles a cancel frame. The invocation's context is
// cancelled immediately; if the frame carries a grace period, a timer
// force-emits Cancelled when it elapses and the unit's eventual completion
// is discarded. Unknown ids are a silent no-op.
func (w *Worker) cancelInvocation(req *rpc.InvocationCancel) {
	state, ok := w.table.get(req.InvocationID)
	if !ok {
		w.logger.Debugw("cancel for unknown invocation", "invocation_id", req.InvocationID)
		return
	}
	w.logger.Infow("cancelling invocation", "invocation_id", state.id, "function", state.fn.Name())
	state.cancel()
	if req.GracePeriod == nil {
		return
	}
	grace := req.GracePeriod.AsDuration()
	state.armGraceTimer(grace, func() {
		w.respondInvocation(state, &rpc.InvocationResponse{
			InvocationID: state.id,
			Result:       cancelledResult(fmt.Sprintf("invocation did not stop within the %s grace period", grace)),
		})
	})
}

// convertInputs maps the wire payloads of an invocation request to native
// values per the function's declared bindings. Trigger metadata carries no
// declaration and converts by wire shape.
func convertInputs(fn *Function, req *rpc.InvocationRequest) (*Invocation, error) {
	invocation := &Invocation{
		ID:              req.InvocationID,
		Function:        fn,
		Inputs:          make(map[string]bindings.Value, len(req.InputData)),
		TriggerMetadata: make(map[string]bindings.Value, len(req.TriggerMetadata)),
	}
	for _, param := range req.InputData {
		if param == nil {
			continue
		}
		info := fn.Metadata.Bindings[param.Name]
		if info == nil {
			return nil, fmt.Errorf("input %q: no binding declared", param.Name)
		}
		if info.Direction == rpc.DirectionOut {
			return nil, fmt.Errorf("input %q: binding direction is out", param.Name)
		}
		value, err := bindings.FromTypedData(info.DataType, param.Data)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", param.Name, err)
		}
		invocation.Inputs[param.Name] = value
	}
	for name, data := range req.TriggerMetadata {
		value, err := bindings.FromTypedData(rpc.DataTypeUndefined, data)
		if err != nil {
			return nil, fmt.Errorf("trigger metadata %q: %w", name, err)
		}
		invocation.TriggerMetadata[name] = value
	}
	return invocation, nil
}

// convertOutputs maps a handler result back to wire form. Output bindings
// are emitted in name order so responses are deterministic.
func convertOutputs(fn *Function, result *Result) ([]*rpc.ParameterBinding, *rpc.TypedData, error) {
	if result == nil {
		return nil, nil, nil
	}
	var out []*rpc.ParameterBinding
	if len(result.Outputs) > 0 {
		names := make([]string, 0, len(result.Outputs))
		for name := range result.Outputs {
			names = append(names, name)
		}
		sort.Strings(names)
		out = make([]*rpc.ParameterBinding, 0, len(names))
		for _, name := range names {
			info := fn.Metadata.Bindings[name]
			if info == nil {
				return nil, nil, fmt.Errorf("output %q: no binding declared", name)
			}
			if info.Direction == rpc.DirectionIn {
				return nil, nil, fmt.Errorf("output %q: binding direction is in", name)
			}
			data, err := bindings.ToTypedData(info.DataType, result.Outputs[name])
			if err != nil {
				return nil, nil, fmt.Errorf("output %q: %w", name, err)
			}
			out = append(out, &rpc.ParameterBinding{Name: name, Data: data})
		}
	}
	var returnValue *rpc.TypedData
	if result.Return != nil {
		declared := rpc.DataTypeUndefined
		if info := fn.Metadata.Bindings[ReturnBindingName]; info != nil {
			declared = info.DataType
		}
		var err error
		returnValue, err = bindings.ToTypedData(declared, result.Return)
		if err != nil {
			return nil, nil, fmt.Errorf("return value: %w", err)
		}
	}
	return out, returnValue, nil
}
