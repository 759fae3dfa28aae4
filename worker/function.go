package worker

import (
	"context"

	"github.com/azfunc/worker-go/bindings"
	"github.com/azfunc/worker-go/rpc"
)

// ReturnBindingName is the reserved output binding name the host uses for a
// function's return value. When a loaded function declares it, the declared
// data type governs conversion of [Result.Return].
const ReturnBindingName = "$return"

// Handler executes one invocation of a function.
//
// The context is cancelled when the host cancels the invocation, when the
// worker is told to terminate, or when the stream dies. Handlers should treat
// cancellation as a request to stop at the next convenient point and return;
// a handler that returns a non-nil error after cancellation is reported to
// the host as Cancelled rather than Failure.
//
// A panic inside a handler is contained: it fails that invocation and leaves
// the worker and all other invocations running.
type Handler interface {
	Invoke(ctx context.Context, invocation *Invocation) (*Result, error)
}

// HandlerFunc adapts a function to the [Handler] interface.
type HandlerFunc func(ctx context.Context, invocation *Invocation) (*Result, error)

// Invoke implements [Handler].
func (f HandlerFunc) Invoke(ctx context.Context, invocation *Invocation) (*Result, error) {
	return f(ctx, invocation)
}

// Registration pairs a function name with the handler that serves it. The
// manifest passed to [New] is the engine's only discovery mechanism; it never
// scans ambient state for handlers.
type Registration struct {
	// Name matches the entry point or name of function metadata the host
	// loads. Required, unique within a manifest.
	Name string
	// Handler invoked for the function. Required.
	Handler Handler
}

// Invocation carries the inputs of a single function execution, converted to
// native values per the function's declared bindings.
type Invocation struct {
	// ID of this invocation, unique among in-flight invocations.
	ID string
	// Function is the descriptor the invocation was dispatched against.
	// Reloading the function does not change it mid-flight.
	Function *Function
	// Inputs holds the input parameter values keyed by binding name.
	Inputs map[string]bindings.Value
	// TriggerMetadata holds trigger detail values keyed by metadata name.
	TriggerMetadata map[string]bindings.Value
}

// Result carries the outputs of a completed function execution. A nil Result
// with a nil error is a valid empty success.
type Result struct {
	// Outputs holds output parameter values keyed by binding name. Every
	// key must name a declared output binding of the function.
	Outputs map[string]bindings.Value
	// Return is the function's return value, if any.
	Return bindings.Value
}

// Function is a loaded function: the identifier and metadata the host
// supplied at load time plus the handler resolved from the manifest.
type Function struct {
	ID       string
	Metadata *rpc.FunctionMetadata
	Handler  Handler
}

// Name returns the function's metadata name.
func (f *Function) Name() string {
	return f.Metadata.Name
}
