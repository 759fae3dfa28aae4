// Package rpc models the Functions host RPC schema: the streaming envelope,
// its content variants, and the typed payload containers exchanged between a
// language worker and the host over a single bidirectional event stream.
//
// The schema is owned by the host. This package mirrors it field for field,
// including wire tags (see wire.go), and performs no interpretation beyond
// encoding and decoding. Higher layers decide what the frames mean.
package rpc

import (
	"google.golang.org/protobuf/types/known/durationpb"
)

// StreamingMessage is the envelope for every frame on the event stream.
//
// RequestID correlates responses with the frames that triggered them. The
// worker treats it as opaque: it echoes the inbound value on responses and
// stamps worker-initiated frames with the identifier the host handed it at
// startup.
type StreamingMessage struct {
	RequestID string
	// Content is the frame payload. Frames produced by this package always
	// carry exactly one variant. A nil Content on a decoded frame means the
	// host sent a variant this worker does not model.
	Content Content
}

// Content is implemented by every payload that can travel in a
// [StreamingMessage]. The set of implementations is closed; consumers switch
// over the concrete types and must treat an unknown variant as a protocol
// error rather than ignore it.
type Content interface {
	isContent()
}

// StartStream identifies the worker on a freshly opened stream. It is the
// first frame the worker sends and is never received.
type StartStream struct {
	WorkerID string
}

func (*StartStream) isContent() {}

// WorkerInitRequest opens the handshake. Capabilities advertises what the
// host can do; LogCategories carries the minimum level the host wants relayed
// per log category.
type WorkerInitRequest struct {
	HostVersion   string
	Capabilities  map[string]string
	LogCategories map[string]Level
}

func (*WorkerInitRequest) isContent() {}

// WorkerInitResponse answers the handshake with the worker's version, its own
// capability map, and the validation outcome.
type WorkerInitResponse struct {
	WorkerVersion string
	Capabilities  map[string]string
	Result        *StatusResult
}

func (*WorkerInitResponse) isContent() {}

// WorkerHeartbeat is an empty keep-alive frame.
type WorkerHeartbeat struct{}

func (*WorkerHeartbeat) isContent() {}

// WorkerTerminate orders an orderly shutdown. GracePeriod bounds how long the
// worker may spend draining in-flight work; it never elicits a response frame.
type WorkerTerminate struct {
	GracePeriod *durationpb.Duration
}

func (*WorkerTerminate) isContent() {}

// WorkerStatusRequest probes liveness. The worker answers with an empty
// [WorkerStatusResponse] echoing the request identifier.
type WorkerStatusRequest struct{}

func (*WorkerStatusRequest) isContent() {}

// WorkerStatusResponse acknowledges a [WorkerStatusRequest].
type WorkerStatusResponse struct{}

func (*WorkerStatusResponse) isContent() {}

// FileChangeEventRequest notifies the worker that a watched file changed.
// Advisory only; the worker does not restart itself on file changes.
type FileChangeEventRequest struct {
	Type     FileChangeType
	FullPath string
	Name     string
}

func (*FileChangeEventRequest) isContent() {}

// WorkerActionResponse asks the host to take an action on the worker's
// behalf, such as restarting it after an unrecoverable protocol error.
type WorkerActionResponse struct {
	Action WorkerAction
	Reason string
}

func (*WorkerActionResponse) isContent() {}

// FunctionEnvironmentReloadRequest replaces the worker's environment with the
// given variables, typically ahead of a specialization from a placeholder.
type FunctionEnvironmentReloadRequest struct {
	EnvironmentVariables map[string]string
}

func (*FunctionEnvironmentReloadRequest) isContent() {}

// FunctionEnvironmentReloadResponse reports the outcome of an environment
// reload.
type FunctionEnvironmentReloadResponse struct {
	Result *StatusResult
}

func (*FunctionEnvironmentReloadResponse) isContent() {}

// FunctionLoadRequest asks the worker to make a function invocable under
// FunctionID. Reusing an identifier replaces the prior registration.
type FunctionLoadRequest struct {
	FunctionID               string
	Metadata                 *FunctionMetadata
	ManagedDependencyEnabled bool
}

func (*FunctionLoadRequest) isContent() {}

// FunctionLoadResponse reports the outcome of a [FunctionLoadRequest] for the
// same FunctionID.
type FunctionLoadResponse struct {
	FunctionID             string
	Result                 *StatusResult
	IsDependencyDownloaded bool
}

func (*FunctionLoadResponse) isContent() {}

// FunctionMetadata describes a function being loaded: where its code lives,
// which entry point to call, and the bindings it declares keyed by parameter
// name.
type FunctionMetadata struct {
	Directory  string
	ScriptFile string
	EntryPoint string
	Name       string
	Bindings   map[string]*BindingInfo
	IsProxy    bool
}

// BindingInfo declares one binding of a function: its extension type (for
// example "httpTrigger" or "queue"), data direction, and the declared shape
// of its data.
type BindingInfo struct {
	Type      string
	Direction Direction
	DataType  DataType
}

// InvocationRequest asks the worker to execute a previously loaded function
// once. InvocationID is unique per invocation and identifies it in cancel
// frames, log frames, and the eventual response.
type InvocationRequest struct {
	InvocationID    string
	FunctionID      string
	InputData       []*ParameterBinding
	TriggerMetadata map[string]*TypedData
}

func (*InvocationRequest) isContent() {}

// InvocationCancel asks the worker to abandon an in-flight invocation. A
// GracePeriod, when present, bounds how long the host will wait before it
// expects a terminal response.
type InvocationCancel struct {
	InvocationID string
	GracePeriod  *durationpb.Duration
}

func (*InvocationCancel) isContent() {}

// InvocationResponse is the single terminal frame for an invocation: output
// bindings, the optional return value, and the status.
type InvocationResponse struct {
	InvocationID string
	OutputData   []*ParameterBinding
	Result       *StatusResult
	ReturnValue  *TypedData
}

func (*InvocationResponse) isContent() {}

// ParameterBinding pairs a binding name with its payload.
type ParameterBinding struct {
	Name string
	Data *TypedData
}

// Log carries one log entry from the worker to the host. InvocationID is
// empty for system-scoped entries. Properties holds a JSON-serialized
// property bag.
type Log struct {
	InvocationID string
	Category     string
	Level        Level
	Message      string
	EventID      string
	Exception    *Exception
	Properties   string
}

func (*Log) isContent() {}

// StatusResult reports the outcome of a host-initiated request. Result holds
// a human-readable message; Exception is set when Status is [StatusFailure]
// or [StatusCancelled] and details are available.
type StatusResult struct {
	Result    string
	Exception *Exception
	Logs      []*Log
	Status    Status
}

// Exception is the wire form of an error: message, optional stack trace, and
// the component it originated from.
type Exception struct {
	StackTrace string
	Message    string
	Source     string
}
