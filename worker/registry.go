package worker

import (
	"fmt"
	"sync"

	"github.com/azfunc/worker-go/bindings"
	"github.com/azfunc/worker-go/rpc"
)

// registry owns the loaded functions. It is read-heavy after load: lookups
// take a shared lock and return the installed *Function, which stays valid
// for callers that captured it even after a replacing load or a clear.
type registry struct {
	manifest map[string]Handler

	mu        sync.RWMutex
	functions map[string]*Function
}

func newRegistry(manifest []Registration) (*registry, error) {
	handlers := make(map[string]Handler, len(manifest))
	for _, reg := range manifest {
		if reg.Name == "" {
			return nil, fmt.Errorf("registration with empty name")
		}
		if reg.Handler == nil {
			return nil, fmt.Errorf("registration %q has no handler", reg.Name)
		}
		if _, ok := handlers[reg.Name]; ok {
			return nil, fmt.Errorf("duplicate registration %q", reg.Name)
		}
		handlers[reg.Name] = reg.Handler
	}
	return &registry{
		manifest:  handlers,
		functions: make(map[string]*Function),
	}, nil
}

// load validates a load request and installs the function under its id,
// replacing any previous registration for the same id. On error nothing is
// mutated. The handler is resolved from the manifest by entry point first,
// then by metadata name.
func (r *registry) load(req *rpc.FunctionLoadRequest) (*Function, error) {
	if req.FunctionID == "" {
		return nil, fmt.Errorf("load request has no function id")
	}
	md := req.Metadata
	if md == nil {
		return nil, fmt.Errorf("load request for %q has no metadata", req.FunctionID)
	}
	for name, info := range md.Bindings {
		if err := bindings.ValidateBinding(info); err != nil {
			return nil, fmt.Errorf("binding %q: %w", name, err)
		}
	}
	handler, ok := r.resolve(md)
	if !ok {
		return nil, fmt.Errorf("no registered handler for function %q (entry point %q)", md.Name, md.EntryPoint)
	}

	fn := &Function{ID: req.FunctionID, Metadata: md, Handler: handler}
	r.mu.Lock()
	r.functions[req.FunctionID] = fn
	r.mu.Unlock()
	return fn, nil
}

func (r *registry) resolve(md *rpc.FunctionMetadata) (Handler, bool) {
	if md.EntryPoint != "" {
		if handler, ok := r.manifest[md.EntryPoint]; ok {
			return handler, true
		}
	}
	handler, ok := r.manifest[md.Name]
	return handler, ok
}

func (r *registry) lookup(functionID string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[functionID]
	return fn, ok
}

func (r *registry) clear() {
	r.mu.Lock()
	r.functions = make(map[string]*Function)
	r.mu.Unlock()
}

func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.functions)
}
