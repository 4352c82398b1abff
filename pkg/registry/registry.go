package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// ErrNotFound is returned when no function is registered under a name.
var ErrNotFound = domain.ErrUnknownFunction

// Function defines the signature for an in-process remote function.
// It receives the declared params and a snapshot of the answers collected so far.
type Function func(ctx context.Context, params any, answers domain.Answers) (any, error)

// Registry manages the functions, validators and selection handlers a tree
// may reference. It implements ports.RemoteCaller, ports.LocalValidators and
// ports.SelectionHandlers.
type Registry struct {
	mu         sync.RWMutex
	functions  map[string]Function
	validators map[string]ports.LocalValidator
	handlers   map[string]ports.SelectionHandler
	fallback   ports.RemoteCaller
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		functions:  make(map[string]Function),
		validators: make(map[string]ports.LocalValidator),
		handlers:   make(map[string]ports.SelectionHandler),
	}
}

// Register adds a function to the registry under namespace.method.
// If a function with the same name exists, it is overwritten.
func (r *Registry) Register(namespace, method string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[domain.Func{Namespace: namespace, Method: method}.String()] = fn
}

// RegisterValidator adds a named local validator.
func (r *Registry) RegisterValidator(name string, v ports.LocalValidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = v
}

// RegisterSelectionHandler adds a named selection-change handler.
func (r *Registry) RegisterSelectionHandler(name string, h ports.SelectionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// SetFallback delegates calls to functions this registry does not know.
func (r *Registry) SetFallback(next ports.RemoteCaller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = next
}

// Call implements ports.RemoteCaller.
// Returns an error wrapping ErrNotFound if the function is unknown and no
// fallback is set.
func (r *Registry) Call(ctx context.Context, fn domain.Func, answers domain.Answers) (any, error) {
	r.mu.RLock()
	impl, ok := r.functions[fn.String()]
	fallback := r.fallback
	r.mu.RUnlock()

	if !ok {
		if fallback != nil {
			return fallback.Call(ctx, fn, answers)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fn)
	}

	return impl(ctx, fn.Params, answers)
}

// Has reports whether namespace.method is registered locally.
func (r *Registry) Has(fn domain.Func) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.functions[fn.String()]
	return ok
}

// Names lists registered function names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocalValidator implements ports.LocalValidators.
func (r *Registry) LocalValidator(name string) (ports.LocalValidator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[name]
	return v, ok
}

// SelectionHandler implements ports.SelectionHandlers.
func (r *Registry) SelectionHandler(name string) (ports.SelectionHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}
