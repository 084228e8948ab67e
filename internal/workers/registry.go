// Package workers holds the fixed registry of specialist worker backends.
// Each worker is a stateless black box: one request in, one response or
// error out. Nothing here retries or holds state between calls.
package workers

import "context"

// Canonical worker names. The planner may only emit these.
const (
	WorkerResearch  = "research"
	WorkerCode      = "code"
	WorkerEmail     = "email"
	WorkerAnalytics = "analytics"
	WorkerMemory    = "memory"
)

// Worker is one dispatchable backend.
type Worker interface {
	Name() string
	Invoke(ctx context.Context, payload string) (string, error)
}

// Registry is the fixed name->worker table consulted during decomposition
// and dispatch.
type Registry struct {
	workers map[string]Worker
	names   []string
}

// NewRegistry builds a registry from the given workers. Later duplicates
// replace earlier ones.
func NewRegistry(ws ...Worker) *Registry {
	r := &Registry{workers: make(map[string]Worker)}
	for _, w := range ws {
		if _, exists := r.workers[w.Name()]; !exists {
			r.names = append(r.names, w.Name())
		}
		r.workers[w.Name()] = w
	}
	return r
}

// Get returns the worker registered under name.
func (r *Registry) Get(name string) (Worker, bool) {
	w, ok := r.workers[name]
	return w, ok
}

// Has reports whether name is a registered worker.
func (r *Registry) Has(name string) bool {
	_, ok := r.workers[name]
	return ok
}

// Names returns the registered worker names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Func adapts a plain function into a Worker.
type Func struct {
	WorkerName string
	Fn         func(ctx context.Context, payload string) (string, error)
}

// Name returns the worker's registry name.
func (f Func) Name() string { return f.WorkerName }

// Invoke calls the wrapped function.
func (f Func) Invoke(ctx context.Context, payload string) (string, error) {
	return f.Fn(ctx, payload)
}
