package env

import (
	"context"
	"strings"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Reference is the handle for one installed (or installing) resource.
// Complete may be called once; later calls are no-ops.
type Reference struct {
	ID      string
	Source  string
	Modules []string

	once sync.Once
	err  error
	done chan struct{}
}

// Complete records the outcome of the installation and releases all waiters.
func (r *Reference) Complete(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}

// Wait blocks until the installation completes or ctx is done.
func (r *Reference) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return r.err
	}
}

// Environment is the shared registry of references and mounted modules.
// It is safe for concurrent use.
type Environment struct {
	refs    cmap.ConcurrentMap[string, *Reference]
	surface cmap.ConcurrentMap[string, string] // module -> owning reference ID
}

// New creates an empty environment.
func New() *Environment {
	return &Environment{
		refs:    cmap.New[*Reference](),
		surface: cmap.New[string](),
	}
}

// Register returns the reference for id, creating it when absent.
// created reports whether this call created the reference; when false the
// caller adopted an existing one (a prior attempt, or an external actor)
// and should wait on it instead of installing again.
func (e *Environment) Register(id, source string, modules []string) (ref *Reference, created bool) {
	ref = &Reference{ID: id, Source: source, Modules: modules, done: make(chan struct{})}
	if e.refs.SetIfAbsent(id, ref) {
		return ref, true
	}
	existing, _ := e.refs.Get(id)
	return existing, false
}

// Lookup returns the reference for id, if any.
func (e *Environment) Lookup(id string) (*Reference, bool) {
	return e.refs.Get(id)
}

// Mount adds modules to the capability surface, owned by reference refID.
func (e *Environment) Mount(refID string, modules ...string) {
	for _, m := range modules {
		e.surface.Set(m, refID)
	}
}

// Has reports whether a module is present on the capability surface.
func (e *Environment) Has(module string) bool {
	return e.surface.Has(module)
}

// Modules returns the currently mounted module names.
func (e *Environment) Modules() []string {
	return e.surface.Keys()
}

// RemoveMatching removes every reference whose ID starts with prefix and
// unmounts the modules it owns. It is idempotent and returns the number of
// references removed.
func (e *Environment) RemoveMatching(prefix string) int {
	removed := 0
	for _, id := range e.refs.Keys() {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		e.refs.Remove(id)
		removed++
		for item := range e.surface.IterBuffered() {
			if item.Val == id {
				e.surface.Remove(item.Key)
			}
		}
	}
	return removed
}
