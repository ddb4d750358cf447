package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds a closed set of entities and the decorators their fields
// refer to. After Resolve every entity and collection field knows its target
// entity, so the object model never looks names up at runtime.
type Registry struct {
	mu         sync.RWMutex
	entities   map[string]*Entity
	decorators map[string]Decorator
	resolved   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities:   make(map[string]*Entity),
		decorators: make(map[string]Decorator),
	}
}

// Add validates and registers entities. An entity belongs to at most one
// registry.
func (r *Registry) Add(entities ...*Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entities {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entity %q: %w", e.Name, err)
		}
		if _, dup := r.entities[e.Name]; dup {
			return fmt.Errorf("entity %q already registered", e.Name)
		}
		e.reindex()
		r.entities[e.Name] = e
	}
	r.resolved = false
	return nil
}

// RegisterDecorator makes a decorator available to fields by name.
func (r *Registry) RegisterDecorator(name string, d Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decorators[name] = d
	r.resolved = false
}

// Resolve links entity and collection fields to their target entities and
// attaches decorators. It fails on dangling references.
func (r *Registry) Resolve() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []string
	for _, name := range r.sortedNames() {
		e := r.entities[name]
		for i := range e.Fields {
			f := &e.Fields[i]
			if f.Type.NeedsTarget() {
				target, ok := r.entities[f.To]
				if !ok {
					errs = append(errs, fmt.Sprintf("%s.%s: unknown entity %q", e.Name, f.Name, f.To))
					continue
				}
				f.ref = target
			}
			if f.Decorator != "" {
				d, ok := r.decorators[f.Decorator]
				if !ok {
					errs = append(errs, fmt.Sprintf("%s.%s: unknown decorator %q", e.Name, f.Name, f.Decorator))
					continue
				}
				f.decorate = d
			}
		}
	}
	if err := joinErrors(errs); err != nil {
		return fmt.Errorf("resolve registry: %w", err)
	}
	r.resolved = true
	return nil
}

// Resolved reports whether Resolve succeeded since the last change.
func (r *Registry) Resolved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved
}

// Entity returns a registered entity by name.
func (r *Registry) Entity(name string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[name]
	return e, ok
}

// MustEntity returns a registered entity and panics if it is missing.
// Intended for package-level wiring of generated models.
func (r *Registry) MustEntity(name string) *Entity {
	e, ok := r.Entity(name)
	if !ok {
		panic(fmt.Sprintf("schema: entity %q not registered", name))
	}
	return e
}

// Names returns all registered entity names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
