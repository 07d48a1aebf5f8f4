package reflection

import (
	"fmt"
	"reflect"
)

// Identifier is the stable key under which a named declaration lives in a
// Registry. Identifiers derived from Go types are the fully qualified type
// name: "<import path>.<type name>".
type Identifier string

// BuildFunc produces a declaration. It receives the registry being built so
// it can reflect the types the declaration refers to.
type BuildFunc func(r *Registry) (TypeDecl, error)

// Registry is the table of named declarations collected during one build
// pass. Each identifier is inserted at most once and never overwritten.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	types    map[Identifier]TypeDecl
	owners   map[Identifier]reflect.Type
	pending  map[Identifier]bool
	order    []Identifier
	consumed bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[Identifier]TypeDecl),
		owners:  make(map[Identifier]reflect.Type),
		pending: make(map[Identifier]bool),
	}
}

// InsertWith ensures a declaration exists for id.
//
// If id is already present, or its declaration is currently being built
// further up the call stack, InsertWith does nothing and build is not called.
// Otherwise build is invoked with the registry and its result is stored
// under id. Declarations reached from inside build are registered first, so
// a self-referential type reflects to a Ref of its own identifier instead of
// recursing forever.
//
// owner is the Go type claiming id. When two different non-nil owners claim
// the same id the first one wins and ErrIdentifierCollision is returned.
// When build fails nothing is stored for id.
func (r *Registry) InsertWith(id Identifier, owner reflect.Type, build BuildFunc) error {
	if r.consumed {
		return fmt.Errorf("insert %s: %w", id, ErrRegistryConsumed)
	}
	if err := r.claim(id, owner); err != nil {
		return err
	}
	if _, ok := r.types[id]; ok || r.pending[id] {
		return nil
	}

	r.pending[id] = true
	r.order = append(r.order, id)
	decl, err := build(r)
	delete(r.pending, id)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}

	r.types[id] = decl
	return nil
}

func (r *Registry) claim(id Identifier, owner reflect.Type) error {
	if owner == nil {
		return nil
	}
	prev, ok := r.owners[id]
	if !ok {
		r.owners[id] = owner
		return nil
	}
	if prev != owner {
		return fmt.Errorf("%s claimed by %s and %s: %w", id, prev, owner, ErrIdentifierCollision)
	}
	return nil
}

// Lookup returns the declaration registered under id.
func (r *Registry) Lookup(id Identifier) (TypeDecl, bool) {
	decl, ok := r.types[id]
	return decl, ok
}

// Len returns the number of declarations in the registry.
func (r *Registry) Len() int { return len(r.types) }

// IDs returns the registered identifiers in order of first encounter.
func (r *Registry) IDs() []Identifier {
	ids := make([]Identifier, 0, len(r.types))
	for _, id := range r.order {
		if _, ok := r.types[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// IntoTypes consumes the registry and returns its declarations. Further
// insertions fail with ErrRegistryConsumed.
func (r *Registry) IntoTypes() map[Identifier]TypeDecl {
	types := r.types
	r.consumed = true
	r.types = make(map[Identifier]TypeDecl)
	r.owners = nil
	r.order = nil
	return types
}
