package graph

import (
	"cmp"
	"slices"
	"sync"

	"github.com/matzehuels/blueprint/pkg/errors"
)

// Factory constructs a fresh, unbuilt node with its pins and behavior.
type Factory func() *Node

// Registry maps type tags to node factories. It is an explicit object passed
// to the CLI, the HTTP API and persistence; there is no package-level
// registry.
type Registry struct {
	mu        sync.RWMutex
	factories map[TypeTag]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[TypeTag]Factory)}
}

// Register adds a factory under tag. Registering a tag twice fails with
// DUPLICATE_ID.
func (r *Registry) Register(tag TypeTag, f Factory) error {
	if err := tag.Validate(); err != nil {
		return err
	}
	if f == nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s: nil factory", tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[tag]; ok {
		return errors.New(errors.ErrCodeDuplicateID, "%s already registered", tag)
	}
	r.factories[tag] = f
	return nil
}

// New constructs a node of the given type. The node's Type is set to tag.
func (r *Registry) New(tag TypeTag) (*Node, error) {
	r.mu.RLock()
	f, ok := r.factories[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown node type %s", tag)
	}
	n := f()
	if n == nil {
		return nil, errors.New(errors.ErrCodeInternal, "%s: factory returned nil", tag)
	}
	n.Type = tag
	if n.Name == "" {
		n.Name = tag.Name
	}
	return n, nil
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag TypeTag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[tag]
	return ok
}

// Tags returns every registered tag sorted by category, then name.
func (r *Registry) Tags() []TypeTag {
	r.mu.RLock()
	tags := make([]TypeTag, 0, len(r.factories))
	for t := range r.factories {
		tags = append(tags, t)
	}
	r.mu.RUnlock()

	slices.SortFunc(tags, func(a, b TypeTag) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
	})
	return tags
}
