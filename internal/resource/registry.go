package resource

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Hooks override the built-in conversion of a single attribute.
// Any hook may be nil; resolution order is documented on Converter.
type Hooks struct {
	// ToExternal computes the outgoing value from a pointer to the whole entity
	ToExternal func(entity any) (any, error)
	// Get transforms the raw field value on the way out
	Get func(value any) (any, error)
	// FromExternal translates an incoming value with access to the whole document
	FromExternal func(value any, doc *Resource) (any, error)
	// Set transforms an incoming value into the field's internal form
	Set func(value any) (any, error)
}

// Option customises a type's metadata at registration
type Option func(*TypeMetadata) error

// WithHooks binds conversion hooks to the attribute with the given internal name
func WithHooks(field string, hooks Hooks) Option {
	return func(m *TypeMetadata) error {
		attr, ok := m.attributeByName(field)
		if !ok {
			return &ConfigError{Type: m.GoType.String(), Field: field, Reason: "hooks bound to unknown attribute"}
		}
		attr.Hooks = hooks
		return nil
	}
}

// WithReadOnly marks attributes that are rendered but ignored on input
func WithReadOnly(fields ...string) Option {
	return func(m *TypeMetadata) error {
		for _, field := range fields {
			attr, ok := m.attributeByName(field)
			if !ok {
				return &ConfigError{Type: m.GoType.String(), Field: field, Reason: "unknown read-only attribute"}
			}
			attr.ReadOnly = true
		}
		return nil
	}
}

// Registry caches TypeMetadata per Go type. Lookups are safe for concurrent
// use; a type described concurrently by two callers is computed twice and one
// result wins.
type Registry struct {
	types map[reflect.Type]*TypeMetadata
	names map[string]*TypeMetadata
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[reflect.Type]*TypeMetadata),
		names: make(map[string]*TypeMetadata),
	}
}

// Register describes the type of v, applies options and stores the result.
// Registering the same type or type name twice is an error.
func (r *Registry) Register(v any, opts ...Option) (*TypeMetadata, error) {
	t := typeOf(v)
	meta, err := describe(t)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(meta); err != nil {
			return nil, err
		}
	}
	meta.explicit = true

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[meta.GoType]; ok && existing.explicit {
		return nil, fmt.Errorf("resource %s is already registered", meta.GoType)
	}
	if existing, ok := r.names[meta.TypeName]; ok && existing.GoType != meta.GoType {
		return nil, fmt.Errorf("resource type %q is already registered for %s", meta.TypeName, existing.GoType)
	}

	r.types[meta.GoType] = meta
	r.names[meta.TypeName] = meta
	return meta, nil
}

// MustRegister is Register for startup wiring; it panics on error
func (r *Registry) MustRegister(v any, opts ...Option) *TypeMetadata {
	meta, err := r.Register(v, opts...)
	if err != nil {
		panic(err)
	}
	return meta
}

// Describe returns the metadata for v's type, computing and caching it on
// first use. v may be a value, a pointer or a reflect.Type.
func (r *Registry) Describe(v any) (*TypeMetadata, error) {
	t := typeOf(v)

	r.mu.RLock()
	meta, ok := r.types[t]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	meta, err := describe(t)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[t]; ok {
		return existing, nil
	}
	r.types[t] = meta
	if _, taken := r.names[meta.TypeName]; !taken {
		r.names[meta.TypeName] = meta
	}
	return meta, nil
}

// Lookup finds metadata by external type name
func (r *Registry) Lookup(typeName string) (*TypeMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.names[typeName]
	return meta, ok
}

// List returns the registered type names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func typeOf(v any) reflect.Type {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
