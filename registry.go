package jform

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoCoercer is returned when no coercer is registered for a kind.
var ErrNoCoercer = errors.New("no coercer registered")

// Coercer reinterprets the raw text of an edited field as a value of one kind.
// Returning an error tells the caller to keep the raw text as a string.
type Coercer func(raw string) (any, error)

// Registry maps kinds to coercers. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[Kind]Coercer
}

func newRegistry() *Registry {
	return &Registry{entries: make(map[Kind]Coercer)}
}

// DefaultRegistry holds the coercers from Defaults.
var DefaultRegistry = MustNewRegistry(Defaults())

// Register adds fn for kind. A kind may only be registered once.
func (r *Registry) Register(kind Kind, fn Coercer) error {
	if !kind.Valid() {
		return fmt.Errorf("coercer for %s: invalid kind", kind)
	}
	if fn == nil {
		return fmt.Errorf("coercer for %s: nil function", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[kind]; exists {
		return fmt.Errorf("coercer for %s already registered", kind)
	}
	r.entries[kind] = fn
	return nil
}

// Kinds reports the registered kinds in declaration order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var kinds []Kind
	for k := KindString; k <= KindObject; k++ {
		if _, ok := r.entries[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Coerce runs the coercer registered for kind.
func (r *Registry) Coerce(kind Kind, raw string) (any, error) {
	r.mu.RLock()
	fn, ok := r.entries[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("coerce %s: %w", kind, ErrNoCoercer)
	}

	v, err := fn(raw)
	if err != nil {
		return nil, fmt.Errorf("coerce %s: %w", kind, err)
	}
	return v, nil
}

// Reinterpret coerces raw and falls back to the raw string when the coercer
// fails or is missing.
func (r *Registry) Reinterpret(kind Kind, raw string) any {
	v, err := r.Coerce(kind, raw)
	if err != nil {
		return raw
	}
	return v
}
