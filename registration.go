package jform

// Registration is a deferred coercer registration. Packages that want a
// different reading of a kind expose values of this type so callers opt in
// explicitly instead of relying on import side-effects (init functions).
//
// For example, a strict number reader:
//
//	var StrictNumber = jform.NewCoercer(jform.KindNumber, func(raw string) (any, error) {
//		return strconv.ParseFloat(raw, 64)
//	})
//
// Usage:
//
//	r, _ := jform.NewRegistry(StrictNumber, jform.StringCoercer, jform.BoolCoercer)
type Registration func(r *Registry) error

// NewCoercer wraps a typed conversion into a Registration for kind.
func NewCoercer[T any](kind Kind, fn func(raw string) (T, error)) Registration {
	return func(r *Registry) error {
		return r.Register(kind, func(raw string) (any, error) {
			out, err := fn(raw)
			if err != nil {
				return nil, err
			}
			return out, nil
		})
	}
}

// Group groups multiple registrations into one. This allows fluent usage
// without variadic expansion, e.g.:
//
//	jform.NewRegistry(jform.Group(jform.StringCoercer, jform.BoolCoercer), custom)
func Group(regs ...Registration) Registration {
	return func(r *Registry) error { return Apply(r, regs...) }
}

// Apply applies one or more registrations to an existing registry. Stops at the
// first error and returns it.
func Apply(r *Registry, regs ...Registration) error {
	for _, reg := range regs {
		if err := reg(r); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry constructs a new registry and applies the provided registrations.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := newRegistry()
	if err := Apply(r, regs...); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(regs ...Registration) *Registry {
	r, err := NewRegistry(regs...)
	if err != nil {
		panic(err)
	}
	return r
}
