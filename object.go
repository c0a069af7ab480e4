package jform

// Object represents a JSON object, defined as an ordered collection of
// key-value pairs. Order follows the source text so that previews and table
// columns keep the layout of the file being edited.
type Object []Entry

// Array represents a JSON array, defined as a slice of values of any type.
type Array []any

// Entry represents a single entry in an object. It consists of a string key and
// an associated value of any type.
type Entry struct {
	Key   string
	Value any
}

// Index returns the position of key in o, or -1.
func (o Object) Index(key string) int {
	for i, e := range o {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	if i := o.Index(key); i >= 0 {
		return o[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	return o.Index(key) >= 0
}

// Keys returns the keys of o in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, e := range o {
		keys[i] = e.Key
	}
	return keys
}

// Set replaces the value of an existing key in place or appends a new entry.
func (o *Object) Set(key string, value any) {
	if i := o.Index(key); i >= 0 {
		(*o)[i].Value = value
		return
	}
	*o = append(*o, Entry{Key: key, Value: value})
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i := o.Index(key)
	if i < 0 {
		return false
	}
	*o = append((*o)[:i], (*o)[i+1:]...)
	return true
}

// Clone returns a deep copy of o.
func (o Object) Clone() Object {
	if o == nil {
		return nil
	}
	out := make(Object, len(o))
	for i, e := range o {
		out[i] = Entry{Key: e.Key, Value: CloneValue(e.Value)}
	}
	return out
}

// Clone returns a deep copy of a.
func (a Array) Clone() Array {
	if a == nil {
		return nil
	}
	out := make(Array, len(a))
	for i, v := range a {
		out[i] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies containers and returns scalars as they are.
func CloneValue(v any) any {
	switch val := v.(type) {
	case Object:
		return val.Clone()
	case Array:
		return val.Clone()
	default:
		return v
	}
}

// IsPrimitiveArray reports whether every element of a is a scalar (or null).
// Empty arrays count as primitive.
func (a Array) IsPrimitiveArray() bool {
	for _, v := range a {
		switch v.(type) {
		case Object, Array:
			return false
		}
	}
	return true
}
