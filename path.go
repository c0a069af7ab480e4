package jform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when a path does not address an existing value.
	ErrNotFound = errors.New("path not found")
	// ErrNotContainer is returned when a path walks through a scalar.
	ErrNotContainer = errors.New("not an object or array")
)

// Path locates a value inside an Object. Segments address object keys, or
// array elements by decimal index.
type Path []string

// ParsePath splits dot-delimited text into a Path. A backslash escapes the
// next character so keys containing '.' survive the round-trip through
// String. The empty string is the root path; a lone backslash is the path of
// the empty key.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	var (
		p   Path
		seg strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			// A trailing backslash escapes nothing.
			if i+1 < len(s) {
				i++
				seg.WriteByte(s[i])
			}
		case c == '.':
			p = append(p, seg.String())
			seg.Reset()
		default:
			seg.WriteByte(c)
		}
	}
	return append(p, seg.String())
}

// String joins the segments with '.', escaping '.' and '\' inside segments.
// A path made of the empty key alone is written as a lone backslash so it is
// not mistaken for the root.
func (p Path) String() string {
	if len(p) == 1 && p[0] == "" {
		return `\`
	}
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		for j := 0; j < len(seg); j++ {
			if seg[j] == '.' || seg[j] == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(seg[j])
		}
	}
	return b.String()
}

// Child returns a new path extended by seg. The receiver is not modified.
func (p Path) Child(seg string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Last returns the final segment, or "" for the root path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Get resolves p inside obj.
func (p Path) Get(obj Object) (any, bool) {
	var cur any = obj
	for _, seg := range p {
		switch c := cur.(type) {
		case Object:
			v, ok := c.Get(seg)
			if !ok {
				return nil, false
			}
			cur = v
		case Array:
			i, ok := arrayIndex(c, seg)
			if !ok {
				return nil, false
			}
			cur = c[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// SetPath writes v at p inside obj and returns the updated object. Missing or
// null intermediate values become empty objects; walking through any other
// scalar fails with ErrNotContainer.
func SetPath(obj Object, p Path, v any) (Object, error) {
	if len(p) == 0 {
		o, ok := v.(Object)
		if !ok {
			return nil, fmt.Errorf("set root: %w", ErrNotObject)
		}
		return o, nil
	}
	out, err := setIn(obj, p, v)
	if err != nil {
		return nil, fmt.Errorf("set %q: %w", p.String(), err)
	}
	return out.(Object), nil
}

func setIn(cur any, p Path, v any) (any, error) {
	seg := p[0]
	switch c := cur.(type) {
	case nil:
		return setIn(Object{}, p, v)
	case Object:
		if len(p) == 1 {
			c.Set(seg, v)
			return c, nil
		}
		child, _ := c.Get(seg)
		updated, err := setIn(child, p[1:], v)
		if err != nil {
			return nil, err
		}
		c.Set(seg, updated)
		return c, nil
	case Array:
		i, ok := arrayIndex(c, seg)
		if !ok {
			return nil, fmt.Errorf("index %q: %w", seg, ErrNotFound)
		}
		if len(p) == 1 {
			c[i] = v
			return c, nil
		}
		updated, err := setIn(c[i], p[1:], v)
		if err != nil {
			return nil, err
		}
		c[i] = updated
		return c, nil
	default:
		return nil, fmt.Errorf("segment %q: %w", seg, ErrNotContainer)
	}
}

// DeletePath removes the key or array element addressed by p and returns the
// updated object.
func DeletePath(obj Object, p Path) (Object, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("delete root: %w", ErrNotFound)
	}
	parent, ok := p.Parent().Get(obj)
	if !ok {
		return nil, fmt.Errorf("delete %q: %w", p.String(), ErrNotFound)
	}
	var updated any
	switch c := parent.(type) {
	case Object:
		if !c.Delete(p.Last()) {
			return nil, fmt.Errorf("delete %q: %w", p.String(), ErrNotFound)
		}
		updated = c
	case Array:
		i, ok := arrayIndex(c, p.Last())
		if !ok {
			return nil, fmt.Errorf("delete %q: %w", p.String(), ErrNotFound)
		}
		updated = append(c[:i:i], c[i+1:]...)
	default:
		return nil, fmt.Errorf("delete %q: %w", p.String(), ErrNotContainer)
	}
	if len(p) == 1 {
		return updated.(Object), nil
	}
	return SetPath(obj, p.Parent(), updated)
}

func arrayIndex(a Array, seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= len(a) || strconv.Itoa(i) != seg {
		return 0, false
	}
	return i, true
}
