package jform

import "fmt"

// Kind is the type tag captured for a value when it is rendered into an
// editable field. Edits are reinterpreted through the tag so a number stays a
// number after passing through a text input.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindString: "string",
	KindNumber: "number",
	KindBool:   "boolean",
	KindNull:   "null",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindString && k <= KindObject
}

// ParseKind maps a tag name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// KindOf returns the tag for a value of the model. Go numeric types other than
// float64 are accepted so hand-built objects behave like decoded ones.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBool
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case Object:
		return KindObject
	case Array:
		return KindArray
	default:
		return KindString
	}
}
