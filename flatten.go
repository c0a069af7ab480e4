package jform

// Field is a leaf of a flattened object.
type Field struct {
	Path  Path
	Value any
}

// Flatten projects obj into (path, value) pairs in document order. Non-empty
// objects are descended; scalars, nulls, arrays and empty objects are leaves,
// so Unflatten(Flatten(obj)) rebuilds obj exactly.
func Flatten(obj Object) []Field {
	var out []Field
	flattenInto(&out, obj, nil)
	return out
}

func flattenInto(out *[]Field, obj Object, prefix Path) {
	for _, e := range obj {
		p := prefix.Child(e.Key)
		if nested, ok := e.Value.(Object); ok && len(nested) > 0 {
			flattenInto(out, nested, p)
			continue
		}
		*out = append(*out, Field{Path: p, Value: e.Value})
	}
}

// Unflatten rebuilds an object from flattened fields. Every segment names an
// object key; intermediate objects are created in first-seen order.
func Unflatten(fields []Field) Object {
	obj := Object{}
	for _, f := range fields {
		if len(f.Path) == 0 {
			continue
		}
		obj = unflattenSet(obj, f.Path, f.Value)
	}
	return obj
}

func unflattenSet(obj Object, p Path, v any) Object {
	if len(p) == 1 {
		obj.Set(p[0], CloneValue(v))
		return obj
	}
	child, _ := obj.Get(p[0])
	nested, ok := child.(Object)
	if !ok {
		nested = Object{}
	}
	obj.Set(p[0], unflattenSet(nested, p[1:], v))
	return obj
}

// Columns returns the union of leaf paths over objs in order of first
// occurrence. Empty objects are not columns; they hold no editable cell.
func Columns(objs []Object) []Path {
	seen := make(map[string]struct{})
	var cols []Path
	for _, obj := range objs {
		for _, f := range Flatten(obj) {
			if nested, ok := f.Value.(Object); ok && len(nested) == 0 {
				continue
			}
			key := f.Path.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			cols = append(cols, f.Path)
		}
	}
	return cols
}
