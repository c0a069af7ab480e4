package session

import (
	"context"
	"strconv"

	"github.com/calumari/jform"
)

// FieldType distinguishes the rows of the form view.
type FieldType int

const (
	// FieldValue is an editable scalar, or an array holding containers shown
	// as JSON text.
	FieldValue FieldType = iota
	// FieldSection heads a nested object.
	FieldSection
	// FieldArray heads a list of primitive items.
	FieldArray
	// FieldItem is one element of a primitive array.
	FieldItem
)

// Field is one row of the form view. Kind is captured when the form is
// built and decides how edited text is read back.
type Field struct {
	Type      FieldType
	Path      jform.Path
	Label     string
	Depth     int
	Kind      jform.Kind
	Text      string
	Empty     bool
	Collapsed bool
}

// Fields builds the form rows for the current object in document order.
// Collapsed sections hide their content.
func (s *Session) Fields() []Field {
	var out []Field
	s.walkFields(&out, s.Current(), nil, 0)
	return out
}

func (s *Session) walkFields(out *[]Field, obj jform.Object, prefix jform.Path, depth int) {
	for _, e := range obj {
		p := prefix.Child(e.Key)
		switch v := e.Value.(type) {
		case jform.Object:
			collapsed := s.IsCollapsed(p)
			*out = append(*out, Field{
				Type:      FieldSection,
				Path:      p,
				Label:     e.Key,
				Depth:     depth,
				Kind:      jform.KindObject,
				Empty:     len(v) == 0,
				Collapsed: collapsed,
			})
			if !collapsed {
				s.walkFields(out, v, p, depth+1)
			}
		case jform.Array:
			if !v.IsPrimitiveArray() {
				*out = append(*out, valueField(p, e.Key, depth, v))
				continue
			}
			*out = append(*out, Field{
				Type:  FieldArray,
				Path:  p,
				Label: e.Key,
				Depth: depth,
				Kind:  jform.KindArray,
				Text:  jform.FormatValue(v),
			})
			for i, item := range v {
				idx := strconv.Itoa(i)
				*out = append(*out, Field{
					Type:  FieldItem,
					Path:  p.Child(idx),
					Label: idx,
					Depth: depth + 1,
					Kind:  jform.KindOf(item),
					Text:  jform.FormatCell(item, true),
				})
			}
		default:
			*out = append(*out, valueField(p, e.Key, depth, v))
		}
	}
}

func valueField(p jform.Path, label string, depth int, v any) Field {
	return Field{
		Type:  FieldValue,
		Path:  p,
		Label: label,
		Depth: depth,
		Kind:  jform.KindOf(v),
		Text:  jform.FormatValue(v),
	}
}

// EditField writes raw into the current object at f.Path, read back through
// the kind f was rendered with. It returns the stored value.
func (s *Session) EditField(ctx context.Context, f Field, raw string) (any, error) {
	v, err := s.doc.SetField(s.index, f.Path, raw, f.Kind)
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return v, nil
}
