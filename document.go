package jform

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrNotArray    = errors.New("JSON must be an array of objects")
	ErrEmpty       = errors.New("JSON array is empty")
	ErrNotObject   = errors.New("not an object")
	ErrLastObject  = errors.New("at least one object must remain")
	ErrEmptyKey    = errors.New("property name cannot be empty")
	ErrNoSelection = errors.New("no rows selected")
	ErrIndex       = errors.New("object index out of range")
)

// ElementError reports a top-level element that failed validation.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("item at index %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// Document is the edited array of objects. It is never empty.
type Document struct {
	objects  []Object
	registry *Registry
}

// ParseDocument decodes and validates a document. On failure nothing is
// returned, so callers holding a previous document keep it.
func ParseDocument(data []byte) (*Document, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	objs, err := validate(v)
	if err != nil {
		return nil, err
	}
	return &Document{objects: objs}, nil
}

// NewDocument builds a document from objs. The slice is used as is.
func NewDocument(objs ...Object) (*Document, error) {
	if len(objs) == 0 {
		return nil, ErrEmpty
	}
	for i, o := range objs {
		if o == nil {
			objs[i] = Object{}
		}
	}
	return &Document{objects: objs}, nil
}

func validate(v any) ([]Object, error) {
	arr, ok := v.(Array)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotArray, KindOf(v))
	}
	if len(arr) == 0 {
		return nil, ErrEmpty
	}
	objs := make([]Object, len(arr))
	for i, elem := range arr {
		obj, ok := elem.(Object)
		if !ok {
			return nil, &ElementError{Index: i, Err: fmt.Errorf("%w: got %s", ErrNotObject, KindOf(elem))}
		}
		objs[i] = obj
	}
	return objs, nil
}

// WithRegistry sets the coercers used by SetField and returns d.
func (d *Document) WithRegistry(r *Registry) *Document {
	d.registry = r
	return d
}

func (d *Document) coercers() *Registry {
	if d.registry != nil {
		return d.registry
	}
	return DefaultRegistry
}

// Len returns the number of objects.
func (d *Document) Len() int { return len(d.objects) }

// At returns object i.
func (d *Document) At(i int) (Object, error) {
	if err := d.check(i); err != nil {
		return nil, err
	}
	return d.objects[i], nil
}

// Objects returns the backing objects. Callers must not retain the slice
// across mutations.
func (d *Document) Objects() []Object { return d.objects }

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	objs := make([]Object, len(d.objects))
	for i, o := range d.objects {
		objs[i] = o.Clone()
	}
	return &Document{objects: objs, registry: d.registry}
}

// Marshal encodes the document as written to disk.
func (d *Document) Marshal() ([]byte, error) {
	return Format(d.objects)
}

// ObjectText renders object i for the preview pane.
func (d *Document) ObjectText(i int) (string, error) {
	if err := d.check(i); err != nil {
		return "", err
	}
	return Indent(d.objects[i])
}

func (d *Document) check(i int) error {
	if i < 0 || i >= len(d.objects) {
		return fmt.Errorf("%w: %d of %d", ErrIndex, i, len(d.objects))
	}
	return nil
}

// ParseLiteral reads raw as JSON and keeps the trimmed text as a string when
// it is not.
func ParseLiteral(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if v, err := Parse([]byte(trimmed)); err == nil {
		return v
	}
	return trimmed
}

// ParsePropertyValue reads the value typed for a new property: "object" or
// "{}" create an empty object, true/false are case-insensitive, anything else
// is read like ParseLiteral.
func ParsePropertyValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(trimmed, "object") || trimmed == "{}":
		return Object{}
	case strings.EqualFold(trimmed, "true"):
		return true
	case strings.EqualFold(trimmed, "false"):
		return false
	}
	return ParseLiteral(trimmed)
}

// AddObject appends {key: value} and returns its index.
func (d *Document) AddObject(key, raw string) (int, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, ErrEmptyKey
	}
	d.objects = append(d.objects, Object{{Key: key, Value: ParseLiteral(raw)}})
	return len(d.objects) - 1, nil
}

// CopyLast appends a deep copy of the last object and returns its index.
func (d *Document) CopyLast() int {
	d.objects = append(d.objects, d.objects[len(d.objects)-1].Clone())
	return len(d.objects) - 1
}

// DeleteObject removes object i. The last remaining object cannot be removed.
func (d *Document) DeleteObject(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	if len(d.objects) == 1 {
		return ErrLastObject
	}
	d.objects = slices.Delete(d.objects, i, i+1)
	return nil
}

// DeleteRows removes the objects at indices. Removing every row is refused.
func (d *Document) DeleteRows(indices []int) error {
	if len(indices) == 0 {
		return ErrNoSelection
	}
	rows := slices.Clone(indices)
	slices.Sort(rows)
	rows = slices.Compact(rows)
	for _, i := range rows {
		if err := d.check(i); err != nil {
			return err
		}
	}
	if len(rows) == len(d.objects) {
		return fmt.Errorf("cannot delete all rows: %w", ErrLastObject)
	}
	for j := len(rows) - 1; j >= 0; j-- {
		d.objects = slices.Delete(d.objects, rows[j], rows[j]+1)
	}
	return nil
}

// NewRow appends an object shaped like the first one with every leaf reset to
// the zero value of its kind, and returns its index.
func (d *Document) NewRow() int {
	d.objects = append(d.objects, emptyLike(d.objects[0]))
	return len(d.objects) - 1
}

func emptyLike(template Object) Object {
	out := make(Object, 0, len(template))
	for _, e := range template {
		var v any
		switch val := e.Value.(type) {
		case nil:
			v = nil
		case Array:
			v = Array{}
		case Object:
			v = emptyLike(val)
		case bool:
			v = false
		case string:
			v = ""
		default:
			v = float64(0)
		}
		out = append(out, Entry{Key: e.Key, Value: v})
	}
	return out
}

// AddProperty sets key inside the object found at parent in object i. An
// existing key is overwritten in place.
func (d *Document) AddProperty(i int, parent Path, key, raw string) error {
	if err := d.check(i); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	target, ok := parent.Get(d.objects[i])
	if !ok {
		return fmt.Errorf("add property under %q: %w", parent.String(), ErrNotFound)
	}
	if _, isObj := target.(Object); !isObj {
		return fmt.Errorf("add property under %q: %w", parent.String(), ErrNotContainer)
	}
	obj, err := SetPath(d.objects[i], parent.Child(key), ParsePropertyValue(raw))
	if err != nil {
		return err
	}
	d.objects[i] = obj
	return nil
}

// DeleteProperty removes the key or array element at path in object i.
func (d *Document) DeleteProperty(i int, path Path) error {
	if err := d.check(i); err != nil {
		return err
	}
	obj, err := DeletePath(d.objects[i], path)
	if err != nil {
		return err
	}
	d.objects[i] = obj
	return nil
}

// Properties lists every key path of object i, descending into nested
// objects but not arrays.
func (d *Document) Properties(i int) ([]Path, error) {
	if err := d.check(i); err != nil {
		return nil, err
	}
	var out []Path
	var walk func(Object, Path)
	walk = func(o Object, prefix Path) {
		for _, e := range o {
			p := prefix.Child(e.Key)
			out = append(out, p)
			if nested, ok := e.Value.(Object); ok {
				walk(nested, p)
			}
		}
	}
	walk(d.objects[i], nil)
	return out, nil
}

// Get returns the value at path in object i.
func (d *Document) Get(i int, path Path) (any, error) {
	if err := d.check(i); err != nil {
		return nil, err
	}
	v, ok := path.Get(d.objects[i])
	if !ok {
		return nil, fmt.Errorf("get %q: %w", path.String(), ErrNotFound)
	}
	return v, nil
}

// Set writes an already typed value at path in object i.
func (d *Document) Set(i int, path Path, v any) error {
	if err := d.check(i); err != nil {
		return err
	}
	obj, err := SetPath(d.objects[i], path, v)
	if err != nil {
		return err
	}
	d.objects[i] = obj
	return nil
}

// SetField applies a form edit: raw is reinterpreted through the kind the
// field had when it was rendered, and written at path. It returns the value
// stored.
func (d *Document) SetField(i int, path Path, raw string, kind Kind) (any, error) {
	v := d.coercers().Reinterpret(kind, raw)
	if err := d.Set(i, path, v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetCell applies a table edit at column in row i. Missing intermediate
// objects are created.
func (d *Document) SetCell(i int, column Path, raw string) (any, error) {
	if err := d.check(i); err != nil {
		return nil, err
	}
	original, _ := column.Get(d.objects[i])
	v := ParseCell(raw, original)
	if err := d.Set(i, column, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ReplaceObject replaces object i with the object encoded in text. Text that
// is not a JSON object leaves the document unchanged.
func (d *Document) ReplaceObject(i int, text string) error {
	if err := d.check(i); err != nil {
		return err
	}
	obj, err := ParseObject([]byte(text))
	if err != nil {
		return err
	}
	d.objects[i] = obj
	return nil
}

// AppendItem adds an item to the primitive array at path: 0 when the array
// holds numbers, "" otherwise.
func (d *Document) AppendItem(i int, path Path) error {
	v, err := d.Get(i, path)
	if err != nil {
		return err
	}
	arr, ok := v.(Array)
	if !ok {
		return fmt.Errorf("append to %q: %w", path.String(), ErrNotContainer)
	}
	var item any = ""
	if len(arr) > 0 && KindOf(arr[0]) == KindNumber {
		item = float64(0)
	}
	return d.Set(i, path, append(arr, item))
}

// RemoveItem removes element k of the array at path.
func (d *Document) RemoveItem(i int, path Path, k int) error {
	return d.DeleteProperty(i, path.Child(strconv.Itoa(k)))
}

// SortDirection orders table rows.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (s SortDirection) String() string {
	if s == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (s SortDirection) Flip() SortDirection {
	if s == Descending {
		return Ascending
	}
	return Descending
}

// ParseSortDirection accepts "asc" and "desc".
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(s) {
	case "asc", "":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("unknown sort direction %q", s)
}

// Sort reorders the objects by the value at column. The sort is stable.
// Numbers compare numerically, everything else by collation of the cell text.
// Rows where the value is missing or null go last in either direction.
func (d *Document) Sort(column Path, dir SortDirection) {
	col := collate.New(language.Und)
	slices.SortStableFunc(d.objects, func(a, b Object) int {
		av, aok := column.Get(a)
		bv, bok := column.Get(b)
		aMissing, bMissing := !aok || av == nil, !bok || bv == nil
		switch {
		case aMissing && bMissing:
			return 0
		case aMissing:
			return 1
		case bMissing:
			return -1
		}

		var c int
		af, aNum := toFloat(av)
		bf, bNum := toFloat(bv)
		if aNum && bNum {
			switch {
			case af < bf:
				c = -1
			case af > bf:
				c = 1
			}
		} else {
			c = col.CompareString(FormatCell(av, true), FormatCell(bv, true))
		}
		if dir == Descending {
			return -c
		}
		return c
	})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
