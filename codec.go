package jform

import (
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ErrSyntax marks input that is not well-formed JSON.
var ErrSyntax = errors.New("malformed JSON")

// Unmarshalers returns the full set of jform unmarshalers allowing decoding
// into:
//   - any/interface{} -> objects as Object, arrays as Array
//   - *Object         -> direct ordered object decoding
//   - *Array          -> direct array decoding
//
// Primitive values (string, number, bool, null) are left to the default
// decoding, which yields string, float64, bool and nil.
func Unmarshalers() *json.Unmarshalers {
	return json.JoinUnmarshalers(
		unmarshalValue(),
		unmarshalObject(),
		unmarshalArray(),
	)
}

// Marshalers returns the marshalers that keep Object entries in order.
func Marshalers() *json.Marshalers {
	return json.MarshalToFunc(func(enc *jsontext.Encoder, o Object) error {
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return fmt.Errorf("write object open: %w", err)
		}
		for _, e := range o {
			if err := enc.WriteToken(jsontext.String(e.Key)); err != nil {
				return fmt.Errorf("write object key %q: %w", e.Key, err)
			}
			if err := json.MarshalEncode(enc, e.Value); err != nil {
				return fmt.Errorf("write object value for key %q: %w", e.Key, err)
			}
		}
		if err := enc.WriteToken(jsontext.EndObject); err != nil {
			return fmt.Errorf("write object close: %w", err)
		}
		return nil
	})
}

var (
	decodeOptions = json.JoinOptions(
		json.WithUnmarshalers(Unmarshalers()),
		jsontext.AllowDuplicateNames(true),
	)
	compactOptions = json.JoinOptions(
		json.WithMarshalers(Marshalers()),
		jsontext.AllowDuplicateNames(true),
	)
	indentOptions = json.JoinOptions(
		compactOptions,
		jsontext.WithIndent("  "),
	)
)

// Parse decodes JSON text into the value model.
func Parse(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v, decodeOptions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return v, nil
}

// ParseObject decodes JSON text that must hold a single object.
func ParseObject(data []byte) (Object, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, KindOf(v))
	}
	return obj, nil
}

// Format encodes v with 2-space indentation and a trailing newline, the layout
// used for files on disk.
func Format(v any) ([]byte, error) {
	out, err := json.Marshal(v, indentOptions)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return append(out, '\n'), nil
}

// Indent encodes v with 2-space indentation and no trailing newline, the
// layout used by the preview pane.
func Indent(v any) (string, error) {
	out, err := json.Marshal(v, indentOptions)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(out), nil
}

// Compact encodes v on a single line. Values of the model always encode, so
// failures are reported in the returned text instead of an error.
func Compact(v any) string {
	out, err := json.Marshal(v, compactOptions)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(out)
}

// unmarshalValue wraps JSON objects as Object (ordered) rather than
// map[string]any and JSON arrays as Array so callers can distinguish them
// from []any. Empty objects produce an empty Object; empty arrays an empty
// Array.
func unmarshalValue() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *any) error {
		switch dec.PeekKind() {
		case '{':
			obj, err := decodeObject(dec)
			if err != nil {
				return err
			}
			*v = obj
			return nil
		case '[':
			arr, err := decodeArray(dec)
			if err != nil {
				return err
			}
			*v = arr
			return nil
		default:
			return json.SkipFunc
		}
	})
}

// unmarshalObject decodes a JSON object into *Object.
func unmarshalObject() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *Object) error {
		if dec.PeekKind() != '{' {
			return json.SkipFunc
		}
		obj, err := decodeObject(dec)
		if err != nil {
			return err
		}
		*v = obj
		return nil
	})
}

// unmarshalArray decodes a JSON array into *Array.
func unmarshalArray() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *Array) error {
		if dec.PeekKind() != '[' {
			return json.SkipFunc
		}
		arr, err := decodeArray(dec)
		if err != nil {
			return err
		}
		*v = arr
		return nil
	})
}

// decodeObject decodes a JSON object into an Object. A repeated key keeps the
// position of its first occurrence and the value of its last.
func decodeObject(dec *jsontext.Decoder) (Object, error) {
	if _, err := dec.ReadToken(); err != nil { // '{'
		return nil, fmt.Errorf("read object open: %w", err)
	}
	res := Object{}
	for dec.PeekKind() != '}' {
		var k string
		if err := json.UnmarshalDecode(dec, &k); err != nil {
			return nil, fmt.Errorf("read object key: %w", err)
		}
		var vv any
		if err := json.UnmarshalDecode(dec, &vv); err != nil {
			return nil, fmt.Errorf("read object value for key %q: %w", k, err)
		}
		res.Set(k, vv)
	}
	if _, err := dec.ReadToken(); err != nil { // '}'
		return nil, fmt.Errorf("read object close: %w", err)
	}
	return res, nil
}

// decodeArray decodes a JSON array into an Array.
func decodeArray(dec *jsontext.Decoder) (Array, error) {
	if _, err := dec.ReadToken(); err != nil { // '['
		return nil, fmt.Errorf("read array open: %w", err)
	}
	arr := Array{}
	for dec.PeekKind() != ']' {
		var elem any
		if err := json.UnmarshalDecode(dec, &elem); err != nil {
			return nil, fmt.Errorf("read array element: %w", err)
		}
		arr = append(arr, elem)
	}
	if _, err := dec.ReadToken(); err != nil { // ']'
		return nil, fmt.Errorf("read array close: %w", err)
	}
	return arr, nil
}
