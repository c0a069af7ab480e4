package jform

import (
	"strconv"
	"strings"
)

// FormatValue renders v as the text of a form input. Strings are shown raw;
// primitive arrays as compact JSON; anything holding nested containers as
// indented JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case Array:
		if val.IsPrimitiveArray() {
			return Compact(val)
		}
		s, err := Indent(val)
		if err != nil {
			return Compact(val)
		}
		return s
	case Object:
		return Compact(val)
	default:
		return formatScalar(v)
	}
}

// FormatCell renders a table cell. present is false when the row has no value
// at the column's path.
func FormatCell(v any, present bool) string {
	if !present {
		return ""
	}
	switch val := v.(type) {
	case Array:
		if val.IsPrimitiveArray() {
			parts := make([]string, len(val))
			for i, item := range val {
				// Array.prototype.join renders null as empty.
				if item != nil {
					parts[i] = formatScalar(item)
				}
			}
			return strings.Join(parts, ", ")
		}
		return Compact(val)
	case Object:
		return Compact(val)
	default:
		return formatScalar(v)
	}
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return FormatNumber(val)
	default:
		return Compact(v)
	}
}

// FormatNumber prints f the way the JSON encoder does: integers without a
// fraction, everything else in the shortest representation.
func FormatNumber(f float64) string {
	return Compact(f)
}
