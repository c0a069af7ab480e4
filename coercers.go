package jform

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// StringCoercer keeps text as a string, except that text opening with '['
	// or '{' is read as JSON when it parses:
	//
	//	"[1, 2]"  -> Array{1, 2}
	//	"{oops"   -> "{oops"
	StringCoercer = NewCoercer(KindString, coerceString)

	// NumberCoercer reads the longest numeric prefix of the text. Text without
	// one yields 0, so a number field never turns into a string:
	//
	//	"42"     -> 42
	//	" 3.5kg" -> 3.5
	//	"abc"    -> 0
	NumberCoercer = NewCoercer(KindNumber, coerceNumber)

	// BoolCoercer is true only for "true" in any letter case.
	BoolCoercer = NewCoercer(KindBool, coerceBool)

	// NullCoercer accepts "null" in any letter case; other text stays a string.
	NullCoercer = NewCoercer(KindNull, coerceNull)

	// ArrayCoercer and ObjectCoercer read JSON text; failures keep the string.
	ArrayCoercer  = NewCoercer(KindArray, coerceJSON)
	ObjectCoercer = NewCoercer(KindObject, coerceJSON)
)

// Defaults bundles the coercers for every kind.
func Defaults() Registration {
	return Group(StringCoercer, NumberCoercer, BoolCoercer, NullCoercer, ArrayCoercer, ObjectCoercer)
}

var errNotNull = errors.New("not null")

func coerceString(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if v, err := Parse([]byte(trimmed)); err == nil {
			return v, nil
		}
	}
	return raw, nil
}

var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseNumberPrefix reads the longest decimal number at the start of s,
// ignoring leading whitespace. It reports false when there is none or the
// number does not fit a finite float64.
func ParseNumberPrefix(s string) (float64, bool) {
	m := numberPrefix.FindString(strings.TrimLeft(s, " \t\r\n"))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func coerceNumber(raw string) (float64, error) {
	f, _ := ParseNumberPrefix(raw)
	return f, nil
}

func coerceBool(raw string) (bool, error) {
	return strings.EqualFold(strings.TrimSpace(raw), "true"), nil
}

func coerceNull(raw string) (any, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "null") {
		return nil, nil
	}
	return nil, fmt.Errorf("%q: %w", raw, errNotNull)
}

func coerceJSON(raw string) (any, error) {
	return Parse([]byte(raw))
}
