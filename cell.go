package jform

import (
	"strconv"
	"strings"
)

// ParseCell reinterprets the text typed into a table cell. The keywords null,
// true and false win regardless of the previous value; arrays accept JSON or
// comma-separated items; text opening with '{' or '[' is read as JSON; a
// number stays a number when it still parses as one. Everything else is kept
// as the typed string.
func ParseCell(raw string, original any) any {
	trimmed := strings.TrimSpace(raw)
	if v, ok := parseKeyword(trimmed); ok {
		return v
	}

	if _, ok := original.(Array); ok {
		if strings.HasPrefix(trimmed, "[") {
			if v, err := Parse([]byte(trimmed)); err == nil {
				return v
			}
		}
		if trimmed == "" {
			return Array{}
		}
		items := strings.Split(trimmed, ",")
		arr := make(Array, len(items))
		for i, item := range items {
			arr[i] = parseArrayItem(strings.TrimSpace(item))
		}
		return arr
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if v, err := Parse([]byte(trimmed)); err == nil {
			return v
		}
		return raw
	}

	if KindOf(original) == KindNumber {
		if f, ok := ParseNumberPrefix(trimmed); ok {
			return f
		}
	}
	return raw
}

func parseKeyword(s string) (any, bool) {
	switch strings.ToLower(s) {
	case "null":
		return nil, true
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return nil, false
}

// parseArrayItem keeps an item numeric only when it reads back identically,
// so "007" and "1.50" stay strings.
func parseArrayItem(s string) any {
	if v, ok := parseKeyword(s); ok {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && FormatNumber(f) == s {
		return f
	}
	return s
}
