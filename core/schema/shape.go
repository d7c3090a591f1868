package schema

import (
	"fmt"
	"strings"
)

// asMap returns def as a string-keyed mapping.
func asMap(def Definition) (map[string]any, bool) {
	switch m := def.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// asList returns def as a sequence.
func asList(def Definition) ([]any, bool) {
	switch l := def.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// str returns m[key] when it is a non-empty string.
func str(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// strList returns m[key] as a list of strings, skipping non-strings.
// A single string is treated as a one-element list.
func strList(m map[string]any, key string) []string {
	if s, ok := m[key].(string); ok && s != "" {
		return []string{s}
	}
	l, ok := asList(m[key])
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, v := range l {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// boolean reads m[key] as a bool, accepting common string spellings.
func boolean(m map[string]any, key string) (bool, bool) {
	switch v := m[key].(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "1":
			return true, true
		case "false", "no", "off", "0":
			return false, true
		}
	}
	return false, false
}

// hasKind reports whether m declares kind explicitly.
func hasKind(m map[string]any, kind string) bool {
	k, ok := str(m, "kind")
	return ok && strings.EqualFold(k, kind)
}
