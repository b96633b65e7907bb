package tool

import (
	"fmt"

	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
)

// StringArg reads a string argument. ok is false when the key is missing or
// holds another type.
func StringArg(args map[string]any, name string) (string, bool) {
	s, ok := args[name].(string)
	return s, ok
}

// RequireString reads a mandatory, non-empty string argument.
func RequireString(args map[string]any, name string) (string, error) {
	s, ok := StringArg(args, name)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", errno.ErrInvalidArguments, name)
	}
	return s, nil
}

// IntArg reads an integer argument. JSON numbers decode as float64, so both
// are accepted; fractional values yield def.
func IntArg(args map[string]any, name string, def int) int {
	switch n := args[name].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if i, ok := floatToInt(n); ok {
			return i
		}
	}
	return def
}

// BoolArg reads a boolean argument.
func BoolArg(args map[string]any, name string, def bool) bool {
	if b, ok := args[name].(bool); ok {
		return b
	}
	return def
}

// MapArg reads an object argument.
func MapArg(args map[string]any, name string) (map[string]any, bool) {
	m, ok := args[name].(map[string]any)
	return m, ok
}

// StringList converts a list value into strings, dropping non-string
// elements. JSON arrays decode as []any, so both shapes are accepted.
func StringList(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		result := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}
