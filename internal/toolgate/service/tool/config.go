package tool

import (
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/gg/goption"
	"github.com/jinzhu/copier"
)

// Config is a plugin-scoped configuration snapshot. Every tool of the
// plugin reads the same values; tools must treat it as read-only.
type Config map[string]any

// NoConfig is the absent configuration.
func NoConfig() goption.O[Config] {
	return goption.Nil[Config]()
}

// WithConfig wraps a present configuration.
func WithConfig(c Config) goption.O[Config] {
	return goption.OK(c)
}

// OrEmpty returns the configuration inside cfg, or an empty Config when absent.
func OrEmpty(cfg goption.O[Config]) Config {
	if c, ok := cfg.Get(); ok && c != nil {
		return c
	}
	return Config{}
}

// Clone returns a deep copy so later edits to c don't leak into the copy.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Config:
		return val.Clone()
	case map[string]any:
		dup := make(map[string]any, len(val))
		if err := copier.CopyWithOption(&dup, val, copier.Option{DeepCopy: true}); err == nil {
			return dup
		}
		for k, e := range val {
			dup[k] = cloneValue(e)
		}
		return dup
	case []any:
		dup := make([]any, len(val))
		for i, e := range val {
			dup[i] = cloneValue(e)
		}
		return dup
	}
	return v
}

// Get resolves a dotted key such as "search.endpoint" through nested maps.
func (c Config) Get(key string) (any, bool) {
	if len(c) == 0 || key == "" {
		return nil, false
	}

	var cur any = map[string]any(c)
	for _, part := range strings.Split(key, ".") {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case Config:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[any]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at key, or def.
func (c Config) String(key, def string) string {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return def
}

// Int returns the integer at key, or def. Numeric strings are accepted.
// Fractional and out-of-range values yield def.
func (c Config) Int(key string, def int) int {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return def
		}
		return int(n)
	case uint:
		if n > math.MaxInt {
			return def
		}
		return int(n)
	case uint64:
		if n > math.MaxInt {
			return def
		}
		return int(n)
	case float32:
		if i, ok := floatToInt(float64(n)); ok {
			return i
		}
	case float64:
		if i, ok := floatToInt(n); ok {
			return i
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// PositiveInt is Int for limits and sizes: zero, negative and invalid
// values yield def.
func (c Config) PositiveInt(key string, def int) int {
	if n := c.Int(key, def); n > 0 {
		return n
	}
	return def
}

// floatToInt converts f when it holds an integral value that fits in an int.
func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

// Float returns the number at key, or def.
func (c Config) Float(key string, def float64) float64 {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

// Bool returns the boolean at key, or def.
func (c Config) Bool(key string, def bool) bool {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}
