package tool

import (
	"reflect"
	"testing"
)

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"strings", []string{"a", "b"}, []string{"a", "b"}},
		{"json array", []any{"a", 1, "b"}, []string{"a", "b"}},
		{"scalar", "a", nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StringList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StringList(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]any{"n": float64(5), "frac": 2.5, "s": "7"}
	if got := IntArg(args, "n", 0); got != 5 {
		t.Errorf("IntArg(n) = %d, want 5", got)
	}
	if got := IntArg(args, "frac", 9); got != 9 {
		t.Errorf("IntArg(frac) = %d, want default", got)
	}
	if got := IntArg(args, "s", 9); got != 9 {
		t.Errorf("IntArg(s) = %d, want default", got)
	}
}
