package tool

import (
	"context"
	"math"
	"testing"

	"github.com/bytedance/gg/goption"
)

func TestConfigGetNested(t *testing.T) {
	cfg := Config{
		"api_key": "x",
		"search": map[string]any{
			"endpoint": "https://example.test",
			"limits":   map[string]any{"max": 7},
		},
	}

	if got := cfg.String("api_key", ""); got != "x" {
		t.Errorf("api_key = %q, want x", got)
	}
	if got := cfg.String("search.endpoint", ""); got != "https://example.test" {
		t.Errorf("search.endpoint = %q", got)
	}
	if got := cfg.Int("search.limits.max", 0); got != 7 {
		t.Errorf("search.limits.max = %d, want 7", got)
	}
	if _, ok := cfg.Get("search.missing"); ok {
		t.Error("missing key should not resolve")
	}
	if _, ok := cfg.Get("api_key.deeper"); ok {
		t.Error("descending into a scalar should not resolve")
	}
	if got := cfg.Bool("enabled", true); !got {
		t.Error("default bool should be returned")
	}
}

func TestConfigTypedCoercion(t *testing.T) {
	cfg := Config{"n": float64(3), "s": "12", "b": "true", "f": 2}
	if got := cfg.Int("n", 0); got != 3 {
		t.Errorf("Int(n) = %d", got)
	}
	if got := cfg.Int("s", 0); got != 12 {
		t.Errorf("Int(s) = %d", got)
	}
	if got := cfg.Bool("b", false); !got {
		t.Error("Bool(b) = false")
	}
	if got := cfg.Float("f", 0); got != 2 {
		t.Errorf("Float(f) = %v", got)
	}
}

func TestConfigIntRejectsLossyValues(t *testing.T) {
	cfg := Config{
		"frac":  3.7,
		"big":   uint64(math.MaxUint64),
		"huge":  1e300,
		"whole": 4.0,
		"neg":   int64(-5),
	}
	tests := []struct {
		key  string
		want int
	}{
		{"frac", -1},
		{"big", -1},
		{"huge", -1},
		{"whole", 4},
		{"neg", -5},
	}
	for _, tt := range tests {
		if got := cfg.Int(tt.key, -1); got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestConfigPositiveInt(t *testing.T) {
	cfg := Config{"zero": 0, "neg": -3, "ok": 8, "frac": 0.5}
	for key, want := range map[string]int{"zero": 10, "neg": 10, "ok": 8, "frac": 10, "missing": 10} {
		if got := cfg.PositiveInt(key, 10); got != want {
			t.Errorf("PositiveInt(%q) = %d, want %d", key, got, want)
		}
	}
}

func TestConfigClone(t *testing.T) {
	src := Config{"api_key": "x"}
	dup := src.Clone()
	src["api_key"] = "changed"
	src["extra"] = true

	if got := dup.String("api_key", ""); got != "x" {
		t.Errorf("clone api_key = %q, want x", got)
	}
	if _, ok := dup["extra"]; ok {
		t.Error("clone should not see keys added later")
	}
	if Config(nil).Clone() != nil {
		t.Error("nil clone should stay nil")
	}
}

func TestOptionalConfig(t *testing.T) {
	if _, ok := NoConfig().Get(); ok {
		t.Fatal("NoConfig should be absent")
	}
	if got := OrEmpty(NoConfig()); got == nil || len(got) != 0 {
		t.Errorf("OrEmpty(absent) = %v, want empty", got)
	}
	c, ok := WithConfig(Config{"k": "v"}).Get()
	if !ok || c.String("k", "") != "v" {
		t.Errorf("WithConfig lost its value: %v %v", c, ok)
	}
}

func TestNewFactory(t *testing.T) {
	def := Definition{Name: "echo", Description: "echo text"}
	var seen Config
	f := NewFactory(def, func(cfg goption.O[Config]) (Tool, error) {
		seen = OrEmpty(cfg)
		return InvokeFunc(func(ctx context.Context, args map[string]any) (*Result, error) {
			s, _ := StringArg(args, "text")
			return TextResult(s), nil
		}), nil
	})

	if f.Definition().Name != "echo" {
		t.Fatalf("definition name = %q", f.Definition().Name)
	}
	inst, err := f.New(WithConfig(Config{"prefix": ">"}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if seen.String("prefix", "") != ">" {
		t.Errorf("constructor saw %v", seen)
	}
	res, err := inst.Invoke(context.Background(), map[string]any{"text": "hi"})
	if err != nil || res.Content != "hi" || res.Type != "text" {
		t.Fatalf("Invoke = %+v, %v", res, err)
	}
}
