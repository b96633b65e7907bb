package plugin

import (
	"errors"
	"sync"
	"testing"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

func echoFactory(name string) tool.Factory {
	def := tool.Definition{
		Name:        name,
		Description: "echo " + name,
		Parameters: []tool.Param{
			{Name: "text", Type: tool.String, Required: true},
		},
	}
	return tool.NewFactory(def, func(cfg goption.O[tool.Config]) (tool.Tool, error) {
		return tool.InvokeFunc(nil), nil
	})
}

func llmNames(r *Registry) []string {
	var names []string
	for _, nf := range r.LLMAvailableTools() {
		names = append(names, nf.Name)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRegistryAddToolAndLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.addTool("search_plugin", ToolSpec{Factory: echoFactory("web_search"), AvailableForLLM: true}); err != nil {
		t.Fatalf("addTool: %v", err)
	}

	info, ok := r.ComponentInfo("web_search", KindTool)
	if !ok {
		t.Fatal("expected web_search to be registered")
	}
	if info.PluginName != "search_plugin" || !info.Enabled || !info.LLMAvailable {
		t.Errorf("unexpected info: %+v", info)
	}
	if _, ok := r.ComponentFactory("web_search", KindTool); !ok {
		t.Error("expected factory for web_search")
	}
	if _, ok := r.ComponentInfo("web_search", KindService); ok {
		t.Error("lookup under another kind must miss")
	}
	if _, ok := r.ComponentFactory("web_search", KindService); ok {
		t.Error("non-tool kinds never have factories")
	}
}

func TestRegistryConflict(t *testing.T) {
	r := NewRegistry()
	if err := r.addTool("a", ToolSpec{Factory: echoFactory("dup")}); err != nil {
		t.Fatalf("addTool: %v", err)
	}
	err := r.addTool("b", ToolSpec{Factory: echoFactory("dup")})
	if !errors.Is(err, errno.ErrComponentConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	info, _ := r.ComponentInfo("dup", KindTool)
	if info.PluginName != "a" {
		t.Errorf("first registration must win, owner = %q", info.PluginName)
	}

	// Same name under another kind is allowed.
	svc := ServiceDefinition{Name: "dup"}
	if err := r.addService("b", svc); err != nil {
		t.Errorf("service with tool name should register: %v", err)
	}
}

func TestRegistryRejectsDottedNames(t *testing.T) {
	r := NewRegistry()
	err := r.addTool("p", ToolSpec{Factory: echoFactory("bad.name")})
	if !errors.Is(err, errno.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if err := r.registerPlugin("bad.plugin", Definition{ID: "bad.plugin"}, nil); !errors.Is(err, errno.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for plugin, got %v", err)
	}
}

func TestRegistryLLMAvailableOrder(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"a", "b", "c"} {
		if err := r.addTool("p", ToolSpec{Factory: echoFactory(n), AvailableForLLM: true}); err != nil {
			t.Fatalf("addTool %s: %v", n, err)
		}
	}
	if err := r.addTool("p", ToolSpec{Factory: echoFactory("hidden")}); err != nil {
		t.Fatalf("addTool hidden: %v", err)
	}

	if got := llmNames(r); !equalStrings(got, []string{"a", "b", "c"}) {
		t.Fatalf("llm tools = %v", got)
	}

	if err := r.DisableComponent("a", KindTool); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if got := llmNames(r); !equalStrings(got, []string{"b", "c"}) {
		t.Fatalf("after disable = %v", got)
	}
	if _, ok := r.ComponentFactory("a", KindTool); !ok {
		t.Error("disabled tool must stay resolvable")
	}

	if err := r.EnableComponent("a", KindTool); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if got := llmNames(r); !equalStrings(got, []string{"b", "c", "a"}) {
		t.Fatalf("after enable = %v", got)
	}

	// Enabling a tool that is not LLM-available keeps it out of the listing.
	if err := r.EnableComponent("hidden", KindTool); err != nil {
		t.Fatalf("enable hidden: %v", err)
	}
	if got := llmNames(r); len(got) != 3 {
		t.Errorf("hidden tool leaked into listing: %v", got)
	}

	if err := r.DisableComponent("missing", KindTool); !errors.Is(err, errno.ErrComponentNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRegistryRemoveComponent(t *testing.T) {
	r := NewRegistry()
	_ = r.addTool("p", ToolSpec{Factory: echoFactory("gone"), AvailableForLLM: true})

	if err := r.RemoveComponent("gone", KindTool); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := r.ComponentInfo("gone", KindTool); ok {
		t.Error("info still present")
	}
	if _, ok := r.ComponentFactory("gone", KindTool); ok {
		t.Error("factory still present")
	}
	if len(r.LLMAvailableTools()) != 0 {
		t.Error("removed tool still LLM-available")
	}
	if err := r.RemoveComponent("gone", KindTool); !errors.Is(err, errno.ErrComponentNotFound) {
		t.Errorf("second remove: %v", err)
	}
}

func TestRegistryPluginConfig(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.PluginConfig("search_plugin"); ok {
		t.Fatal("config should be absent")
	}

	src := tool.Config{"api_key": "x"}
	r.SetPluginConfig("search_plugin", src)
	src["api_key"] = "mutated"

	cfg, ok := r.PluginConfig("search_plugin")
	if !ok || cfg.String("api_key", "") != "x" {
		t.Fatalf("config = %v, %v", cfg, ok)
	}

	cfg["api_key"] = "caller-mutated"
	again, _ := r.PluginConfig("search_plugin")
	if again.String("api_key", "") != "x" {
		t.Error("returned config must be a copy")
	}

	r.DeletePluginConfig("search_plugin")
	if _, ok := r.PluginConfig("search_plugin"); ok {
		t.Error("config should be deleted")
	}
}

func TestRegistryUnregisterPlugin(t *testing.T) {
	r := NewRegistry()
	if err := r.registerPlugin("p1", Definition{ID: "p1"}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = r.registerPlugin("p2", Definition{ID: "p2"}, nil)
	_ = r.addTool("p1", ToolSpec{Factory: echoFactory("t1"), AvailableForLLM: true})
	_ = r.addTool("p2", ToolSpec{Factory: echoFactory("t2"), AvailableForLLM: true})
	_ = r.addService("p1", ServiceDefinition{Name: "s1"})
	r.addHook("p1", HookServerStart, nil)
	r.SetPluginConfig("p1", tool.Config{"k": "v"})

	removed, err := r.UnregisterPlugin("p1")
	if err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if !equalStrings(removed, []string{"t1"}) {
		t.Errorf("removed = %v", removed)
	}
	if got := llmNames(r); !equalStrings(got, []string{"t2"}) {
		t.Errorf("llm tools = %v", got)
	}
	if len(r.GetServices()) != 0 || len(r.GetHooks(HookServerStart)) != 0 {
		t.Error("services or hooks of p1 survived")
	}
	if _, ok := r.PluginConfig("p1"); ok {
		t.Error("config of p1 survived")
	}
	if !equalStrings(r.PluginNames(), []string{"p2"}) {
		t.Errorf("plugins = %v", r.PluginNames())
	}
	if _, err := r.UnregisterPlugin("p1"); !errors.Is(err, errno.ErrPluginNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRegistryStats(t *testing.T) {
	r := NewRegistry()
	_ = r.registerPlugin("p", Definition{ID: "p"}, nil)
	_ = r.addTool("p", ToolSpec{Factory: echoFactory("a"), AvailableForLLM: true})
	_ = r.addTool("p", ToolSpec{Factory: echoFactory("b")})
	_ = r.addService("p", ServiceDefinition{Name: "svc"})
	_ = r.DisableComponent("b", KindTool)

	s := r.Stats()
	if s.Plugins != 1 || s.Components != 3 || s.EnabledComponents != 2 {
		t.Errorf("stats = %+v", s)
	}
	if s.ByKind[KindTool] != 2 || s.ByKind[KindService] != 1 || s.LLMAvailableTools != 1 {
		t.Errorf("stats = %+v", s)
	}
	if got := r.Components(KindTool); len(got) != 2 || got[0].Name != "a" {
		t.Errorf("components = %+v", got)
	}
	if got := r.ToolsByPlugin("p"); len(got) != 2 {
		t.Errorf("tools by plugin = %+v", got)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	_ = r.addTool("p", ToolSpec{Factory: echoFactory("stable"), AvailableForLLM: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.DisableComponent("stable", KindTool)
				_ = r.EnableComponent("stable", KindTool)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, nf := range r.LLMAvailableTools() {
					if nf.Factory == nil {
						t.Error("listed tool without factory")
					}
				}
				_, _ = r.ComponentInfo("stable", KindTool)
			}
		}()
	}
	wg.Wait()
}
