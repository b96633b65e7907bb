package toolbox

import (
	"context"
	"errors"
	"testing"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/executor"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/internal/toolgate/service/toolapi"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

type upperPlugin struct{}

func (upperPlugin) Name() string { return "upper" }

func (upperPlugin) Tools() []plugin.ToolSpec {
	f := tool.NewFactory(tool.Definition{
		Name:        "shout",
		Description: "Shout",
		Parameters:  []tool.Param{{Name: "text", Type: tool.String, Description: "text to shout", Required: true}},
	}, func(goption.O[tool.Config]) (tool.Tool, error) {
		return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
			text, _ := tool.StringArg(args, "text")
			return tool.TextResult(text + "!"), nil
		}), nil
	})
	return []plugin.ToolSpec{{Factory: f}}
}

func newToolbox(t *testing.T, cfg tool.Config, attach bool) *toolapi.Resolver {
	t.Helper()
	r, _ := newToolboxFramework(t, cfg, attach)
	return r
}

func newToolboxFramework(t *testing.T, cfg tool.Config, attach bool) (*toolapi.Resolver, *plugin.Framework) {
	t.Helper()
	pc := map[string]tool.Config{}
	if cfg != nil {
		pc[PluginName] = cfg
	}
	f := (&plugin.Config{PluginConfigs: pc}).Complete().New()
	_ = f.RegisterFactory(plugin.Definition{ID: "upper"}, func(plugin.PluginArgs, plugin.Handle) (plugin.Plugin, error) {
		return upperPlugin{}, nil
	}, nil)
	_ = f.RegisterFactory(PluginDefinition(), Factory, nil)
	if err := f.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	r := toolapi.NewResolver(f.Registry())
	if attach {
		f.SetToolLookup(r)
	}
	return r, f
}

func callTool(t *testing.T, r *toolapi.Resolver, args map[string]any) (*tool.Result, error) {
	t.Helper()
	inst, ok, err := r.GetToolInstance(CallToolName)
	if err != nil || !ok {
		t.Fatalf("GetToolInstance(call_tool) = %v, %v", ok, err)
	}
	return inst.Invoke(context.Background(), args)
}

func TestCallToolDelegates(t *testing.T) {
	r := newToolbox(t, nil, true)
	res, err := callTool(t, r, map[string]any{"name": "shout", "arguments": map[string]any{"text": "hey"}})
	if err != nil || res.Content != "hey!" {
		t.Fatalf("call_tool = %+v, %v", res, err)
	}

	if _, err := callTool(t, r, map[string]any{"name": "missing"}); !errors.Is(err, errno.ErrToolNotFound) {
		t.Errorf("missing tool err = %v", err)
	}
	if _, err := callTool(t, r, map[string]any{"name": CallToolName}); !errors.Is(err, errno.ErrRecursiveCall) {
		t.Errorf("recursion err = %v", err)
	}
}

func TestCallToolChecksRequiredArguments(t *testing.T) {
	r := newToolbox(t, nil, true)
	_, err := callTool(t, r, map[string]any{"name": "shout", "arguments": map[string]any{}})
	if !errors.Is(err, errno.ErrMissingParam) {
		t.Errorf("err = %v, want ErrMissingParam", err)
	}
	if _, err := callTool(t, r, map[string]any{"name": "shout"}); !errors.Is(err, errno.ErrMissingParam) {
		t.Errorf("no arguments err = %v, want ErrMissingParam", err)
	}
}

func TestCallToolAllowList(t *testing.T) {
	r := newToolbox(t, tool.Config{"allow": []any{"other"}}, true)
	if _, err := callTool(t, r, map[string]any{"name": "shout"}); !errors.Is(err, errno.ErrInvalidArguments) {
		t.Errorf("allow list err = %v", err)
	}
}

func TestCallToolWithoutResolver(t *testing.T) {
	r := newToolbox(t, nil, false)
	if _, _, err := r.GetToolInstance(CallToolName); !errors.Is(err, errno.ErrNotStarted) {
		t.Errorf("err = %v", err)
	}
}

func TestToolUsageFedByHooks(t *testing.T) {
	r, f := newToolboxFramework(t, nil, true)
	exec := executor.New(r, executor.WithHooks(f.Registry()))
	ctx := context.Background()

	if _, err := exec.ExecuteToolCall(ctx, "", executor.ToolCall{Name: "shout", Arguments: `{"text":"a"}`}); err != nil {
		t.Fatalf("shout: %v", err)
	}
	if _, err := exec.ExecuteToolCall(ctx, "", executor.ToolCall{Name: "shout", Arguments: `{"text":"b"}`}); err != nil {
		t.Fatalf("shout: %v", err)
	}
	if _, err := exec.ExecuteToolCall(ctx, "", executor.ToolCall{Name: CallToolName, Arguments: `{"name":"ghost"}`}); err == nil {
		t.Fatal("call_tool on a missing tool should fail")
	}

	res, err := exec.ExecuteToolCall(ctx, "", executor.ToolCall{Name: UsageToolName, Arguments: `{}`})
	if err != nil {
		t.Fatalf("tool_usage: %v", err)
	}
	var stats []ToolUsage
	if err := json.UnmarshalString(res.Content, &stats); err != nil {
		t.Fatalf("decode %q: %v", res.Content, err)
	}
	byName := make(map[string]ToolUsage, len(stats))
	for _, s := range stats {
		byName[s.Name] = s
	}
	if got := byName["shout"]; got.Calls != 2 || got.Errors != 0 {
		t.Errorf("shout usage = %+v", got)
	}
	if got := byName[CallToolName]; got.Calls != 1 || got.Errors != 1 || got.LastError == "" {
		t.Errorf("call_tool usage = %+v", got)
	}

	res, err = exec.ExecuteToolCall(ctx, "", executor.ToolCall{Name: UsageToolName, Arguments: `{"name":"shout"}`})
	if err != nil {
		t.Fatalf("tool_usage(shout): %v", err)
	}
	stats = nil
	if err := json.UnmarshalString(res.Content, &stats); err != nil || len(stats) != 1 || stats[0].Name != "shout" {
		t.Errorf("filtered usage = %q, %v", res.Content, err)
	}
}

func TestToolUsageNotOfferedToModel(t *testing.T) {
	r := newToolbox(t, nil, true)
	for _, d := range r.GetLLMAvailableToolDefinitions() {
		if d.Name == UsageToolName {
			t.Errorf("%s should not be LLM-available", UsageToolName)
		}
	}
}
