package toolbox

import (
	"context"
	"fmt"

	"github.com/bytedance/gg/goption"
	"github.com/bytedance/gg/gslice"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/logger"
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "toolbox"

	// CallToolName is the name of the delegating tool.
	CallToolName = "call_tool"
)

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		ID:          PluginName,
		Name:        "Toolbox",
		Kind:        "general",
		Description: "Generic helpers that call other registered tools and report their usage",
	}
}

// CallDefinition is the contract of the call_tool tool.
func CallDefinition() tool.Definition {
	return tool.Definition{
		Name:        CallToolName,
		Description: "Call another registered tool by name, including tools that are not offered directly.",
		Parameters: []tool.Param{
			{Name: "name", Type: tool.String, Description: "Name of the tool to call", Required: true},
			{Name: "arguments", Type: tool.Object, Description: "Arguments passed to the tool"},
		},
	}
}

type toolboxPlugin struct {
	handle plugin.Handle
	usage  *usageTracker
}

// Factory is the PluginFactory for toolbox.
func Factory(args plugin.PluginArgs, handle plugin.Handle) (plugin.Plugin, error) {
	return &toolboxPlugin{handle: handle, usage: newUsageTracker()}, nil
}

// Name implements plugin.Plugin.
func (p *toolboxPlugin) Name() string {
	return PluginName
}

// Tools implements plugin.ToolProvider.
func (p *toolboxPlugin) Tools() []plugin.ToolSpec {
	return []plugin.ToolSpec{
		{Factory: tool.NewFactory(CallDefinition(), p.newCallTool), AvailableForLLM: true},
		{Factory: tool.NewFactory(UsageDefinition(), p.usage.newUsageTool)},
	}
}

// Hooks implements plugin.HookProvider. The usage counters behind
// tool_usage are fed by the tool call events.
func (p *toolboxPlugin) Hooks() map[plugin.HookEvent]plugin.HookHandler {
	return map[plugin.HookEvent]plugin.HookHandler{
		plugin.HookBeforeToolCall: p.usage.beforeCall,
		plugin.HookAfterToolCall:  p.usage.afterCall,
	}
}

// newCallTool builds call_tool. An optional "allow" list in the plugin
// configuration restricts which tools may be called.
func (p *toolboxPlugin) newCallTool(cfg goption.O[tool.Config]) (tool.Tool, error) {
	lookup := p.handle.RuntimeAPI().Tools()
	if lookup == nil {
		return nil, fmt.Errorf("call_tool: %w: no tool resolver attached", errno.ErrNotStarted)
	}
	allow := tool.StringList(tool.OrEmpty(cfg)["allow"])

	return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		name, err := tool.RequireString(args, "name")
		if err != nil {
			return nil, err
		}
		if name == CallToolName {
			return nil, fmt.Errorf("%w: %s cannot call itself", errno.ErrRecursiveCall, CallToolName)
		}
		if len(allow) > 0 && !gslice.Contains(allow, name) {
			return nil, fmt.Errorf("%w: %q is not in the toolbox allow list", errno.ErrInvalidArguments, name)
		}

		target, ok, err := lookup.GetToolInstance(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q", errno.ErrToolNotFound, name)
		}

		inner, _ := tool.MapArg(args, "arguments")
		if inner == nil {
			inner = map[string]any{}
		}
		if def, ok := lookup.GetToolDefinition(name); ok {
			if err := def.CheckRequired(inner); err != nil {
				return nil, err
			}
		}
		logger.Debug("[Toolbox] delegating to %q", name)
		return target.Invoke(ctx, inner)
	}), nil
}
