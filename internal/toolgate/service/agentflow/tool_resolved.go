// Package agentflow bridges resolved plugin tools into cloudwego/eino agents.
package agentflow

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	plugintool "github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/internal/toolgate/service/toolapi"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

// Resolver is the subset of the tool resolution API used by the adapter.
type Resolver interface {
	GetToolInstance(name string) (plugintool.Tool, bool, error)
	GetToolDefinition(name string) (plugintool.Definition, bool)
	GetLLMAvailableToolDefinitions() []toolapi.NamedDefinition
}

// ResolvedTool adapts a registered tool to eino's tool.InvokableTool.
// The schema comes from the static definition; every run resolves a fresh
// instance so registry changes apply to the next call.
type ResolvedTool struct {
	def      plugintool.Definition
	resolver Resolver
}

var _ tool.InvokableTool = (*ResolvedTool)(nil)

// NewResolvedTool creates an eino tool for the given definition.
func NewResolvedTool(resolver Resolver, def plugintool.Definition) *ResolvedTool {
	return &ResolvedTool{def: def, resolver: resolver}
}

// Info returns the Eino ToolInfo for this tool.
func (t *ResolvedTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return t.def.ToolInfo(), nil
}

// InvokableRun resolves the tool and invokes it with the given JSON arguments.
func (t *ResolvedTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var params map[string]interface{}
	if argumentsInJSON != "" && argumentsInJSON != "{}" {
		if err := json.Unmarshal([]byte(argumentsInJSON), &params); err != nil {
			return "", fmt.Errorf("failed to unmarshal arguments JSON: %w", err)
		}
	}
	if params == nil {
		params = make(map[string]interface{})
	}
	if err := t.def.CheckRequired(params); err != nil {
		return "", err
	}

	instance, ok, err := t.resolver.GetToolInstance(t.def.Name)
	if err != nil {
		return "", fmt.Errorf("failed to build tool %q: %w", t.def.Name, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %q", errno.ErrToolNotFound, t.def.Name)
	}

	result, err := instance.Invoke(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to invoke tool %q: %w", t.def.Name, err)
	}
	if result == nil {
		return "", nil
	}
	return result.Content, nil
}

// AdaptLLMAvailableTools converts LLM-available tools to Eino tools.
// If names are given, only those tools are adapted; names that are not
// registered are skipped.
func AdaptLLMAvailableTools(resolver Resolver, names ...string) []tool.BaseTool {
	if len(names) == 0 {
		defs := resolver.GetLLMAvailableToolDefinitions()
		tools := make([]tool.BaseTool, 0, len(defs))
		for _, d := range defs {
			tools = append(tools, NewResolvedTool(resolver, d.Definition))
		}
		return tools
	}

	tools := make([]tool.BaseTool, 0, len(names))
	for _, name := range names {
		def, ok := resolver.GetToolDefinition(name)
		if !ok {
			continue
		}
		tools = append(tools, NewResolvedTool(resolver, def))
	}
	return tools
}

// NewToolsNode builds an eino ToolsNode executing the LLM-available tools.
func NewToolsNode(ctx context.Context, resolver Resolver, names ...string) (*compose.ToolsNode, error) {
	node, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools: AdaptLLMAvailableTools(resolver, names...),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tools node: %w", err)
	}
	return node, nil
}

// ToolInfos returns the eino schemas of the LLM-available tools, ready to
// bind to a tool-calling chat model.
func ToolInfos(resolver Resolver) []*schema.ToolInfo {
	defs := resolver.GetLLMAvailableToolDefinitions()
	infos := make([]*schema.ToolInfo, 0, len(defs))
	for _, d := range defs {
		infos = append(infos, d.Definition.ToolInfo())
	}
	return infos
}
