package v1

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kiosk404/toolgate/internal/toolgate/service/executor"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

// ToolListResponse is the body of GET /v1/tools.
type ToolListResponse struct {
	Object string `json:"object"`
	Data   any    `json:"data"`
}

// FunctionTool is the OpenAI-style function declaration of a tool.
type FunctionTool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition is the "function" member of FunctionTool.
type FunctionDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// ToolDetail is the body of GET /v1/tools/:name.
type ToolDetail struct {
	Info       plugin.ComponentInfo `json:"info"`
	Definition tool.Definition      `json:"definition"`
}

// InvokeRequest is the body of POST /v1/tools/:name/invoke.
type InvokeRequest struct {
	ChatID    string         `json:"chat_id"`
	Arguments map[string]any `json:"arguments"`
}

// ToolCallsRequest is the body of POST /v1/tool_calls.
type ToolCallsRequest struct {
	ChatID    string              `json:"chat_id"`
	ToolCalls []executor.ToolCall `json:"tool_calls" binding:"required"`
}

// ToolCallsResponse is the body returned by POST /v1/tool_calls.
type ToolCallsResponse struct {
	Results   []executor.ToolResult `json:"results"`
	UsedTools []string              `json:"used_tools"`
}

// ToggleResponse reports the availability of a tool after enable/disable.
type ToggleResponse struct {
	Name    string `json:"name"`
	ChatID  string `json:"chat_id,omitempty"`
	Enabled bool   `json:"enabled"`
}

// PluginObject describes one loaded plugin.
type PluginObject struct {
	plugin.Definition
	Configured bool                   `json:"configured"`
	Tools      []plugin.ComponentInfo `json:"tools"`
}

// PluginListResponse is the body of GET /v1/plugins.
type PluginListResponse struct {
	Object string         `json:"object"`
	Data   []PluginObject `json:"data"`
	Stats  plugin.Stats   `json:"stats"`
}
