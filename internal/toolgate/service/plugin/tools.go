package plugin

import (
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

// ToolSpec describes a tool registered by a plugin.
type ToolSpec struct {
	// Factory builds instances and carries the static definition.
	Factory tool.Factory
	// AvailableForLLM exposes the tool in the model's function-calling schema.
	// Tools without it can still be resolved by name for direct calls.
	AvailableForLLM bool
}

// ToolProvider is an optional plugin interface for plugins that want to
// contribute Tools declaratively. The framework probes for it after Init.
type ToolProvider interface {
	Plugin
	// Tools returns the tools contributed by this plugin.
	Tools() []ToolSpec
}

// ToolLookup resolves a tool instance or its definition by name. Plugins
// use it through the RuntimeAPI to delegate to other tools.
type ToolLookup interface {
	GetToolInstance(name string) (tool.Tool, bool, error)
	GetToolDefinition(name string) (tool.Definition, bool)
}
