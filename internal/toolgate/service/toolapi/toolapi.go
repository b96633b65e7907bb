// Package toolapi resolves tool names to ready-to-invoke instances and
// exposes the invocation contracts of the tools the model may call.
//
// The resolver holds no state of its own: every call reads the component
// registry, so registrations, removals and config updates are observed by
// the next call without any invalidation.
package toolapi

import (
	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/logger"
)

// Registry is the read-only lookup surface the resolver needs.
// *plugin.Registry implements it.
type Registry interface {
	ComponentInfo(name string, kind plugin.ComponentKind) (plugin.ComponentInfo, bool)
	PluginConfig(pluginName string) (tool.Config, bool)
	ComponentFactory(name string, kind plugin.ComponentKind) (tool.Factory, bool)
	LLMAvailableTools() []plugin.NamedFactory
}

var _ Registry = (*plugin.Registry)(nil)

// NamedDefinition pairs a tool name with its invocation contract.
type NamedDefinition struct {
	Name       string          `json:"name"`
	Definition tool.Definition `json:"definition"`
}

// Resolver implements tool resolution against a Registry.
type Resolver struct {
	registry Registry
}

var _ plugin.ToolLookup = (*Resolver)(nil)

// NewResolver creates a Resolver reading from the given registry.
func NewResolver(registry Registry) *Resolver {
	return &Resolver{registry: registry}
}

// GetToolInstance resolves name to a fresh tool instance configured with
// the owning plugin's config.
//
// The factory lookup does not depend on the component info: when the info
// is missing the instance is built with no configuration. A name without a
// factory yields (nil, false, nil). An error returned by the factory's
// constructor is passed through unchanged.
func (r *Resolver) GetToolInstance(name string) (tool.Tool, bool, error) {
	cfg := goption.Nil[tool.Config]()
	if info, ok := r.registry.ComponentInfo(name, plugin.KindTool); ok {
		if c, ok := r.registry.PluginConfig(info.PluginName); ok {
			cfg = goption.OK(c)
		}
	} else {
		logger.Debug("[ToolAPI] tool %q has no component info", name)
	}

	factory, ok := r.registry.ComponentFactory(name, plugin.KindTool)
	if !ok {
		logger.Debug("[ToolAPI] tool %q is not registered", name)
		return nil, false, nil
	}

	instance, err := factory.New(cfg)
	if err != nil {
		return nil, false, err
	}
	return instance, true, nil
}

// GetLLMAvailableToolDefinitions returns the definitions of the tools the
// model may call, in the registry's listing order. No instance is built.
// The result is never nil.
func (r *Resolver) GetLLMAvailableToolDefinitions() []NamedDefinition {
	tools := r.registry.LLMAvailableTools()
	result := make([]NamedDefinition, 0, len(tools))
	for _, nf := range tools {
		if nf.Factory == nil {
			continue
		}
		result = append(result, NamedDefinition{
			Name:       nf.Name,
			Definition: nf.Factory.Definition(),
		})
	}
	return result
}

// GetToolDefinition returns the static definition of any registered tool,
// LLM-available or not, without building an instance.
func (r *Resolver) GetToolDefinition(name string) (tool.Definition, bool) {
	factory, ok := r.registry.ComponentFactory(name, plugin.KindTool)
	if !ok {
		return tool.Definition{}, false
	}
	return factory.Definition(), true
}
