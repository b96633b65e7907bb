package websearch

import (
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "web-search"

	// Kind groups this plugin under the "search" slot.
	Kind = "search"
)

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		ID:          PluginName,
		Name:        "Web Search",
		Kind:        Kind,
		Description: "Web search through a JSON search API and page fetching",
	}
}

type webSearchPlugin struct{}

// Factory is the PluginFactory for web-search. Tools read their settings
// from the plugin configuration at construction time.
func Factory(args plugin.PluginArgs, handle plugin.Handle) (plugin.Plugin, error) {
	return &webSearchPlugin{}, nil
}

// Name implements plugin.Plugin.
func (p *webSearchPlugin) Name() string {
	return PluginName
}

// Tools implements plugin.ToolProvider.
func (p *webSearchPlugin) Tools() []plugin.ToolSpec {
	return []plugin.ToolSpec{
		{Factory: tool.NewFactory(SearchDefinition(), NewSearchTool), AvailableForLLM: true},
		{Factory: tool.NewFactory(FetchDefinition(), NewFetchTool), AvailableForLLM: true},
	}
}
