package builtin

import (
	"github.com/kiosk404/toolgate/internal/pkg/options"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	hostinfo "github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/host-info"
	mcpbridge "github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/mcp-bridge"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/notes"
	sqlquery "github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/sql-query"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/toolbox"
	websearch "github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/web-search"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

// NewInTreeRegistry creates a new in-tree plugin registry with the default plugins.
// Load-time plugin arguments are sourced from PluginsOptions
// (plugins.entries[pluginID].config); tool-level configuration is attached
// separately by the framework at resolution time.
//
// The default plugins are:
//   - web-search: web_search, web_fetch
//   - notes: BoltDB note store
//   - sql-query: read-only SQLite queries
//   - host-info: host statistics
//   - toolbox: call_tool delegation
//   - mcp-bridge: tools of external MCP servers
func NewInTreeRegistry(opts *options.PluginsOptions, mcpCfg *mcpbridge.MCPConfig) *plugin.InTreeRegistry {
	registry := plugin.NewInTreeRegistry()

	registry.Register(websearch.PluginDefinition(), websearch.Factory, nil)

	// --- notes: the db path must be known before Start opens the store.
	registry.Register(
		notes.PluginDefinition(),
		notes.Factory,
		plugin.PluginArgs{
			"config": entryConfig(opts, notes.PluginName),
		})

	registry.Register(sqlquery.PluginDefinition(), sqlquery.Factory, nil)
	registry.Register(hostinfo.PluginDefinition(), hostinfo.Factory, nil)
	registry.Register(toolbox.PluginDefinition(), toolbox.Factory, nil)

	// --- mcp-bridge: servers come from the standalone MCP config file.
	if mcpCfg == nil {
		mcpCfg = mcpbridge.NewMCPConfig()
	}
	registry.Register(
		mcpbridge.PluginDefinition(),
		mcpbridge.Factory,
		plugin.PluginArgs{
			"config": mcpCfg,
		})

	return registry
}

// PluginConfigs converts plugins.entries[*].config into the per-plugin
// configuration snapshots handed to the framework.
func PluginConfigs(opts *options.PluginsOptions) map[string]tool.Config {
	out := make(map[string]tool.Config)
	if opts == nil {
		return out
	}
	for id := range opts.Entries {
		if cfg := entryConfig(opts, id); cfg != nil {
			out[id] = cfg
		}
	}
	return out
}

func entryConfig(opts *options.PluginsOptions, id string) tool.Config {
	if opts == nil {
		return nil
	}
	entry, ok := opts.Entries[id]
	if !ok || entry.Config == nil {
		return nil
	}
	return tool.Config(entry.Config).Clone()
}
