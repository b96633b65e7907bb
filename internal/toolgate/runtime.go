package toolgate

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/kiosk404/toolgate/internal/toolgate/options"
	"github.com/kiosk404/toolgate/internal/toolgate/service/executor"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin"
	mcpbridge "github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/mcp-bridge"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/internal/toolgate/service/toolapi"
	"github.com/kiosk404/toolgate/pkg/logger"
)

// Runtime wires the plugin framework, the tool resolver and the executor.
type Runtime struct {
	Framework *plugin.Framework
	Resolver  *toolapi.Resolver
	Executor  *executor.Executor
}

// NewRuntime loads and starts the in-tree plugins described by opts.
func NewRuntime(ctx context.Context, opts *options.Options) (*Runtime, error) {
	mcpCfg, err := mcpbridge.LoadMCPConfig(opts.MCPOptions.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load MCP config from %q: %w", opts.MCPOptions.ConfigFile, err)
	}
	inTreeRegistry := builtin.NewInTreeRegistry(opts.PluginOptions, mcpCfg)

	pluginCfg := &plugin.Config{
		SlotConfig:    plugin.SlotConfig(opts.PluginOptions.SlotMap()),
		PluginConfigs: builtin.PluginConfigs(opts.PluginOptions),
		Disabled:      opts.PluginOptions.DisabledPlugins(inTreeRegistry.IDs()),
	}
	pluginFramework := pluginCfg.Complete().New()

	resolver := toolapi.NewResolver(pluginFramework.Registry())
	pluginFramework.SetToolLookup(resolver)

	if opts.PluginOptions.Enabled {
		if err := inTreeRegistry.ApplyTo(pluginFramework); err != nil {
			return nil, fmt.Errorf("failed to register in-tree plugins: %w", err)
		}
		if err := pluginFramework.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize plugin framework: %w", err)
		}
		if err := pluginFramework.Start(ctx); err != nil {
			pluginFramework.Stop(ctx)
			return nil, fmt.Errorf("failed to start plugin framework: %w", err)
		}
		logger.Info("[Toolgate] plugin framework initialized (%d plugins loaded)", pluginFramework.Registry().Len())
	} else {
		logger.Info("[Toolgate] plugin framework disabled (plugins.enabled=false), skipping plugin loading")
	}

	return &Runtime{
		Framework: pluginFramework,
		Resolver:  resolver,
		Executor:  executor.New(resolver, executor.WithHooks(pluginFramework.Registry())),
	}, nil
}

// Close stops every plugin (reverse lifecycle: hooks -> services -> plugins).
func (r *Runtime) Close(ctx context.Context) error {
	return r.Framework.Stop(ctx)
}

// ReloadPluginConfigs pushes changed plugins.entries[*].config values of
// loaded plugins into the registry. A removed entry leaves the plugin
// without configuration. It returns the plugin IDs that were updated.
func (r *Runtime) ReloadPluginConfigs(ctx context.Context, prev, next *options.Options) []string {
	before := builtin.PluginConfigs(prev.PluginOptions)
	after := builtin.PluginConfigs(next.PluginOptions)

	ids := make(map[string]struct{}, len(before)+len(after))
	for id := range before {
		ids[id] = struct{}{}
	}
	for id := range after {
		ids[id] = struct{}{}
	}

	var updated []string
	for id := range ids {
		if _, loaded := r.Framework.Registry().GetPlugin(id); !loaded {
			continue
		}
		cfg, present := after[id]
		if reflect.DeepEqual(before[id], cfg) {
			continue
		}
		if present {
			r.Framework.UpdatePluginConfig(ctx, id, tool.WithConfig(cfg))
		} else {
			r.Framework.UpdatePluginConfig(ctx, id, tool.NoConfig())
		}
		updated = append(updated, id)
	}
	sort.Strings(updated)
	return updated
}
