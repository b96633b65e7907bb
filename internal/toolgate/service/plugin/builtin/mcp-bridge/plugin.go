package mcpbridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/gg/goption"
	"github.com/gosuri/uitable"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/logger"
	"github.com/kiosk404/toolgate/pkg/utils/json"
	"github.com/spf13/cobra"
)

// PluginName is the unique identifier for this plugin.
const PluginName = "mcp-bridge"

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		ID:          PluginName,
		Name:        "MCP Bridge",
		Kind:        "general",
		Description: "Exposes tools of configured MCP servers as plugin tools",
	}
}

// ServiceName is the name of the service holding the server connections.
const ServiceName = "mcp-connections"

type mcpBridgePlugin struct {
	cfg     *MCPConfig
	manager *Manager
	api     plugin.PluginAPI

	mu sync.Mutex
	// registered maps a server name to the tool names registered for it.
	registered map[string][]string
}

// Factory is the PluginFactory for mcp-bridge. args["config"] may carry a
// *MCPConfig; without it no server is connected.
func Factory(args plugin.PluginArgs, handle plugin.Handle) (plugin.Plugin, error) {
	cfg := NewMCPConfig()
	if raw, ok := args["config"]; ok && raw != nil {
		c, ok := raw.(*MCPConfig)
		if !ok {
			return nil, fmt.Errorf("mcp-bridge: 'config' must be *MCPConfig, got %T", raw)
		}
		cfg = c
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("mcp-bridge: invalid config: %v", errs)
	}
	cfg.complete()
	return &mcpBridgePlugin{
		cfg:        cfg,
		manager:    NewManager(cfg),
		registered: make(map[string][]string),
	}, nil
}

// Name implements plugin.Plugin.
func (p *mcpBridgePlugin) Name() string {
	return PluginName
}

// Init implements plugin.InitPlugin. Tools are registered once the
// connection service has connected the servers.
func (p *mcpBridgePlugin) Init(api plugin.PluginAPI) error {
	p.api = api
	return nil
}

// Services implements plugin.ServiceProvider.
func (p *mcpBridgePlugin) Services() []plugin.ServiceDefinition {
	return []plugin.ServiceDefinition{{
		Name:  ServiceName,
		Start: p.connect,
		Stop:  p.disconnect,
	}}
}

// connect connects every server and registers the tools of the connected
// ones. A server that fails to connect is skipped.
func (p *mcpBridgePlugin) connect(ctx context.Context) error {
	if err := p.manager.Initialize(ctx); err != nil {
		logger.Warn("[MCP] initialization had error: %v", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.registerLocked(p.manager.Tools())
	logger.Info("[MCP] bridged %d tools", n)
	return nil
}

// disconnect unregisters every bridged tool and closes the connections.
func (p *mcpBridgePlugin) disconnect(ctx context.Context) error {
	p.mu.Lock()
	for server := range p.registered {
		p.unregisterLocked(server)
	}
	p.mu.Unlock()

	return p.manager.Close()
}

// reconnect re-establishes one server connection and re-registers its
// tools. It returns the number of tools registered for the server.
func (p *mcpBridgePlugin) reconnect(ctx context.Context, server string) (int, error) {
	srv, ok := p.manager.Server(server)
	if !ok {
		return 0, fmt.Errorf("[MCP] server %q not found", server)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.unregisterLocked(server)
	if err := p.manager.Reconnect(ctx, server); err != nil {
		return 0, err
	}
	return p.registerLocked(srv.Tools()), nil
}

func (p *mcpBridgePlugin) registerLocked(tools []BridgedTool) int {
	n := 0
	for _, bt := range tools {
		spec := plugin.ToolSpec{
			Factory:         tool.NewFactory(bt.Definition, p.constructor(bt)),
			AvailableForLLM: true,
		}
		if err := p.api.RegisterTool(spec); err != nil {
			logger.Warn("[MCP] skipping tool %q of server %q: %v", bt.Name, bt.Server, err)
			continue
		}
		p.registered[bt.Server] = append(p.registered[bt.Server], bt.Name)
		n++
	}
	return n
}

func (p *mcpBridgePlugin) unregisterLocked(server string) {
	for _, name := range p.registered[server] {
		if err := p.api.UnregisterTool(name); err != nil {
			logger.Debug("[MCP] unregister %q: %v", name, err)
		}
	}
	delete(p.registered, server)
}

func (p *mcpBridgePlugin) toolCount(server string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.registered[server])
}

func (p *mcpBridgePlugin) constructor(bt BridgedTool) tool.ConstructorFunc {
	return func(goption.O[tool.Config]) (tool.Tool, error) {
		srv, ok := p.manager.Server(bt.Server)
		if !ok {
			return nil, fmt.Errorf("[MCP] server %q not found", bt.Server)
		}
		return &remoteTool{server: srv, remoteName: bt.RemoteName}, nil
	}
}

type remoteTool struct {
	server     *MCPServer
	remoteName string
}

func (t *remoteTool) Invoke(ctx context.Context, args map[string]any) (*tool.Result, error) {
	payload, err := json.MarshalString(args)
	if err != nil {
		return nil, err
	}
	out, err := t.server.Invoke(ctx, t.remoteName, payload)
	if err != nil {
		return nil, err
	}
	return &tool.Result{Type: "json", Content: out}, nil
}

// CLIRegistrars implements plugin.CLIProvider.
func (p *mcpBridgePlugin) CLIRegistrars() []plugin.CLIRegistrar {
	return []plugin.CLIRegistrar{serversCommand{p: p}}
}

type serversCommand struct {
	p *mcpBridgePlugin
}

func (serversCommand) Name() string { return "mcp-servers" }

func (c serversCommand) RegisterCommands(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "mcp-servers",
		Short: "List the configured MCP servers and their connection state",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := uitable.New()
			table.MaxColWidth = 60
			table.AddRow("NAME", "TRANSPORT", "TARGET", "PREFIX", "STATUS", "TOOLS", "ERROR")
			for _, name := range c.p.manager.ServerNames() {
				srv := c.p.cfg.MCPServers[name]
				target := srv.URL
				if srv.Transport == TransportStdio {
					target = srv.Command
				}
				errText := ""
				if s, ok := c.p.manager.Server(name); ok && s.Err() != nil {
					errText = s.Err().Error()
				}
				table.AddRow(name, srv.Transport, target, srv.ToolPrefix,
					c.p.manager.ServerStatus(name), c.p.toolCount(name), errText)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reconnect NAME",
		Short: "Reconnect an MCP server and re-register its tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.p.reconnect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "server %q reconnected, %d tools registered\n", args[0], n)
			return nil
		},
	})
	parent.AddCommand(cmd)
}
