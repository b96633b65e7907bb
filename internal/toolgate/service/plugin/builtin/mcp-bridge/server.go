package mcpbridge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	mcpTool "github.com/cloudwego/eino-ext/components/tool/mcp"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/logger"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// ServerStatus represents the connection state of an MCP server.
type ServerStatus int

const (
	ServerStatusDisconnected ServerStatus = iota
	ServerStatusConnecting
	ServerStatusConnected
	ServerStatusError
)

func (s ServerStatus) String() string {
	switch s {
	case ServerStatusDisconnected:
		return "Disconnected"
	case ServerStatusConnecting:
		return "Connecting"
	case ServerStatusConnected:
		return "Connected"
	case ServerStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// BridgedTool is one MCP tool exposed under a registry-safe name.
type BridgedTool struct {
	// Name is the registered tool name.
	Name string
	// RemoteName is the tool name on the MCP server.
	RemoteName string
	Server     string
	Definition tool.Definition
}

// MCPServer represents an MCP server connection.
type MCPServer struct {
	name   string
	config *ServerConfig

	mu       sync.RWMutex
	client   *client.Client
	bridged  []BridgedTool
	invokers map[string]einotool.InvokableTool
	status   ServerStatus
	err      error
}

// NewMCPServer creates a new MCP server instance.
func NewMCPServer(name string, cfg *ServerConfig) *MCPServer {
	return &MCPServer{
		name:   name,
		status: ServerStatusDisconnected,
		config: cfg,
	}
}

// Name returns the server name.
func (s *MCPServer) Name() string {
	return s.name
}

// Status returns the current connection status.
func (s *MCPServer) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the last connection error.
func (s *MCPServer) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Tools returns the discovered tools (empty if not connected).
func (s *MCPServer) Tools() []BridgedTool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]BridgedTool, len(s.bridged))
	copy(result, s.bridged)
	return result
}

// Connect establishes a connection to the MCP server and discovers tools.
func (s *MCPServer) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = ServerStatusConnecting
	s.err = nil

	cli, err := s.createClient(ctx)
	if err != nil {
		return s.failLocked(fmt.Errorf("[MCP] server %q: failed to create client: %w", s.name, err))
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "toolgate",
		Version: "0.1.0",
	}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		cli.Close()
		return s.failLocked(fmt.Errorf("[MCP] server %q: failed to initialize: %w", s.name, err))
	}

	listed, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		cli.Close()
		return s.failLocked(fmt.Errorf("[MCP] server %q: failed to list tools: %w", s.name, err))
	}

	// Invocation goes through eino-ext, which handles argument and result encoding.
	tools, err := mcpTool.GetTools(ctx, &mcpTool.Config{
		Cli:          cli,
		ToolNameList: s.config.ToolFilter,
	})
	if err != nil {
		cli.Close()
		return s.failLocked(fmt.Errorf("[MCP] server %q: failed to get tools: %w", s.name, err))
	}
	invokers := make(map[string]einotool.InvokableTool, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			continue
		}
		if inv, ok := t.(einotool.InvokableTool); ok {
			invokers[info.Name] = inv
		}
	}

	var bridged []BridgedTool
	for _, remote := range listed.Tools {
		if _, ok := invokers[remote.Name]; !ok {
			continue
		}
		name := BridgedName(s.config.ToolPrefix, remote.Name)
		bridged = append(bridged, BridgedTool{
			Name:       name,
			RemoteName: remote.Name,
			Server:     s.name,
			Definition: DefinitionFromMCP(name, remote),
		})
	}

	s.client = cli
	s.invokers = invokers
	s.bridged = bridged
	s.status = ServerStatusConnected
	logger.Info("[MCP] server %q connected, %d tools discovered", s.name, len(bridged))
	return nil
}

func (s *MCPServer) failLocked(err error) error {
	s.status = ServerStatusError
	s.err = err
	return err
}

// Invoke calls a remote tool with JSON arguments.
func (s *MCPServer) Invoke(ctx context.Context, remoteName, argumentsInJSON string) (string, error) {
	s.mu.RLock()
	status := s.status
	inv, ok := s.invokers[remoteName]
	s.mu.RUnlock()

	if status != ServerStatusConnected {
		return "", fmt.Errorf("[MCP] server %q: %w (status %s)", s.name, errno.ErrNotStarted, status)
	}
	if !ok {
		return "", fmt.Errorf("[MCP] server %q: %w: %q", s.name, errno.ErrToolNotFound, remoteName)
	}
	return inv.InvokableRun(ctx, argumentsInJSON)
}

// Reconnect closes the current connection and establishes a new one.
func (s *MCPServer) Reconnect(ctx context.Context) error {
	s.Close()
	return s.Connect(ctx)
}

// Close closes the current connection and releases resources.
func (s *MCPServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Warn("[MCP] server %q: failed to close client: %v", s.name, err)
		}
		s.client = nil
	}

	s.bridged = nil
	s.invokers = nil
	s.status = ServerStatusDisconnected
	s.err = nil
}

// createClient creates a transport-specific MCP client.
// Must be called with s.mu held.
func (s *MCPServer) createClient(ctx context.Context) (*client.Client, error) {
	switch s.config.Transport {
	case TransportStdio, "":
		return client.NewStdioMCPClient(s.config.Command, s.config.Env, s.config.Args...)
	case TransportSSE:
		cli, err := client.NewSSEMCPClient(s.config.URL)
		if err != nil {
			return nil, err
		}
		if err := cli.Start(ctx); err != nil {
			return nil, err
		}
		return cli, nil
	case TransportStreamableHTTP:
		cli, err := client.NewStreamableHttpClient(s.config.URL)
		if err != nil {
			return nil, err
		}
		if err := cli.Start(ctx); err != nil {
			return nil, err
		}
		return cli, nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", s.config.Transport)
	}
}

// BridgedName builds a registry-safe tool name. '.' is not allowed in
// component names and is replaced with '_'.
func BridgedName(prefix, remote string) string {
	return strings.ReplaceAll(prefix+remote, ".", "_")
}

// DefinitionFromMCP converts an MCP tool schema into a tool definition.
// Properties are listed in name order; unknown types fall back to string.
func DefinitionFromMCP(name string, remote mcp.Tool) tool.Definition {
	def := tool.Definition{Name: name, Description: remote.Description}
	if def.Description == "" {
		def.Description = "MCP tool " + remote.Name
	}

	required := make(map[string]bool, len(remote.InputSchema.Required))
	for _, r := range remote.InputSchema.Required {
		required[r] = true
	}

	names := make([]string, 0, len(remote.InputSchema.Properties))
	for pname := range remote.InputSchema.Properties {
		names = append(names, pname)
	}
	sort.Strings(names)

	for _, pname := range names {
		prop, _ := remote.InputSchema.Properties[pname].(map[string]any)
		param := tool.Param{
			Name:     pname,
			Type:     paramType(prop["type"]),
			Required: required[pname],
		}
		if desc, ok := prop["description"].(string); ok {
			param.Description = desc
		}
		switch enum := prop["enum"].(type) {
		case []string:
			param.Enum = append(param.Enum, enum...)
		case []any:
			for _, e := range enum {
				param.Enum = append(param.Enum, fmt.Sprint(e))
			}
		}
		if param.Type == tool.Array {
			if items, ok := prop["items"].(map[string]any); ok {
				param.Items = paramType(items["type"])
			}
		}
		def.Parameters = append(def.Parameters, param)
	}
	return def
}

func paramType(v any) tool.ParamType {
	s, _ := v.(string)
	t := tool.ParamType(s)
	if !t.Valid() {
		return tool.String
	}
	return t
}
