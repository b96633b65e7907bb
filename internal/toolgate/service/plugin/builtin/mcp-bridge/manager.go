package mcpbridge

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kiosk404/toolgate/pkg/logger"
)

// Manager manages multiple MCP server connections.
type Manager struct {
	mu      sync.RWMutex
	servers map[string]*MCPServer
	order   []string
}

// NewManager creates a manager for the configured servers. Servers are
// kept in name order.
func NewManager(cfg *MCPConfig) *Manager {
	m := &Manager{
		servers: make(map[string]*MCPServer, len(cfg.MCPServers)),
		order:   make([]string, 0, len(cfg.MCPServers)),
	}
	for name, srvCfg := range cfg.MCPServers {
		m.servers[name] = NewMCPServer(name, srvCfg)
		m.order = append(m.order, name)
	}
	sort.Strings(m.order)
	return m
}

// Initialize connects to all configured MCP servers concurrently.
// Individual server failures are logged but don't prevent other servers from connecting.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.servers) == 0 {
		logger.Info("[MCP] no MCP servers configured, skipping initialization")
		return nil
	}

	logger.Info("[MCP] initializing %d MCP servers...", len(m.servers))

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var errs []error

	for _, srv := range m.servers {
		wg.Add(1)
		go func(s *MCPServer) {
			defer wg.Done()
			if err := s.Connect(ctx); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
				logger.Warn("[MCP] server %q failed to connect: %v", s.Name(), err)
			}
		}(srv)
	}

	wg.Wait()

	connected := 0
	for _, srv := range m.servers {
		if srv.Status() == ServerStatusConnected {
			connected++
		}
	}

	logger.Info("[MCP] initialization complete: %d/%d servers connected", connected, len(m.servers))

	if len(errs) > 0 && connected == 0 {
		return fmt.Errorf("[MCP] all servers failed to connect (%d errors)", len(errs))
	}

	return nil
}

// Tools aggregates the bridged tools of all connected servers.
func (m *Manager) Tools() []BridgedTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []BridgedTool
	for _, name := range m.order {
		srv := m.servers[name]
		if srv.Status() == ServerStatusConnected {
			all = append(all, srv.Tools()...)
		}
	}
	return all
}

// Server returns a server by name.
func (m *Manager) Server(name string) (*MCPServer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	srv, ok := m.servers[name]
	return srv, ok
}

// Reconnect re-establishes the connection to a specific server.
func (m *Manager) Reconnect(ctx context.Context, serverName string) error {
	srv, ok := m.Server(serverName)
	if !ok {
		return fmt.Errorf("[MCP] server %q not found", serverName)
	}
	return srv.Reconnect(ctx)
}

// ServerNames returns the names of all configured servers.
func (m *Manager) ServerNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, len(m.order))
	copy(result, m.order)
	return result
}

// ServerStatus returns the status of a specific server.
func (m *Manager) ServerStatus(serverName string) ServerStatus {
	srv, ok := m.Server(serverName)
	if !ok {
		return ServerStatusDisconnected
	}
	return srv.Status()
}

// Close closes all MCP server connections.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, srv := range m.servers {
		srv.Close()
	}

	logger.Info("[MCP] all servers closed")
	return nil
}
