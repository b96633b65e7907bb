package plugin

import (
	"fmt"
	"sync"

	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
)

// RuntimeAPI is the bridge between plugins and core runtime modules.
// Plugins access core capabilities through this interface.
type RuntimeAPI interface {
	// Tools returns the tool resolver. Returns nil until the resolver is attached.
	Tools() ToolLookup
}

// runtimeAPIImpl implements RuntimeAPI. The lookup is attached after the
// framework is built because the resolver reads the framework's registry.
type runtimeAPIImpl struct {
	mu     sync.RWMutex
	lookup ToolLookup
}

var _ RuntimeAPI = (*runtimeAPIImpl)(nil)

// NewRuntimeAPI creates a RuntimeAPI with the given ToolLookup.
// lookup may be nil and attached later by the framework.
func NewRuntimeAPI(lookup ToolLookup) RuntimeAPI {
	return &runtimeAPIImpl{lookup: lookup}
}

func (r *runtimeAPIImpl) Tools() ToolLookup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup
}

func (r *runtimeAPIImpl) setTools(lookup ToolLookup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup = lookup
}

// PluginAPI is the registration interface given to plugins during Init().
// Through this API, plugins register their capabilities: Tool, CLI, Hook, Service.
type PluginAPI interface {
	// PluginName returns the name registrations are attributed to.
	PluginName() string

	// RegisterTool registers a tool. Fails on a name conflict or an invalid definition.
	RegisterTool(spec ToolSpec) error

	// UnregisterTool removes a tool previously registered by the same plugin.
	UnregisterTool(name string) error

	// RegisterCLI registers a CLI subcommand registrar.
	RegisterCLI(registrar CLIRegistrar) error

	// RegisterHook registers a lifecycle event hook.
	RegisterHook(event HookEvent, handler HookHandler)

	// RegisterService registers a background service with Start/Stop lifecycle.
	RegisterService(svc ServiceDefinition) error
}

// pluginAPIImpl implements PluginAPI, collecting registrations into the Registry.
type pluginAPIImpl struct {
	registry   *Registry
	pluginName string
}

var _ PluginAPI = (*pluginAPIImpl)(nil)

func newPluginAPI(registry *Registry, pluginName string) *pluginAPIImpl {
	return &pluginAPIImpl{
		registry:   registry,
		pluginName: pluginName,
	}
}

func (a *pluginAPIImpl) PluginName() string {
	return a.pluginName
}

func (a *pluginAPIImpl) RegisterTool(spec ToolSpec) error {
	return a.registry.addTool(a.pluginName, spec)
}

func (a *pluginAPIImpl) UnregisterTool(name string) error {
	info, ok := a.registry.ComponentInfo(name, KindTool)
	if !ok {
		return fmt.Errorf("%w: tool %q", errno.ErrComponentNotFound, name)
	}
	if info.PluginName != a.pluginName {
		return fmt.Errorf("tool %q is owned by plugin %q, not %q", name, info.PluginName, a.pluginName)
	}
	return a.registry.RemoveComponent(name, KindTool)
}

func (a *pluginAPIImpl) RegisterCLI(registrar CLIRegistrar) error {
	return a.registry.addCLI(a.pluginName, registrar)
}

func (a *pluginAPIImpl) RegisterHook(event HookEvent, handler HookHandler) {
	a.registry.addHook(a.pluginName, event, handler)
}

func (a *pluginAPIImpl) RegisterService(svc ServiceDefinition) error {
	return a.registry.addService(a.pluginName, svc)
}

// handleImpl implements Handle, providing plugins access to runtime resources.
type handleImpl struct {
	runtimeAPI RuntimeAPI
}

var _ Handle = (*handleImpl)(nil)

func newHandle(runtimeAPI RuntimeAPI) *handleImpl {
	return &handleImpl{runtimeAPI: runtimeAPI}
}

func (h *handleImpl) RuntimeAPI() RuntimeAPI {
	return h.runtimeAPI
}
