package plugin

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bytedance/gg/goption"
	"github.com/bytedance/gg/gslice"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/logger"
)

// Framework is the core plugin framework that manages plugin lifecycle.
// It orchestrates: plugin loading → slot resolution → Init → Start → Stop,
// and the runtime mutations (unload, config update) that follow.
//
// The Framework owns the Registry that the tool resolver reads.
type Framework struct {
	registry   *Registry
	handle     *handleImpl
	runtime    *runtimeAPIImpl
	slotConfig SlotConfig
	configs    map[string]tool.Config
	disabled   []string

	factories    map[string]registeredFactory
	factoryOrder []string

	mu      sync.Mutex
	started map[string]bool
}

// registeredFactory pairs a PluginFactory with its Definition and args.
type registeredFactory struct {
	definition Definition
	factory    PluginFactory
	args       PluginArgs
}

// Config holds the configuration for creating a Framework.
// Follows the Config → Complete() → New() pattern.
type Config struct {
	// SlotConfig controls which plugins are active per slot kind.
	SlotConfig SlotConfig

	// PluginConfigs holds the initial configuration per plugin ID.
	PluginConfigs map[string]tool.Config

	// Disabled lists plugin IDs that must not be loaded.
	Disabled []string

	// ToolLookup is exposed to plugins through RuntimeAPI.Tools().
	// May be nil and attached later with SetToolLookup.
	ToolLookup ToolLookup
}

// CompletedConfig is the validated and completed framework configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills in defaults for the framework configuration.
func (c *Config) Complete() CompletedConfig {
	if c.SlotConfig == nil {
		c.SlotConfig = make(SlotConfig)
	}
	if c.PluginConfigs == nil {
		c.PluginConfigs = make(map[string]tool.Config)
	}
	return CompletedConfig{c}
}

// New creates a new Framework from the completed configuration.
func (c CompletedConfig) New() *Framework {
	runtime := &runtimeAPIImpl{lookup: c.ToolLookup}
	return &Framework{
		registry:   NewRegistry(),
		handle:     newHandle(runtime),
		runtime:    runtime,
		slotConfig: c.SlotConfig,
		configs:    c.PluginConfigs,
		disabled:   c.Disabled,
		factories:  make(map[string]registeredFactory),
		started:    make(map[string]bool),
	}
}

// --- Factory Registration (pre-init phase) ---

// RegisterFactory registers a PluginFactory with its Definition and optional args.
//
// Factories are registered before Init(); the Framework instantiates plugins
// from them during Init() in registration order.
func (f *Framework) RegisterFactory(def Definition, factory PluginFactory, args PluginArgs) error {
	if _, exists := f.factories[def.ID]; exists {
		return fmt.Errorf("plugin factory %q is already registered", def.ID)
	}
	f.factories[def.ID] = registeredFactory{
		definition: def,
		factory:    factory,
		args:       args,
	}
	f.factoryOrder = append(f.factoryOrder, def.ID)
	return nil
}

// SetToolLookup attaches the tool resolver exposed through RuntimeAPI.Tools().
func (f *Framework) SetToolLookup(lookup ToolLookup) {
	f.runtime.setTools(lookup)
}

// --- Lifecycle ---

// Init instantiates all registered factories, resolves slots, and calls
// Init/Register on each plugin:
// 1. Iterate factories in registration order
// 2. Skip disabled plugins and resolve slot constraints
// 3. Instantiate plugin via factory
// 4. Store the plugin configuration
// 5. Call InitPlugin.Init() if implemented
// 6. Auto-probe for ToolProvider/HookProvider/ServiceProvider/CLIProvider interfaces
func (f *Framework) Init(ctx context.Context) error {
	logger.Info("[Plugin] initializing framework with %d plugin factories", len(f.factories))

	activeSlots := make(map[string]string)

	for _, id := range f.factoryOrder {
		entry := f.factories[id]
		def := entry.definition

		if gslice.Contains(f.disabled, def.ID) {
			logger.Info("[Plugin] skipping plugin %q: disabled by configuration", def.ID)
			continue
		}

		// Step 1: Slot resolution.
		if err := ResolveSlot(def, activeSlots, f.slotConfig); err != nil {
			logger.Info("[Plugin] skipping plugin %q: %v", def.ID, err)
			continue
		}

		// Step 2: Instantiate via factory.
		p, err := entry.factory(entry.args, f.handle)
		if err != nil {
			return fmt.Errorf("failed to create plugin %q: %w", def.ID, err)
		}

		// Step 3: Register in registry.
		if err := f.registry.registerPlugin(p.Name(), def, p); err != nil {
			return fmt.Errorf("failed to register plugin %q: %w", def.ID, err)
		}
		if cfg, ok := f.configs[def.ID]; ok {
			f.registry.SetPluginConfig(p.Name(), cfg)
		}

		if def.Kind != "" && def.Kind != "general" {
			activeSlots[def.Kind] = def.ID
		}

		// Step 4: Call InitPlugin.Init() if implemented.
		if initP, ok := p.(InitPlugin); ok {
			api := newPluginAPI(f.registry, p.Name())
			if err := initP.Init(api); err != nil {
				return fmt.Errorf("plugin %q Init() failed: %w", def.ID, err)
			}
		}

		// Step 5: Auto-probe interfaces and register capabilities.
		f.probeAndRegister(p)

		if err := FireHooks(ctx, f.registry, HookPluginLoaded, p.Name()); err != nil {
			logger.Warn("[Plugin] plugin_loaded hook error: %v", err)
		}
		logger.Info("[Plugin] loaded plugin %q (kind=%s)", def.ID, def.Kind)
	}

	stats := f.registry.Stats()
	logger.Info("[Plugin] framework initialized: %d plugins, %d tools, %d services",
		stats.Plugins, stats.ByKind[KindTool], stats.ByKind[KindService])
	return nil
}

// probeAndRegister checks if a plugin implements optional provider interfaces
// and auto-registers their capabilities. A rejected component is skipped
// without failing the plugin.
func (f *Framework) probeAndRegister(p Plugin) {
	name := p.Name()

	if tp, ok := p.(ToolProvider); ok {
		for _, spec := range tp.Tools() {
			if err := f.registry.addTool(name, spec); err != nil {
				logger.Warn("[Plugin] plugin %q: skipping tool: %v", name, err)
			}
		}
	}

	if hp, ok := p.(HookProvider); ok {
		for event, handler := range hp.Hooks() {
			f.registry.addHook(name, event, handler)
		}
	}

	if sp, ok := p.(ServiceProvider); ok {
		for _, svc := range sp.Services() {
			if err := f.registry.addService(name, svc); err != nil {
				logger.Warn("[Plugin] plugin %q: skipping service: %v", name, err)
			}
		}
	}

	if cp, ok := p.(CLIProvider); ok {
		for _, registrar := range cp.CLIRegistrars() {
			if err := f.registry.addCLI(name, registrar); err != nil {
				logger.Warn("[Plugin] plugin %q: skipping cli: %v", name, err)
			}
		}
	}
}

// Start starts all plugin services and fires the ServerStart hook.
func (f *Framework) Start(ctx context.Context) error {
	for _, name := range f.registry.PluginNames() {
		p, _ := f.registry.GetPlugin(name)
		if lp, ok := p.(LifecyclePlugin); ok {
			logger.Info("[Plugin] starting lifecycle plugin %q", name)
			if err := lp.Start(ctx); err != nil {
				return fmt.Errorf("plugin %q Start() failed: %w", name, err)
			}
		}
		f.markStarted(name, true)
	}

	services := f.registry.GetServices()
	for _, svc := range services {
		logger.Info("[Plugin] starting service %q", svc.Name)
		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("service %q Start() failed: %w", svc.Name, err)
		}
	}

	if err := FireHooks(ctx, f.registry, HookServerStart, nil); err != nil {
		logger.Warn("[Plugin] server_start hook error: %v", err)
	}

	return nil
}

// Stop stops all plugin services and fires the ServerStop hook.
func (f *Framework) Stop(ctx context.Context) error {
	if err := FireHooks(ctx, f.registry, HookServerStop, nil); err != nil {
		logger.Warn("[Plugin] server_stop hook error: %v", err)
	}

	// Stop registered services (reverse order).
	services := f.registry.GetServices()
	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]
		logger.Info("[Plugin] stopping service %q", svc.Name)
		if err := svc.Stop(ctx); err != nil {
			logger.Warn("[Plugin] service %q Stop() error: %v", svc.Name, err)
		}
	}

	// Stop LifecyclePlugin plugins (reverse order).
	names := f.registry.PluginNames()
	for i := len(names) - 1; i >= 0; i-- {
		f.stopPlugin(ctx, names[i])
	}

	return nil
}

func (f *Framework) stopPlugin(ctx context.Context, name string) {
	if !f.isStarted(name) {
		return
	}
	p, _ := f.registry.GetPlugin(name)
	if lp, ok := p.(LifecyclePlugin); ok {
		logger.Info("[Plugin] stopping lifecycle plugin %q", name)
		if err := lp.Stop(ctx); err != nil {
			logger.Warn("[Plugin] plugin %q Stop() error: %v", name, err)
		}
	}
	f.markStarted(name, false)
}

// UnloadPlugin stops a plugin and drops everything it registered. In-flight
// tool instances built before the call are unaffected; later resolutions of
// its tools miss.
func (f *Framework) UnloadPlugin(ctx context.Context, name string) error {
	if _, ok := f.registry.GetPlugin(name); !ok {
		return fmt.Errorf("unload plugin %q: %w", name, errno.ErrPluginNotFound)
	}

	for _, svc := range f.registry.servicesOf(name) {
		if f.isStarted(name) {
			if err := svc.Stop(ctx); err != nil {
				logger.Warn("[Plugin] service %q Stop() error: %v", svc.Name, err)
			}
		}
	}
	f.stopPlugin(ctx, name)

	removed, err := f.registry.UnregisterPlugin(name)
	if err != nil {
		return fmt.Errorf("unload plugin %q: %w", name, err)
	}
	logger.Info("[Plugin] unloaded plugin %q, removed tools %v", name, removed)

	if err := FireHooks(ctx, f.registry, HookPluginUnloaded, name); err != nil {
		logger.Warn("[Plugin] plugin_unloaded hook error: %v", err)
	}
	return nil
}

// UpdatePluginConfig replaces or clears the configuration of a plugin.
// Instances built afterwards observe the new value.
func (f *Framework) UpdatePluginConfig(ctx context.Context, pluginName string, cfg goption.O[tool.Config]) {
	if c, ok := cfg.Get(); ok {
		f.registry.SetPluginConfig(pluginName, c)
	} else {
		f.registry.DeletePluginConfig(pluginName)
	}
	logger.Info("[Plugin] configuration of plugin %q updated", pluginName)

	if err := FireHooks(ctx, f.registry, HookConfigReloaded, pluginName); err != nil {
		logger.Warn("[Plugin] config_reloaded hook error: %v", err)
	}
}

func (f *Framework) markStarted(name string, started bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if started {
		f.started[name] = true
	} else {
		delete(f.started, name)
	}
}

func (f *Framework) isStarted(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started[name]
}

// --- Accessors ---

// Registry returns the underlying component registry.
// Used by the resolver and the server to query registered components.
func (f *Framework) Registry() *Registry {
	return f.registry
}

// Handle returns the framework Handle for external use.
func (f *Framework) Handle() Handle {
	return f.handle
}

// FactoryIDs returns the IDs of the registered plugin factories in order.
func (f *Framework) FactoryIDs() []string {
	return slices.Clone(f.factoryOrder)
}
