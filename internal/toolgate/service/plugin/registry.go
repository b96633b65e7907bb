package plugin

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/logger"
	"github.com/spf13/cobra"
)

// Registry is the central component registry. It holds the loaded plugins,
// the components they registered keyed by (name, kind), tool factories,
// per-plugin configuration and the ordered list of LLM-available tools.
//
// Thread-safe: all mutations are guarded by a mutex. Readers always get
// copies so a concurrent mutation never tears an observed value.
type Registry struct {
	mu sync.RWMutex

	// plugins holds all loaded plugins, keyed by plugin name.
	plugins map[string]Plugin

	// pluginOrder preserves the registration order of plugins.
	pluginOrder []string

	// definitions holds static metadata for each plugin.
	definitions map[string]Definition

	// configs holds per-plugin configuration, keyed by plugin name.
	// A config may be present before its plugin is loaded.
	configs map[string]tool.Config

	// components indexes every registered component by (kind, name).
	components map[componentKey]*ComponentInfo

	// componentOrder preserves registration order across all kinds.
	componentOrder []componentKey

	// factories holds the tool factories, keyed by tool name.
	factories map[string]tool.Factory

	// llmAvailable is the ordered list of tool names offered to the model.
	llmAvailable []string

	// cliRegistrars holds all CLI registrars in registration order.
	cliRegistrars []cliEntry

	// hooks maps event → ordered list of handlers.
	hooks map[HookEvent][]hookEntry

	// services holds all background services in registration order.
	services []serviceEntry
}

// cliEntry tracks which plugin registered a CLI registrar.
type cliEntry struct {
	pluginName string
	registrar  CLIRegistrar
}

// hookEntry tracks which plugin registered a hook handler.
type hookEntry struct {
	pluginName string
	handler    HookHandler
}

// serviceEntry tracks which plugin registered a service.
type serviceEntry struct {
	pluginName string
	service    ServiceDefinition
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins:     make(map[string]Plugin),
		definitions: make(map[string]Definition),
		configs:     make(map[string]tool.Config),
		components:  make(map[componentKey]*ComponentInfo),
		factories:   make(map[string]tool.Factory),
		hooks:       make(map[HookEvent][]hookEntry),
	}
}

// --- Registration methods (called by pluginAPIImpl and Framework) ---

func (r *Registry) addTool(pluginName string, spec ToolSpec) error {
	if spec.Factory == nil {
		return fmt.Errorf("%w: tool from plugin %q has no factory", errno.ErrInvalidDefinition, pluginName)
	}
	def := spec.Factory.Definition()
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := componentKey{kind: KindTool, name: def.Name}
	if err := r.checkConflictLocked(key, pluginName); err != nil {
		return err
	}
	r.insertLocked(key, &ComponentInfo{
		Name:         def.Name,
		Kind:         KindTool,
		PluginName:   pluginName,
		Description:  def.Description,
		Enabled:      true,
		LLMAvailable: spec.AvailableForLLM,
	})
	r.factories[def.Name] = spec.Factory
	if spec.AvailableForLLM {
		r.llmAvailable = append(r.llmAvailable, def.Name)
	}
	logger.Debug("[Plugin] tool %q registered by plugin %q (llm=%t)", def.Name, pluginName, spec.AvailableForLLM)
	return nil
}

func (r *Registry) addCLI(pluginName string, registrar CLIRegistrar) error {
	name := registrar.Name()
	if err := validateComponentName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := componentKey{kind: KindCommand, name: name}
	if err := r.checkConflictLocked(key, pluginName); err != nil {
		return err
	}
	r.insertLocked(key, &ComponentInfo{
		Name:       name,
		Kind:       KindCommand,
		PluginName: pluginName,
		Enabled:    true,
	})
	r.cliRegistrars = append(r.cliRegistrars, cliEntry{
		pluginName: pluginName,
		registrar:  registrar,
	})
	return nil
}

func (r *Registry) addHook(pluginName string, event HookEvent, handler HookHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks[event] = append(r.hooks[event], hookEntry{
		pluginName: pluginName,
		handler:    handler,
	})
}

func (r *Registry) addService(pluginName string, svc ServiceDefinition) error {
	if err := validateComponentName(svc.Name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := componentKey{kind: KindService, name: svc.Name}
	if err := r.checkConflictLocked(key, pluginName); err != nil {
		return err
	}
	r.insertLocked(key, &ComponentInfo{
		Name:       svc.Name,
		Kind:       KindService,
		PluginName: pluginName,
		Enabled:    true,
	})
	r.services = append(r.services, serviceEntry{
		pluginName: pluginName,
		service:    svc,
	})
	return nil
}

func (r *Registry) checkConflictLocked(key componentKey, pluginName string) error {
	if existing, ok := r.components[key]; ok {
		logger.Warn("[Plugin] %s %q already registered by plugin %q, skipping registration from %q",
			key.kind, key.name, existing.PluginName, pluginName)
		return fmt.Errorf("%w: %s %q owned by plugin %q", errno.ErrComponentConflict, key.kind, key.name, existing.PluginName)
	}
	return nil
}

func (r *Registry) insertLocked(key componentKey, info *ComponentInfo) {
	r.components[key] = info
	r.componentOrder = append(r.componentOrder, key)
}

func validateComponentName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: component name is empty", errno.ErrInvalidName)
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("%w: component name %q must not contain '.'", errno.ErrInvalidName, name)
	}
	return nil
}

// --- Mutation ---

// RemoveComponent drops a single component. A removed tool is no longer
// resolvable and no longer listed as LLM-available.
func (r *Registry) RemoveComponent(name string, kind ComponentKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := componentKey{kind: kind, name: name}
	if _, ok := r.components[key]; !ok {
		return fmt.Errorf("%w: %s %q", errno.ErrComponentNotFound, kind, name)
	}
	r.removeLocked(key)
	logger.Info("[Plugin] removed %s %q", kind, name)
	return nil
}

func (r *Registry) removeLocked(key componentKey) {
	delete(r.components, key)
	r.componentOrder = slices.DeleteFunc(r.componentOrder, func(k componentKey) bool { return k == key })

	switch key.kind {
	case KindTool:
		delete(r.factories, key.name)
		r.llmAvailable = slices.DeleteFunc(r.llmAvailable, func(n string) bool { return n == key.name })
	case KindService:
		r.services = slices.DeleteFunc(r.services, func(e serviceEntry) bool { return e.service.Name == key.name })
	case KindCommand:
		r.cliRegistrars = slices.DeleteFunc(r.cliRegistrars, func(e cliEntry) bool { return e.registrar.Name() == key.name })
	}
}

// EnableComponent switches a component on. An LLM-available tool is appended
// to the end of the LLM-available listing.
func (r *Registry) EnableComponent(name string, kind ComponentKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.components[componentKey{kind: kind, name: name}]
	if !ok {
		return fmt.Errorf("%w: %s %q", errno.ErrComponentNotFound, kind, name)
	}
	if info.Enabled {
		return nil
	}
	info.Enabled = true
	if kind == KindTool && info.LLMAvailable {
		r.llmAvailable = append(r.llmAvailable, name)
	}
	logger.Info("[Plugin] enabled %s %q", kind, name)
	return nil
}

// DisableComponent switches a component off. A disabled tool stays
// resolvable by name but is hidden from the LLM-available listing.
func (r *Registry) DisableComponent(name string, kind ComponentKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.components[componentKey{kind: kind, name: name}]
	if !ok {
		return fmt.Errorf("%w: %s %q", errno.ErrComponentNotFound, kind, name)
	}
	if !info.Enabled {
		return nil
	}
	info.Enabled = false
	if kind == KindTool {
		r.llmAvailable = slices.DeleteFunc(r.llmAvailable, func(n string) bool { return n == name })
	}
	logger.Info("[Plugin] disabled %s %q", kind, name)
	return nil
}

// SetPluginConfig stores a private copy of cfg for the plugin.
func (r *Registry) SetPluginConfig(pluginName string, cfg tool.Config) {
	cloned := cfg.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[pluginName] = cloned
}

// DeletePluginConfig drops the plugin configuration. Later resolutions see
// the config as absent.
func (r *Registry) DeletePluginConfig(pluginName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.configs, pluginName)
}

// UnregisterPlugin drops a plugin together with every component, hook and
// config it owns. It returns the names of the removed tools.
func (r *Registry) UnregisterPlugin(pluginName string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[pluginName]; !ok {
		return nil, fmt.Errorf("%w: %q", errno.ErrPluginNotFound, pluginName)
	}

	var owned []componentKey
	for _, key := range r.componentOrder {
		if r.components[key].PluginName == pluginName {
			owned = append(owned, key)
		}
	}
	var removedTools []string
	for _, key := range owned {
		r.removeLocked(key)
		if key.kind == KindTool {
			removedTools = append(removedTools, key.name)
		}
	}
	for event, entries := range r.hooks {
		r.hooks[event] = slices.DeleteFunc(entries, func(e hookEntry) bool { return e.pluginName == pluginName })
	}

	delete(r.plugins, pluginName)
	delete(r.definitions, pluginName)
	delete(r.configs, pluginName)
	r.pluginOrder = slices.DeleteFunc(r.pluginOrder, func(n string) bool { return n == pluginName })

	logger.Info("[Plugin] unregistered plugin %q (%d components)", pluginName, len(owned))
	return removedTools, nil
}

// --- Lookup contract used by the tool resolver ---

// ComponentInfo returns a copy of the metadata registered under (name, kind).
func (r *Registry) ComponentInfo(name string, kind ComponentKind) (ComponentInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.components[componentKey{kind: kind, name: name}]
	if !ok {
		return ComponentInfo{}, false
	}
	return *info, true
}

// ComponentFactory returns the factory for a component. Only tools carry
// factories; other kinds always miss.
func (r *Registry) ComponentFactory(name string, kind ComponentKind) (tool.Factory, bool) {
	if kind != KindTool {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// PluginConfig returns a private copy of the plugin configuration.
func (r *Registry) PluginConfig(pluginName string) (tool.Config, bool) {
	r.mu.RLock()
	cfg, ok := r.configs[pluginName]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return cfg.Clone(), true
}

// LLMAvailableTools returns the enabled LLM-available tools in the order
// they became available.
func (r *Registry) LLMAvailableTools() []NamedFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]NamedFactory, 0, len(r.llmAvailable))
	for _, name := range r.llmAvailable {
		result = append(result, NamedFactory{Name: name, Factory: r.factories[name]})
	}
	return result
}

// --- Query methods ---

// Components returns the metadata of every component of the given kind in
// registration order. An empty kind lists all kinds.
func (r *Registry) Components(kind ComponentKind) []ComponentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]ComponentInfo, 0, len(r.componentOrder))
	for _, key := range r.componentOrder {
		if kind != "" && key.kind != kind {
			continue
		}
		result = append(result, *r.components[key])
	}
	return result
}

// ToolsByPlugin returns the tools registered by one plugin.
func (r *Registry) ToolsByPlugin(pluginName string) []ComponentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []ComponentInfo
	for _, key := range r.componentOrder {
		info := r.components[key]
		if key.kind == KindTool && info.PluginName == pluginName {
			result = append(result, *info)
		}
	}
	return result
}

// GetPlugin returns a loaded plugin by name.
func (r *Registry) GetPlugin(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// PluginDefinition returns the static definition a plugin was loaded with.
func (r *Registry) PluginDefinition(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[name]
	return def, ok
}

// GetHooks returns all handlers registered for the given event.
func (r *Registry) GetHooks(event HookEvent) []HookHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.hooks[event]
	handlers := make([]HookHandler, 0, len(entries))
	for _, e := range entries {
		handlers = append(handlers, e.handler)
	}
	return handlers
}

// GetServices returns all registered background services.
func (r *Registry) GetServices() []ServiceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]ServiceDefinition, 0, len(r.services))
	for _, e := range r.services {
		result = append(result, e.service)
	}
	return result
}

// servicesOf returns the services registered by one plugin.
func (r *Registry) servicesOf(pluginName string) []ServiceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []ServiceDefinition
	for _, e := range r.services {
		if e.pluginName == pluginName {
			result = append(result, e.service)
		}
	}
	return result
}

// RegisterCLICommands registers all plugin-provided CLI subcommands
// into the given cobra parent command.
func (r *Registry) RegisterCLICommands(parent *cobra.Command) {
	r.mu.RLock()
	entries := slices.Clone(r.cliRegistrars)
	r.mu.RUnlock()

	for _, entry := range entries {
		entry.registrar.RegisterCommands(parent)
	}
}

// PluginNames returns the names of all loaded plugins in registration order.
func (r *Registry) PluginNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.pluginOrder))
	copy(result, r.pluginOrder)
	return result
}

// Len returns the number of loaded plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Stats summarizes the registry.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Plugins:           len(r.plugins),
		Components:        len(r.components),
		ByKind:            make(map[ComponentKind]int),
		LLMAvailableTools: len(r.llmAvailable),
	}
	for key, info := range r.components {
		s.ByKind[key.kind]++
		if info.Enabled {
			s.EnabledComponents++
		}
	}
	return s
}

// --- Internal registration ---

// registerPlugin adds a plugin to the registry. Called by Framework.
func (r *Registry) registerPlugin(name string, def Definition, p Plugin) error {
	if err := validateComponentName(name); err != nil {
		return fmt.Errorf("plugin name: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("%w: %q", errno.ErrPluginExists, name)
	}

	r.plugins[name] = p
	r.definitions[name] = def
	r.pluginOrder = append(r.pluginOrder, name)
	return nil
}
