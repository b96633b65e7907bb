package plugin

import (
	"context"
)

// HookEvent identifies a lifecycle event that plugins can subscribe to.
type HookEvent string

const (
	// HookServerStart is fired when the toolgate server starts.
	HookServerStart HookEvent = "server_start"

	// HookServerStop is fired during graceful shutdown.
	HookServerStop HookEvent = "server_stop"

	// HookPluginLoaded is fired after a plugin finished registration.
	// The data is the plugin name.
	HookPluginLoaded HookEvent = "plugin_loaded"

	// HookPluginUnloaded is fired after a plugin was removed at runtime.
	// The data is the plugin name.
	HookPluginUnloaded HookEvent = "plugin_unloaded"

	// HookConfigReloaded is fired when a plugin configuration changed.
	// The data is the plugin name.
	HookConfigReloaded HookEvent = "config_reloaded"

	// HookBeforeToolCall is fired before a resolved tool is invoked.
	// The data is a *ToolCallEvent.
	HookBeforeToolCall HookEvent = "before_tool_call"

	// HookAfterToolCall is fired after a tool invocation returned.
	// The data is a *ToolCallEvent with Err set on failure.
	HookAfterToolCall HookEvent = "after_tool_call"
)

// ToolCallEvent is the payload of the tool call hooks.
type ToolCallEvent struct {
	Name string
	Args map[string]any
	Err  error
}

// HookHandler is the callback function for lifecycle hooks.
// The data parameter is event-specific; plugins should type-assert as needed.
type HookHandler func(ctx context.Context, data interface{}) error

// HookProvider is an optional plugin interface for plugins that want to
// register hooks declaratively.
type HookProvider interface {
	Plugin
	// Hooks returns a mapping of events to handlers.
	Hooks() map[HookEvent]HookHandler
}

// FireHooks fires all registered hooks for the given event.
// Hooks are called in registration order. If any hook returns an error,
// subsequent hooks are still called but the first error is returned.
func FireHooks(ctx context.Context, registry *Registry, event HookEvent, data interface{}) error {
	handlers := registry.GetHooks(event)
	var firstErr error
	for _, h := range handlers {
		if err := h(ctx, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
