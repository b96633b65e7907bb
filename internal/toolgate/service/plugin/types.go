package plugin

import (
	"context"
)

// Plugin is the fundamental interface that all plugins must implement.
// Each Plugin has a static definition and registers its capabilities
// via the PluginAPI during the Init phase.
type Plugin interface {
	// Name returns the unique identifier of this plugin.
	// Must not contain '.'; lowercase with hyphens by convention.
	Name() string
}

// InitPlugin is an optional interface for plugins that need initialization
// with access to the PluginAPI, called during framework setup.
type InitPlugin interface {
	Plugin

	// Init is called after the plugin is instantiated, allowing it
	// to register Tool/CLI/Hook/Service capabilities via the PluginAPI.
	Init(api PluginAPI) error
}

// LifecyclePlugin is an optional interface for plugins that have
// start/stop lifecycle.
type LifecyclePlugin interface {
	Plugin

	// Start is called after all plugins have been initialized.
	Start(ctx context.Context) error

	// Stop is called when the framework is shutting down or the plugin
	// is unloaded, before its registrations are dropped.
	Stop(ctx context.Context) error
}

// PluginFactory creates a new instance of a plugin.
// It is called during framework initialization.
type PluginFactory func(args PluginArgs, handle Handle) (Plugin, error)

// PluginArgs is a map of arguments passed to the PluginFactory.
type PluginArgs map[string]interface{}

// Definition is the static metadata for a plugin.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind,omitempty"`
	Description string `json:"description,omitempty"`
}

// Handle is the interface that plugins use to access the framework's runtime API.
// It is passed to the PluginFactory during plugin instantiation.
type Handle interface {
	// RuntimeAPI returns the framework's runtime API.
	RuntimeAPI() RuntimeAPI
}
