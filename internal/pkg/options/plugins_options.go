package options

import (
	"fmt"
	"sort"

	"github.com/bytedance/gg/gptr"
	"github.com/bytedance/gg/gslice"
	"github.com/spf13/pflag"
)

// PluginsOptions holds the top-level configuration for plugin system.
type PluginsOptions struct {
	// Enabled controls whether the plugin system is enabled. (default: true)
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Allow lists plugins that are explicitly allowed to be loaded.
	// An empty list allows every plugin not denied.
	Allow []string `json:"allow" mapstructure:"allow"`
	// Deny lists plugins that are explicitly denied to be loaded.
	Deny []string `json:"deny" mapstructure:"deny"`
	// Slots controls which plugin occupies each exclusive slot.
	// For example. {"search": "web-search"}.
	// Special value "none" disables all plugins of the kind
	Slots PluginSlotsConfig `json:"slots" mapstructure:"slots"`
	// Entries holds per-plugin configuration.
	// Key is the plugin ID. (e.g. "web-search", "notes", "sql-query")
	Entries map[string]PluginEntryConfig `json:"entries" mapstructure:"entries"`
}

// PluginSlotsConfig maps slot kind -> desired Plugin ID
type PluginSlotsConfig struct {
	Search string `json:"search" mapstructure:"search"`
	Memory string `json:"memory" mapstructure:"memory"`
}

// PluginEntryConfig holds per-plugin configuration.
type PluginEntryConfig struct {
	Enabled *bool                  `json:"enabled,omitempty" mapstructure:"enabled"`
	Config  map[string]interface{} `json:"config,omitempty" mapstructure:"config"`
}

// NewPluginsOptions returns a new instance of PluginsOptions.
func NewPluginsOptions() *PluginsOptions {
	return &PluginsOptions{
		Enabled: true,
		Allow:   []string{},
		Deny:    []string{},
		Slots: PluginSlotsConfig{
			Search: "web-search",
			Memory: "notes",
		},
		Entries: make(map[string]PluginEntryConfig),
	}
}

// SlotMap returns the slots as kind -> plugin ID, skipping empty values.
func (o *PluginsOptions) SlotMap() map[string]string {
	slots := make(map[string]string, 2)
	if o.Slots.Search != "" {
		slots["search"] = o.Slots.Search
	}
	if o.Slots.Memory != "" {
		slots["memory"] = o.Slots.Memory
	}
	return slots
}

// IsPluginEnabled reports whether the plugin id passes allow, deny and the
// per-entry enabled switch.
func (o *PluginsOptions) IsPluginEnabled(id string) bool {
	if gslice.Contains(o.Deny, id) {
		return false
	}
	if len(o.Allow) > 0 && !gslice.Contains(o.Allow, id) {
		return false
	}
	if entry, ok := o.Entries[id]; ok {
		return gptr.IndirectOr(entry.Enabled, true)
	}
	return true
}

// DisabledPlugins returns the ids among known that must not be loaded, sorted.
func (o *PluginsOptions) DisabledPlugins(known []string) []string {
	var disabled []string
	for _, id := range known {
		if !o.IsPluginEnabled(id) {
			disabled = append(disabled, id)
		}
	}
	sort.Strings(disabled)
	return disabled
}

// Validate checks PluginsOptions fields.
func (o *PluginsOptions) Validate() []error {
	var errs []error

	for kind, id := range o.SlotMap() {
		if id == "none" {
			continue
		}
		if err := validatePluginID(id); err != nil {
			errs = append(errs, fmt.Errorf("%s slot: %w", kind, err))
		}
	}
	for id := range o.Entries {
		if err := validatePluginID(id); err != nil {
			errs = append(errs, fmt.Errorf("entry: %w", err))
		}
	}
	for _, id := range o.Allow {
		if gslice.Contains(o.Deny, id) {
			errs = append(errs, fmt.Errorf("plugin %q is both allowed and denied", id))
		}
	}

	return errs
}

// Valid plugin IDs are DNS-compatible
func validatePluginID(id string) error {
	if id == "" {
		return fmt.Errorf("plugin id is empty")
	}
	for _, c := range id {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_') {
			return fmt.Errorf("invalid character %q in plugin id %q", c, id)
		}
	}
	return nil
}

// AddFlags adds flags for the plugins options.
// Only global-level switches are exposed as CLI flags.
// Per-plugin configuration is done via the configuration file.
func (o *PluginsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "plugins.enabled", o.Enabled, "Enable the plugin system.")
	fs.StringSliceVar(&o.Allow, "plugins.allow", o.Allow, "Plugins allowed to load. Empty allows all.")
	fs.StringSliceVar(&o.Deny, "plugins.deny", o.Deny, "Plugins that must not be loaded.")
	fs.StringVar(&o.Slots.Search, "plugins.slots.search", o.Slots.Search, "Plugin occupying the search slot, or \"none\".")
	fs.StringVar(&o.Slots.Memory, "plugins.slots.memory", o.Slots.Memory, "Plugin occupying the memory slot, or \"none\".")
}
