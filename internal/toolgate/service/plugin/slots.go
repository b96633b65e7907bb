package plugin

import (
	"fmt"

	"github.com/kiosk404/toolgate/pkg/logger"
)

// SlotConfig maps slot kind → desired plugin ID.
// For example: {"search": "web-search"} means only the "web-search" plugin
// should be active for the "search" slot.
//
// Special values:
//   - "none": disable all plugins of this kind
//   - "": use the default plugin for this kind
type SlotConfig map[string]string

// slotDefaults defines the default active plugin for each slot kind.
var slotDefaults = map[string]string{
	"search": "web-search",
	"memory": "notes",
}

// ResolveSlot determines whether a plugin should be activated based on
// its Kind and the slot configuration.
//
// Returns nil if the plugin is allowed; returns an error (with explanation)
// if the plugin should be skipped.
func ResolveSlot(def Definition, activeSlots map[string]string, config SlotConfig) error {
	kind := def.Kind
	if kind == "" || kind == "general" {
		return nil
	}

	desired := config[kind]
	if desired == "" {
		desired = slotDefaults[kind]
	}

	if desired == "none" {
		return fmt.Errorf("slot %q is disabled by configuration", kind)
	}

	// A kind without default or configured owner accepts the first plugin.
	if desired != "" && desired != def.ID {
		return fmt.Errorf("slot %q is assigned to %q, skipping %q", kind, desired, def.ID)
	}

	if occupant, occupied := activeSlots[kind]; occupied && occupant != def.ID {
		return fmt.Errorf("slot %q already occupied by %q, cannot load %q", kind, occupant, def.ID)
	}

	logger.Info("[Plugin] slot %q assigned to plugin %q", kind, def.ID)
	return nil
}
