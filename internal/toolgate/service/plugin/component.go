package plugin

import (
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

// ComponentKind partitions the component namespace. Names are unique
// within a kind; the same name may exist under different kinds.
type ComponentKind string

const (
	KindTool    ComponentKind = "tool"
	KindService ComponentKind = "service"
	KindCommand ComponentKind = "command"
)

// ComponentInfo is the registry's metadata about one registered component.
type ComponentInfo struct {
	Name        string        `json:"name"`
	Kind        ComponentKind `json:"kind"`
	PluginName  string        `json:"plugin_name"`
	Description string        `json:"description,omitempty"`
	// Enabled is the runtime switch toggled by Enable/DisableComponent.
	Enabled bool `json:"enabled"`
	// LLMAvailable is the static opt-in to autonomous invocation. A tool is
	// offered to the model only when both flags are set.
	LLMAvailable bool `json:"llm_available"`
}

// NamedFactory is one entry of the LLM-available tool listing.
type NamedFactory struct {
	Name    string
	Factory tool.Factory
}

// Stats summarizes registry contents.
type Stats struct {
	Plugins           int                   `json:"plugins"`
	Components        int                   `json:"components"`
	EnabledComponents int                   `json:"enabled_components"`
	ByKind            map[ComponentKind]int `json:"by_kind"`
	LLMAvailableTools int                   `json:"llm_available_tools"`
}

type componentKey struct {
	kind ComponentKind
	name string
}
