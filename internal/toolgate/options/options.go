package options

import (
	genericoptions "github.com/kiosk404/toolgate/internal/pkg/options"
	"github.com/kiosk404/toolgate/pkg/utils/json"
	"github.com/spf13/pflag"
)

// Options is the full configuration of a toolgate process.
type Options struct {
	GenericServerRunOptions *genericoptions.ServerRunOptions `json:"server"  mapstructure:"server"`
	LogOptions              *genericoptions.LogOptions       `json:"log"     mapstructure:"log"`
	PluginOptions           *genericoptions.PluginsOptions   `json:"plugins" mapstructure:"plugins"`
	MCPOptions              *MCPOptions                      `json:"mcp"     mapstructure:"mcp"`
}

// NewOptions returns Options with defaults.
func NewOptions() *Options {
	return &Options{
		GenericServerRunOptions: genericoptions.NewServerRunOptions(),
		LogOptions:              genericoptions.NewLogOptions(),
		PluginOptions:           genericoptions.NewPluginsOptions(),
		MCPOptions:              NewMCPOptions(),
	}
}

// AddFlags registers every option group on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.GenericServerRunOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.PluginOptions.AddFlags(fs)
	o.MCPOptions.AddFlags(fs)
}

// Validate checks all option groups.
func (o *Options) Validate() []error {
	var errs []error

	errs = append(errs, o.GenericServerRunOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.PluginOptions.Validate()...)
	errs = append(errs, o.MCPOptions.Validate()...)

	return errs
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}

// Complete set default Options.
func (o *Options) Complete() error {
	if o.PluginOptions.Entries == nil {
		o.PluginOptions.Entries = make(map[string]genericoptions.PluginEntryConfig)
	}
	return nil
}
