package options

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// LogOptions configures pkg/logger.
type LogOptions struct {
	Level string `json:"level" mapstructure:"level"`
	// File additionally writes logs to this path when set.
	File string `json:"file" mapstructure:"file"`
}

// NewLogOptions creates a LogOptions object with default parameters.
func NewLogOptions() *LogOptions {
	return &LogOptions{
		Level: "info",
	}
}

// Validate checks validation of LogOptions.
func (o *LogOptions) Validate() []error {
	var errs []error
	if _, err := logrus.ParseLevel(o.Level); err != nil {
		errs = append(errs, fmt.Errorf("--log.level: %w", err))
	}
	return errs
}

// AddFlags adds flags for logging to the specified FlagSet.
func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level: debug, info, warn, error.")
	fs.StringVar(&o.File, "log.file", o.File, "Also write logs to this file.")
}
