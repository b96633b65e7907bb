package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kiosk404/toolgate/internal/toolgate/options"
	"github.com/kiosk404/toolgate/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TOOLGATE_SERVER_BIND_PORT.
const EnvPrefix = "TOOLGATE"

// Config is the running configuration structure of the toolgate service.
type Config struct {
	*options.Options

	v  *viper.Viper
	mu sync.Mutex
}

// CreateConfigFromOptions creates a running configuration instance based
// on already populated options.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{Options: opts, v: viper.New()}, nil
}

// Load reads path (YAML or JSON, optional) on top of the option defaults.
// Precedence is changed flags, then environment, then file, then defaults.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		logger.Info("[Config] loaded configuration from %s", v.ConfigFileUsed())
	}

	opts, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Config{Options: opts, v: v}, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*options.Options, error) {
	opts := options.NewOptions()
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := opts.Complete(); err != nil {
		return nil, err
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return opts, nil
}

// Watch re-reads the config file whenever it changes and hands the new
// options to onChange. Invalid edits are logged and ignored.
func (c *Config) Watch(onChange func(prev, next *options.Options)) {
	if c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(c.v)
		if err != nil {
			logger.Warn("[Config] ignoring change of %s: %v", e.Name, err)
			return
		}

		c.mu.Lock()
		prev := c.Options
		c.Options = next
		c.mu.Unlock()

		logger.Info("[Config] %s changed, reloading", e.Name)
		onChange(prev, next)
	})
	c.v.WatchConfig()
}

// Current returns the latest loaded options.
func (c *Config) Current() *options.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Options
}
