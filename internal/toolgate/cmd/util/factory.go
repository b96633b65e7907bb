package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/kiosk404/toolgate/internal/toolgate"
	"github.com/kiosk404/toolgate/internal/toolgate/config"
	"github.com/kiosk404/toolgate/pkg/logger"
	"github.com/spf13/pflag"
)

// IOStreams provides the standard names for iostreams.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Factory provides the shared configuration and plugin runtime to the
// toolgate subcommands. The runtime is built on first use.
type Factory interface {
	Config() (*config.Config, error)
	Runtime(ctx context.Context) (*toolgate.Runtime, error)
	Close(ctx context.Context)
}

type factoryImpl struct {
	configFile *string
	flags      *pflag.FlagSet

	mu  sync.Mutex
	cfg *config.Config
	rt  *toolgate.Runtime
}

// NewFactory creates a Factory reading the config file named by configFile
// with overrides from flags.
func NewFactory(configFile *string, flags *pflag.FlagSet) Factory {
	return &factoryImpl{configFile: configFile, flags: flags}
}

func (f *factoryImpl) Config() (*config.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configLocked()
}

func (f *factoryImpl) configLocked() (*config.Config, error) {
	if f.cfg != nil {
		return f.cfg, nil
	}
	cfg, err := config.Load(*f.configFile, f.flags)
	if err != nil {
		return nil, err
	}
	if err := logger.SetLevel(cfg.LogOptions.Level); err != nil {
		return nil, err
	}
	if cfg.LogOptions.File != "" {
		if err := logger.InitLog(cfg.LogOptions.File); err != nil {
			return nil, err
		}
	}
	f.cfg = cfg
	return cfg, nil
}

func (f *factoryImpl) Runtime(ctx context.Context) (*toolgate.Runtime, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rt != nil {
		return f.rt, nil
	}
	cfg, err := f.configLocked()
	if err != nil {
		return nil, err
	}
	rt, err := toolgate.NewRuntime(ctx, cfg.Options)
	if err != nil {
		return nil, err
	}
	f.rt = rt
	return rt, nil
}

// Close stops the runtime if one was built.
func (f *factoryImpl) Close(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rt != nil {
		_ = f.rt.Close(ctx)
		f.rt = nil
	}
	logger.FlushLog()
}

// CheckErr prints a user friendly error to STDERR and exits with a non-zero
// exit code.
func CheckErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
	os.Exit(1)
}
