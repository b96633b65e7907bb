package toolgate

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/kiosk404/toolgate/internal/toolgate/config"
)

// Run starts the toolgate HTTP API and blocks until SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := createAPIServer(ctx, cfg)
	if err != nil {
		return err
	}

	return server.PrepareRun().Run(ctx)
}
