package toolgate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/toolgate/internal/toolgate/config"
	"github.com/kiosk404/toolgate/internal/toolgate/options"
	"github.com/kiosk404/toolgate/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type apiServer struct {
	cfg        *config.Config
	runtime    *Runtime
	engine     *gin.Engine
	httpServer *http.Server
}

type preparedAPIServer struct {
	*apiServer
}

func createAPIServer(ctx context.Context, cfg *config.Config) (*apiServer, error) {
	gin.SetMode(cfg.GenericServerRunOptions.Mode)

	runtime, err := NewRuntime(ctx, cfg.Options)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	server := &apiServer{
		cfg:     cfg,
		runtime: runtime,
		engine:  engine,
		httpServer: &http.Server{
			Addr:              cfg.GenericServerRunOptions.Address(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	return server, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	initRouter(s.engine, &routerDeps{
		runtime:     s.runtime,
		enablePprof: s.cfg.GenericServerRunOptions.EnablePprof,
		healthz:     s.cfg.GenericServerRunOptions.Healthz,
		token:       s.cfg.GenericServerRunOptions.Token,
		allowLocal:  s.cfg.GenericServerRunOptions.AllowLocal,
	})

	s.cfg.Watch(func(prev, next *options.Options) {
		if updated := s.runtime.ReloadPluginConfigs(context.Background(), prev, next); len(updated) > 0 {
			logger.Info("[Toolgate] reloaded plugin configuration: %v", updated)
		}
	})

	return preparedAPIServer{s}
}

// Run serves until ctx is cancelled, then shuts the HTTP server and the
// plugins down.
func (s preparedAPIServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Toolgate] serving HTTP API on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("[Toolgate] shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("[Toolgate] http shutdown: %v", err)
	}
	if err := s.runtime.Close(shutdownCtx); err != nil {
		logger.Warn("[Toolgate] plugin shutdown: %v", err)
	}
	return runErr
}
