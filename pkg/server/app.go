package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"EthFlow/pkg/config"
	xhttp "EthFlow/pkg/http"
	applogger "EthFlow/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	closers    []io.Closer
}

// New creates a new App. Closers are released in order after the HTTP server stops.
func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server, closers ...io.Closer) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		closers:    closers,
	}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with a caller supplied lifetime.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("ethflow started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Bool("redis", a.cfg.Cache.Redis.Enabled),
		applogger.Bool("fallback", a.cfg.Fallback.Enabled),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return firstErr
}
