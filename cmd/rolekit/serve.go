package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jllopis/rolekit/pkg/config"
	"github.com/jllopis/rolekit/pkg/httpapi"
	"github.com/jllopis/rolekit/pkg/mcpbridge"
	"github.com/jllopis/rolekit/pkg/role"
	"github.com/jllopis/rolekit/pkg/runtime"
	"github.com/jllopis/rolekit/pkg/telemetry"
)

// swappableHandler lets a config reload replace the API handler without
// restarting the listener.
type swappableHandler struct {
	current atomic.Pointer[httpapi.Server]
}

func (h *swappableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.current.Load().ServeHTTP(w, r)
}

// runServe starts the HTTP API and blocks until the context is cancelled.
// When a config file is in use, changes to it rebuild the engine in place.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, configPath string) {
	shutdown := initTelemetry(ctx, cfg, logger)
	defer shutdown()

	var extra []runtime.Option
	if metrics := newMetrics(ctx, cfg, logger); metrics != nil {
		extra = append(extra, runtime.WithMetrics(metrics))
	}

	engine, cleanup, err := buildEngine(ctx, cfg, logger, extra...)
	if err != nil {
		fatal(err)
	}

	handler := &swappableHandler{}
	handler.current.Store(newAPI(cfg, engine))

	var mu sync.Mutex
	prevCleanup := cleanup
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		prevCleanup()
	}()

	if configPath != "" {
		watcher, err := config.NewWatcher([]string{configPath},
			config.WithWatchLogger(logger))
		if err != nil {
			fatal(err)
		}
		watcher.OnChange(func(next *config.Config) {
			nextEngine, nextCleanup, err := buildEngine(ctx, next, logger, extra...)
			if err != nil {
				logger.ErrorContext(ctx, "config reload rejected", slog.Any("error", err))
				return
			}
			handler.current.Store(newAPI(next, nextEngine))
			mu.Lock()
			old := prevCleanup
			prevCleanup = nextCleanup
			mu.Unlock()
			old()
		})
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	serveHTTP(ctx, cfg, logger, handler)
}

func newAPI(cfg *config.Config, engine *runtime.Engine) *httpapi.Server {
	api := httpapi.New(engine)
	if cfg.HTTP.MaxBodyBytes > 0 {
		api.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	}
	return api
}

func serveHTTP(ctx context.Context, cfg *config.Config, logger *slog.Logger, handler http.Handler) {
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "http api listening", slog.String("addr", cfg.HTTP.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(err)
		}
	}
}

// runMCP composes one role and serves its registry over MCP stdio.
func runMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) {
	if len(args) != 1 {
		fatal(errors.New("usage: rolekit mcp <role|role-path>"))
	}

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	bridge := mcpbridge.New(engine, "rolekit", version, logger)
	rolePath := args[0]
	if !isRolePath(rolePath) {
		located, err := role.NewLocator(engine.Root()).LocateRole(rolePath)
		if err != nil {
			fatal(err)
		}
		rolePath = located
	}
	if _, err := bridge.Expose(ctx, rolePath); err != nil {
		fatal(err)
	}
	if err := bridge.ServeStdio(); err != nil {
		fatal(err)
	}
}

func initTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) func() {
	if cfg.Telemetry.Exporter == "" || cfg.Telemetry.Exporter == "none" {
		return func() {}
	}
	shutdown, err := telemetry.InitWithConfig("rolekit", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(err)
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", slog.Any("error", err))
		}
	}
}

func newMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) *telemetry.EngineMetrics {
	if cfg.Telemetry.Exporter == "" || cfg.Telemetry.Exporter == "none" {
		return nil
	}
	metrics, err := telemetry.NewEngineMetrics(ctx)
	if err != nil {
		logger.WarnContext(ctx, "metrics unavailable", slog.Any("error", err))
		return nil
	}
	return metrics
}
