package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thermogain/thermogain/internal/app"
	"github.com/thermogain/thermogain/internal/config"
	"github.com/thermogain/thermogain/internal/logging"
	"github.com/thermogain/thermogain/internal/metrics"
	"github.com/thermogain/thermogain/internal/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	serverConfig := flag.String("config", "server-config.yaml", "path to server configuration file")
	engineConfig := flag.String("engine-config", "", "engine configuration override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*serverConfig)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfig, err)
		os.Exit(1)
	}
	if *engineConfig != "" {
		cfg.EngineConfig = *engineConfig
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, logger, cfg); err != nil {
		logger.Fatal("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// serve builds the application from the engine configuration and runs the
// HTTP server until ctx is cancelled.
func serve(ctx context.Context, logger *zap.Logger, cfg *server.Config) error {
	conf, err := config.LoadConfiguration(cfg.EngineConfig)
	if err != nil {
		return fmt.Errorf("failed to load engine configuration at %s: %w", cfg.EngineConfig, err)
	}
	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		return fmt.Errorf("invalid engine configuration: %w", err)
	}
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.serve"),
		)
	}

	m := metrics.New()
	application, err := app.New(ctx, logger, conf, app.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	deps := server.Dependencies{
		Engine:   application.Engine,
		Models:   application.Cache,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
	}
	if cfg.ShouldPersistResults() {
		deps.Results = application.Results
	}

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), version, deps),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down",
			zap.String("op", "main.serve"),
			zap.Duration("timeout", cfg.ShutdownTimeout),
		)
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
