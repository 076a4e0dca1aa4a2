package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"celebmint/config"
	"celebmint/core"
	"celebmint/core/events"
	"celebmint/observability"
	"celebmint/observability/logging"
	"celebmint/observability/metrics"
	telemetry "celebmint/observability/otel"
	"celebmint/rpc"
	"celebmint/rpc/middleware"
	"celebmint/services/indexer"
	"celebmint/storage"
)

const serviceName = "celebmintd"

func main() {
	cfgPath := flag.String("config", "./config.toml", "path to the celebmint configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "path", *cfgPath, "error", err)
		os.Exit(1)
	}

	logger, closer := logging.Setup(serviceName, cfg.Environment, logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer closer.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("celebmintd exited", "error", err)
		_ = closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
		Storage:     cfg.Storage,
		Platform:    cfg.Ledger.PlatformAddress().Hex(),
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	store, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	emitters := events.Fanout{observability.Events()}
	var eventSource rpc.EventSource
	if cfg.Indexer.Driver != "" {
		db, err := indexer.Open(cfg.Indexer.Driver, cfg.Indexer.DSN)
		if err != nil {
			return err
		}
		ix, err := indexer.New(db, logger)
		if err != nil {
			return err
		}
		emitters = append(emitters, ix)
		eventSource = ix
		logger.Info("event indexer enabled", "driver", cfg.Indexer.Driver)
	}

	ledger, err := core.New(store, core.Config{
		Owner:    cfg.Ledger.OwnerAddress(),
		Platform: cfg.Ledger.PlatformAddress(),
		Deployer: cfg.Ledger.DeployerAddress(),
		Emitter:  emitters,
		Logger:   logger,
		Metrics:  metrics.Ledger(),
		Tracer:   telemetry.LedgerTracer(),
	})
	if err != nil {
		return err
	}

	server := rpc.New(rpc.Config{
		Ledger: ledger,
		Events: eventSource,
		Auth: middleware.AuthConfig{
			HMACSecret: cfg.RPC.JWTSecret,
			Issuer:     cfg.RPC.JWTIssuer,
		},
		RateLimit: middleware.RateLimit{
			RatePerSecond: cfg.RPC.RateLimitPerSec,
			Burst:         cfg.RPC.RateLimitBurst,
		},
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.RPC.ListenAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: time.Duration(cfg.RPC.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(cfg.RPC.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.RPC.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.RPC.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("celebmint API listening", "addr", cfg.RPC.ListenAddress, "storage", cfg.Storage, "dataDir", cfg.DataDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
