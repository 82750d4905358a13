package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/classpulse/classpulse/internal/config"
	"github.com/classpulse/classpulse/internal/handlers"
	"github.com/classpulse/classpulse/internal/ingest"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/metrics"
	"github.com/classpulse/classpulse/internal/queue"
	"github.com/classpulse/classpulse/internal/router"
	"github.com/classpulse/classpulse/internal/services"
	"github.com/classpulse/classpulse/internal/store"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("ClassPulse starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Store and report cache
	logger.Info("Opening store", "store", cfg.Store.String())
	st, cache, err := store.New(cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open store", "error", err)
	}
	defer func() { _ = st.Close() }()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		logger.Fatal("Failed to register metrics", "error", err)
	}

	sessionService := services.NewSessionService(logger, st)
	sampleService := services.NewSampleService(logger, st, cache, m)
	analyticsService := services.NewAnalyticsService(logger, st, cache, m, cfg.Analytics.EngineConfig())

	// Queue ingestion runs alongside the HTTP API when enabled
	var consumer *ingest.Consumer
	if cfg.Ingest.Enabled {
		logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
		queueClient, err := queue.NewQueue(cfg.Queue)
		if err != nil {
			logger.Fatal("Failed to connect to Queue", "error", err)
		}
		defer func() { _ = queueClient.Close() }()

		consumer = ingest.NewConsumer(logger, queueClient, cfg.Queue.Subject, sampleService, m)
		if err := consumer.Start(); err != nil {
			logger.Fatal("Failed to start ingest consumer", "error", err)
		}
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	h := handlers.New(logger, sessionService, sampleService, analyticsService)
	app := router.New(logger, h, reg, *cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.Warn("Failed to stop ingest consumer", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
