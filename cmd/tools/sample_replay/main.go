package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/classpulse/classpulse/internal/config"
	"github.com/classpulse/classpulse/internal/ingest"
	"github.com/classpulse/classpulse/internal/logging"
	"github.com/classpulse/classpulse/internal/queue"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	input := flag.String("input", "", "Samples file (.json array or .csv with timestamp,score)")
	sessionID := flag.String("session", "", "Session ID the samples belong to")
	batch := flag.Int("batch", ingest.DefaultProducerBatch, "Samples per queue message")
	timeout := flag.Duration("timeout", 30*time.Second, "Publish timeout")
	flag.Parse()

	logger := logging.NewDevelopment()

	if *input == "" || *sessionID == "" {
		logger.Fatal("-input and -session are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(*input)
	if err != nil {
		logger.Fatal("Failed to open input", "path", *input, "error", err)
	}
	samples, err := ingest.ReadSamples(f, filepath.Ext(*input))
	_ = f.Close()
	if err != nil {
		logger.Fatal("Failed to read samples", "path", *input, "error", err)
	}

	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	q, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	defer func() { _ = q.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	sent, err := ingest.NewProducer(q, cfg.Queue.Subject, *batch).PublishSamples(ctx, *sessionID, samples)
	if err != nil {
		cancel()
		_ = q.Close()
		logger.Fatal("Replay incomplete", "sent", sent, "total", len(samples), "error", err)
	}
	logger.Info("Replay complete",
		"session_id", *sessionID,
		"subject", cfg.Queue.Subject,
		"samples", sent,
		"duration", time.Since(start))
}
