// Stumpcast server: ingests archived speeches, drives podcast workflows
// and serves the HTTP API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/stumpworks/stumpcast/pkg/api"
	"github.com/stumpworks/stumpcast/pkg/cleanup"
	"github.com/stumpworks/stumpcast/pkg/config"
	"github.com/stumpworks/stumpcast/pkg/events"
	"github.com/stumpworks/stumpcast/pkg/ingest"
	"github.com/stumpworks/stumpcast/pkg/keypool"
	"github.com/stumpworks/stumpcast/pkg/llm"
	"github.com/stumpworks/stumpcast/pkg/orchestrator"
	"github.com/stumpworks/stumpcast/pkg/sources"
	"github.com/stumpworks/stumpcast/pkg/store"
	"github.com/stumpworks/stumpcast/pkg/tts"
	"github.com/stumpworks/stumpcast/pkg/version"
	"github.com/stumpworks/stumpcast/pkg/workflow"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to .env file")
	flag.Parse()

	// 1. Configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting stumpcast",
		"version", version.Full(),
		"port", cfg.Port,
		"env", cfg.Env,
		"data_dir", cfg.DataDir)

	ctx := context.Background()

	for _, dir := range []string{cfg.DataDir, filepath.Join(cfg.DataDir, "audio")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("Failed to create data directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	// 2. Catalog store
	st, err := store.Open(ctx, filepath.Join(cfg.DataDir, "archive.db"))
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Error closing store", "error", err)
		}
	}()
	slog.Info("Catalog store ready")

	// 3. Source adapters and ingestion
	registry := sources.NewRegistry(
		sources.NewArchiveSource(""),
		sources.NewWhiteHouseSource(""),
		sources.NewCSpanSource("", cfg.Subject),
		sources.NewYouTubeSource("", cfg.YouTubeAPIKey, cfg.Subject),
	)
	ingestor := ingest.NewEngine(registry, st)

	// Long-running ingest starts in the background; the server accepts
	// requests before it completes.
	go func() {
		if _, err := ingestor.PopulateArchive(ctx); err != nil {
			slog.Error("Startup ingestion failed", "error", err)
		}
	}()

	// 4. LLM stack
	pool := keypool.New()
	if cfg.OpenRouterTestKey != "" {
		pool.Add(cfg.OpenRouterTestKey, 5)
		slog.Info("Seeded key pool from environment")
	}

	llmClient := llm.NewClient("")
	validator := llm.NewValidator(llmClient, st)
	orch := orchestrator.New(llmClient, pool, st, cfg.OpenRouterAPIKey)
	if err := orch.SeedModels(ctx); err != nil {
		slog.Warn("Failed to seed model catalog", "error", err)
	}

	// 5. TTS worker and workflow engine
	ttsWorker := tts.NewWorker(cfg.TTSPython, cfg.TTSScript)
	engine := workflow.NewEngine(st, orch, ttsWorker, cfg.DataDir)

	// 6. Analytics and retention
	eventService := events.NewService(st)
	retention := cleanup.NewService(eventService, cfg.EventRetention, time.Hour)
	retention.Start(ctx)
	defer retention.Stop()

	// 7. HTTP server
	httpServer := api.NewServer(cfg, st, engine, ingestor, orch, validator,
		pool, eventService, registry, ttsWorker)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	// 8. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 9. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
