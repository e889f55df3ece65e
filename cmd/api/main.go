package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"whisper-gateway/internal/api"
	"whisper-gateway/internal/config"
	"whisper-gateway/internal/jobs"
	"whisper-gateway/internal/webhook"
	"whisper-gateway/internal/whisper"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	godotenv.Load() // Ignore error, ENV vars take precedence

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	engine, err := whisper.NewEngine(cfg.Whisper)
	if err != nil {
		slog.Error("failed to initialize model handle", "error", err)
		os.Exit(1)
	}
	slog.Info("model handle ready", "model", engine.Model(), "backend", cfg.Whisper.Backend)

	runner := jobs.NewRunner(cfg.Jobs.Workers, cfg.Jobs.QueueSize)
	runner.Start()

	notifier := webhook.NewNotifier(cfg.Webhook.Timeout, cfg.Webhook.Secret)

	router := api.NewRouter(engine, runner, notifier)

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     router.Setup(),
		ReadTimeout: 15 * time.Second,
		// Synchronous transcriptions can run for minutes; no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	runner.Shutdown()
	slog.Info("server stopped")
}
