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

	"mindmapd/internal/api"
	"mindmapd/internal/config"
	"mindmapd/internal/history"
	"mindmapd/internal/llm"
	"mindmapd/internal/pipeline"
	"mindmapd/internal/tokens"
	"mindmapd/internal/transform"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := history.NewStore(cfg.StorageDir)
	if err != nil {
		log.Error("init storage", "error", err)
		os.Exit(1)
	}

	client := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMTimeout)

	estimator, err := tokens.NewEstimator(cfg.LLMModel)
	if err != nil {
		log.Error("init token estimator", "error", err)
		os.Exit(1)
	}

	transformer := transform.New(client, estimator, transform.Config{
		Model:         cfg.LLMModel,
		FallbackModel: cfg.LLMFallbackModel,
		AltModel:      cfg.LLMAltModel,
		TokenLimit:    cfg.TokenLimit,
		ChunkBudget:   cfg.ChunkTokenBudget,
	}, log)

	pl := pipeline.New(store, transformer, cfg.MaxSectionTextLen, log)

	srv := api.NewServer(pl, store, client, estimator, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting mindmapd", "port", cfg.Port, "storage", cfg.StorageDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
