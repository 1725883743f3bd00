package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OuyangRuyi/pdf-reader/internal/api"
	"github.com/OuyangRuyi/pdf-reader/internal/config"
	"github.com/OuyangRuyi/pdf-reader/internal/docsource"
	"github.com/OuyangRuyi/pdf-reader/internal/index"
	"github.com/OuyangRuyi/pdf-reader/internal/llm"
	"github.com/OuyangRuyi/pdf-reader/internal/meta"
	"github.com/OuyangRuyi/pdf-reader/internal/pipeline"
	"github.com/OuyangRuyi/pdf-reader/internal/rag"
	"github.com/OuyangRuyi/pdf-reader/internal/retrieval"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage layers.
	docs, err := docsource.NewLocalStore(cfg.DataDir)
	if err != nil {
		log.Error("init document store", "error", err)
		os.Exit(1)
	}
	metaStore, err := meta.NewStore(cfg.DataDir)
	if err != nil {
		log.Error("init metadata store", "error", err)
		os.Exit(1)
	}

	// Model clients.
	stats := llm.NewStats(time.Hour)
	generator, err := llm.NewGenerator(cfg, stats)
	if err != nil {
		log.Error("init generation provider", "error", err)
		os.Exit(1)
	}
	embedder := llm.NewEmbeddingClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)

	// Document content comes from local files unless a remote
	// extraction service is configured.
	var provider docsource.Provider = docs
	if cfg.DocSourceURL != "" {
		provider = docsource.NewClient(cfg.DocSourceURL, cfg.DocSourceAPIKey)
		log.Info("using remote document source", "url", cfg.DocSourceURL)
	}

	// Index store and pipeline.
	indexStore, err := index.NewStore(cfg, provider, embedder, metaStore, log)
	if err != nil {
		log.Error("init index store", "error", err)
		os.Exit(1)
	}
	orch := pipeline.NewOrchestrator(cfg, indexStore, log)
	orch.Start(ctx)

	// Query engine.
	retriever := retrieval.NewRetriever(indexStore, cfg.OverlapCutoff, log)
	engine := rag.NewEngine(embedder, generator, retriever, indexStore, provider, cfg.Language, cfg.DefaultTopK, log)

	srv := api.NewServer(engine, orch, docs, metaStore, generator, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		generator.Close()
	}()

	log.Info("starting server", "port", cfg.Port, "provider", cfg.Provider, "embedding_model", cfg.EmbeddingModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
