// Package main is the news RAG backend entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/chat"
	"github.com/vanihb04/voosh-chatbot-backend/internal/config"
	"github.com/vanihb04/voosh-chatbot-backend/internal/embedding"
	"github.com/vanihb04/voosh-chatbot-backend/internal/feeds"
	"github.com/vanihb04/voosh-chatbot-backend/internal/ingest"
	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
	"github.com/vanihb04/voosh-chatbot-backend/internal/search"
	"github.com/vanihb04/voosh-chatbot-backend/internal/server"
	"github.com/vanihb04/voosh-chatbot-backend/internal/session"
	"github.com/vanihb04/voosh-chatbot-backend/internal/vectorstore/qdrant"
	"github.com/vanihb04/voosh-chatbot-backend/internal/watcher"
	"github.com/vanihb04/voosh-chatbot-backend/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	meta := models.CollectionMetadata{
		Name:      cfg.Qdrant.Collection,
		Dimension: cfg.Qdrant.Dimension,
		Distance:  models.Distance(cfg.Qdrant.Distance),
	}

	store := qdrant.NewStore(qdrant.Config{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
		Dimension:  cfg.Qdrant.Dimension,
		Timeout:    cfg.Qdrant.Timeout(),
	}, logger)

	embedder, err := embedding.NewJinaClient(embedding.JinaConfig{
		BaseURL:           cfg.Embedding.BaseURL,
		APIKey:            cfg.Embedding.APIKey,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		Timeout:           cfg.Embedding.Timeout(),
		MaxRetries:        cfg.Embedding.MaxRetries,
		RetryDelay:        cfg.Embedding.RetryDelay(),
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	}, logger)
	if err != nil {
		return err
	}

	fetcher := feeds.NewFetcher(cfg.Sources, cfg.Ingest.MaxPerSource, logger)

	pipeline, err := ingest.NewPipeline(fetcher, embedder, store, meta, ingest.Options{
		ChunkSize:   cfg.Ingest.ChunkSize,
		BatchSize:   cfg.Ingest.BatchSize,
		Concurrency: cfg.Ingest.Concurrency,
	}, logger)
	if err != nil {
		return err
	}

	searcher := search.NewService(embedder, store, logger)

	var chatSvc *chat.Service
	if cfg.Chat.APIKey != "" {
		rdb, err := session.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		sessions := session.NewStore(rdb, cfg.Redis.SessionTTL(), logger)

		generator, err := chat.NewGeminiGenerator(ctx, cfg.Chat.APIKey, cfg.Chat.Model)
		if err != nil {
			return err
		}
		defer func() { _ = generator.Close() }()

		chatSvc = chat.NewService(sessions, searcher, generator, cfg.Chat.TopK, logger)
	} else {
		logger.Warn("GEMINI_API_KEY not set, chat endpoints disabled")
	}

	// Reload feed sources when the config file changes.
	cw := watcher.New(*configPath, func() {
		reloaded, err := config.Load(*configPath)
		if err != nil {
			logger.Warn("config reload failed", zap.Error(err))
			return
		}
		fetcher.SetSources(reloaded.Sources)
		logger.Info("reloaded feed sources", zap.Int("sources", len(reloaded.Sources)))
	}, logger)
	if err := cw.Start(ctx); err != nil {
		logger.Warn("config watch disabled", zap.Error(err))
	} else {
		defer cw.Stop()
	}

	srv := server.NewServer(pipeline, searcher, store, meta, chatSvc, &cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Stop(shutdownCtx)
	}
}
