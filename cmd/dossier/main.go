// Command dossier indexes recent news about companies and answers
// questions about them with citations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/dossier/internal/adapters/driven/ai"
	"github.com/custodia-labs/dossier/internal/adapters/driven/cache/bolt"
	"github.com/custodia-labs/dossier/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dossier/internal/adapters/driven/info/stock"
	"github.com/custodia-labs/dossier/internal/adapters/driven/info/wikipedia"
	"github.com/custodia-labs/dossier/internal/adapters/driven/newsapi"
	"github.com/custodia-labs/dossier/internal/adapters/driven/scraper"
	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/dossier/internal/adapters/driving/cli"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/services"
	"github.com/custodia-labs/dossier/internal/logger"
	"github.com/custodia-labs/dossier/internal/normalisers/text"
	"github.com/custodia-labs/dossier/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	cleanup, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	cli.SetVersion(version)
	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// wire assembles adapters and services and installs them into the CLI.
// The returned function releases open stores.
func wire() (func(), error) {
	var configStore driven.ConfigStore
	if fileStore, err := file.NewConfigStore(""); err != nil {
		// No home directory: run on defaults plus environment overrides.
		logger.Warn("config file unavailable, using defaults: %v", err)
		def := domain.DefaultConfig()
		file.ApplyEnv(&def, os.Getenv)
		configStore = memory.NewConfigStore(&def)
	} else {
		configStore = fileStore
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cfg, err := configStore.Load()
	if err != nil {
		// Leave the config commands usable so the file can be fixed.
		logger.Warn("%v", err)
		cli.SetServices(cli.Services{Settings: settings})
		return func() {}, nil
	}

	dataDir := cfg.Storage.DataDir
	if dataDir == "" {
		if dataDir, err = sqlite.DefaultDataDir(); err != nil {
			return nil, err
		}
	}

	embedder, err := ai.CreateEmbeddingService(&cfg.Embedding)
	if err != nil {
		logger.Warn("embeddings disabled: %v", err)
		embedder = nil
	}
	chat, err := ai.CreateChatService(&cfg.LLM)
	if err != nil {
		logger.Warn("answers disabled: %v", err)
		chat = nil
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	indexStore, err := sqlite.NewIndexStore(dataDir, embedder)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open index store: %w", err)
	}

	closers := []func() error{indexStore.Close, store.Close}
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close: %v", err)
			}
		}
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(cfg.Ingest.ChunkSize),
		chunker.WithOverlap(cfg.Ingest.ChunkOverlap),
	)
	if err != nil {
		cleanup()
		return nil, err
	}

	fetcher := newsapi.NewFetcher(newsapi.Config{
		APIKey:            cfg.News.APIKey,
		BaseURL:           cfg.News.BaseURL,
		Language:          cfg.News.Language,
		Timeout:           cfg.News.Timeout.Std(),
		RequestsPerSecond: cfg.News.RequestsPerSecond,
	})
	pages := scraper.New(scraper.Config{
		UserAgent:         cfg.Scrape.UserAgent,
		Timeout:           cfg.Scrape.Timeout.Std(),
		MinParagraphChars: cfg.Scrape.MinParagraphChars,
		MaxBodyBytes:      cfg.Scrape.MaxBodyBytes,
		RequestsPerSecond: cfg.Scrape.RequestsPerSecond,
	})

	ingestion, err := services.NewIngestionService(
		fetcher, pages, text.New(), splitter, indexStore, store.RunStore(),
		cfg.Ingest, cfg.Scrape.Workers,
	)
	if err != nil {
		cleanup()
		return nil, err
	}
	// Dry runs build the collection in memory and record nothing on disk.
	dryRun, err := services.NewIngestionService(
		fetcher, pages, text.New(), splitter, memory.NewIndexStore(embedder), memory.NewRunStore(),
		cfg.Ingest, cfg.Scrape.Workers,
	)
	if err != nil {
		cleanup()
		return nil, err
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		logger.Warn("custom prompts disabled: %v", err)
		prompts = nil
	}

	retrieval := services.NewRetrievalService(indexStore)
	var promptStore driven.PromptStore
	if prompts != nil {
		promptStore = prompts
	}
	answer := services.NewAnswerService(retrieval, chat, promptStore, cfg.LLM.MaxTokens)

	var cache driven.Cache
	if c, err := bolt.Open(filepath.Join(dataDir, bolt.CacheFile)); err != nil {
		logger.Warn("info cache disabled: %v", err)
	} else {
		cache = c
		closers = append(closers, c.Close)
	}
	info := services.NewInfoService(
		wikipedia.NewClient(wikipedia.Config{
			BaseURL:   cfg.Info.WikipediaBaseURL,
			UserAgent: cfg.Info.UserAgent,
			Timeout:   cfg.Info.Timeout.Std(),
		}),
		stock.NewClient(stock.Config{
			BaseURL:   cfg.Info.StockBaseURL,
			UserAgent: cfg.Info.UserAgent,
			Timeout:   cfg.Info.Timeout.Std(),
		}),
		cache,
		cfg.Info.CacheTTL.Std(),
	)

	cli.SetServices(cli.Services{
		Ingestion:  ingestion,
		DryRun:     dryRun,
		Answer:     answer,
		Retrieval:  retrieval,
		Info:       info,
		RunHistory: services.NewRunHistoryService(store.RunStore()),
		Settings:   settings,
		Scheduler: services.NewScheduler(ingestion, store.RunStore(), cfg.Watch.Companies,
			cfg.Watch.Interval.Std(), cfg.Ingest.MaxArticles),
	})
	return cleanup, nil
}
