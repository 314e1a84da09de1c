package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ziadkadry99/helpdesk/internal/backlog"
	"github.com/ziadkadry99/helpdesk/internal/chat"
	"github.com/ziadkadry99/helpdesk/internal/config"
	"github.com/ziadkadry99/helpdesk/internal/db"
	"github.com/ziadkadry99/helpdesk/internal/embeddings"
	"github.com/ziadkadry99/helpdesk/internal/gateway"
	"github.com/ziadkadry99/helpdesk/internal/knowledge"
	"github.com/ziadkadry99/helpdesk/internal/llm"
	"github.com/ziadkadry99/helpdesk/internal/progress"
	"github.com/ziadkadry99/helpdesk/internal/prompt"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
	"github.com/ziadkadry99/helpdesk/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `helpdesk init` to create a config file", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// setupLogging builds the stderr + file logger. The returned func closes the
// log file.
func setupLogging(cfg *config.Config) (*slog.Logger, func() error, error) {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog := config.SetupLogger(cfg.LogFilePath(), level)
	slog.SetDefault(logger)
	return logger, closeLog, nil
}

// openKnowledge returns the configured knowledge base.
func openKnowledge(cfg *config.Config) (*knowledge.StaticStore, error) {
	store, err := knowledge.Open(cfg.KnowledgePath)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}
	return store, nil
}

// createLLMProviderFromConfig creates the rate-limited LLM provider.
func createLLMProviderFromConfig(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	p, err := llm.NewProvider(ctx, llm.Options{Provider: string(cfg.Provider), Model: cfg.Model})
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return llm.NewRateLimitedProvider(p, cfg.Generation.RateLimitRPM), nil
}

func gatewaySettings(cfg *config.Config) gateway.Settings {
	return gateway.Settings{
		Model:       cfg.Model,
		Temperature: cfg.Generation.Temperature,
		TopK:        cfg.Generation.TopK,
		TopP:        cfg.Generation.TopP,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     cfg.GenerationTimeout(),
	}
}

// newPipeline wires the keyword retriever, composer and gateway shared by
// every conversation. Turns are logged to the query log and refusals to the
// backlog, both in database.
func newPipeline(ctx context.Context, cfg *config.Config, store knowledge.Store, database *db.DB, logger *slog.Logger) (chat.Pipeline, error) {
	provider, err := createLLMProviderFromConfig(ctx, cfg)
	if err != nil {
		return chat.Pipeline{}, err
	}
	return chat.Pipeline{
		Retriever: retrieval.New(store, cfg.Retrieval.Limit),
		Composer:  prompt.NewComposer(cfg.Institution),
		Gateway:   gateway.New(provider, gatewaySettings(cfg), logger),
		Recorder:  querylog.NewRecorder(querylog.NewStore(database), logger),
		Backlog:   backlog.NewStore(database),
		Logger:    logger,
	}, nil
}

// openDatabase opens the query log and backlog database. Close it when done.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// createEmbedderFromConfig creates the embedder for the semantic index.
func createEmbedderFromConfig(ctx context.Context, cfg *config.Config) (embeddings.Embedder, error) {
	e, err := embeddings.New(ctx, embeddings.Options{
		Kind:  string(cfg.Search.Embedder),
		Model: cfg.Search.EmbeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return e, nil
}

// buildIndex embeds the knowledge base and persists the index.
func buildIndex(ctx context.Context, cfg *config.Config, store knowledge.Store, rep progress.Reporter) (*vectordb.Index, error) {
	embedder, err := createEmbedderFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ix, err := vectordb.Build(ctx, embedder, store.ListEntries(), rep)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	if err := ix.Persist(cfg.IndexPath()); err != nil {
		return nil, err
	}
	return ix, nil
}

// openIndex loads the persisted index, rebuilding it when it is missing or
// was built from other records.
func openIndex(ctx context.Context, cfg *config.Config, store knowledge.Store, logger *slog.Logger) (*vectordb.Index, error) {
	embedder, err := createEmbedderFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ix, err := vectordb.Load(ctx, cfg.IndexPath(), embedder, store.ListEntries())
	if err == nil {
		logger.Debug("semantic index loaded", "path", cfg.IndexPath(), "entries", ix.Count())
		return ix, nil
	}

	switch _, statErr := os.Stat(cfg.IndexPath()); {
	case errors.Is(err, vectordb.ErrStaleIndex):
		logger.Info("semantic index is stale, rebuilding", "path", cfg.IndexPath())
	case errors.Is(statErr, os.ErrNotExist):
		logger.Info("no semantic index found, building", "path", cfg.IndexPath())
	default:
		logger.Warn("semantic index unreadable, rebuilding", "path", cfg.IndexPath(), "error", err)
	}
	return buildIndex(ctx, cfg, store, progress.Nop{})
}
