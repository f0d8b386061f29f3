// Package wiring composes the application from configuration: adapters,
// workflow variant, history store, and the services on top of them.
package wiring

import (
	"context"
	"fmt"
	"time"

	"lodestar/adapters/browsearch"
	"lodestar/adapters/ollamagen"
	"lodestar/adapters/openaigen"
	"lodestar/adapters/qdrantstore"
	"lodestar/adapters/tavily"
	"lodestar/internal/chat"
	"lodestar/internal/config"
	"lodestar/internal/ingest"
	"lodestar/internal/logging"
	"lodestar/internal/rag"
)

// App holds the composed services and the handles that need closing.
type App struct {
	Config   *config.Config
	Workflow *rag.Workflow
	Chat     *chat.Service
	Ingest   *ingest.Pipeline
	Store    *qdrantstore.Store

	redisHistory *chat.RedisHistory
}

// Close releases the vector store connection and, when configured, the
// Redis connection.
func (a *App) Close() error {
	var firstErr error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.redisHistory != nil {
		if err := a.redisHistory.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewWorkflow builds the configured workflow variant over the given
// capabilities. The searcher may be nil for the basic and suggestion
// variants.
func NewWorkflow(cfg config.WorkflowConfig, retriever rag.Retriever, generator rag.Generator, searcher rag.WebSearcher) (*rag.Workflow, error) {
	opts := rag.Options{
		NumResults:          cfg.NumResults,
		RerankTopK:          cfg.RerankTopK,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MaxSteps:            cfg.MaxSteps,
	}
	switch cfg.Variant {
	case "basic":
		return rag.NewBasicWorkflow(retriever, generator, opts)
	case "suggestion":
		return rag.NewSuggestionWorkflow(retriever, generator, opts)
	case "search":
		if searcher == nil {
			return nil, fmt.Errorf("search variant needs a web searcher")
		}
		return rag.NewSearchWorkflow(retriever, generator, searcher, opts)
	default:
		return nil, fmt.Errorf("unknown workflow variant %q", cfg.Variant)
	}
}

// newGenerator picks OpenAI when a key is configured, Ollama otherwise.
func newGenerator(cfg *config.Config) (rag.Generator, error) {
	if cfg.OpenAI.APIKey != "" {
		return openaigen.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), nil
	}
	return ollamagen.New(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Ollama.EmbeddingModel)
}

// newSearcher picks Tavily when a key is configured, the headless browser
// otherwise.
func newSearcher(cfg *config.Config) rag.WebSearcher {
	if cfg.Tavily.APIKey != "" {
		return tavily.NewClient(tavily.Config{
			BaseURL:    cfg.Tavily.BaseURL,
			APIKey:     cfg.Tavily.APIKey,
			MaxResults: cfg.Tavily.MaxResults,
		})
	}
	return browsearch.New(browsearch.Options{
		Headless:   cfg.Browser.Headless,
		Timeout:    time.Duration(cfg.Browser.TimeoutSec) * time.Second,
		MaxResults: cfg.Browser.MaxResults,
	})
}

// Build assembles the full application from config. Embeddings always come
// from Ollama, also when generation goes through OpenAI.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedder, err := ollamagen.New(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Ollama.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	store, err := qdrantstore.Connect(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.UseTLS, cfg.Qdrant.Collection, embedder)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	workflow, err := NewWorkflow(cfg.Workflow, store, generator, newSearcher(cfg))
	if err != nil {
		store.Close()
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Workflow: workflow,
		Store:    store,
		Ingest:   ingest.NewPipeline(store, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
	}

	var history chat.History
	if cfg.Redis.Addr != "" {
		redisHistory, err := chat.NewRedisHistory(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Chat.HistoryLimit*2)
		if err != nil {
			store.Close()
			return nil, err
		}
		app.redisHistory = redisHistory
		history = redisHistory
	} else {
		history = chat.NewMemoryHistory()
	}

	app.Chat = chat.NewService(workflow, history, cfg.Chat.HistoryLimit, logging.New("chat"))
	return app, nil
}
