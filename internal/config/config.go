// Package config defines the file-based configuration for the lodestar
// services and CLI. A config file is YAML or JSON; every section has
// working defaults so a minimal file only names the endpoints that differ
// from a local development setup.
package config

import "fmt"

// Config is the root configuration document.
type Config struct {
	Log      LogConfig      `yaml:"log" json:"log"`
	Ollama   OllamaConfig   `yaml:"ollama" json:"ollama"`
	OpenAI   OpenAIConfig   `yaml:"openai" json:"openai"`
	Qdrant   QdrantConfig   `yaml:"qdrant" json:"qdrant"`
	Tavily   TavilyConfig   `yaml:"tavily" json:"tavily"`
	Browser  BrowserConfig  `yaml:"browser" json:"browser"`
	Workflow WorkflowConfig `yaml:"workflow" json:"workflow"`
	Ingest   IngestConfig   `yaml:"ingest" json:"ingest"`
	Chat     ChatConfig     `yaml:"chat" json:"chat"`
	HTTP     HTTPConfig     `yaml:"http" json:"http"`
	Redis    RedisConfig    `yaml:"redis" json:"redis"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text or json
}

// OllamaConfig selects the local model server. Generation and embedding can
// use different models against the same host.
type OllamaConfig struct {
	Host           string `yaml:"host" json:"host"`
	Model          string `yaml:"model" json:"model"`
	EmbeddingModel string `yaml:"embedding_model" json:"embedding_model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" json:"api_key"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	Model   string `yaml:"model" json:"model"`
}

type QdrantConfig struct {
	Host       string `yaml:"host" json:"host"`
	Port       int    `yaml:"port" json:"port"`
	Collection string `yaml:"collection" json:"collection"`
	UseTLS     bool   `yaml:"use_tls" json:"use_tls"`
}

type TavilyConfig struct {
	APIKey     string `yaml:"api_key" json:"api_key"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
	MaxResults int    `yaml:"max_results" json:"max_results"`
}

// BrowserConfig tunes the headless-browser web searcher, used when no
// Tavily key is configured.
type BrowserConfig struct {
	Headless   bool `yaml:"headless" json:"headless"`
	TimeoutSec int  `yaml:"timeout_sec" json:"timeout_sec"`
	MaxResults int  `yaml:"max_results" json:"max_results"`
}

type WorkflowConfig struct {
	Variant             string  `yaml:"variant" json:"variant"` // basic, suggestion, search
	NumResults          int     `yaml:"num_results" json:"num_results"`
	RerankTopK          int     `yaml:"rerank_top_k" json:"rerank_top_k"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold"`
	MaxSteps            int     `yaml:"max_steps" json:"max_steps"`
}

type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size" json:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`
}

type ChatConfig struct {
	HistoryLimit int `yaml:"history_limit" json:"history_limit"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// RedisConfig enables the persistent chat history store. An empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// Default returns a config suitable for an all-local development setup.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Ollama: OllamaConfig{
			Host:           "http://localhost:11434",
			Model:          "llama3.2",
			EmbeddingModel: "nomic-embed-text",
		},
		OpenAI: OpenAIConfig{Model: "gpt-4o-mini"},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "lodestar",
		},
		Tavily:  TavilyConfig{BaseURL: "https://api.tavily.com", MaxResults: 3},
		Browser: BrowserConfig{Headless: true, TimeoutSec: 30, MaxResults: 5},
		Workflow: WorkflowConfig{
			Variant:             "search",
			NumResults:          5,
			RerankTopK:          3,
			ConfidenceThreshold: 0.9,
			MaxSteps:            16,
		},
		Ingest: IngestConfig{ChunkSize: 1000, ChunkOverlap: 200},
		Chat:   ChatConfig{HistoryLimit: 20},
		HTTP:   HTTPConfig{Addr: ":8080"},
	}
}

// Validate rejects values the wiring layer cannot recover from.
func (c *Config) Validate() error {
	switch c.Workflow.Variant {
	case "basic", "suggestion", "search":
	default:
		return fmt.Errorf("unknown workflow variant %q", c.Workflow.Variant)
	}
	// Zero means "use the default" in the workflow layer, so an explicit 0
	// would be silently rewritten; reject it here instead.
	if c.Workflow.ConfidenceThreshold <= 0 || c.Workflow.ConfidenceThreshold >= 1 {
		return fmt.Errorf("confidence threshold %v out of range (0, 1)", c.Workflow.ConfidenceThreshold)
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant collection name is required")
	}
	return nil
}
