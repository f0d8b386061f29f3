// Package ollamagen adapts a local Ollama server to the generation and
// embedding capabilities. Generation runs non-streaming with temperature
// zero so repeated invocations over the same context are reproducible.
package ollamagen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"lodestar/internal/logging"
	"lodestar/internal/rag"
)

const defaultTimeout = 120 * time.Second

// Generator talks to one Ollama host with a fixed chat model and a fixed
// embedding model.
type Generator struct {
	client         *api.Client
	model          string
	embeddingModel string
	log            *slog.Logger
}

// New builds a Generator for the given host URL. An empty host selects the
// local default.
func New(host, model, embeddingModel string) (*Generator, error) {
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama host: %w", err)
	}
	httpClient := &http.Client{Timeout: defaultTimeout}
	return &Generator{
		client:         api.NewClient(u, httpClient),
		model:          model,
		embeddingModel: embeddingModel,
		log:            logging.New("ollama"),
	}, nil
}

func toAPIMessages(messages []rag.Message) []api.Message {
	out := make([]api.Message, len(messages))
	for i, m := range messages {
		out[i] = api.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// Invoke sends the conversation and returns the full completion text.
func (g *Generator) Invoke(ctx context.Context, messages []rag.Message) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    g.model,
		Messages: toAPIMessages(messages),
		Options:  map[string]any{"temperature": 0.0},
		Stream:   &stream,
	}

	var content string
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return content, nil
}

// InvokeStructured forces JSON output mode and decodes the completion into
// out. A completion that is not valid JSON for out's shape is reported as a
// StructuredOutputError carrying the raw text.
func (g *Generator) InvokeStructured(ctx context.Context, messages []rag.Message, out any) error {
	stream := false
	req := &api.ChatRequest{
		Model:    g.model,
		Messages: toAPIMessages(messages),
		Options:  map[string]any{"temperature": 0.0},
		Format:   json.RawMessage(`"json"`),
		Stream:   &stream,
	}

	var content string
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return fmt.Errorf("ollama chat: %w", err)
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		g.log.Warn("structured output did not parse", "model", g.model, "error", err)
		return &rag.StructuredOutputError{Raw: content, Err: err}
	}
	return nil
}

// Embed returns the embedding vector for one text using the configured
// embedding model.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  g.embeddingModel,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}
	vector := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}
