// Package openaigen adapts an OpenAI-compatible chat API to the generation
// capability. Structured invocations use JSON-schema response formats
// derived from the target Go type.
package openaigen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"lodestar/internal/logging"
	"lodestar/internal/rag"
)

// Generator talks to one OpenAI-compatible endpoint with a fixed model.
type Generator struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// New builds a Generator. baseURL may be empty for the public API, or point
// at any compatible server.
func New(apiKey, baseURL, model string) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    logging.New("openai"),
	}
}

func toChatMessages(messages []rag.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// Invoke sends the conversation and returns the completion text.
func (g *Generator) Invoke(ctx context.Context, messages []rag.Message) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toChatMessages(messages),
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// InvokeStructured constrains the completion with a JSON schema generated
// from out's type and decodes the result into out. Schema violations show
// up as a StructuredOutputError with the raw completion attached.
func (g *Generator) InvokeStructured(ctx context.Context, messages []rag.Message, out any) error {
	schema, err := jsonschema.GenerateSchemaForType(out)
	if err != nil {
		return fmt.Errorf("openai schema for %T: %w", out, err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toChatMessages(messages),
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "output",
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return &rag.StructuredOutputError{Raw: "", Err: fmt.Errorf("no choices in response")}
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		g.log.Warn("structured output did not parse", "model", g.model, "error", err)
		return &rag.StructuredOutputError{Raw: content, Err: err}
	}
	return nil
}
