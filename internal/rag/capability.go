package rag

import (
	"context"
	"fmt"
)

// Message roles for generator prompts.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a generator prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Retriever is the document-corpus capability. Results come back most
// relevant first per the provider's own ranking; rerankTopK asks the
// provider to apply its secondary reranking to that many leading results
// (0 disables it). An empty result is valid.
type Retriever interface {
	Retrieve(ctx context.Context, query string, nResults, rerankTopK int) ([]Document, error)
}

// Generator is the language-model capability. Invoke returns free text.
// InvokeStructured decodes the model response into out and fails with a
// *StructuredOutputError when the response does not conform.
type Generator interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
	InvokeStructured(ctx context.Context, messages []Message, out any) error
}

// WebSearcher is the external search capability: text snippets in provider
// order, no relevance guarantee.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// StructuredOutputError reports a structured-mode model response that failed
// to decode against the requested schema. It is fatal for the invocation;
// nothing in the workflow retries or defaults around it.
type StructuredOutputError struct {
	Raw string // the offending model output, for diagnostics
	Err error
}

func (e *StructuredOutputError) Error() string {
	return fmt.Sprintf("structured output did not match schema: %v", e.Err)
}

func (e *StructuredOutputError) Unwrap() error { return e.Err }
