package mcpserver

import (
	"context"
	"strings"
	"testing"

	"lodestar/internal/chat"
	"lodestar/internal/ingest"
	"lodestar/internal/logging"
	"lodestar/internal/rag"
	"lodestar/pkg/flow"
)

type stubAnswerer struct{ answer string }

func (a *stubAnswerer) Execute(_ context.Context, question string) (*rag.Result, error) {
	return &rag.Result{
		State: rag.State{Question: question, Answer: a.answer, Confidence: 0.92},
		Trace: &flow.Trace{Status: flow.StatusDone},
	}, nil
}

type memorySink struct{ chunks []ingest.Chunk }

func (s *memorySink) Upsert(_ context.Context, chunks []ingest.Chunk) error {
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func newTestServer() (*Server, *memorySink) {
	sink := &memorySink{}
	svc := chat.NewService(&stubAnswerer{answer: "the answer"}, chat.NewMemoryHistory(), 10, logging.New("test"))
	return NewServer(svc, ingest.NewPipeline(sink, 1000, 200), "test"), sink
}

func TestHandleAsk(t *testing.T) {
	srv, _ := newTestServer()

	_, out, err := srv.handleAsk(context.Background(), nil, askInput{Question: "what is X?"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Answer != "the answer" || out.Confidence != 0.92 {
		t.Errorf("output = %+v", out)
	}
	if out.SessionID == "" {
		t.Error("expected a generated session id")
	}

	// Same session carries history across calls.
	_, out2, err := srv.handleAsk(context.Background(), nil, askInput{
		Question:  "follow up",
		SessionID: out.SessionID,
	})
	if err != nil {
		t.Fatal(err)
	}
	_, hist, err := srv.handleGetHistory(context.Background(), nil, getHistoryInput{SessionID: out2.SessionID})
	if err != nil {
		t.Fatal(err)
	}
	if len(hist.Messages) != 4 {
		t.Errorf("history length = %d, want 4", len(hist.Messages))
	}
}

func TestHandleAsk_EmptyQuestion(t *testing.T) {
	srv, _ := newTestServer()
	if _, _, err := srv.handleAsk(context.Background(), nil, askInput{}); err == nil {
		t.Error("expected error for empty question")
	}
}

func TestHandleIngestText(t *testing.T) {
	srv, sink := newTestServer()

	_, out, err := srv.handleIngestText(context.Background(), nil, ingestTextInput{
		Source: "runbook.md",
		Text:   strings.Repeat("procedure step. ", 20),
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Chunks == 0 || out.Chunks != len(sink.chunks) {
		t.Errorf("chunks = %d, sink has %d", out.Chunks, len(sink.chunks))
	}
	if sink.chunks[0].Source != "runbook.md" {
		t.Errorf("source = %q", sink.chunks[0].Source)
	}
}

func TestHandleIngestText_Empty(t *testing.T) {
	srv, _ := newTestServer()
	if _, _, err := srv.handleIngestText(context.Background(), nil, ingestTextInput{Source: "x"}); err == nil {
		t.Error("expected error for empty text")
	}
}
