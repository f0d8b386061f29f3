// Package chat runs question-answering sessions: each question goes through
// the configured workflow and the exchange is recorded in a per-session
// history store.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"lodestar/internal/rag"
)

// Answerer is the workflow surface the service needs.
type Answerer interface {
	Execute(ctx context.Context, question string) (*rag.Result, error)
}

// Service ties a workflow to a history store.
type Service struct {
	answerer     Answerer
	history      History
	historyLimit int
	log          *slog.Logger
}

// NewService builds a Service. historyLimit bounds what Transcript returns;
// non-positive means 20.
func NewService(answerer Answerer, history History, historyLimit int, log *slog.Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Service{answerer: answerer, history: history, historyLimit: historyLimit, log: log}
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string { return uuid.NewString() }

// Ask runs one question through the workflow and records the exchange. A
// workflow failure records nothing.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (*rag.Result, error) {
	res, err := s.answerer.Execute(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	err = s.history.Append(ctx, sessionID,
		rag.Message{Role: rag.RoleUser, Content: question},
		rag.Message{Role: rag.RoleAssistant, Content: res.Answer},
	)
	if err != nil {
		// The answer is already computed; losing history is not fatal.
		s.log.Warn("failed to record history", "session", sessionID, "error", err)
	}

	s.log.Info("answered question",
		"session", sessionID,
		"confidence", res.Confidence,
		"exhausted", res.Exhausted(),
	)
	return res, nil
}

// Transcript returns the newest messages of a session, bounded by the
// service's history limit.
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]rag.Message, error) {
	return s.history.Recent(ctx, sessionID, s.historyLimit)
}

// Reset clears a session's history.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	return s.history.Clear(ctx, sessionID)
}
