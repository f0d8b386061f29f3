package flow

import (
	"log/slog"
	"time"
)

// EventType classifies run events for filtering and routing.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventNodeExit  EventType = "node_exit"
	EventBranch    EventType = "branch"
	EventRunDone   EventType = "run_done"
	EventExhausted EventType = "run_exhausted"
	EventRunError  EventType = "run_error"
)

// Event is a single observation from a graph run.
type Event struct {
	Type    EventType
	Graph   string
	Node    string
	Label   Label
	Next    string
	Step    int
	Elapsed time.Duration
	Error   error
}

// Observer receives events during a run. Single-method design (like
// http.Handler) so adding new event types never breaks existing observers.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// MultiObserver fans out events to multiple observers.
type MultiObserver []Observer

func (m MultiObserver) OnEvent(e Event) {
	for _, obs := range m {
		obs.OnEvent(e)
	}
}

// LogObserver writes run events as structured slog lines.
type LogObserver struct {
	Logger *slog.Logger
}

func (o *LogObserver) OnEvent(e Event) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	args := []any{"event", string(e.Type), "graph", e.Graph}
	if e.Node != "" {
		args = append(args, "node", e.Node)
	}
	if e.Label != "" {
		args = append(args, "label", string(e.Label))
	}
	if e.Next != "" {
		args = append(args, "next", e.Next)
	}
	if e.Elapsed > 0 {
		args = append(args, "elapsed", e.Elapsed.String())
	}

	switch e.Type {
	case EventRunError:
		args = append(args, "error", e.Error)
		logger.Error("graph run failed", args...)
	case EventExhausted:
		logger.Warn("graph step budget exhausted", args...)
	default:
		logger.Debug("graph event", args...)
	}
}

func emit(obs Observer, e Event) {
	if obs != nil {
		obs.OnEvent(e)
	}
}
