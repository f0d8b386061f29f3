package flow

import "time"

// Run terminal statuses.
const (
	// StatusDone means the run reached the End pseudo-node.
	StatusDone = "done"
	// StatusExhausted means the step budget ran out before End was reached.
	// The state returned alongside is the best available result, not an error.
	StatusExhausted = "exhausted"
	// StatusError means a node failed or the graph routing was defective.
	StatusError = "error"
)

// StepRecord logs one completed node execution and the route taken from it.
type StepRecord struct {
	Node    string        `json:"node"`
	Label   Label         `json:"label,omitempty"` // branch label, empty for static edges
	Next    string        `json:"next"`
	Elapsed time.Duration `json:"elapsed"`
}

// Trace is the execution record of a single run: every step in order,
// per-node visit counts, and the terminal status. Runs over the same graph
// with deterministic nodes produce identical traces.
type Trace struct {
	Graph  string         `json:"graph"`
	Status string         `json:"status"`
	Steps  []StepRecord   `json:"steps"`
	Visits map[string]int `json:"visits"`
}

func newTrace(graph string) *Trace {
	return &Trace{Graph: graph, Visits: make(map[string]int)}
}

func (t *Trace) record(node string, label Label, next string, elapsed time.Duration) {
	t.Steps = append(t.Steps, StepRecord{Node: node, Label: label, Next: next, Elapsed: elapsed})
	t.Visits[node]++
}

// Path returns the ordered node names the run visited.
func (t *Trace) Path() []string {
	path := make([]string, len(t.Steps))
	for i, s := range t.Steps {
		path[i] = s.Node
	}
	return path
}
