// Package rag implements corpus-grounded question answering as directed
// workflow graphs over a shared state: retrieval, relevance grading, answer
// generation, confidence self-assessment, and adaptive query rewriting.
// Three fixed variants are built from shared node primitives; all external
// capabilities (retrieval, generation, web search) are consumed through
// interfaces and never implemented here.
package rag

import (
	"context"

	"lodestar/pkg/flow"
)

// Default tuning values, matching the workflow prompts' assumptions.
const (
	DefaultNumResults          = 5
	DefaultRerankTopK          = 3
	DefaultConfidenceThreshold = 0.9

	// DefaultSearchMaxSteps bounds the search variant's rewrite cycle.
	// Four steps reach the first confidence check; each extra rewrite pass
	// costs four more, so 16 allows the initial pass plus three rewrites.
	DefaultSearchMaxSteps = 16
)

// Options tunes a workflow. The zero value selects all defaults.
type Options struct {
	NumResults          int     // documents requested from the retriever
	RerankTopK          int     // rerank depth passed through to the retriever
	ConfidenceThreshold float64 // decide-end boundary; scores strictly above it complete the run
	MaxSteps            int     // whole-run node budget owned by the executor
	Observer            flow.Observer
}

func (o Options) withDefaults() Options {
	if o.NumResults <= 0 {
		o.NumResults = DefaultNumResults
	}
	if o.RerankTopK <= 0 {
		o.RerankTopK = DefaultRerankTopK
	}
	if o.ConfidenceThreshold == 0 {
		o.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultSearchMaxSteps
	}
	return o
}

// Result is the terminal state of one invocation plus its execution trace.
type Result struct {
	State
	Trace *flow.Trace
}

// Exhausted reports whether the run was cut off by the step budget and the
// answer is the best available rather than a confident terminal one.
func (r *Result) Exhausted() bool {
	return r.Trace != nil && r.Trace.Status == flow.StatusExhausted
}

// Workflow is one compiled variant. Construct once, share freely: Execute
// creates an independent state per call and the capability handles are
// read-only, so concurrent invocations need no locking.
type Workflow struct {
	graph *flow.Graph[State, Update]
}

// Execute runs the workflow to completion for one question and returns the
// terminal state. There is no partial output: the call either returns a
// terminal state (including a budget-exhausted best effort) or fails.
func (w *Workflow) Execute(ctx context.Context, question string) (*Result, error) {
	state, trace, err := w.graph.Run(ctx, State{Question: question})
	if err != nil {
		return nil, err
	}
	return &Result{State: state, Trace: trace}, nil
}

// Graph exposes the compiled graph, mainly for introspection in tests and
// the CLI's explain output.
func (w *Workflow) Graph() *flow.Graph[State, Update] { return w.graph }

// NewBasicWorkflow builds the linear variant: retrieve, then generate.
func NewBasicWorkflow(retriever Retriever, generator Generator, opts Options) (*Workflow, error) {
	opts = opts.withDefaults()
	n := newNodes(retriever, generator, nil, opts)

	graph, err := flow.NewBuilder("basic-rag", Apply).
		AddNode(nodeRetrieve, n.retrieve).
		AddNode(nodeGenerate, n.generate).
		AddEdge(nodeRetrieve, nodeGenerate).
		AddEdge(nodeGenerate, flow.End).
		Compile(nodeRetrieve,
			flow.WithMaxSteps[State, Update](opts.MaxSteps),
			flow.WithObserver[State, Update](opts.Observer),
		)
	if err != nil {
		return nil, err
	}
	return &Workflow{graph: graph}, nil
}

// NewSuggestionWorkflow builds the variant that falls back to enrichment
// suggestions when no relevant local evidence exists. The fallback is
// terminal: no generation, no loop.
func NewSuggestionWorkflow(retriever Retriever, generator Generator, opts Options) (*Workflow, error) {
	opts = opts.withDefaults()
	n := newNodes(retriever, generator, nil, opts)

	graph, err := flow.NewBuilder("suggestion-rag", Apply).
		AddNode(nodeRetrieve, n.retrieve).
		AddNode(nodeGrade, n.gradeDocuments).
		AddNode(nodeGenerate, n.generate).
		AddNode(nodeSuggest, n.suggestEnrichment).
		AddEdge(nodeRetrieve, nodeGrade).
		AddBranch(nodeGrade, n.decideToGenerate(labelSuggest), map[flow.Label]string{
			labelGenerate: nodeGenerate,
			labelSuggest:  nodeSuggest,
		}).
		AddEdge(nodeGenerate, flow.End).
		AddEdge(nodeSuggest, flow.End).
		Compile(nodeRetrieve,
			flow.WithMaxSteps[State, Update](opts.MaxSteps),
			flow.WithObserver[State, Update](opts.Observer),
		)
	if err != nil {
		return nil, err
	}
	return &Workflow{graph: graph}, nil
}

// NewSearchWorkflow builds the full variant: grade, fall back to web search
// when local evidence is irrelevant, self-assess the answer, and loop
// through query rewriting and another web search while confidence stays at
// or below the threshold. The executor's step budget bounds the loop; an
// exhausted run still returns the last answer and assessment.
func NewSearchWorkflow(retriever Retriever, generator Generator, searcher WebSearcher, opts Options) (*Workflow, error) {
	opts = opts.withDefaults()
	n := newNodes(retriever, generator, searcher, opts)

	graph, err := flow.NewBuilder("search-rag", Apply).
		AddNode(nodeRetrieve, n.retrieve).
		AddNode(nodeGrade, n.gradeDocuments).
		AddNode(nodeGenerate, n.generate).
		AddNode(nodeWebSearch, n.webSearch).
		AddNode(nodeConfidence, n.checkConfidence).
		AddNode(nodeRewrite, n.rewriteQuery).
		AddEdge(nodeRetrieve, nodeGrade).
		AddBranch(nodeGrade, n.decideToGenerate(labelWebSearch), map[flow.Label]string{
			labelGenerate:  nodeGenerate,
			labelWebSearch: nodeWebSearch,
		}).
		AddEdge(nodeWebSearch, nodeGenerate).
		AddEdge(nodeGenerate, nodeConfidence).
		AddBranch(nodeConfidence, n.decideEnd, map[flow.Label]string{
			labelComplete:   flow.End,
			labelIncomplete: nodeRewrite,
		}).
		AddEdge(nodeRewrite, nodeWebSearch).
		Compile(nodeRetrieve,
			flow.WithMaxSteps[State, Update](opts.MaxSteps),
			flow.WithObserver[State, Update](opts.Observer),
		)
	if err != nil {
		return nil, err
	}
	return &Workflow{graph: graph}, nil
}
