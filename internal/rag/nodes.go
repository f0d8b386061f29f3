package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lodestar/internal/logging"
	"lodestar/pkg/flow"
)

// Node and branch-label names shared by the workflow graphs.
const (
	nodeRetrieve    = "retrieve"
	nodeGrade       = "grade_documents"
	nodeGenerate    = "generate"
	nodeWebSearch   = "web_search"
	nodeSuggest     = "suggest_enrichment"
	nodeConfidence  = "check_confidence"
	nodeRewrite     = "rewrite_query"
	labelGenerate   = flow.Label("generate")
	labelWebSearch  = flow.Label("web_search")
	labelSuggest    = flow.Label("suggest_enrichment")
	labelComplete   = flow.Label("complete")
	labelIncomplete = flow.Label("incomplete")
)

// nodes bundles the capability handles and tuning knobs behind the node
// functions. Handles are set once at workflow construction and shared
// read-only across concurrent invocations; all per-run data lives in State.
type nodes struct {
	retriever Retriever
	generator Generator
	searcher  WebSearcher
	opts      Options
	log       *slog.Logger
}

func newNodes(r Retriever, g Generator, s WebSearcher, opts Options) *nodes {
	return &nodes{retriever: r, generator: g, searcher: s, opts: opts, log: logging.New("rag")}
}

// retrieve queries the corpus with the current question. The result replaces
// the document set; no other side effects.
func (n *nodes) retrieve(ctx context.Context, s State) (Update, error) {
	docs, err := n.retriever.Retrieve(ctx, s.Question, n.opts.NumResults, n.opts.RerankTopK)
	if err != nil {
		return Update{}, fmt.Errorf("retrieve: %w", err)
	}
	n.log.Debug("retrieved documents", "count", len(docs))
	return Update{Documents: &docs}, nil
}

// gradeDocuments asks the grader whether the retrieved set is relevant to
// the question. An empty set short-circuits to not-relevant without calling
// the classifier; that is a deliberate cost saving, not an error path.
func (n *nodes) gradeDocuments(ctx context.Context, s State) (Update, error) {
	if len(s.Documents) == 0 {
		n.log.Debug("no documents retrieved, skipping grader")
		verdict := VerdictNotRelevant
		return Update{Relevance: &verdict}, nil
	}

	var grade RelevanceGrade
	if err := n.generator.InvokeStructured(ctx, gradePrompt(s.Question, s.Documents), &grade); err != nil {
		return Update{}, fmt.Errorf("grade documents: %w", err)
	}

	verdict := VerdictNotRelevant
	if grade.Relevant() {
		verdict = VerdictRelevant
	}
	n.log.Debug("graded documents", "verdict", string(verdict))
	return Update{Relevance: &verdict}, nil
}

// decideToGenerate routes on the grading verdict: relevant evidence goes
// straight to generation, anything else to the variant's fallback node.
func (n *nodes) decideToGenerate(fallback flow.Label) flow.Router[State] {
	return func(s State) flow.Label {
		if s.Relevance == VerdictRelevant {
			return labelGenerate
		}
		return fallback
	}
}

// generate produces the grounded answer from the current document set.
func (n *nodes) generate(ctx context.Context, s State) (Update, error) {
	answer, err := n.generator.Invoke(ctx, generatePrompt(s.Question, s.Documents))
	if err != nil {
		return Update{}, fmt.Errorf("generate: %w", err)
	}
	return Update{Answer: &answer}, nil
}

// webSearch issues the current question to the web searcher and wraps the
// aggregated snippets as a single synthetic document that replaces the
// document set.
func (n *nodes) webSearch(ctx context.Context, s State) (Update, error) {
	snippets, err := n.searcher.Search(ctx, s.Question)
	if err != nil {
		return Update{}, fmt.Errorf("web search: %w", err)
	}
	n.log.Debug("web search returned", "snippets", len(snippets))
	docs := []Document{{
		Content:  strings.Join(snippets, "\n"),
		Metadata: map[string]string{"source": SourceWebSearch},
	}}
	return Update{Documents: &docs}, nil
}

// suggestEnrichment handles the no-relevant-evidence terminal of the
// suggestion variant: ask for enrichment topics instead of answering, set
// the fixed placeholder answer, and pin confidence to zero.
func (n *nodes) suggestEnrichment(ctx context.Context, s State) (Update, error) {
	var out EnrichmentSuggestion
	if err := n.generator.InvokeStructured(ctx, enrichmentPrompt(s.Question), &out); err != nil {
		return Update{}, fmt.Errorf("suggest enrichment: %w", err)
	}
	answer := EnrichmentPlaceholderAnswer
	zero := 0.0
	return Update{
		Answer:      &answer,
		Confidence:  &zero,
		Suggestions: &out.Suggestions,
		MissingInfo: &out.MissingInfo,
	}, nil
}

// checkConfidence asks the evaluator to score the generated answer against
// its context.
func (n *nodes) checkConfidence(ctx context.Context, s State) (Update, error) {
	var score ConfidenceScore
	if err := n.generator.InvokeStructured(ctx, confidencePrompt(s.Question, s.Answer, s.Documents), &score); err != nil {
		return Update{}, fmt.Errorf("check confidence: %w", err)
	}
	n.log.Debug("confidence checked", "score", score.Confidence)
	return Update{
		Confidence:  &score.Confidence,
		Suggestions: &score.Suggestions,
		MissingInfo: &score.MissingInfo,
	}, nil
}

// decideEnd routes on the confidence threshold: above it the run completes,
// otherwise the query is rewritten for another search pass.
func (n *nodes) decideEnd(s State) flow.Label {
	if s.Confidence > n.opts.ConfidenceThreshold {
		return labelComplete
	}
	return labelIncomplete
}

// rewriteQuery produces an improved question from the evaluator's
// suggestions and missing-information lists. The rewrite fully replaces the
// question; the prior value is gone from state.
func (n *nodes) rewriteQuery(ctx context.Context, s State) (Update, error) {
	var out QuestionRewrite
	if err := n.generator.InvokeStructured(ctx, rewritePrompt(s.Question, s.Suggestions, s.MissingInfo), &out); err != nil {
		return Update{}, fmt.Errorf("rewrite query: %w", err)
	}
	if strings.TrimSpace(out.Query) == "" {
		return Update{}, fmt.Errorf("rewrite query: %w", &StructuredOutputError{Raw: out.Query, Err: fmt.Errorf("empty query")})
	}
	n.log.Debug("query rewritten", "query", out.Query)
	return Update{Question: &out.Query}, nil
}
