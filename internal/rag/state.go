package rag

// Verdict is the binary outcome of grading retrieved documents against a question.
type Verdict string

const (
	VerdictRelevant    Verdict = "relevant"
	VerdictNotRelevant Verdict = "not_relevant"
)

// SourceWebSearch tags the synthetic document produced by the web search fallback.
const SourceWebSearch = "web_search"

// Document is one unit of retrieved evidence. Documents are produced only by
// capability providers; the workflow never fabricates content except the
// single tagged web-search document.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// State is the record threaded through every workflow node. A fresh State
// with only Question set is created per invocation; nothing outlives the run.
type State struct {
	Question    string     `json:"question"`
	Documents   []Document `json:"documents,omitempty"` // most relevant first
	Relevance   Verdict    `json:"relevance,omitempty"`
	Answer      string     `json:"answer,omitempty"`
	Confidence  float64    `json:"confidence"`
	Suggestions []string   `json:"suggestions,omitempty"`
	MissingInfo []string   `json:"missing_info,omitempty"`
}

// Update is the partial result of one node. A nil field leaves the state
// field untouched; a set field overwrites it wholesale. Documents and
// Question in particular are always replaced, never appended or merged, so
// after a rewrite the prior question is unreachable to any later node.
type Update struct {
	Question    *string
	Documents   *[]Document
	Relevance   *Verdict
	Answer      *string
	Confidence  *float64
	Suggestions *[]string
	MissingInfo *[]string
}

// Apply folds an Update into a State per the overwrite-if-present rule.
func Apply(s State, u Update) State {
	if u.Question != nil {
		s.Question = *u.Question
	}
	if u.Documents != nil {
		s.Documents = *u.Documents
	}
	if u.Relevance != nil {
		s.Relevance = *u.Relevance
	}
	if u.Answer != nil {
		s.Answer = *u.Answer
	}
	if u.Confidence != nil {
		s.Confidence = *u.Confidence
	}
	if u.Suggestions != nil {
		s.Suggestions = *u.Suggestions
	}
	if u.MissingInfo != nil {
		s.MissingInfo = *u.MissingInfo
	}
	return s
}
