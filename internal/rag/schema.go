package rag

// Structured-output record types. Generators decode model responses into
// these; a non-conforming response is a *StructuredOutputError.

// RelevanceGrade is the binary grader verdict.
type RelevanceGrade struct {
	// BinaryScore is "yes" when the documents are relevant to the question,
	// "no" otherwise.
	BinaryScore string `json:"binary_score"`
}

// Relevant reports whether the grade marks the documents relevant.
// Anything other than an explicit "yes" counts as not relevant.
func (g RelevanceGrade) Relevant() bool { return g.BinaryScore == "yes" }

// EnrichmentSuggestion is the structured output of the enrichment fallback:
// what the knowledge base is missing and what to add.
type EnrichmentSuggestion struct {
	Suggestions []string `json:"suggestions"`
	MissingInfo []string `json:"missing_info"`
}

// ConfidenceScore is the model's self-assessment of a generated answer.
// Model-judged, not ground truth.
type ConfidenceScore struct {
	Confidence  float64  `json:"confidence"` // 0 = unsupported, 1 = fully correct and complete
	MissingInfo []string `json:"missing_info"`
	Suggestions []string `json:"suggestions"`
}

// QuestionRewrite is the improved query produced from suggestions and
// missing information.
type QuestionRewrite struct {
	Query string `json:"query"`
}
