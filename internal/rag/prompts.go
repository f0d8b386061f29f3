package rag

import (
	"fmt"
	"strings"
)

const generateSystem = `Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
Use three sentences maximum and keep the answer as concise as possible.
Always say "thanks for asking!" at the end of the answer.`

const graderSystem = `You are a grader assessing relevance of a retrieved document to a user question.
If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant.
Give a binary score 'yes' or 'no' to indicate whether the document is relevant to the question.`

const evaluatorSystem = `You are AnswerEvaluatorAI, an expert system for evaluating the accuracy and completeness of answers based on provided documents.
Your objective:
1. Assess whether the given Answer fully and correctly addresses the Question, using evidence from the Document.
2. Determine if the answer is factually accurate and fully supported by the content of the provided document.
3. Check for coverage completeness: does the answer address all key aspects of the question that are present or inferable from the document?
4. Identify any irrelevant, unsupported, or hallucinated claims.
Confidence scoring:
1. Output a confidence score between 0 and 1, indicating how certain you are that the answer is accurate and complete.
   1.0 = fully correct and complete; 0.0 = inaccurate or entirely unsupported.
Missing or uncertain information:
1. If the answer is incomplete, specify which facts, concepts, or perspectives are missing.
2. Highlight ambiguities or uncertainties in the document that limit a complete answer.
Enrichment suggestions:
1. Recommend up to three additional sources, topics, or data types that would help fill the missing gaps or improve retrieval quality.
2. Keep suggestions specific and actionable (e.g. "Add documentation on AWS SES inbound email processing", not "find more info about AWS").`

const rewriterSystem = `You are a question re-writer that converts an input question to a better version that is optimized
for retrieval. Look at the input and try to reason about the underlying semantic intent / meaning.`

const enrichmentSystem = `You are an expert at enriching a knowledge base. You provide suggestions and missing information for a given query.
Provide the following:
Missing or uncertain information:
1. Specify which facts, concepts, or perspectives are missing.
2. Highlight ambiguities or uncertainties that limit a complete answer.
Enrichment suggestions:
1. Recommend up to three additional sources, topics, or data types that would help fill the missing gaps or improve retrieval quality.
2. Keep suggestions specific and actionable (e.g. "Add documentation on AWS SES inbound email processing", not "find more info about AWS").`

// EnrichmentPlaceholderAnswer is the fixed answer set by the enrichment
// fallback when no relevant local evidence exists.
const EnrichmentPlaceholderAnswer = "Sorry, no relevant document was found to answer the query. Check the suggestions for ways to enrich the knowledge base."

// ContextBlock concatenates document contents into the single context block
// used by grading, generation, and confidence prompts.
func ContextBlock(docs []Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, "\n\n")
}

func generatePrompt(question string, docs []Document) []Message {
	return []Message{
		{Role: RoleSystem, Content: generateSystem},
		{Role: RoleUser, Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", ContextBlock(docs), question)},
	}
}

func gradePrompt(question string, docs []Document) []Message {
	return []Message{
		{Role: RoleSystem, Content: graderSystem},
		{Role: RoleUser, Content: fmt.Sprintf("Document:\n%s\n\nQuestion: %s", ContextBlock(docs), question)},
	}
}

func confidencePrompt(question, answer string, docs []Document) []Message {
	return []Message{
		{Role: RoleSystem, Content: evaluatorSystem},
		{Role: RoleUser, Content: fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nAnswer: %s", ContextBlock(docs), question, answer)},
	}
}

func rewritePrompt(question string, suggestions, missingInfo []string) []Message {
	return []Message{
		{Role: RoleSystem, Content: rewriterSystem},
		{Role: RoleUser, Content: fmt.Sprintf(
			"Here is the initial question:\n\n%s\nSuggestions:\n%s\n\nMissing information:\n%s\nFormulate an improved question.",
			question, strings.Join(suggestions, "\n"), strings.Join(missingInfo, "\n"))},
	}
}

func enrichmentPrompt(question string) []Message {
	return []Message{
		{Role: RoleSystem, Content: enrichmentSystem},
		{Role: RoleUser, Content: "Question: " + question},
	}
}
