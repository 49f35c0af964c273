package services

import "strings"

// DefaultGroundedAnswerPrompt is the built-in prompt used when no prompt store
// is configured or it cannot supply one.
const DefaultGroundedAnswerPrompt = `Use the context strictly to answer. If the context does not contain the answer, state clearly that it is not in the documents.

[Context]
{{context}}

[Question]
{{question}}

Answer:`

// Prompt placeholders substituted by BuildPrompt.
const (
	PlaceholderContext  = "{{context}}"
	PlaceholderQuestion = "{{question}}"
)

// contextSeparator joins retrieved passages.
const contextSeparator = "\n\n"

// BuildPrompt substitutes the retrieved context and the question into template.
// Substitution is single pass, so placeholder text inside the context or
// question is left alone.
func BuildPrompt(template, context, question string) string {
	r := strings.NewReplacer(PlaceholderContext, context, PlaceholderQuestion, question)
	return r.Replace(template)
}

// JoinContext concatenates passage texts in rank order.
func JoinContext(texts []string) string {
	return strings.Join(texts, contextSeparator)
}
