// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QuestionType categorizes a research question. The type selects the
// synthesis prompt template and shapes follow-up generation.
type QuestionType string

const (
	QuestionWhat       QuestionType = "what"
	QuestionHow        QuestionType = "how"
	QuestionWhy        QuestionType = "why"
	QuestionComparison QuestionType = "comparison"
	QuestionList       QuestionType = "list"
	QuestionDefinition QuestionType = "definition"
	QuestionTrend      QuestionType = "trend"
	QuestionChallenge  QuestionType = "challenge"
	QuestionOther      QuestionType = "other"
)

// Question is a classified research question with its extracted search
// terms and optional retrieval constraints.
type Question struct {
	// Raw is the question text as submitted by the caller.
	Raw string `json:"raw" yaml:"raw"`

	// Normalized is the trimmed, lowercased question text used for
	// cache keying and scoring.
	Normalized string `json:"normalized" yaml:"normalized"`

	// Type is the classified question category.
	Type QuestionType `json:"type" yaml:"type"`

	// KeyTerms are the salient terms extracted from the question,
	// stop-words removed, deduplicated preserving first occurrence.
	KeyTerms []string `json:"key_terms" yaml:"key_terms"`

	// Topic is an optional topic filter applied during retrieval.
	Topic string `json:"topic,omitempty" yaml:"topic,omitempty"`

	// Limit is the requested number of documents to consider.
	Limit int `json:"limit" yaml:"limit"`
}
