// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AnswerStatus describes how the pipeline produced an AnswerResult.
// Every degraded mode resolves to a status rather than an error, so
// callers inspect the result instead of branching on failures.
type AnswerStatus string

const (
	// StatusSucceeded means the generation backend produced the answer,
	// possibly after safety or transport retries.
	StatusSucceeded AnswerStatus = "succeeded"

	// StatusFallback means sanitization retries were exhausted and the
	// answer is the deterministic template built from source material.
	StatusFallback AnswerStatus = "fallback"

	// StatusUnavailable means the generation backend could not be
	// reached after retries. The answer text is empty and confidence 0.
	StatusUnavailable AnswerStatus = "unavailable"

	// StatusNoCandidates means the corpus returned no documents. The
	// answer is an explanatory template with no sources and confidence 0.
	StatusNoCandidates AnswerStatus = "no_candidates"
)

// AnswerResult is the outcome of answering one question: the synthesized
// text, a confidence heuristic, the contributing sources, and metadata
// about how the result was produced.
type AnswerResult struct {
	// Answer is the synthesized answer text. Empty when Status is
	// StatusUnavailable.
	Answer string `json:"answer" yaml:"answer"`

	// Confidence is a heuristic reliability measure in [0,1]. It orders
	// results (more sources, longer substantiated answers score higher);
	// it is not a calibrated probability.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Sources lists contributing documents, sorted descending by
	// relevance with ties broken by document ID ascending.
	Sources []Source `json:"sources" yaml:"sources"`

	// QuestionType is the classified category of the input question.
	QuestionType QuestionType `json:"question_type" yaml:"question_type"`

	// FollowUps are suggested related questions. Empty for low
	// confidence results.
	FollowUps []string `json:"follow_ups,omitempty" yaml:"follow_ups,omitempty"`

	// Status records how the result was produced.
	Status AnswerStatus `json:"status" yaml:"status"`

	// LowRelevance is set when every candidate scored below the
	// relevance threshold and the best one was admitted anyway.
	LowRelevance bool `json:"low_relevance,omitempty" yaml:"low_relevance,omitempty"`

	// SafetyRetries counts content-safety rejections that were retried
	// before the final outcome.
	SafetyRetries int `json:"safety_retries,omitempty" yaml:"safety_retries,omitempty"`

	// Elapsed is the wall-clock pipeline duration.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// CacheHit reports whether the result was served from the cache.
	CacheHit bool `json:"cache_hit" yaml:"cache_hit"`
}
