// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the answer-engine pipeline.
package types

import "time"

// Document holds the metadata snapshot of a paper held in the corpus.
// Documents are immutable once ingested; the engine only reads them.
type Document struct {
	// ID is a unique slug for the document (e.g. "2301.07041").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract or body summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the journal, conference, or preprint server.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Citations is the citation count reported by the source.
	Citations int `json:"citations" yaml:"citations"`

	// Date is the publication date. Zero when unknown.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	// Embedding is a precomputed vector for semantic similarity.
	// Nil when no embedding model processed the document.
	Embedding []float64 `json:"embedding,omitempty" yaml:"embedding,omitempty"`
}

// SubScores breaks a composite relevance score into its contributing
// methods, for explainability and testing.
type SubScores struct {
	// Lexical is the token-overlap score between question terms and the
	// document title and abstract.
	Lexical float64 `json:"lexical"`

	// Statistical is the min-max normalized BM25 score against the
	// candidate set.
	Statistical float64 `json:"statistical"`

	// Semantic is the cosine similarity between question and document
	// embeddings. Zero when either embedding is absent.
	Semantic float64 `json:"semantic"`
}

// ScoredDocument pairs a corpus document with its composite relevance
// score in [0,1] and the per-method sub-scores that produced it.
type ScoredDocument struct {
	Document Document  `json:"document"`
	Score    float64   `json:"score"`
	Sub      SubScores `json:"sub_scores"`
}

// Source is a citation entry on an AnswerResult: which document
// contributed, how relevant it was, and a short excerpt.
type Source struct {
	// DocumentID identifies the cited document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Title is the cited document's title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the cited document's authors.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Relevance is the composite relevance score in [0,1].
	Relevance float64 `json:"relevance" yaml:"relevance"`

	// Excerpt is a short snippet of the document text used in the context.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}
