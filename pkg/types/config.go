// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CorpusConfig holds settings for the corpus store.
type CorpusConfig struct {
	// CorpusDir is the base directory for the corpus (contains index/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// RetrievalConfig holds settings for candidate retrieval.
type RetrievalConfig struct {
	// DefaultLimit is the document limit applied when the caller gives
	// none (default 10).
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`

	// MaxLimit is the hard ceiling on the requested limit; larger
	// values are clamped (default 200).
	MaxLimit int `json:"max_limit" yaml:"max_limit"`

	// OverfetchFactor is the multiple of the requested limit fetched
	// from the corpus so the scorer has material to rank (default 3).
	OverfetchFactor int `json:"overfetch_factor" yaml:"overfetch_factor"`
}

// ScoringWeights are the relative weights of the relevance sub-scores.
// They are renormalized over the methods actually available, so absent
// embeddings shift weight to the other methods rather than penalizing
// the document.
type ScoringWeights struct {
	Lexical     float64 `json:"lexical" yaml:"lexical"`
	Statistical float64 `json:"statistical" yaml:"statistical"`
	Semantic    float64 `json:"semantic" yaml:"semantic"`
}

// ScoringConfig holds settings for relevance scoring.
type ScoringConfig struct {
	// Weights combine the sub-scores (defaults: lexical 0.3,
	// statistical 0.4, semantic 0.3; lexical 0.5 / statistical 0.5
	// when semantic similarity is disabled).
	Weights ScoringWeights `json:"weights" yaml:"weights"`

	// MinRelevance excludes candidates scoring below it from the
	// context pool (default 0.1). The best candidate is admitted even
	// when all score below the threshold.
	MinRelevance float64 `json:"min_relevance" yaml:"min_relevance"`

	// FloorScore is the minimum score any candidate receives, so thin
	// but plausible matches are not discarded outright (default 0.1).
	FloorScore float64 `json:"floor_score" yaml:"floor_score"`

	// UseSemanticSimilarity enables the embedding cosine sub-score when
	// an embedder is configured.
	UseSemanticSimilarity bool `json:"use_semantic_similarity" yaml:"use_semantic_similarity"`

	// Workers bounds the concurrent scoring goroutines (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// ContextConfig holds settings for context assembly.
type ContextConfig struct {
	// MaxDocuments caps the number of documents in the assembled
	// context (default 10).
	MaxDocuments int `json:"max_documents" yaml:"max_documents"`

	// MaxChars caps the total character budget of the assembled
	// context (default 8000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// PerDocumentChars caps each document's contribution so one long
	// abstract cannot monopolize the budget (default 1000).
	PerDocumentChars int `json:"per_document_chars" yaml:"per_document_chars"`
}

// GenerationConfig holds settings for the text-generation backend.
type GenerationConfig struct {
	// Model is the generation model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxSafetyRetries bounds attempts after content-safety rejections,
	// each with progressively more conservative sanitization (default 4
	// total attempts).
	MaxSafetyRetries int `json:"max_safety_retries" yaml:"max_safety_retries"`

	// MaxTransportRetries bounds attempts after transport or quota
	// failures (default 3).
	MaxTransportRetries int `json:"max_transport_retries" yaml:"max_transport_retries"`

	// EmbeddingModel names the embedding model for semantic similarity.
	// Empty disables question embedding.
	EmbeddingModel string `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty"`
}

// CacheConfig holds settings for the answer cache.
type CacheConfig struct {
	// TTL is how long a cached answer stays valid (default 1h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// Capacity is the maximum number of cached answers before the
	// least-recently-used entry is evicted (default 128).
	Capacity int `json:"capacity" yaml:"capacity"`
}

// EngineConfig groups all stage configurations for the answer pipeline.
type EngineConfig struct {
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring"`
	Context    ContextConfig    `json:"context" yaml:"context"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`

	// PipelineTimeout bounds one full pipeline run. On expiry in-flight
	// work is abandoned and an unavailable result is returned (default 60s).
	PipelineTimeout time.Duration `json:"pipeline_timeout" yaml:"pipeline_timeout"`
}
