// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve queries the corpus for candidate documents matching
// a classified question. It over-fetches relative to the requested
// limit so the scorer has enough material to rank, and deduplicates
// candidates by identifier and normalized title.
package retrieve

import (
	"context"
	"strings"
	"unicode"

	"github.com/pdiddy/answer-engine/internal/retry"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// Corpus is the read-only document collection the retriever queries.
// Implementations must return an empty slice for "no results" and an
// error only for underlying connectivity failure.
type Corpus interface {
	Query(ctx context.Context, terms []string, topic string, limit int) ([]types.Document, error)
}

// Retriever fetches candidate documents for scoring.
type Retriever struct {
	corpus Corpus
	cfg    types.RetrievalConfig
	policy retry.Policy
}

// New creates a Retriever over the given corpus.
func New(corpus Corpus, cfg types.RetrievalConfig) *Retriever {
	return &Retriever{
		corpus: corpus,
		cfg:    cfg,
		policy: retry.Policy{},
	}
}

// ClampLimit normalizes a requested limit: zero or unset falls back to
// the default, values above the ceiling are clamped rather than
// rejected. Negative limits are the caller's input error and are
// checked at the engine boundary before reaching here.
func (r *Retriever) ClampLimit(limit int) int {
	defaultLimit := r.cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	maxLimit := r.cfg.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 200
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// Retrieve queries the corpus with the question's key terms OR-combined
// and the topic filter ANDed when present. It fetches up to
// OverfetchFactor times the clamped limit and returns the deduplicated
// candidate set. Fewer documents than requested, including zero, is a
// valid outcome. Corpus failures are retried before being returned.
func (r *Retriever) Retrieve(ctx context.Context, q types.Question) ([]types.Document, error) {
	limit := r.ClampLimit(q.Limit)

	overfetch := r.cfg.OverfetchFactor
	if overfetch <= 0 {
		overfetch = 3
	}

	var docs []types.Document
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var qerr error
		docs, qerr = r.corpus.Query(ctx, q.KeyTerms, q.Topic, limit*overfetch)
		return retry.Transient(qerr)
	})
	if err != nil {
		return nil, err
	}

	return dedupe(docs), nil
}

// dedupe removes documents sharing an ID or normalized title, keeping
// the first occurrence (the corpus orders by rank, so first is best).
func dedupe(docs []types.Document) []types.Document {
	seen := make(map[string]bool, len(docs)*2)
	var unique []types.Document

	for _, doc := range docs {
		idKey := "id:" + doc.ID
		titleKey := "title:" + normalizeTitle(doc.Title)

		if seen[idKey] || (titleKey != "title:" && seen[titleKey]) {
			continue
		}
		seen[idKey] = true
		if titleKey != "title:" {
			seen[titleKey] = true
		}
		unique = append(unique, doc)
	}
	return unique
}

// normalizeTitle returns a lowercased, punctuation-stripped version of
// the title for duplicate detection.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
