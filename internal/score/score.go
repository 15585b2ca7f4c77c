// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes composite relevance scores for candidate
// documents. Up to three methods contribute: lexical term overlap,
// BM25-style statistical ranking against the candidate set, and cosine
// similarity over embeddings when available. Weights renormalize over
// the methods a document actually has, and every score lands in [0,1].
package score

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const (
	defaultFloorScore   = 0.1
	defaultMinRelevance = 0.1
	defaultWorkers      = 4
)

// Embedder turns question text into an embedding vector for semantic
// similarity. A nil Embedder disables the semantic method.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Scorer ranks candidate documents against a question.
type Scorer struct {
	cfg      types.ScoringConfig
	embedder Embedder
}

// New creates a Scorer. embedder may be nil.
func New(cfg types.ScoringConfig, embedder Embedder) *Scorer {
	return &Scorer{cfg: cfg, embedder: embedder}
}

// Output is the result of scoring one candidate set.
type Output struct {
	// Scored holds every candidate with its composite score, sorted
	// descending with document ID as tiebreak.
	Scored []types.ScoredDocument

	// Pool is the subset admitted to context assembly: candidates at
	// or above the relevance threshold, or the single best candidate
	// when all fall below it.
	Pool []types.ScoredDocument

	// LowRelevance reports that every candidate scored below the
	// threshold and the best one was admitted by the floor guarantee.
	LowRelevance bool
}

// Score computes composite scores for all candidates. Per-document
// scoring runs across a bounded worker pool; the output ordering is
// deterministic regardless of completion order. Malformed or empty
// document text yields the floor score, never an error.
func (s *Scorer) Score(ctx context.Context, q types.Question, docs []types.Document) (Output, error) {
	if len(docs) == 0 {
		return Output{}, nil
	}

	stats := buildCorpusStats(docs)

	var questionEmb []float64
	if s.cfg.UseSemanticSimilarity && s.embedder != nil {
		// A failed embedding degrades to lexical+statistical scoring
		// rather than failing the pipeline.
		if emb, err := s.embedder.Embed(ctx, q.Normalized); err == nil {
			questionEmb = emb
		}
	}

	scored := make([]types.ScoredDocument, len(docs))
	raw := make([]float64, len(docs)) // unnormalized BM25

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range docs {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			doc := docs[i]
			scored[i] = types.ScoredDocument{
				Document: doc,
				Sub: types.SubScores{
					Lexical:  lexicalScore(q.KeyTerms, doc),
					Semantic: semanticScore(questionEmb, doc.Embedding),
				},
			}
			raw[i] = stats.bm25(q.KeyTerms, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, err
	}

	// BM25 normalization needs the whole candidate set, so it happens
	// after the pool drains.
	for i, norm := range minMaxNormalize(raw) {
		scored[i].Sub.Statistical = norm
		hasSemantic := len(questionEmb) > 0 && len(docs[i].Embedding) == len(questionEmb)
		scored[i].Score = s.combine(scored[i].Sub, hasSemantic)
	}

	sortScored(scored)

	pool, lowRelevance := s.admit(scored)
	return Output{Scored: scored, Pool: pool, LowRelevance: lowRelevance}, nil
}

// combine applies the configured weights to the sub-scores, dropping
// the semantic weight when embeddings are absent, and clamps the result
// into [floor, 1].
func (s *Scorer) combine(sub types.SubScores, hasSemantic bool) float64 {
	w := s.cfg.Weights
	if w.Lexical == 0 && w.Statistical == 0 && w.Semantic == 0 {
		if s.cfg.UseSemanticSimilarity {
			w = types.ScoringWeights{Lexical: 0.3, Statistical: 0.4, Semantic: 0.3}
		} else {
			w = types.ScoringWeights{Lexical: 0.5, Statistical: 0.5}
		}
	}
	if !hasSemantic {
		w.Semantic = 0
	}

	total := w.Lexical + w.Statistical + w.Semantic
	if total <= 0 {
		return s.floor()
	}

	score := (w.Lexical*sub.Lexical + w.Statistical*sub.Statistical + w.Semantic*sub.Semantic) / total
	return s.clampToFloor(score)
}

func (s *Scorer) floor() float64 {
	if s.cfg.FloorScore > 0 {
		return s.cfg.FloorScore
	}
	return defaultFloorScore
}

// clampToFloor bounds a score into [floor, 1] and maps NaN to the floor.
func (s *Scorer) clampToFloor(score float64) float64 {
	floor := s.floor()
	if math.IsNaN(score) || score < floor {
		return floor
	}
	if score > 1 {
		return 1
	}
	return score
}

// admit filters the sorted candidates by the relevance threshold. When
// every candidate is below it, the single best one is admitted anyway
// so a non-empty candidate set never produces an empty context.
func (s *Scorer) admit(scored []types.ScoredDocument) ([]types.ScoredDocument, bool) {
	minRelevance := s.cfg.MinRelevance
	if minRelevance <= 0 {
		minRelevance = defaultMinRelevance
	}

	var pool []types.ScoredDocument
	for _, sd := range scored {
		if sd.Score >= minRelevance {
			pool = append(pool, sd)
		}
	}
	if len(pool) > 0 {
		return pool, false
	}
	return scored[:1], true
}

// sortScored orders by score descending, document ID ascending on ties.
func sortScored(scored []types.ScoredDocument) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Document.ID < scored[j].Document.ID
	})
}

// minMaxNormalize scales values into [0,1] across the set. A flat set
// maps to 1 when positive (a lone strong match should not be zeroed)
// and 0 otherwise.
func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	normalized := make([]float64, len(values))
	if hi-lo < 1e-12 {
		for i, v := range values {
			if v > 0 {
				normalized[i] = 1
			}
		}
		return normalized
	}

	for i, v := range values {
		normalized[i] = (v - lo) / (hi - lo)
	}
	return normalized
}

var wordPattern = regexp.MustCompile(`[a-z0-9][a-z0-9-]*`)

// tokenize lowercases text and splits it into word tokens.
func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// docText is the searchable text of a document.
func docText(doc types.Document) string {
	return doc.Title + " " + doc.Abstract
}
