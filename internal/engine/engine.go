// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine orchestrates the answer pipeline: classify, retrieve,
// score, assemble, synthesize, estimate confidence, cache. It is the
// sole public entry point for answering questions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/answer-engine/internal/assemble"
	"github.com/pdiddy/answer-engine/internal/classify"
	"github.com/pdiddy/answer-engine/internal/qacache"
	"github.com/pdiddy/answer-engine/internal/retrieve"
	"github.com/pdiddy/answer-engine/internal/score"
	"github.com/pdiddy/answer-engine/internal/synth"
	"github.com/pdiddy/answer-engine/pkg/types"
)

const defaultPipelineTimeout = 60 * time.Second

// ErrInvalidInput is returned for malformed caller input: an empty
// question or a negative limit. It is the only error AnswerQuestion
// returns; every degraded condition resolves to an AnswerResult with
// a status instead.
var ErrInvalidInput = errors.New("invalid input")

// Engine answers questions against a document corpus. Construct with
// New; the zero value is not usable.
type Engine struct {
	retriever   *retrieve.Retriever
	scorer      *score.Scorer
	assembler   *assemble.Assembler
	synthesizer *synth.Synthesizer
	cache       *qacache.Cache
	cfg         types.EngineConfig
	out         io.Writer
}

// New wires an Engine from its collaborators. embedder may be nil to
// disable semantic similarity; w receives progress and warning lines.
func New(corpus retrieve.Corpus, gen synth.Generator, embedder score.Embedder, cfg types.EngineConfig, w io.Writer) (*Engine, error) {
	if corpus == nil {
		return nil, fmt.Errorf("corpus collaborator is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("generation collaborator is required")
	}
	if w == nil {
		w = io.Discard
	}

	cache, err := qacache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating answer cache: %w", err)
	}

	return &Engine{
		retriever:   retrieve.New(corpus, cfg.Retrieval),
		scorer:      score.New(cfg.Scoring, embedder),
		assembler:   assemble.New(cfg.Context),
		synthesizer: synth.New(gen, cfg.Generation),
		cache:       cache,
		cfg:         cfg,
		out:         w,
	}, nil
}

// AnswerQuestion answers one question, optionally restricted to a
// topic, considering at most limit documents. A limit of zero means
// the configured default; negative limits are invalid; values above
// the ceiling are clamped. Identical requests within the cache TTL
// are served from the cache, and concurrent identical requests share
// one pipeline execution.
func (e *Engine) AnswerQuestion(ctx context.Context, question, topic string, limit int) (types.AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return types.AnswerResult{}, fmt.Errorf("%w: question must be non-empty", ErrInvalidInput)
	}
	if limit < 0 {
		return types.AnswerResult{}, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidInput, limit)
	}

	q := classify.Classify(question)
	q.Topic = topic
	q.Limit = e.retriever.ClampLimit(limit)

	start := time.Now()
	key := qacache.Key(q.Normalized, q.Topic, q.Limit)

	result, hit, err := e.cache.GetOrCompute(ctx, key, func(ctx context.Context) (types.AnswerResult, error) {
		return e.runPipeline(ctx, q), nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			fmt.Fprintf(e.out, "abandoned shared computation: %v\n", err)
			return types.AnswerResult{
				QuestionType: q.Type,
				Status:       types.StatusUnavailable,
				Elapsed:      time.Since(start),
			}, nil
		}
		return types.AnswerResult{}, err
	}

	result.CacheHit = hit
	result.Elapsed = time.Since(start)
	return result, nil
}

// runPipeline executes one uncached pipeline pass. It never fails:
// degraded stages resolve to result statuses.
func (e *Engine) runPipeline(ctx context.Context, q types.Question) types.AnswerResult {
	timeout := e.cfg.PipelineTimeout
	if timeout <= 0 {
		timeout = defaultPipelineTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	docs, err := e.retriever.Retrieve(ctx, q)
	if err != nil {
		fmt.Fprintf(e.out, "corpus unavailable: %v\n", err)
		return types.AnswerResult{
			QuestionType: q.Type,
			Status:       types.StatusUnavailable,
		}
	}
	if len(docs) == 0 {
		return types.AnswerResult{
			Answer:       synth.NoCandidatesAnswer(q),
			QuestionType: q.Type,
			Status:       types.StatusNoCandidates,
		}
	}

	scored, err := e.scorer.Score(ctx, q, docs)
	if err != nil {
		// Only context cancellation reaches here; scoring itself does
		// not fail on malformed documents.
		fmt.Fprintf(e.out, "scoring aborted: %v\n", err)
		return types.AnswerResult{
			QuestionType: q.Type,
			Status:       types.StatusUnavailable,
		}
	}

	asm := e.assembler.Build(scored.Pool)
	so := e.synthesizer.Synthesize(ctx, q, asm, e.out)

	result := types.AnswerResult{
		Answer:        so.Text,
		Sources:       sources(asm.Included),
		QuestionType:  q.Type,
		Status:        so.Status,
		LowRelevance:  scored.LowRelevance,
		SafetyRetries: so.SafetyRetries,
	}

	switch so.Status {
	case types.StatusUnavailable:
		result.Confidence = 0
	case types.StatusFallback:
		result.Confidence = minConfidence
	default:
		result.Confidence = estimateConfidence(so.Text, q, result.Sources)
	}

	result.FollowUps = followUps(q, result.Confidence)
	return result
}

// sources maps the context documents to citation entries. The input is
// already sorted by relevance descending with ID tiebreak.
func sources(included []types.ScoredDocument) []types.Source {
	out := make([]types.Source, 0, len(included))
	for _, sd := range included {
		out = append(out, types.Source{
			DocumentID: sd.Document.ID,
			Title:      sd.Document.Title,
			Authors:    sd.Document.Authors,
			Relevance:  sd.Score,
			Excerpt:    assemble.Excerpt(sd.Document.Abstract, 250),
		})
	}
	return out
}
