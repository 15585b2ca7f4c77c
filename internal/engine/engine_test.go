// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/answer-engine/internal/synth"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// memCorpus serves documents whose title or abstract contains any of
// the query terms, most relevant corpora first being the caller's
// responsibility.
type memCorpus struct {
	docs  []types.Document
	err   error
	calls int
}

func (c *memCorpus) Query(_ context.Context, terms []string, topic string, limit int) ([]types.Document, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}

	var out []types.Document
	for _, d := range c.docs {
		text := strings.ToLower(d.Title + " " + d.Abstract)
		if topic != "" && !strings.Contains(text, strings.ToLower(topic)) {
			continue
		}
		matched := len(terms) == 0
		for _, t := range terms {
			if strings.Contains(text, t) {
				matched = true
				break
			}
		}
		if matched {
			out = append(out, d)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// funcGen adapts a function to the generation contract.
type funcGen func(prompt string) synth.Result

func (f funcGen) Generate(_ context.Context, prompt string) synth.Result { return f(prompt) }

func textGen(content string) funcGen {
	return func(string) synth.Result {
		return synth.Result{Outcome: synth.OutcomeText, Content: content}
	}
}

// challengeCorpus builds five documents about deep learning challenges
// and five unrelated biology documents.
func challengeCorpus() *memCorpus {
	var docs []types.Document
	for i := 1; i <= 5; i++ {
		docs = append(docs, types.Document{
			ID:       fmt.Sprintf("dl-%d", i),
			Title:    fmt.Sprintf("Challenges in Deep Learning Systems %d", i),
			Abstract: "We survey the main challenges facing deep learning, including generalization, robustness, and compute cost.",
			Authors:  []string{"Researcher, A."},
		})
	}
	for i := 1; i <= 5; i++ {
		docs = append(docs, types.Document{
			ID:       fmt.Sprintf("bio-%d", i),
			Title:    fmt.Sprintf("Coral Reef Ecology Field Notes %d", i),
			Abstract: "Observations of reef fish populations across seasonal cycles.",
		})
	}
	return &memCorpus{docs: docs}
}

func newTestEngine(t *testing.T, corpus *memCorpus, gen synth.Generator, cfg types.EngineConfig) *Engine {
	t.Helper()
	e, err := New(corpus, gen, nil, cfg, io.Discard)
	require.NoError(t, err)
	return e
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, textGen("a"), nil, types.EngineConfig{}, io.Discard)
	assert.Error(t, err)

	_, err = New(&memCorpus{}, nil, nil, types.EngineConfig{}, io.Discard)
	assert.Error(t, err)
}

func TestAnswerQuestionInvalidInput(t *testing.T) {
	e := newTestEngine(t, challengeCorpus(), textGen("a"), types.EngineConfig{})

	_, err := e.AnswerQuestion(context.Background(), "", "", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.AnswerQuestion(context.Background(), "   \t\n", "", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.AnswerQuestion(context.Background(), "valid question", "", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnswerChallengeQuestion(t *testing.T) {
	answer := "The main challenges in deep learning include generalization beyond the training distribution, robustness " +
		"to adversarial and distribution-shift inputs, and the rising compute cost of training large models [Document 1]. " +
		"Several surveys also highlight data efficiency and interpretability as open problems [Document 2]."
	e := newTestEngine(t, challengeCorpus(), textGen(answer), types.EngineConfig{})

	res, err := e.AnswerQuestion(context.Background(), "What are the main challenges in deep learning?", "", 0)
	require.NoError(t, err)

	assert.Equal(t, types.QuestionChallenge, res.QuestionType)
	assert.Equal(t, types.StatusSucceeded, res.Status)
	assert.Equal(t, answer, res.Answer)
	assert.False(t, res.CacheHit)
	assert.False(t, res.LowRelevance)

	require.NotEmpty(t, res.Sources)
	assert.True(t, strings.HasPrefix(res.Sources[0].DocumentID, "dl-"),
		"top source should be a relevant document, got %s", res.Sources[0].DocumentID)
	assert.GreaterOrEqual(t, res.Confidence, 0.4)
	assert.LessOrEqual(t, res.Confidence, 0.95)

	// Sources are sorted descending by relevance with ID tiebreak.
	for i := 1; i < len(res.Sources); i++ {
		prev, cur := res.Sources[i-1], res.Sources[i]
		assert.True(t, prev.Relevance > cur.Relevance ||
			(prev.Relevance == cur.Relevance && prev.DocumentID < cur.DocumentID),
			"sources out of order at %d", i)
	}
}

func TestAnswerEmptyCorpus(t *testing.T) {
	e := newTestEngine(t, &memCorpus{}, textGen("a"), types.EngineConfig{})

	res, err := e.AnswerQuestion(context.Background(), "What is attention?", "", 0)
	require.NoError(t, err)

	assert.Equal(t, types.StatusNoCandidates, res.Status)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Sources)
	assert.NotEmpty(t, res.Answer)
	assert.Empty(t, res.FollowUps)
}

func TestAnswerCorpusUnavailable(t *testing.T) {
	corpus := &memCorpus{err: errors.New("connection refused")}
	e := newTestEngine(t, corpus, textGen("a"), types.EngineConfig{
		PipelineTimeout: 50 * time.Millisecond,
	})

	res, err := e.AnswerQuestion(context.Background(), "What is attention?", "", 0)
	require.NoError(t, err, "degraded corpus must not surface an error")

	assert.Equal(t, types.StatusUnavailable, res.Status)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Answer)
}

func TestAnswerGenerationUnavailable(t *testing.T) {
	gen := funcGen(func(string) synth.Result {
		return synth.Result{Outcome: synth.OutcomeTransportError, Err: errors.New("timeout")}
	})
	e := newTestEngine(t, challengeCorpus(), gen, types.EngineConfig{
		PipelineTimeout: 50 * time.Millisecond,
	})

	res, err := e.AnswerQuestion(context.Background(), "What are the main challenges in deep learning?", "", 0)
	require.NoError(t, err)

	assert.Equal(t, types.StatusUnavailable, res.Status)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Answer)
}

func TestAnswerWaiterTimeoutIsUnavailable(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	gen := funcGen(func(string) synth.Result {
		close(started)
		<-release
		return synth.Result{Outcome: synth.OutcomeText, Content: "slow answer"}
	})
	e := newTestEngine(t, challengeCorpus(), gen, types.EngineConfig{})

	const question = "What are the main challenges in deep learning?"
	go e.AnswerQuestion(context.Background(), question, "", 0)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res, err := e.AnswerQuestion(ctx, question, "", 0)
	require.NoError(t, err, "an expired wait resolves to a status, not an error")

	assert.Equal(t, types.StatusUnavailable, res.Status)
	assert.Equal(t, types.QuestionChallenge, res.QuestionType)
	assert.False(t, res.CacheHit)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Answer)
}

func TestAnswerSafetyFallback(t *testing.T) {
	gen := funcGen(func(string) synth.Result {
		return synth.Result{Outcome: synth.OutcomeSafetyBlocked}
	})
	e := newTestEngine(t, challengeCorpus(), gen, types.EngineConfig{})

	res, err := e.AnswerQuestion(context.Background(), "What are the main challenges in deep learning?", "", 0)
	require.NoError(t, err)

	assert.Equal(t, types.StatusFallback, res.Status)
	assert.Equal(t, minConfidence, res.Confidence)
	assert.Equal(t, 3, res.SafetyRetries)
	assert.Contains(t, res.Answer, "Challenges in Deep Learning Systems")
	assert.NotEmpty(t, res.Sources)
}

func TestAnswerIdempotentWithinTTL(t *testing.T) {
	corpus := challengeCorpus()
	e := newTestEngine(t, corpus, textGen("Deep learning faces challenges in generalization."), types.EngineConfig{})

	first, err := e.AnswerQuestion(context.Background(), "What are the main challenges in deep learning?", "", 0)
	require.NoError(t, err)
	callsAfterFirst := corpus.calls

	second, err := e.AnswerQuestion(context.Background(), "What are the main challenges in deep learning?", "", 0)
	require.NoError(t, err)

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.Equal(t, callsAfterFirst, corpus.calls, "cached answer must not re-run the pipeline")

	// Identical except the cache-hit flag and timing.
	first.CacheHit, second.CacheHit = false, false
	first.Elapsed, second.Elapsed = 0, 0
	assert.Equal(t, first, second)
}

func TestAnswerDistinctLimitsMissCache(t *testing.T) {
	corpus := challengeCorpus()
	e := newTestEngine(t, corpus, textGen("answer"), types.EngineConfig{})

	_, err := e.AnswerQuestion(context.Background(), "What are the main challenges in deep learning?", "", 5)
	require.NoError(t, err)
	_, err = e.AnswerQuestion(context.Background(), "What are the main challenges in deep learning?", "", 7)
	require.NoError(t, err)

	assert.Equal(t, 2, corpus.calls)
}

func TestEstimateConfidence(t *testing.T) {
	q := types.Question{KeyTerms: []string{"attention", "transformer"}}
	longAnswer := strings.Repeat("The attention mechanism in the transformer model. ", 10)

	tests := []struct {
		name   string
		answer string
		srcs   int
		want   float64
	}{
		{"base only", "short", 0, 0.4},
		{"length bonus", strings.Repeat("x", 201), 0, 0.5},
		{"sources saturate at three", "short", 5, 0.55},
		{"all bonuses", longAnswer, 3, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcs := make([]types.Source, tt.srcs)
			got := estimateConfidence(tt.answer, q, srcs)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEstimateConfidenceBounds(t *testing.T) {
	q := types.Question{KeyTerms: []string{"term"}}
	// Even with every bonus the estimate stays inside the clamp.
	got := estimateConfidence(strings.Repeat("term ", 100), q, make([]types.Source, 10))
	assert.LessOrEqual(t, got, 0.95)
	assert.GreaterOrEqual(t, got, 0.2)
}

func TestTermsAppear(t *testing.T) {
	assert.True(t, termsAppear([]string{"attention", "scaling"}, "Attention is discussed at length."))
	assert.False(t, termsAppear([]string{"attention", "scaling", "sparsity"}, "Only attention appears here."))
	assert.False(t, termsAppear(nil, "anything"))
}

func TestFollowUps(t *testing.T) {
	q := types.Question{Type: types.QuestionWhat, KeyTerms: []string{"graph", "networks"}}

	ups := followUps(q, 0.6)
	require.Len(t, ups, 2)
	assert.Contains(t, ups[0], "graph networks")

	assert.Nil(t, followUps(q, 0.25), "suppressed below the confidence threshold")

	// Topic filter takes precedence over key terms.
	q.Topic = "spectral methods"
	ups = followUps(q, 0.6)
	assert.Contains(t, ups[0], "spectral methods")

	// A challenge question does not get a challenges follow-up.
	cq := types.Question{Type: types.QuestionChallenge, KeyTerms: []string{"pruning"}}
	for _, u := range followUps(cq, 0.6) {
		assert.NotContains(t, u, "challenges")
	}

	assert.Nil(t, followUps(types.Question{Type: types.QuestionOther}, 0.6), "no subject, no follow-ups")
}
