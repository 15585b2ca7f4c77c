// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth turns an assembled document context into answer text.
// Content-safety rejections walk a sanitization ladder before giving up
// and emitting a deterministic fallback built from the sources alone;
// transport failures retry with backoff and then resolve to an
// unavailable result. The caller never sees an error from synthesis.
package synth

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/answer-engine/internal/assemble"
	"github.com/pdiddy/answer-engine/internal/retry"
	"github.com/pdiddy/answer-engine/pkg/types"
)

const (
	defaultMaxSafetyRetries    = 3
	defaultMaxTransportRetries = 3
)

// Outcome classifies one generation attempt.
type Outcome int

const (
	// OutcomeText means the collaborator produced answer text.
	OutcomeText Outcome = iota

	// OutcomeSafetyBlocked means the content-safety filter rejected the prompt.
	OutcomeSafetyBlocked

	// OutcomeTransportError means the call failed at the transport layer
	// and may succeed on retry.
	OutcomeTransportError

	// OutcomeQuotaExceeded means the provider quota is exhausted.
	// Retrying within the request is pointless.
	OutcomeQuotaExceeded
)

// Result is the union returned by one Generate call.
type Result struct {
	Outcome Outcome

	// Content holds the answer text when Outcome is OutcomeText.
	Content string

	// Err carries transport detail when Outcome is OutcomeTransportError.
	Err error
}

// Generator is the text-generation collaborator. Implementations are
// stateless per call.
type Generator interface {
	Generate(ctx context.Context, prompt string) Result
}

// Output is the terminal state of one synthesis request.
type Output struct {
	// Text is the answer, empty when Status is unavailable.
	Text string

	// Status is one of succeeded, fallback, or unavailable.
	Status types.AnswerStatus

	// SafetyRetries counts safety-blocked attempts that preceded the
	// terminal state.
	SafetyRetries int
}

// Synthesizer drives generation attempts for one engine.
type Synthesizer struct {
	gen Generator
	cfg types.GenerationConfig

	// transport is the backoff policy for transport-level retries.
	// Exposed as a field so tests can shrink the delays.
	transport retry.Policy
}

// New creates a Synthesizer around a generation collaborator.
func New(gen Generator, cfg types.GenerationConfig) *Synthesizer {
	maxTransport := cfg.MaxTransportRetries
	if maxTransport <= 0 {
		maxTransport = defaultMaxTransportRetries
	}
	return &Synthesizer{
		gen: gen,
		cfg: cfg,
		transport: retry.Policy{
			MaxAttempts: maxTransport,
			BaseDelay:   time.Second,
		},
	}
}

// Synthesize generates answer text for the question against the
// assembled context, writing progress to w. It always returns a
// terminal Output; degraded conditions surface as Status values, never
// as errors.
func (s *Synthesizer) Synthesize(ctx context.Context, q types.Question, asm assemble.Context, w io.Writer) Output {
	maxSafety := s.cfg.MaxSafetyRetries
	if maxSafety <= 0 {
		maxSafety = defaultMaxSafetyRetries
	}

	base := BuildPrompt(q, asm.Text)

	for level := 0; level <= maxSafety; level++ {
		prompt := Sanitize(base, level)

		res, err := s.generateWithRetry(ctx, prompt)
		if err != nil {
			fmt.Fprintf(w, "generation unavailable: %v\n", err)
			return Output{Status: types.StatusUnavailable, SafetyRetries: level}
		}

		switch res.Outcome {
		case OutcomeText:
			return Output{Text: res.Content, Status: types.StatusSucceeded, SafetyRetries: level}
		case OutcomeSafetyBlocked:
			if level < maxSafety {
				fmt.Fprintf(w, "safety filter rejected prompt, retrying at sanitization level %d\n", level+1)
			}
		case OutcomeQuotaExceeded:
			fmt.Fprintln(w, "generation quota exhausted")
			return Output{Status: types.StatusUnavailable, SafetyRetries: level}
		}
	}

	fmt.Fprintln(w, "sanitization retries exhausted, using templated fallback")
	return Output{
		Text:          FallbackAnswer(q, asm.Included),
		Status:        types.StatusFallback,
		SafetyRetries: maxSafety,
	}
}

// generateWithRetry calls the collaborator, retrying transport errors
// with exponential backoff. Safety blocks and quota exhaustion pass
// through without retry.
func (s *Synthesizer) generateWithRetry(ctx context.Context, prompt string) (Result, error) {
	var res Result
	err := s.transport.Do(ctx, func(ctx context.Context) error {
		res = s.gen.Generate(ctx, prompt)
		if res.Outcome == OutcomeTransportError {
			err := res.Err
			if err == nil {
				err = fmt.Errorf("transport error")
			}
			return retry.Transient(err)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("generating answer: %w", err)
	}
	return res, nil
}
