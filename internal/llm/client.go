// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm implements the generation and embedding collaborators on
// top of any OpenAI-compatible API. Calls run through a circuit
// breaker so a failing provider sheds load quickly instead of holding
// every request for its full retry budget.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/pdiddy/answer-engine/internal/synth"
	"github.com/pdiddy/answer-engine/pkg/types"
)

const (
	defaultModel          = "gpt-4o-mini"
	defaultEmbeddingModel = string(openai.SmallEmbedding3)

	breakerTimeout = 30 * time.Second
)

// Client calls an OpenAI-compatible API for answer generation and
// question embedding. It implements synth.Generator and the scorer's
// Embedder contract.
type Client struct {
	api *openai.Client
	cfg types.GenerationConfig

	// Generation and embedding fail independently, so each endpoint
	// gets its own breaker.
	genBreaker   *gobreaker.CircuitBreaker
	embedBreaker *gobreaker.CircuitBreaker
}

// New creates a Client from generation settings. BaseURL, when set,
// points at any OpenAI-compatible server.
func New(cfg types.GenerationConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:          openai.NewClientWithConfig(apiCfg),
		cfg:          cfg,
		genBreaker:   newBreaker("generation"),
		embedBreaker: newBreaker("embedding"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})
}

// Generate sends one chat completion request and classifies the
// outcome. It never returns an error; failure classes map onto the
// result union.
func (c *Client) Generate(ctx context.Context, prompt string) synth.Result {
	model := c.cfg.Model
	if model == "" {
		model = defaultModel
	}

	out, err := c.genBreaker.Execute(func() (interface{}, error) {
		return c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
	})
	if err != nil {
		return classifyError(err)
	}

	resp := out.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		return synth.Result{
			Outcome: synth.OutcomeTransportError,
			Err:     fmt.Errorf("completion returned no choices"),
		}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return synth.Result{Outcome: synth.OutcomeSafetyBlocked}
	}

	return synth.Result{Outcome: synth.OutcomeText, Content: choice.Message.Content}
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	model := c.cfg.EmbeddingModel
	if model == "" {
		model = defaultEmbeddingModel
	}

	out, err := c.embedBreaker.Execute(func() (interface{}, error) {
		return c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(model),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}

	resp := out.(openai.EmbeddingResponse)
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}

	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
	}
	return vec, nil
}

// classifyError maps API and breaker errors onto the result union.
func classifyError(err error) synth.Result {
	// An open breaker looks like a transport failure to the caller; the
	// synthesizer's backoff gives the breaker time to half-open.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return synth.Result{Outcome: synth.OutcomeTransportError, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if isContentFilter(apiErr) {
			return synth.Result{Outcome: synth.OutcomeSafetyBlocked}
		}
		if apiErr.HTTPStatusCode == 429 && apiErr.Type == "insufficient_quota" {
			return synth.Result{Outcome: synth.OutcomeQuotaExceeded}
		}
	}

	return synth.Result{Outcome: synth.OutcomeTransportError, Err: err}
}

// isContentFilter recognizes content-safety rejections across
// OpenAI-compatible providers, which disagree on where the signal goes.
func isContentFilter(apiErr *openai.APIError) bool {
	if code, ok := apiErr.Code.(string); ok && code == "content_filter" {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "content filter") ||
		strings.Contains(strings.ToLower(apiErr.Message), "content_filter")
}
