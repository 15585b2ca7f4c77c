// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/answer-engine/internal/synth"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// newTestClient points a Client at a stub API server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(types.GenerationConfig{APIKey: "test-key", BaseURL: srv.URL})
}

func TestGenerateText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "The answer."},
				"finish_reason": "stop"
			}]
		}`))
	})

	res := c.Generate(context.Background(), "question")
	require.Equal(t, synth.OutcomeText, res.Outcome)
	assert.Equal(t, "The answer.", res.Content)
}

func TestGenerateContentFilterFinishReason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cmpl-2",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": ""},
				"finish_reason": "content_filter"
			}]
		}`))
	})

	res := c.Generate(context.Background(), "question")
	assert.Equal(t, synth.OutcomeSafetyBlocked, res.Outcome)
}

func TestGenerateServerErrorIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "internal error", "type": "server_error"}}`, http.StatusInternalServerError)
	})

	res := c.Generate(context.Background(), "question")
	assert.Equal(t, synth.OutcomeTransportError, res.Outcome)
	assert.Error(t, res.Err)
}

func TestEmbed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.25, -0.5, 1.0]}]
		}`))
	})

	vec, err := c.Embed(context.Background(), "some question")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, -0.5, 1.0}, vec)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want synth.Outcome
	}{
		{
			name: "open breaker",
			err:  gobreaker.ErrOpenState,
			want: synth.OutcomeTransportError,
		},
		{
			name: "content filter code",
			err:  &openai.APIError{HTTPStatusCode: 400, Code: "content_filter", Message: "blocked"},
			want: synth.OutcomeSafetyBlocked,
		},
		{
			name: "content filter message",
			err:  &openai.APIError{HTTPStatusCode: 400, Message: "rejected by content filter"},
			want: synth.OutcomeSafetyBlocked,
		},
		{
			name: "quota exhausted",
			err:  &openai.APIError{HTTPStatusCode: 429, Type: "insufficient_quota", Message: "quota"},
			want: synth.OutcomeQuotaExceeded,
		},
		{
			name: "rate limit is retryable",
			err:  &openai.APIError{HTTPStatusCode: 429, Type: "rate_limit_exceeded", Message: "slow down"},
			want: synth.OutcomeTransportError,
		},
		{
			name: "plain transport failure",
			err:  errors.New("connection refused"),
			want: synth.OutcomeTransportError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifyError(tt.err)
			assert.Equal(t, tt.want, res.Outcome)
		})
	}
}
