package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/config"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\r\n{\"a\":1}```  \n", `{"a":1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		got, err := Retry(ctx, 3, time.Millisecond, func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 3, calls)
	})

	t.Run("wraps the last error", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		_, err := Retry(ctx, 2, time.Millisecond, func() (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "after 2 attempts")
		assert.Equal(t, 2, calls)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		calls := 0
		_, err := Retry(cctx, 5, time.Hour, func() (int, error) {
			calls++
			return 0, errors.New("nope")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts still calls once", func(t *testing.T) {
		calls := 0
		_, _ = Retry(ctx, 0, time.Millisecond, func() (int, error) {
			calls++
			return 1, nil
		})
		assert.Equal(t, 1, calls)
	})
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI}, zap.NewNop())
	assert.ErrorContains(t, err, "empty api key")

	_, err = New(context.Background(), config.LLMConfig{Provider: "claude", APIKey: "k"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestNewOpenAI(t *testing.T) {
	c, err := New(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "gpt-4o"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, c)
}

func TestOpenAIComplete(t *testing.T) {
	var got struct {
		Model          string  `json:"model"`
		Temperature    float32 `json:"temperature"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"overallScore\": 81}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	o := NewOpenAI(config.LLMConfig{APIKey: "test-key", Model: "gpt-4o", Temperature: 0.1, BaseURL: srv.URL}, zap.NewNop())
	out, err := o.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)

	assert.Equal(t, `{"overallScore": 81}`, out)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-6)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system prompt", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "user prompt", got.Messages[1].Content)
}

func TestOpenAICompleteErrors(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
		}))
		defer srv.Close()

		o := NewOpenAI(config.LLMConfig{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL}, zap.NewNop())
		_, err := o.Complete(context.Background(), "s", "u")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
		}))
		defer srv.Close()

		o := NewOpenAI(config.LLMConfig{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL}, zap.NewNop())
		_, err := o.Complete(context.Background(), "s", "u")
		assert.ErrorContains(t, err, "openai call failed")
	})
}
