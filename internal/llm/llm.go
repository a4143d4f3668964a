// Package llm wraps the hosted models that perform resume analysis behind a
// single prompt-in, text-out interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/config"
)

var ErrEmptyResponse = errors.New("empty response from llm")

// Completer sends one system + user prompt pair and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// New builds the backend selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("empty api key for llm provider %q", cfg.Provider)
	}
	logger = logger.With(zap.String("component", "llm"), zap.String("provider", cfg.Provider), zap.String("model", cfg.Model))

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg, logger)
	case config.ProviderAgent:
		return NewAgent(ctx, cfg, logger)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// CleanJSON strips a markdown code fence around a JSON reply.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	return strings.TrimSpace(clean)
}

// Retry calls fn up to attempts times, waiting backoff*(i+1) between tries.
func Retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("after %d attempts: %w", i+1, ctx.Err())
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
