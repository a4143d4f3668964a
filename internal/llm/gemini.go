package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/muhammadolammi/resumeforge/internal/config"
)

// Gemini calls the Gemini API directly and asks for a JSON reply.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

func NewGemini(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

func (g *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}

	fields := []zap.Field{zap.Int64("duration_ms", time.Since(start).Milliseconds())}
	if u := resp.UsageMetadata; u != nil {
		fields = append(fields,
			zap.Int32("input_tokens", u.PromptTokenCount),
			zap.Int32("output_tokens", u.CandidatesTokenCount),
			zap.Int32("total_tokens", u.TotalTokenCount))
	}
	g.logger.Info("LLM API call", fields...)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Text(), nil
}
