package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/muhammadolammi/resumeforge/internal/config"
)

const agentName = "resume analyzer"

// Agent runs analyses through an ADK llm agent. The system prompt becomes the
// agent instruction; runners are built once per distinct instruction.
type Agent struct {
	apiKey  string
	model   string
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	runners  map[string]*runner.Runner
	sessions session.Service
}

func NewAgent(_ context.Context, cfg config.LLMConfig, logger *zap.Logger) (*Agent, error) {
	return &Agent{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		logger:   logger,
		runners:  make(map[string]*runner.Runner),
		sessions: session.InMemoryService(),
	}, nil
}

func (a *Agent) runner(ctx context.Context, instruction string) (*runner.Runner, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r, ok := a.runners[instruction]; ok {
		return r, nil
	}

	model, err := gemini.NewModel(ctx, a.model, &genai.ClientConfig{
		APIKey: a.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	analyzer, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Analyze Resume",
		Instruction: instruction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	r, err := runner.New(runner.Config{
		AppName:        analyzer.Name(),
		Agent:          analyzer,
		SessionService: a.sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	a.runners[instruction] = r
	return r, nil
}

func (a *Agent) Complete(ctx context.Context, system, user string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	r, err := a.runner(ctx, system)
	if err != nil {
		return "", err
	}

	userID := "resumeforge"
	created, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   agentName,
		UserID:    userID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create agent session: %w", err)
	}
	defer func() {
		err := a.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   created.Session.AppName(),
			UserID:    created.Session.UserID(),
			SessionID: created.Session.ID(),
		})
		if err != nil {
			a.logger.Warn("failed to delete agent session", zap.Error(err))
		}
	}()

	start := time.Now()
	stream := r.Run(ctx, created.Session.UserID(), created.Session.ID(), &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: user}},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", fmt.Errorf("agent stream failed: %w", err)
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}

	a.logger.Info("LLM API call", zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}
