package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/llm"
	"github.com/muhammadolammi/resumeforge/internal/logging"
	"github.com/muhammadolammi/resumeforge/internal/resume"
)

type Request struct {
	Resume         resume.Data `json:"resumeData"`
	JobDescription string      `json:"jobDescription,omitempty"`
}

type Analyzer struct {
	llm    llm.Completer
	logger *zap.Logger
}

func New(completer llm.Completer, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		llm:    completer,
		logger: logger,
	}
}

// Analyze scores one resume against ATS criteria, optionally targeted at a
// job description.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Analysis, error) {
	logger := logging.FromContext(ctx, a.logger).With(
		zap.String("component", "analyzer"),
		zap.String("operation", "analyze_resume"))

	text := req.Resume.Text()
	prompt := BuildPrompt(text, req.JobDescription)

	logger.Info("starting resume analysis",
		zap.Int("resume_chars", len(text)),
		zap.Bool("has_job_description", req.JobDescription != ""))
	logger.Debug("prompt", zap.String("prompt", prompt))

	start := time.Now()
	content, err := a.llm.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		logger.Error("Error analyzing resume", zap.Error(err), zap.Int64("duration_ms", time.Since(start).Milliseconds()))
		return Analysis{}, fmt.Errorf("failed to analyze resume: %w", err)
	}

	analysis, err := Parse(content)
	if err != nil {
		logger.Error("Error analyzing resume",
			zap.Error(err),
			zap.String("content_preview", preview(content, 100)))
		return Analysis{}, fmt.Errorf("failed to analyze resume: %w", err)
	}

	logger.Info("resume analysis complete",
		zap.Float64("overall_score", analysis.OverallScore),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return analysis, nil
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
