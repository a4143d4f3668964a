package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/analyzer"
	"github.com/muhammadolammi/resumeforge/internal/database"
	"github.com/muhammadolammi/resumeforge/internal/llm"
)

const (
	analyzeAttempts = 2
	saveAttempts    = 3
)

var (
	// ErrMalformed marks a message body that can never be processed.
	ErrMalformed = errors.New("malformed job")
	// ErrInterrupted marks a job abandoned because its context was canceled.
	// The analysis keeps its status so a redelivery can pick it up.
	ErrInterrupted = errors.New("analysis interrupted")
)

type Store interface {
	GetResume(ctx context.Context, id uuid.UUID) (database.Resume, error)
	UpdateAnalysisStatus(ctx context.Context, id uuid.UUID, status string) error
	CompleteAnalysis(ctx context.Context, id uuid.UUID, result any) error
	FailAnalysis(ctx context.Context, id uuid.UUID, reason string) error
}

type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (analyzer.Analysis, error)
}

type StatusNotifier interface {
	Notify(ctx context.Context, u Update) error
}

type Processor struct {
	store    Store
	analyzer Analyzer
	notifier StatusNotifier
	logger   *zap.Logger
	backoff  time.Duration
}

// NewProcessor wires a job processor. notifier may be nil when no broker is
// configured.
func NewProcessor(store Store, a Analyzer, notifier StatusNotifier, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:    store,
		analyzer: a,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "processor")),
		backoff:  500 * time.Millisecond,
	}
}

// Handle decodes a queue message and processes it. Undecodable bodies return
// ErrMalformed.
func (p *Processor) Handle(ctx context.Context, body []byte) error {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if job.AnalysisID == uuid.Nil {
		return fmt.Errorf("%w: missing analysis_id", ErrMalformed)
	}
	_, err := p.Process(ctx, job)
	return err
}

// Process runs one analysis to completion and records the outcome. Failures
// are stored on the analysis before being returned, except when ctx is
// canceled mid-run: then nothing is recorded and ErrInterrupted is returned.
func (p *Processor) Process(ctx context.Context, job Job) (analyzer.Analysis, error) {
	logger := p.logger.With(zap.String("analysis_id", job.AnalysisID.String()))
	logger.Info("processing analysis", zap.String("resume_id", job.ResumeID.String()))

	p.transition(ctx, job.AnalysisID, database.StatusProcessing, "analysis started")

	result, err := p.run(ctx, job)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		logger.Warn("analysis interrupted", zap.Error(err))
		return analyzer.Analysis{}, fmt.Errorf("%w: %v", ErrInterrupted, err)
	}
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		if ferr := p.store.FailAnalysis(context.WithoutCancel(ctx), job.AnalysisID, err.Error()); ferr != nil {
			logger.Error("failed to record analysis failure", zap.Error(ferr))
		}
		p.notify(ctx, job.AnalysisID, database.StatusFailed, "analysis failed")
		return analyzer.Analysis{}, err
	}

	p.notify(ctx, job.AnalysisID, database.StatusCompleted, "analysis completed")
	logger.Info("analysis completed", zap.Float64("overall_score", result.OverallScore))
	return result, nil
}

func (p *Processor) run(ctx context.Context, job Job) (analyzer.Analysis, error) {
	stored, err := p.store.GetResume(ctx, job.ResumeID)
	if err != nil {
		return analyzer.Analysis{}, fmt.Errorf("error loading resume %s: %w", job.ResumeID, err)
	}
	data, err := stored.Resume()
	if err != nil {
		return analyzer.Analysis{}, err
	}

	result, err := llm.Retry(ctx, analyzeAttempts, p.backoff, func() (analyzer.Analysis, error) {
		return p.analyzer.Analyze(ctx, analyzer.Request{Resume: data, JobDescription: job.JobDescription})
	})
	if err != nil {
		return analyzer.Analysis{}, err
	}

	_, err = llm.Retry(ctx, saveAttempts, p.backoff, func() (any, error) {
		return nil, p.store.CompleteAnalysis(ctx, job.AnalysisID, result)
	})
	if err != nil {
		return analyzer.Analysis{}, fmt.Errorf("failed to save analysis result after retries: %w", err)
	}
	return result, nil
}

func (p *Processor) transition(ctx context.Context, id uuid.UUID, status, message string) {
	if err := p.store.UpdateAnalysisStatus(ctx, id, status); err != nil {
		p.logger.Warn("failed to update analysis status", zap.String("status", status), zap.Error(err))
	}
	p.notify(ctx, id, status, message)
}

func (p *Processor) notify(ctx context.Context, id uuid.UUID, status, message string) {
	if p.notifier == nil {
		return
	}
	err := p.notifier.Notify(ctx, Update{
		AnalysisID: id,
		Status:     status,
		Message:    message,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn("failed to publish update", zap.Error(err))
	}
}
