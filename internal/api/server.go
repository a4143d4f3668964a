// Package api is the HTTP surface of the resume builder.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/analyzer"
	"github.com/muhammadolammi/resumeforge/internal/config"
	"github.com/muhammadolammi/resumeforge/internal/database"
	"github.com/muhammadolammi/resumeforge/internal/queue"
	"github.com/muhammadolammi/resumeforge/internal/resume"
	"github.com/muhammadolammi/resumeforge/internal/storage"
	"github.com/muhammadolammi/resumeforge/internal/templates"
)

const (
	shutdownGrace = 10 * time.Second
	// replyMargin is kept free at the end of the write deadline to send the
	// response of an inline analysis.
	replyMargin = 5 * time.Second
)

type Store interface {
	CreateResume(ctx context.Context, title string, templateID int32, data resume.Data) (database.Resume, error)
	GetResume(ctx context.Context, id uuid.UUID) (database.Resume, error)
	ListResumes(ctx context.Context, limit int32) ([]database.Resume, error)
	UpdateResume(ctx context.Context, id uuid.UUID, title string, templateID int32, data resume.Data) (database.Resume, error)
	DeleteResume(ctx context.Context, id uuid.UUID) error
	CreateAnalysis(ctx context.Context, resumeID uuid.UUID, jobDescription string) (database.Analysis, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (database.Analysis, error)
	CreateContactMessage(ctx context.Context, name, email, subject, message string) (database.ContactMessage, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (analyzer.Analysis, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

type Processor interface {
	Process(ctx context.Context, job queue.Job) (analyzer.Analysis, error)
}

type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	Open(ctx context.Context, key string) (*storage.Object, error)
}

// Deps are the backends behind the API. Any of them may be nil; endpoints
// that need a missing one answer 503.
type Deps struct {
	Store     Store
	Analyzer  Analyzer
	Queue     Enqueuer
	Processor Processor
	Files     ObjectStore
	Templates *templates.Catalog
	Logger    *zap.Logger
}

type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	logger *zap.Logger
	router chi.Router
}

func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Templates == nil {
		deps.Templates = templates.Default()
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With(zap.String("component", "api")),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID(s.logger))
	r.Use(Logger(s.logger))
	r.Use(Recover(s.logger))
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, r, ErrNotFound("no route for "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, r, ErrMethodNotAllowed("Method not allowed"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/templates", s.handleListTemplates)
		r.Get("/templates/{id}", s.handleGetTemplate)
		r.Get("/files/*", s.handleGetFile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSize(s.maxBody()))

			r.Post("/analyze-resume", s.handleAnalyzeResume)
			r.Post("/score", s.handleScore)
			r.Post("/export/pdf", s.handleExportPDF)
			r.Post("/contact", s.handleContact)
			r.Post("/uploads/resume", s.handleUploadResume)
			r.Post("/uploads/job-description", s.handleUploadJobDescription)

			r.Route("/resumes", func(r chi.Router) {
				r.Post("/", s.handleCreateResume)
				r.Get("/", s.handleListResumes)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetResume)
					r.Put("/", s.handleUpdateResume)
					r.Delete("/", s.handleDeleteResume)
					r.Get("/score", s.handleResumeScore)
					r.Get("/pdf", s.handleResumePDF)
					r.Post("/analyses", s.handleCreateAnalysis)
				})
			})
			r.Get("/analyses/{id}", s.handleGetAnalysis)
		})
	})
	return r
}

// analysisBudget is how long an inline analysis may run. Zero means no
// write deadline is configured.
func (s *Server) analysisBudget() time.Duration {
	if s.cfg.WriteTimeout <= 0 {
		return 0
	}
	return max(s.cfg.WriteTimeout-replyMargin, s.cfg.WriteTimeout/2)
}

// withAnalysisBudget bounds ctx by analysisBudget.
func (s *Server) withAnalysisBudget(ctx context.Context) (context.Context, context.CancelFunc) {
	if budget := s.analysisBudget(); budget > 0 {
		return context.WithTimeout(ctx, budget)
	}
	return context.WithCancel(ctx)
}

func (s *Server) maxBody() int64 {
	if s.cfg.MaxUploadBytes > 0 {
		return s.cfg.MaxUploadBytes
	}
	return 10 << 20
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
