package database

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/muhammadolammi/resumeforge/internal/resume"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"

	DefaultListLimit = 50
)

var ErrNotFound = errors.New("record not found")

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to Postgres and checks the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate applies every embedded migration in file name order. Migrations
// are idempotent so this runs on every start.
func Migrate(ctx context.Context, db DBTX) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}
	return nil
}

// Store maps query results onto resume data and turns missing rows into
// ErrNotFound.
type Store struct {
	q *Queries
}

func NewStore(db DBTX) *Store {
	return &Store{q: New(db)}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Resume decodes the stored resume document.
func (r Resume) Resume() (resume.Data, error) {
	return resume.FromJSON(r.Data)
}

func (s *Store) CreateResume(ctx context.Context, title string, templateID int32, data resume.Data) (Resume, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Resume{}, err
	}
	return s.q.CreateResume(ctx, CreateResumeParams{
		ID:         uuid.New(),
		Title:      title,
		TemplateID: templateID,
		Data:       raw,
	})
}

func (s *Store) GetResume(ctx context.Context, id uuid.UUID) (Resume, error) {
	r, err := s.q.GetResume(ctx, id)
	return r, notFound(err)
}

func (s *Store) ListResumes(ctx context.Context, limit int32) ([]Resume, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	items, err := s.q.ListResumes(ctx, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Resume{}
	}
	return items, nil
}

func (s *Store) UpdateResume(ctx context.Context, id uuid.UUID, title string, templateID int32, data resume.Data) (Resume, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Resume{}, err
	}
	r, err := s.q.UpdateResume(ctx, UpdateResumeParams{
		ID:         id,
		Title:      title,
		TemplateID: templateID,
		Data:       raw,
	})
	return r, notFound(err)
}

func (s *Store) DeleteResume(ctx context.Context, id uuid.UUID) error {
	n, err := s.q.DeleteResume(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateAnalysis(ctx context.Context, resumeID uuid.UUID, jobDescription string) (Analysis, error) {
	return s.q.CreateAnalysis(ctx, CreateAnalysisParams{
		ID:             uuid.New(),
		ResumeID:       uuid.NullUUID{UUID: resumeID, Valid: resumeID != uuid.Nil},
		JobDescription: jobDescription,
	})
}

func (s *Store) GetAnalysis(ctx context.Context, id uuid.UUID) (Analysis, error) {
	a, err := s.q.GetAnalysis(ctx, id)
	return a, notFound(err)
}

func (s *Store) UpdateAnalysisStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.q.UpdateAnalysisStatus(ctx, UpdateAnalysisStatusParams{Status: status, ID: id})
}

// CompleteAnalysis stores result, any JSON-encodable value, and marks the
// analysis completed.
func (s *Store) CompleteAnalysis(ctx context.Context, id uuid.UUID, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.q.CompleteAnalysis(ctx, CompleteAnalysisParams{ID: id, Result: raw})
}

func (s *Store) FailAnalysis(ctx context.Context, id uuid.UUID, reason string) error {
	return s.q.FailAnalysis(ctx, FailAnalysisParams{ID: id, Error: reason})
}

func (s *Store) CreateContactMessage(ctx context.Context, name, email, subject, message string) (ContactMessage, error) {
	return s.q.CreateContactMessage(ctx, CreateContactMessageParams{
		ID:      uuid.New(),
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	})
}
