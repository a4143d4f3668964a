package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/muhammadolammi/resumeforge/internal/analyzer"
	"github.com/muhammadolammi/resumeforge/internal/database"
	"github.com/muhammadolammi/resumeforge/internal/queue"
	"github.com/muhammadolammi/resumeforge/internal/resume"
	"github.com/muhammadolammi/resumeforge/internal/storage"
)

type memStore struct {
	mu       sync.Mutex
	resumes  map[uuid.UUID]database.Resume
	analyses map[uuid.UUID]database.Analysis
	messages []database.ContactMessage
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		resumes:  map[uuid.UUID]database.Resume{},
		analyses: map[uuid.UUID]database.Analysis{},
	}
}

func (m *memStore) CreateResume(_ context.Context, title string, templateID int32, data resume.Data) (database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return database.Resume{}, m.err
	}
	raw, _ := json.Marshal(data)
	now := time.Now().UTC()
	r := database.Resume{ID: uuid.New(), Title: title, TemplateID: templateID, Data: raw, CreatedAt: now, UpdatedAt: now}
	m.resumes[r.ID] = r
	return r, nil
}

func (m *memStore) GetResume(_ context.Context, id uuid.UUID) (database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return database.Resume{}, database.ErrNotFound
	}
	return r, nil
}

func (m *memStore) ListResumes(_ context.Context, limit int32) ([]database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []database.Resume{}
	for _, r := range m.resumes {
		if limit > 0 && int32(len(out)) >= limit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) UpdateResume(_ context.Context, id uuid.UUID, title string, templateID int32, data resume.Data) (database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return database.Resume{}, database.ErrNotFound
	}
	r.Title, r.TemplateID = title, templateID
	r.Data, _ = json.Marshal(data)
	r.UpdatedAt = time.Now().UTC()
	m.resumes[id] = r
	return r, nil
}

func (m *memStore) DeleteResume(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.resumes, id)
	return nil
}

func (m *memStore) CreateAnalysis(_ context.Context, resumeID uuid.UUID, jobDescription string) (database.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := database.Analysis{
		ID:             uuid.New(),
		ResumeID:       uuid.NullUUID{UUID: resumeID, Valid: true},
		Status:         database.StatusPending,
		JobDescription: jobDescription,
		Result:         json.RawMessage("null"),
		CreatedAt:      time.Now().UTC(),
	}
	m.analyses[a.ID] = a
	return a, nil
}

func (m *memStore) GetAnalysis(_ context.Context, id uuid.UUID) (database.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[id]
	if !ok {
		return database.Analysis{}, database.ErrNotFound
	}
	return a, nil
}

func (m *memStore) complete(id uuid.UUID, result any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.analyses[id]
	a.Status = database.StatusCompleted
	a.Result, _ = json.Marshal(result)
	m.analyses[id] = a
}

func (m *memStore) CreateContactMessage(_ context.Context, name, email, subject, message string) (database.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := database.ContactMessage{ID: uuid.New(), Name: name, Email: email, Subject: subject, Message: message, CreatedAt: time.Now().UTC()}
	m.messages = append(m.messages, msg)
	return msg, nil
}

type stubAnalyzer struct {
	result analyzer.Analysis
	err    error
	last   analyzer.Request
}

func (s *stubAnalyzer) Analyze(_ context.Context, req analyzer.Request) (analyzer.Analysis, error) {
	s.last = req
	return s.result, s.err
}

// waitingAnalyzer blocks until ctx ends and reports whether ctx had a
// deadline.
type waitingAnalyzer struct {
	hadDeadline bool
}

func (a *waitingAnalyzer) Analyze(ctx context.Context, _ analyzer.Request) (analyzer.Analysis, error) {
	_, a.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return analyzer.Analysis{}, fmt.Errorf("failed to analyze resume: %w", ctx.Err())
}

func (a *waitingAnalyzer) Process(ctx context.Context, _ queue.Job) (analyzer.Analysis, error) {
	return a.Analyze(ctx, analyzer.Request{})
}

type recordingQueue struct {
	jobs []queue.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job queue.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// inlineProcessor completes analyses directly in the memStore.
type inlineProcessor struct {
	store *memStore
	err   error
}

func (p *inlineProcessor) Process(_ context.Context, job queue.Job) (analyzer.Analysis, error) {
	if p.err != nil {
		return analyzer.Analysis{}, p.err
	}
	result := analyzer.Analysis{OverallScore: 88}
	p.store.complete(job.AnalysisID, result)
	return result, nil
}

type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemFiles() *memFiles {
	return &memFiles{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *memFiles) Upload(_ context.Context, key, contentType string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *memFiles) Open(_ context.Context, key string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.Join(storage.ErrNotFound, errors.New(key))
	}
	return &storage.Object{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   f.types[key],
		ContentLength: int64(len(data)),
	}, nil
}
