package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/analyzer"
	"github.com/muhammadolammi/resumeforge/internal/database"
	"github.com/muhammadolammi/resumeforge/internal/logging"
	"github.com/muhammadolammi/resumeforge/internal/queue"
	"github.com/muhammadolammi/resumeforge/internal/resume"
)

type resumeRequest struct {
	Title      string          `json:"title"`
	TemplateID int             `json:"templateId"`
	ResumeData json.RawMessage `json:"resumeData"`
}

type resumeResponse struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	TemplateID int32           `json:"templateId"`
	ResumeData json.RawMessage `json:"resumeData"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type analysisRequest struct {
	JobDescription string `json:"jobDescription"`
}

type analysisResponse struct {
	ID             uuid.UUID       `json:"id"`
	ResumeID       *uuid.UUID      `json:"resumeId,omitempty"`
	Status         string          `json:"status"`
	JobDescription string          `json:"jobDescription,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
	Label          string          `json:"label,omitempty"`
	Band           string          `json:"band,omitempty"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func newResumeResponse(r database.Resume) resumeResponse {
	return resumeResponse{
		ID:         r.ID,
		Title:      r.Title,
		TemplateID: r.TemplateID,
		ResumeData: r.Data,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func newAnalysisResponse(a database.Analysis) analysisResponse {
	resp := analysisResponse{
		ID:             a.ID,
		Status:         a.Status,
		JobDescription: a.JobDescription,
		Error:          a.Error,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.ResumeID.Valid {
		id := a.ResumeID.UUID
		resp.ResumeID = &id
	}
	if raw := strings.TrimSpace(string(a.Result)); raw != "" && raw != "null" {
		resp.Result = a.Result
		var scored struct {
			OverallScore float64 `json:"overallScore"`
		}
		if err := json.Unmarshal(a.Result, &scored); err == nil {
			resp.Label = analyzer.ScoreLabel(scored.OverallScore)
			resp.Band = analyzer.ScoreBand(scored.OverallScore)
		}
	}
	return resp
}

// requireStore answers 503 when persistence is not configured.
func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.deps.Store == nil {
		RespondWithError(w, r, ErrServiceUnavailable("database is not configured"))
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chiParam(r, "id"))
	if err != nil {
		RespondWithError(w, r, ErrBadRequest("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, database.ErrNotFound) {
		RespondWithError(w, r, ErrNotFound(what+" not found"))
		return
	}
	logging.FromContext(r.Context(), s.logger).Error("database error", zap.String("entity", what), zap.Error(err))
	RespondWithError(w, r, ErrInternalServer("database error"))
}

// decodeResumeRequest validates a draft body and resolves its template.
func (s *Server) decodeResumeRequest(r *http.Request) (string, int32, resume.Data, *ApiError) {
	var req resumeRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		return "", 0, resume.Data{}, apiErr
	}
	data, err := resume.FromJSON(req.ResumeData)
	if err == nil {
		err = data.Validate()
	}
	if err != nil {
		return "", 0, resume.Data{}, ErrBadRequest(err.Error())
	}

	templateID := req.TemplateID
	if templateID == 0 {
		templateID = 1
	}
	if _, err := s.deps.Templates.Get(templateID); err != nil {
		return "", 0, resume.Data{}, ErrBadRequest(err.Error())
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = data.PersonalInfo.Name
	}
	return title, int32(templateID), data, nil
}

func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	title, templateID, data, apiErr := s.decodeResumeRequest(r)
	if apiErr != nil {
		RespondWithError(w, r, apiErr)
		return
	}
	created, err := s.deps.Store.CreateResume(r.Context(), title, templateID, data)
	if err != nil {
		s.storeError(w, r, err, "resume")
		return
	}
	RespondWithJSON(w, r, http.StatusCreated, newResumeResponse(created))
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			RespondWithError(w, r, ErrBadRequest("limit must be between 1 and 200"))
			return
		}
		limit = n
	}
	items, err := s.deps.Store.ListResumes(r.Context(), int32(limit))
	if err != nil {
		s.storeError(w, r, err, "resume")
		return
	}
	out := make([]resumeResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newResumeResponse(item))
	}
	RespondWithJSON(w, r, http.StatusOK, map[string]any{"resumes": out})
}

// loadResume fetches the draft named by the {id} URL parameter.
func (s *Server) loadResume(w http.ResponseWriter, r *http.Request) (database.Resume, bool) {
	if !s.requireStore(w, r) {
		return database.Resume{}, false
	}
	id, ok := parseID(w, r)
	if !ok {
		return database.Resume{}, false
	}
	stored, err := s.deps.Store.GetResume(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err, "resume")
		return database.Resume{}, false
	}
	return stored, true
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadResume(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, r, http.StatusOK, newResumeResponse(stored))
}

func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	title, templateID, data, apiErr := s.decodeResumeRequest(r)
	if apiErr != nil {
		RespondWithError(w, r, apiErr)
		return
	}
	updated, err := s.deps.Store.UpdateResume(r.Context(), id, title, templateID, data)
	if err != nil {
		s.storeError(w, r, err, "resume")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, newResumeResponse(updated))
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.deps.Store.DeleteResume(r.Context(), id); err != nil {
		s.storeError(w, r, err, "resume")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storedData(w http.ResponseWriter, r *http.Request, stored database.Resume) (resume.Data, bool) {
	data, err := stored.Resume()
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("stored resume is unreadable", zap.Error(err))
		RespondWithError(w, r, ErrInternalServer("stored resume is unreadable"))
		return resume.Data{}, false
	}
	return data, true
}

func (s *Server) handleResumeScore(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadResume(w, r)
	if !ok {
		return
	}
	data, ok := s.storedData(w, r, stored)
	if !ok {
		return
	}
	RespondWithJSON(w, r, http.StatusOK, newScoreResponse(data))
}

func (s *Server) handleResumePDF(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadResume(w, r)
	if !ok {
		return
	}
	data, ok := s.storedData(w, r, stored)
	if !ok {
		return
	}

	templateID := strconv.Itoa(int(stored.TemplateID))
	if override := r.URL.Query().Get("template"); override != "" {
		templateID = override
	}
	tpl, err := s.deps.Templates.Lookup(templateID)
	if err != nil {
		RespondWithError(w, r, ErrBadRequest(err.Error()))
		return
	}
	s.writePDF(w, r, data, tpl)
}

// handleCreateAnalysis queues an analysis of a stored draft, or runs it
// inline when no broker is configured.
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queue == nil && s.deps.Processor == nil {
		RespondWithError(w, r, ErrServiceUnavailable("resume analysis is not configured"))
		return
	}
	stored, ok := s.loadResume(w, r)
	if !ok {
		return
	}

	var req analysisRequest
	if apiErr := decodeOptionalBody(r, &req); apiErr != nil {
		RespondWithError(w, r, apiErr)
		return
	}

	created, err := s.deps.Store.CreateAnalysis(r.Context(), stored.ID, req.JobDescription)
	if err != nil {
		s.storeError(w, r, err, "analysis")
		return
	}
	job := queue.Job{AnalysisID: created.ID, ResumeID: stored.ID, JobDescription: req.JobDescription}
	logger := logging.FromContext(r.Context(), s.logger).With(zap.String("analysis_id", created.ID.String()))

	if s.deps.Queue != nil {
		if err := s.deps.Queue.Enqueue(r.Context(), job); err != nil {
			logger.Error("failed to enqueue analysis", zap.Error(err))
			RespondWithError(w, r, ErrServiceUnavailable("failed to queue analysis"))
			return
		}
		logger.Info("analysis queued")
		RespondWithJSON(w, r, http.StatusAccepted, newAnalysisResponse(created))
		return
	}

	// A client hanging up must not leave the analysis stuck in processing, so
	// only the budget bounds the run.
	ctx, cancel := s.withAnalysisBudget(context.WithoutCancel(r.Context()))
	defer cancel()
	if _, err := s.deps.Processor.Process(ctx, job); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			RespondWithError(w, r, ErrGatewayTimeout("analysis timed out"))
			return
		}
		RespondWithError(w, r, ErrLLMProcessing(err.Error()))
		return
	}
	done, err := s.deps.Store.GetAnalysis(r.Context(), created.ID)
	if err != nil {
		s.storeError(w, r, err, "analysis")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, newAnalysisResponse(done))
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a, err := s.deps.Store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err, "analysis")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, newAnalysisResponse(a))
}
