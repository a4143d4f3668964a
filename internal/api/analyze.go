package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/analyzer"
	"github.com/muhammadolammi/resumeforge/internal/export"
	"github.com/muhammadolammi/resumeforge/internal/logging"
	"github.com/muhammadolammi/resumeforge/internal/resume"
	"github.com/muhammadolammi/resumeforge/internal/templates"
)

type analyzeRequest struct {
	ResumeData     json.RawMessage `json:"resumeData"`
	JobDescription string          `json:"jobDescription"`
}

type analyzeResponse struct {
	Success  bool               `json:"success"`
	Analysis *analyzer.Report `json:"analysis,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type scoreResponse struct {
	Score  int            `json:"score"`
	Label  string         `json:"label"`
	Issues []resume.Issue `json:"issues"`
}

func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	fail := func(status int, msg string) {
		RespondWithJSON(w, r, status, analyzeResponse{Success: false, Error: msg})
	}

	if s.deps.Analyzer == nil {
		fail(http.StatusServiceUnavailable, "resume analysis is not configured")
		return
	}

	var req analyzeRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		fail(apiErr.StatusCode(), apiErr.Detail)
		return
	}
	data, err := resume.FromJSON(req.ResumeData)
	if err == nil {
		err = data.Validate()
	}
	if err != nil {
		fail(http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := s.withAnalysisBudget(r.Context())
	defer cancel()
	analysis, err := s.deps.Analyzer.Analyze(ctx, analyzer.Request{Resume: data, JobDescription: req.JobDescription})
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("Error analyzing resume", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			fail(http.StatusGatewayTimeout, "analysis timed out")
			return
		}
		fail(http.StatusInternalServerError, err.Error())
		return
	}
	report := analyzer.NewReport(analysis)
	RespondWithJSON(w, r, http.StatusOK, analyzeResponse{Success: true, Analysis: &report})
}

// decodeResume reads a bare resume document from the request body.
func decodeResume(r *http.Request) (resume.Data, *ApiError) {
	var raw json.RawMessage
	if apiErr := decodeBody(r, &raw); apiErr != nil {
		return resume.Data{}, apiErr
	}
	data, err := resume.FromJSON(raw)
	if err != nil {
		return resume.Data{}, ErrBadRequest(err.Error())
	}
	return data, nil
}

func newScoreResponse(d resume.Data) scoreResponse {
	score := resume.Score(d)
	return scoreResponse{Score: score, Label: resume.ScoreLabel(score), Issues: resume.Issues(d)}
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	data, apiErr := decodeResume(r)
	if apiErr != nil {
		RespondWithError(w, r, apiErr)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, newScoreResponse(data))
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.deps.Templates.Lookup(r.URL.Query().Get("template"))
	if err != nil {
		RespondWithError(w, r, ErrBadRequest(err.Error()))
		return
	}
	data, apiErr := decodeResume(r)
	if apiErr != nil {
		RespondWithError(w, r, apiErr)
		return
	}
	s.writePDF(w, r, data, tpl)
}

func (s *Server) writePDF(w http.ResponseWriter, r *http.Request, data resume.Data, tpl templates.Template) {
	var buf bytes.Buffer
	if err := export.RenderPDF(&buf, data, tpl); err != nil {
		logging.FromContext(r.Context(), s.logger).Error("failed to render pdf", zap.Error(err))
		RespondWithError(w, r, ErrInternalServer("failed to render pdf"))
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": resume.Filename(data, ".pdf")})
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	catalog := s.deps.Templates
	RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"categories": catalog.Categories(),
		"templates":  catalog.Filter(r.URL.Query().Get("category")),
	})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.deps.Templates.Lookup(chiParam(r, "id"))
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			RespondWithError(w, r, ErrNotFound(err.Error()))
			return
		}
		RespondWithError(w, r, ErrInternalServer(err.Error()))
		return
	}
	RespondWithJSON(w, r, http.StatusOK, tpl)
}
