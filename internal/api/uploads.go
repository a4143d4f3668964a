package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/contact"
	"github.com/muhammadolammi/resumeforge/internal/extract"
	"github.com/muhammadolammi/resumeforge/internal/logging"
	"github.com/muhammadolammi/resumeforge/internal/storage"
)

const (
	uploadField      = "file"
	resumeUploadsDir = "uploads/resume"
	filesPrefix      = "uploads/"
)

type uploadResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Text        string `json:"text"`
	ObjectKey   string `json:"objectKey,omitempty"`
}

type uploadedFile struct {
	name string
	mime string
	data []byte
}

// readUpload pulls the multipart file field and checks its type against
// accepted.
func (s *Server) readUpload(r *http.Request, accepted ...string) (uploadedFile, *ApiError) {
	if r.ContentLength > s.maxBody() {
		return uploadedFile{}, ErrTooLarge("file too large")
	}
	if err := r.ParseMultipartForm(s.maxBody()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return uploadedFile{}, ErrTooLarge("file too large")
		}
		return uploadedFile{}, ErrBadRequest("expected a multipart form: " + err.Error())
	}
	f, header, err := r.FormFile(uploadField)
	if err != nil {
		return uploadedFile{}, ErrBadRequest("missing form file \"" + uploadField + "\"")
	}
	defer f.Close()

	mimeType := extract.DetectMIME(header.Filename, header.Header.Get("Content-Type"))
	if !extract.Allowed(mimeType, accepted...) {
		return uploadedFile{}, ErrUnsupportedMedia("unsupported file type " + strconv.Quote(mimeType))
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return uploadedFile{}, ErrBadRequest("failed to read upload")
	}
	return uploadedFile{name: header.Filename, mime: mimeType, data: data}, nil
}

func (s *Server) extractUpload(w http.ResponseWriter, r *http.Request, accepted ...string) (uploadedFile, uploadResponse, bool) {
	up, apiErr := s.readUpload(r, accepted...)
	if apiErr != nil {
		RespondWithError(w, r, apiErr)
		return uploadedFile{}, uploadResponse{}, false
	}
	text, err := extract.Text(up.mime, up.data)
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("text extraction failed",
			zap.String("filename", up.name), zap.Error(err))
		RespondWithError(w, r, ErrUnprocessable("could not read text from "+up.name))
		return uploadedFile{}, uploadResponse{}, false
	}
	return up, uploadResponse{
		Filename:    up.name,
		ContentType: up.mime,
		Size:        len(up.data),
		Text:        text,
	}, true
}

// handleUploadResume extracts the text of an uploaded resume and archives the
// file itself when storage is configured.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	up, resp, ok := s.extractUpload(w, r, extract.MIMEPDF, extract.MIMEDOCX)
	if !ok {
		return
	}

	if s.deps.Files != nil {
		key := storage.ObjectKey(resumeUploadsDir, uuid.NewString(), up.name)
		if err := s.deps.Files.Upload(r.Context(), key, up.mime, up.data); err != nil {
			logging.FromContext(r.Context(), s.logger).Warn("failed to archive upload", zap.String("key", key), zap.Error(err))
		} else {
			resp.ObjectKey = key
		}
	}
	RespondWithJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleUploadJobDescription(w http.ResponseWriter, r *http.Request) {
	_, resp, ok := s.extractUpload(w, r, extract.MIMEPDF, extract.MIMEDOCX, extract.MIMEText, extract.MIMEHTML)
	if !ok {
		return
	}
	RespondWithJSON(w, r, http.StatusOK, resp)
}

// handleGetFile streams an archived upload back to the client.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	if s.deps.Files == nil {
		RespondWithError(w, r, ErrServiceUnavailable("file storage is not configured"))
		return
	}
	key := chiParam(r, "*")
	if !strings.HasPrefix(key, filesPrefix) || strings.Contains(key, "..") {
		RespondWithError(w, r, ErrNotFound("file not found"))
		return
	}

	obj, err := s.deps.Files.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			RespondWithError(w, r, ErrNotFound("file not found"))
			return
		}
		logging.FromContext(r.Context(), s.logger).Error("failed to open file", zap.String("key", key), zap.Error(err))
		RespondWithError(w, r, ErrInternalServer("failed to open file"))
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("file stream interrupted", zap.String("key", key), zap.Error(err))
	}
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	var msg contact.Message
	if apiErr := decodeBody(r, &msg); apiErr != nil {
		RespondWithError(w, r, apiErr)
		return
	}
	msg = msg.Normalize()
	if err := msg.Validate(); err != nil {
		RespondWithError(w, r, ErrBadRequest(err.Error()))
		return
	}

	saved, err := s.deps.Store.CreateContactMessage(r.Context(), msg.Name, msg.Email, msg.Subject, msg.Message)
	if err != nil {
		s.storeError(w, r, err, "contact message")
		return
	}
	logging.FromContext(r.Context(), s.logger).Info("contact message received", zap.String("id", saved.ID.String()))
	RespondWithJSON(w, r, http.StatusCreated, map[string]any{
		"success":   true,
		"id":        saved.ID,
		"createdAt": saved.CreatedAt,
	})
}
