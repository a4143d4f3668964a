package api

import (
	"fmt"
	"net/http"
)

// ApiError is the JSON error body returned by every endpoint except
// /api/analyze-resume, which keeps its {success,error} shape.
type ApiError struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var (
	ErrBadRequest       = func(detail string) *ApiError { return NewApiError(http.StatusBadRequest, "Bad Request", detail) }
	ErrNotFound         = func(detail string) *ApiError { return NewApiError(http.StatusNotFound, "Not Found", detail) }
	ErrMethodNotAllowed = func(detail string) *ApiError {
		return NewApiError(http.StatusMethodNotAllowed, "Method Not Allowed", detail)
	}
	ErrTooLarge = func(detail string) *ApiError {
		return NewApiError(http.StatusRequestEntityTooLarge, "Request Entity Too Large", detail)
	}
	ErrUnsupportedMedia = func(detail string) *ApiError {
		return NewApiError(http.StatusUnsupportedMediaType, "Unsupported Media Type", detail)
	}
	ErrUnprocessable = func(detail string) *ApiError {
		return NewApiError(http.StatusUnprocessableEntity, "Unprocessable Entity", detail)
	}
	ErrInternalServer = func(detail string) *ApiError {
		return NewApiError(http.StatusInternalServerError, "Internal Server Error", detail)
	}
	ErrServiceUnavailable = func(detail string) *ApiError {
		return NewApiError(http.StatusServiceUnavailable, "Service Unavailable", detail)
	}
	ErrLLMProcessing = func(detail string) *ApiError {
		return NewApiError(http.StatusInternalServerError, "LLM Processing Failed", detail)
	}
	ErrGatewayTimeout = func(detail string) *ApiError {
		return NewApiError(http.StatusGatewayTimeout, "Gateway Timeout", detail)
	}
)

func NewApiError(code int, message, detail string) *ApiError {
	return &ApiError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

func (e *ApiError) WithRequestID(requestID string) *ApiError {
	e.RequestID = requestID
	return e
}

func (e *ApiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *ApiError) StatusCode() int {
	return e.Code
}
