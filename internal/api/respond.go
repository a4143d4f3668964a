package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"github.com/muhammadolammi/resumeforge/internal/logging"
)

func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

func RespondWithError(w http.ResponseWriter, r *http.Request, err *ApiError) {
	err.WithRequestID(logging.GetRequestID(r.Context()))
	render.Status(r, err.StatusCode())
	render.JSON(w, r, err)
}

// decodeBody reads a JSON request body, reporting oversized bodies as 413.
func decodeBody(r *http.Request, v any) *ApiError {
	return decodeError(render.DecodeJSON(r.Body, v))
}

// decodeOptionalBody is decodeBody for endpoints whose body may be empty.
func decodeOptionalBody(r *http.Request, v any) *ApiError {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := render.DecodeJSON(r.Body, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return decodeError(err)
}

func decodeError(err error) *ApiError {
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrTooLarge("request body too large")
	}
	return ErrBadRequest("invalid JSON body: " + err.Error())
}
