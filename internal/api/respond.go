package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/civicprep/civicprep/internal/mastery"
	"github.com/civicprep/civicprep/internal/retry"
	"github.com/civicprep/civicprep/internal/spacedrep"
)

var validate = validator.New()

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// respondErrorAndLog maps err to a status, logs it at a level matching the
// status and writes a safe message.
func (s *Server) respondErrorAndLog(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := errorStatus(err)
	level := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status == http.StatusTooManyRequests:
		level = slog.LevelWarn
	}
	s.logger.Log(r.Context(), level, "API error response",
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	if status < http.StatusInternalServerError {
		userMessage = safeMessage(err)
	}
	respondError(w, r, status, userMessage)
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	var inputErr *mastery.InputError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &inputErr), errors.As(err, &validationErrs), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, spacedrep.ErrCardNotFound), errors.Is(err, errNotFound):
		return http.StatusNotFound
	case retry.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func safeMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return "Validation error: " + strings.Join(fields, ", ")
	}
	var inputErr *mastery.InputError
	if errors.As(err, &inputErr) {
		return inputErr.Error()
	}
	if errors.Is(err, spacedrep.ErrCardNotFound) {
		return "Card not found"
	}
	return err.Error()
}

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)

// decodeJSON reads the body into v and validates it.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return validate.Struct(v)
}
