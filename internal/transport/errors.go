package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
)

// Error codes carried in error responses.
const (
	CodeAccessDenied = "ACCESS_DENIED"
	CodeInvalidInput = "INVALID_INPUT"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
)

// Error is the body of every error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error Error `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: Error{Code: code, Message: message}})
}

// MapError translates a domain error into an HTTP status and error code.
// ok is false for errors that have no client-facing meaning.
func MapError(err error) (status int, apiErr Error, ok bool) {
	switch {
	case errors.Is(err, scope.ErrAccessDenied):
		return http.StatusForbidden, Error{Code: CodeAccessDenied, Message: "access denied"}, true
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, Error{Code: CodeUnauthorized, Message: "unauthorized"}, true
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, item.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, Error{Code: CodeInvalidInput, Message: err.Error()}, true
	case errors.Is(err, item.ErrConflict), errors.Is(err, project.ErrMemberExists):
		return http.StatusConflict, Error{Code: CodeConflict, Message: err.Error()}, true
	default:
		return http.StatusInternalServerError, Error{Code: CodeInternal, Message: "internal error"}, false
	}
}
