package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/planscope/internal/domain/activity"
	"github.com/rpggio/planscope/internal/domain/item"
	"github.com/rpggio/planscope/internal/domain/project"
	"github.com/rpggio/planscope/internal/domain/scope"
)

// Error codes returned by tools.
const (
	CodeAccessDenied = "ACCESS_DENIED"
	CodeInvalidInput = "INVALID_INPUT"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors become a
// generic INTERNAL error so storage details never reach the client.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, scope.ErrAccessDenied):
		return &APIError{Code: CodeAccessDenied, Message: "access denied"}
	case errors.Is(err, ErrUnauthorized):
		return &APIError{Code: CodeUnauthorized, Message: "unauthorized"}
	case errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, item.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: CodeInvalidInput, Message: err.Error()}
	case errors.Is(err, item.ErrConflict):
		return &APIError{Code: CodeConflict, Message: "item was modified concurrently", RecoveryHint: "Reload the item and retry with its current version"}
	case errors.Is(err, project.ErrMemberExists):
		return &APIError{Code: CodeConflict, Message: err.Error()}
	default:
		return &APIError{Code: CodeInternal, Message: "internal error"}
	}
}
