// Package httputil provides HTTP middleware and the JSON envelope helpers
// shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bissquit/store-rating/internal/validation"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of a validation error's details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes a raw JSON response without envelope.
// Use Success for {"data": ...} wrapped responses.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Success writes a JSON response with {"data": ...} envelope.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, map[string]any{"data": data})
}

// Error writes a JSON response with {"error": {"message": ...}} envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{
		"error": map[string]string{"message": message},
	})
}

// ValidationError writes a 400 validation error. Request decoding failures
// from go-playground/validator and field rule violations both produce a list
// of field details; any other error is reported as a string.
func ValidationError(w http.ResponseWriter, err error) {
	var (
		details   any
		ruleErr   *validation.Error
		fieldErrs validator.ValidationErrors
	)

	switch {
	case errors.As(err, &ruleErr):
		details = []FieldError{{Field: string(ruleErr.Rule), Message: ruleErr.Message}}
	case errors.As(err, &fieldErrs):
		list := make([]FieldError, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			list = append(list, FieldError{Field: e.Field(), Message: e.Tag()})
		}
		details = list
	default:
		details = err.Error()
	}

	JSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message": "validation error",
			"details": details,
		},
	})
}
