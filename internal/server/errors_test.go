package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/llm"
	"github.com/jonathan/resume-coach/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported format", &ingestion.UnsupportedFormatError{Filename: "a.txt", Extension: ".txt"}, http.StatusUnsupportedMediaType},
		{"missing dependency", &ingestion.MissingDependencyError{Format: ingestion.FormatPDF}, http.StatusServiceUnavailable},
		{"extraction", &ingestion.ExtractionError{Filename: "a.pdf", Cause: errors.New("eof")}, http.StatusUnprocessableEntity},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"wrapped api error", fmt.Errorf("failed to complete chat: %w", &llm.APIError{StatusCode: 500}), http.StatusBadGateway},
		{"unknown persona", fmt.Errorf("%w: %q", chat.ErrUnknownPersona, "pirate"), http.StatusBadRequest},
		{"empty message", chat.ErrEmptyMessage, http.StatusBadRequest},
		{"over budget", chat.ErrOverBudget, http.StatusBadRequest},
		{"not found", chat.ErrNotFound, http.StatusNotFound},
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"validation", &ErrValidation{Field: "job_role", Message: "required"}, http.StatusBadRequest},
		{"chat disabled", &ErrChatDisabled{}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestExtractValidationErrors(t *testing.T) {
	req := types.SendMessageRequest{}
	err := validator.New().Struct(&req)

	ve := extractValidationErrors(err)
	assert.Equal(t, "Message", ve.Field)
	assert.Equal(t, "required", ve.Message)

	fallback := extractValidationErrors(errors.New("other"))
	assert.Equal(t, "request", fallback.Field)
}
