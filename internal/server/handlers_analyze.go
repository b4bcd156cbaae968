package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/resume-coach/internal/analyzer"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/taxonomy"
	"github.com/jonathan/resume-coach/internal/types"
)

// Multipart field names of the upload form.
const (
	formFieldResume  = "resume"
	formFieldJobRole = "job_role"
)

// roleResponse is one taxonomy entry in GET /roles.
type roleResponse struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// handleRoles lists the taxonomy in enumeration order.
func (s *Server) handleRoles(w http.ResponseWriter, _ *http.Request) {
	roles := taxonomy.Roles()
	resp := make([]roleResponse, len(roles))
	for i, r := range roles {
		resp[i] = roleResponse{Name: r.Name, Skills: r.Skills}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"roles": resp})
}

// handleAnalyze analyzes an uploaded resume document.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	result, err := s.analyzeUpload(w, r)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleAnalyzeText analyzes resume text posted as JSON.
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	var req types.AnalyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorFor(w, err)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFor(w, extractValidationErrors(err))
		return
	}

	result := analyzer.Analyze(req.ResumeText, req.JobRole)
	s.jsonResponse(w, http.StatusOK, result)
}

// analyzeUpload reads the multipart upload form and analyzes the attached document.
// Every failure is returned as an error for the caller to render.
func (s *Server) analyzeUpload(w http.ResponseWriter, r *http.Request) (*types.AnalysisResult, error) {
	if r.ContentLength > s.maxUpload {
		return nil, &http.MaxBytesError{Limit: s.maxUpload}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &ErrValidation{Field: formFieldResume, Message: "expected a multipart upload"}
	}

	jobRole := strings.TrimSpace(r.FormValue(formFieldJobRole))
	if jobRole == "" {
		return nil, &ErrValidation{Field: formFieldJobRole, Message: "required"}
	}

	file, header, err := r.FormFile(formFieldResume)
	if err != nil {
		return nil, &ErrValidation{Field: formFieldResume, Message: "required"}
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return s.analyzer.AnalyzeDocument(r.Context(), ingestion.Document{Filename: header.Filename, Data: data}, jobRole)
}
