package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/taxonomy"
	"github.com/jonathan/resume-coach/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// dimensionLabels are the display names of the ATS breakdown, aligned with types.DimensionNames.
var dimensionLabels = []string{"Keyword Match", "Section Structure", "Action Verbs", "Quantification", "Formatting"}

type indexView struct {
	Roles       []string
	Personas    []string
	ChatEnabled bool
	PasswordSet bool
}

type dimensionView struct {
	Name  string
	Label string
	Score float64
	Max   float64
}

type reportView struct {
	Error      string
	Result     *types.AnalysisResult
	Dimensions []dimensionView
}

func parsePages() (*template.Template, error) {
	funcs := template.FuncMap{
		"percent": func(score, limit float64) float64 {
			if limit <= 0 {
				return 0
			}
			return score / limit * 100
		},
	}
	pages, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return pages, nil
}

// handleIndex renders the upload form and chat panel.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, "index.html", indexView{
		Roles:       taxonomy.RoleNames(),
		Personas:    chat.Personas(),
		ChatEnabled: s.chats != nil,
		PasswordSet: s.shellAuth.Enabled(),
	})
}

// handleReport analyzes the uploaded form and renders the report page.
// Failures render a single message and no partial result.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.analyzeUpload(w, r)
	if err != nil {
		s.renderPage(w, HTTPStatus(err), "report.html", reportView{Error: err.Error()})
		return
	}
	s.renderPage(w, http.StatusOK, "report.html", newReportView(result))
}

func newReportView(result *types.AnalysisResult) reportView {
	dims := result.ATS.Breakdown.Dimensions()
	view := reportView{Result: result, Dimensions: make([]dimensionView, len(dims))}
	for i, d := range dims {
		view.Dimensions[i] = dimensionView{
			Name:  types.DimensionNames[i],
			Label: dimensionLabels[i],
			Score: d.Score,
			Max:   d.Max,
		}
	}
	return view
}

// renderPage executes into a buffer so a template failure never sends a half-written page.
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[server] failed to render %s: %v", name, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
