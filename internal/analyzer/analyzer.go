// Package analyzer assembles the skill match, suggestions and ATS score into one analysis result.
package analyzer

import (
	"context"
	"strings"

	"github.com/jonathan/resume-coach/internal/ats"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/matching"
	"github.com/jonathan/resume-coach/internal/suggestions"
	"github.com/jonathan/resume-coach/internal/taxonomy"
	"github.com/jonathan/resume-coach/internal/types"
)

// WarningEmptyDocument is attached when a document yields no extractable text.
const WarningEmptyDocument = "no extractable text found in document"

// Options controls optional parts of the result.
type Options struct {
	IncludeText bool
}

// Analyze runs every scorer over text for jobRole. It never fails.
func Analyze(text, jobRole string) types.AnalysisResult {
	return AnalyzeWithOptions(text, jobRole, Options{})
}

// AnalyzeWithOptions is Analyze with control over optional fields.
func AnalyzeWithOptions(text, jobRole string, opts Options) types.AnalysisResult {
	resolved, _ := taxonomy.Resolve(jobRole)
	matchingSkills, missingSkills := matching.MatchSkills(text, jobRole)

	result := types.AnalysisResult{
		JobRole:        jobRole,
		ResolvedRole:   resolved,
		MatchingSkills: matchingSkills,
		MissingSkills:  missingSkills,
		MatchScore:     matching.MatchScore(matchingSkills, missingSkills),
		Suggestions:    suggestions.Generate(missingSkills, len(matchingSkills)),
		ATS:            ats.CalculateScore(text, jobRole),
	}
	if strings.TrimSpace(text) == "" {
		result.Warnings = append(result.Warnings, WarningEmptyDocument)
	}
	if opts.IncludeText {
		result.ResumeText = text
	}
	return result
}

// Analyzer extracts documents and analyzes their text.
type Analyzer struct {
	extractor *ingestion.Extractor
	opts      Options
}

// New creates an Analyzer backed by extractor.
func New(extractor *ingestion.Extractor, opts Options) *Analyzer {
	return &Analyzer{extractor: extractor, opts: opts}
}

// AnalyzeDocument extracts doc and analyzes it. Extraction errors are returned unchanged
// and no partial result is produced.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc ingestion.Document, jobRole string) (*types.AnalysisResult, error) {
	text, err := a.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	result := AnalyzeWithOptions(text, jobRole, a.opts)
	return &result, nil
}
