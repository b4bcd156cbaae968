// Package types defines the value objects shared across the analysis, chat and server layers.
package types

import "github.com/go-playground/validator/v10"

// DimensionScore is the score for a single ATS dimension together with the evidence behind it.
type DimensionScore struct {
	Score    float64  `json:"score"`
	Max      float64  `json:"max"`
	Evidence []string `json:"evidence"`
}

// ATSBreakdown holds the five weighted ATS dimensions.
type ATSBreakdown struct {
	KeywordMatch   DimensionScore `json:"keyword_match"`
	Sections       DimensionScore `json:"sections"`
	ActionVerbs    DimensionScore `json:"action_verbs"`
	Quantification DimensionScore `json:"quantification"`
	Formatting     DimensionScore `json:"formatting"`
}

// Dimensions returns the breakdown entries in their canonical order.
func (b ATSBreakdown) Dimensions() []DimensionScore {
	return []DimensionScore{b.KeywordMatch, b.Sections, b.ActionVerbs, b.Quantification, b.Formatting}
}

// DimensionNames lists the JSON names of the breakdown entries, aligned with Dimensions.
var DimensionNames = []string{"keyword_match", "sections", "action_verbs", "quantification", "formatting"}

// ATSResult is the composite ATS compatibility score.
type ATSResult struct {
	TotalScore  int          `json:"total_score"`
	Breakdown   ATSBreakdown `json:"breakdown"`
	Suggestions []string     `json:"suggestions"`
}

// AnalysisResult is the full outcome of analyzing one resume against one job role.
type AnalysisResult struct {
	JobRole        string    `json:"job_role"`
	ResolvedRole   string    `json:"resolved_role"`
	MatchingSkills []string  `json:"matching_skills"`
	MissingSkills  []string  `json:"missing_skills"`
	MatchScore     float64   `json:"match_score"`
	Suggestions    []string  `json:"suggestions"`
	ATS            ATSResult `json:"ats"`
	Warnings       []string  `json:"warnings,omitempty"`
	ResumeText     string    `json:"resume_text,omitempty"`
}

// MaxResumeTextLength bounds the resume text accepted by a plain-text analysis request.
const MaxResumeTextLength = 200000

// AnalyzeTextRequest is the body of a plain-text analysis request. Empty text is allowed and
// analyzed like an empty document.
type AnalyzeTextRequest struct {
	ResumeText string `json:"resume_text" validate:"max=200000"`
	JobRole    string `json:"job_role" validate:"required,max=100"`
}

// AnalysisJob is a queued request to analyze a stored document.
type AnalysisJob struct {
	RequestID string `json:"request_id" validate:"required"`
	Bucket    string `json:"bucket" validate:"required"`
	ObjectKey string `json:"object_key" validate:"required"`
	Filename  string `json:"filename" validate:"required"`
	JobRole   string `json:"job_role" validate:"required"`
}

// AnalysisJobResult is published once an AnalysisJob has been processed.
type AnalysisJobResult struct {
	RequestID string          `json:"request_id"`
	Status    string          `json:"status"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Job result statuses.
const (
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Validate validates the AnalyzeTextRequest using the validator.
func (r *AnalyzeTextRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AnalysisJob using the validator.
func (j *AnalysisJob) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}
