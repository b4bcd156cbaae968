// Package ats estimates how well a resume would fare in an applicant tracking system.
//
// The score is the floored sum of five independent, capped dimensions. Each dimension
// is a pure function of the resume text and returns its score with the evidence behind it.
package ats

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-coach/internal/matching"
)

// Maximum score per dimension.
const (
	MaxKeywordScore        = 40.0
	MaxSectionScore        = 20.0
	MaxActionVerbScore     = 10.0
	MaxQuantificationScore = 10.0
	MaxFormattingScore     = 20.0
)

const (
	coreSectionPoints     = 5.0
	optionalSectionPoints = 2.5
	optionalSectionCap    = 10.0
	pointsPerActionVerb   = 2.0
	mojibakeBullet        = "â€¢"
	specialCharacters     = "@#$%^&*!~`"
)

// CoreSections are checked in this order when suggesting a missing section.
var CoreSections = []string{"education", "skills", "experience", "projects"}

// OptionalSections add a smaller bonus on top of the core sections.
var OptionalSections = []string{"certifications", "certificates", "awards", "publications", "interests"}

// ActionVerbs is the fixed vocabulary matched as whole words.
var ActionVerbs = []string{
	"developed", "implemented", "designed", "optimized", "built", "created",
	"analyzed", "managed", "led", "coordinated", "executed", "delivered",
	"improved", "enhanced", "increased", "reduced", "streamlined", "automated",
	"integrated", "deployed", "tested", "debugged", "collaborated", "communicated",
}

var actionVerbPatterns = compileActionVerbs(ActionVerbs)

// quantificationPatterns overlap on purpose: the bare integer catch-all also matches
// the number inside every more specific pattern.
var quantificationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+%`),
	regexp.MustCompile(`(?i)\d+\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)\$\d+`),
	regexp.MustCompile(`(?i)\d+\s*(?:users?|customers?|clients?)`),
	regexp.MustCompile(`(?i)\d+\s*(?:projects?|tasks?|features?)`),
	regexp.MustCompile(`(?i)\d+\s*(?:team members?|members?|employees?)`),
	regexp.MustCompile(`\b\d+\b`),
}

// Formatting issues, also surfaced as suggestions.
const (
	IssueTooShort      = "resume is too short (under 300 words)"
	IssueShort         = "resume is on the short side (under 500 words)"
	IssueTooLong       = "resume is too long (over 1500 words)"
	IssueLong          = "resume is on the long side (over 1000 words)"
	IssueSpecialChars  = "too many special characters, which can confuse ATS parsers"
	IssueComplexLayout = "complex formatting detected (tables, columns or broken bullets)"
)

func compileActionVerbs(verbs []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(verbs))
	for i, v := range verbs {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(v) + `\b`)
	}
	return patterns
}

// ScoreKeywords awards up to 40 points for the share of required skills found in text.
// Returns the score and the skills found.
func ScoreKeywords(text string, required []string) (float64, []string) {
	if len(required) == 0 {
		return 0, []string{}
	}
	found, _ := matching.Partition(text, required)
	score := matching.Round1(float64(len(found)) / float64(len(required)) * MaxKeywordScore)
	return min(score, MaxKeywordScore), found
}

// ScoreSections awards 5 points per core section and 2.5 per optional section (optional capped at 10),
// with the total clamped to 20. Returns the score and the sections found.
func ScoreSections(text string) (float64, []string) {
	lower := strings.ToLower(text)
	found := []string{}

	core := 0.0
	for _, s := range CoreSections {
		if strings.Contains(lower, s) {
			core += coreSectionPoints
			found = append(found, s)
		}
	}

	optional := 0.0
	for _, s := range OptionalSections {
		if strings.Contains(lower, s) {
			optional += optionalSectionPoints
			found = append(found, s)
		}
	}

	return min(core+min(optional, optionalSectionCap), MaxSectionScore), found
}

// ScoreActionVerbs awards 2 points per distinct action verb, capped at 10.
func ScoreActionVerbs(text string) (float64, []string) {
	found := []string{}
	for i, p := range actionVerbPatterns {
		if p.MatchString(text) {
			found = append(found, ActionVerbs[i])
		}
	}
	return min(float64(len(found))*pointsPerActionVerb, MaxActionVerbScore), found
}

// ScoreQuantification tiers the number of distinct numeric snippets in text:
// five or more score 10, three or more 7.5, any 5, none 0.
func ScoreQuantification(text string) (float64, []string) {
	seen := make(map[string]bool)
	found := []string{}
	for _, p := range quantificationPatterns {
		for _, m := range p.FindAllString(text, -1) {
			if !seen[m] {
				seen[m] = true
				found = append(found, m)
			}
		}
	}

	switch n := len(found); {
	case n >= 5:
		return 10, found
	case n >= 3:
		return 7.5, found
	case n >= 1:
		return 5, found
	default:
		return 0, found
	}
}

// ScoreFormatting starts at 20 and subtracts penalties for length, special characters and
// layout that ATS parsers handle poorly. Returns the score and the issues found.
func ScoreFormatting(text string) (float64, []string) {
	score := MaxFormattingScore
	issues := []string{}

	words := len(strings.Fields(text))
	switch {
	case words < 300:
		score -= 10
		issues = append(issues, IssueTooShort)
	case words < 500:
		score -= 5
		issues = append(issues, IssueShort)
	}
	switch {
	case words > 1500:
		score -= 10
		issues = append(issues, IssueTooLong)
	case words > 1000:
		score -= 5
		issues = append(issues, IssueLong)
	}

	specials := 0
	for _, c := range specialCharacters {
		specials += strings.Count(text, string(c))
	}
	if specials > 5 {
		score -= 5
		issues = append(issues, IssueSpecialChars)
	}

	if strings.Count(text, "|") > 10 || strings.Count(text, mojibakeBullet) > 20 {
		score -= 3
		issues = append(issues, IssueComplexLayout)
	}

	return max(score, 0), issues
}
