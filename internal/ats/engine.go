package ats

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/jonathan/resume-coach/internal/taxonomy"
	"github.com/jonathan/resume-coach/internal/types"
)

// Suggestion thresholds per dimension.
const (
	keywordSuggestionThreshold        = 30.0
	sectionSuggestionThreshold        = 15.0
	actionVerbSuggestionThreshold     = 7.0
	quantificationSuggestionThreshold = 7.0
	maxMissingKeywordsListed          = 5
	maxFormattingSuggestions          = 2
)

// Suggestion texts that do not depend on the resume.
const (
	SuggestActionVerbs    = "Start your bullet points with strong action verbs such as developed, implemented or led."
	SuggestQuantification = "Add measurable results such as percentages, dollar amounts or team sizes to show your impact."
)

// CalculateScore scores resume text for the given job role. It is deterministic and never fails:
// degenerate input such as an empty string yields a valid, bounded result.
func CalculateScore(text, jobRole string) types.ATSResult {
	required := taxonomy.ResolveRole(jobRole)

	keyword, matched := ScoreKeywords(text, required)
	section, sections := ScoreSections(text)
	verbs, foundVerbs := ScoreActionVerbs(text)
	quant, snippets := ScoreQuantification(text)
	format, issues := ScoreFormatting(text)

	breakdown := types.ATSBreakdown{
		KeywordMatch:   types.DimensionScore{Score: keyword, Max: MaxKeywordScore, Evidence: matched},
		Sections:       types.DimensionScore{Score: section, Max: MaxSectionScore, Evidence: sections},
		ActionVerbs:    types.DimensionScore{Score: verbs, Max: MaxActionVerbScore, Evidence: foundVerbs},
		Quantification: types.DimensionScore{Score: quant, Max: MaxQuantificationScore, Evidence: snippets},
		Formatting:     types.DimensionScore{Score: format, Max: MaxFormattingScore, Evidence: issues},
	}

	return types.ATSResult{
		TotalScore:  Total(breakdown),
		Breakdown:   breakdown,
		Suggestions: buildSuggestions(breakdown, required, matched),
	}
}

// Total is the floored sum of all dimension scores.
func Total(b types.ATSBreakdown) int {
	sum := 0.0
	for _, d := range b.Dimensions() {
		sum += d.Score
	}
	return int(math.Floor(sum))
}

func buildSuggestions(b types.ATSBreakdown, required, matched []string) []string {
	suggestions := []string{}

	if b.KeywordMatch.Score < keywordSuggestionThreshold {
		missing := missingFrom(required, matched)
		if len(missing) > maxMissingKeywordsListed {
			missing = missing[:maxMissingKeywordsListed]
		}
		if len(missing) > 0 {
			suggestions = append(suggestions,
				fmt.Sprintf("Add these role-specific keywords where they honestly apply: %s.", strings.Join(missing, ", ")))
		}
	}

	if b.Sections.Score < sectionSuggestionThreshold {
		for _, s := range CoreSections {
			if !slices.Contains(b.Sections.Evidence, s) {
				suggestions = append(suggestions,
					fmt.Sprintf("Add a clearly labeled %s section.", capitalize(s)))
				break
			}
		}
	}

	if b.ActionVerbs.Score < actionVerbSuggestionThreshold {
		suggestions = append(suggestions, SuggestActionVerbs)
	}

	if b.Quantification.Score < quantificationSuggestionThreshold {
		suggestions = append(suggestions, SuggestQuantification)
	}

	for i, issue := range b.Formatting.Evidence {
		if i == maxFormattingSuggestions {
			break
		}
		suggestions = append(suggestions, capitalize(issue)+".")
	}

	return suggestions
}

func missingFrom(required, matched []string) []string {
	var missing []string
	for _, s := range required {
		if !slices.Contains(matched, s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// capitalize upper-cases the first letter; all inputs are ASCII constants.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
