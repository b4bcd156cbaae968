// Package matching checks a resume's text for the required skills of a job role.
package matching

import (
	"math"
	"strings"

	"github.com/jonathan/resume-coach/internal/taxonomy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Partition splits skills into those present in text and those absent, preserving order.
// Matching is case-insensitive substring containment, so "java" is found inside "javascript".
// Returned labels keep the casing they were given.
func Partition(text string, skills []string) (found, missing []string) {
	lower := strings.ToLower(text)
	found = make([]string, 0, len(skills))
	missing = make([]string, 0, len(skills))
	for _, skill := range skills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found = append(found, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return found, missing
}

// MatchSkills resolves jobRole against the taxonomy and reports which of its skills appear in text.
// Labels are title-cased and ordered as in the taxonomy.
func MatchSkills(text, jobRole string) (matching, missing []string) {
	found, absent := Partition(text, taxonomy.ResolveRole(jobRole))
	return TitleCase(found), TitleCase(absent)
}

// MatchScore is the percentage of required skills found, rounded to one decimal place.
func MatchScore(matching, missing []string) float64 {
	total := len(matching) + len(missing)
	if total == 0 {
		return 0
	}
	return Round1(float64(len(matching)) / float64(total) * 100)
}

// TitleCase returns a title-cased copy of labels.
func TitleCase(labels []string) []string {
	caser := cases.Title(language.English)
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = caser.String(l)
	}
	return out
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
