// Package suggestions turns a basic skill match into canned improvement advice.
package suggestions

import "strings"

// General advice appended after the per-skill templates.
const (
	Certifications = "Consider taking online courses or certifications to improve your profile."
	Projects       = "Work on projects to show practical experience."
	Measurable     = "Add measurable achievements with numbers and results."
	ActionVerbs    = "Use strong action verbs like Developed, Built, Implemented, Led, Optimized."
	Aligned        = "Your resume aligns well with the selected role. Good work!"
)

var templates = map[string]string{
	"python":           "Consider adding Python projects or mentioning Python in your skills section.",
	"django":           "Add projects involving Django web framework to strengthen your profile.",
	"flask":            "Include Flask-based projects or API development experience.",
	"sql":              "Mention experience with SQL databases and query writing.",
	"java":             "Highlight Java programming experience and any related projects.",
	"javascript":       "Add JavaScript proficiency and frontend development experience.",
	"react":            "Include React.js projects or frontend development work.",
	"html":             "Mention HTML5 and semantic markup experience.",
	"css":              "Add CSS styling experience including responsive design.",
	"git":              "Include Git version control knowledge in your technical skills.",
	"docker":           "Add containerization experience with Docker.",
	"aws":              "Mention AWS cloud platform experience.",
	"machine learning": "Include machine learning projects or experience.",
	"pandas":           "Add data analysis projects using Pandas.",
	"excel":            "Highlight Excel proficiency including advanced formulas.",
}

// Template returns the canned advice for a skill, keyed by its lowercase label.
func Template(skill string) (string, bool) {
	t, ok := templates[strings.ToLower(skill)]
	return t, ok
}

// Generate builds the ordered suggestion list for a basic match report.
// matchingCount is the number of required skills that were found.
func Generate(missing []string, matchingCount int) []string {
	suggestions := []string{}

	for _, skill := range missing {
		if t, ok := Template(skill); ok {
			suggestions = append(suggestions, t)
		}
	}

	if n := len(missing); n > 0 {
		if n >= 5 {
			suggestions = append(suggestions, Certifications)
		}
		if n >= 3 {
			suggestions = append(suggestions, Projects, Measurable)
		}
		suggestions = append(suggestions, ActionVerbs)
	}

	if matchingCount >= 5 {
		suggestions = append(suggestions, Aligned)
	}

	return suggestions
}
