package ats

import (
	"math"
	"strings"
	"testing"

	"github.com/jonathan/resume-coach/internal/taxonomy"
	"github.com/jonathan/resume-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioResume = "I developed a Python Flask REST API and improved performance by 30% for 5000 users. " +
	"Education: BS Computer Science. Skills: Python, SQL, Git. Experience: 2 years. Projects: built 3 projects."

func TestCalculateScore_PythonDeveloperResume(t *testing.T) {
	result := CalculateScore(scenarioResume, "Python Developer")
	b := result.Breakdown

	// five of nine skills are present: 5/9*40 = 22.2, not the 26.7 a six-skill count would give
	assert.Equal(t, 22.2, b.KeywordMatch.Score)
	assert.Equal(t, []string{"python", "flask", "sql", "git", "rest api"}, b.KeywordMatch.Evidence)
	assert.Equal(t, 20.0, b.Sections.Score)
	assert.Equal(t, 6.0, b.ActionVerbs.Score)
	assert.ElementsMatch(t, []string{"developed", "improved", "built"}, b.ActionVerbs.Evidence)
	assert.Equal(t, 10.0, b.Quantification.Score)
	assert.Subset(t, b.Quantification.Evidence, []string{"30%", "5000 users", "2 years", "3 projects", "30", "5000", "2", "3"})
	assert.Equal(t, 10.0, b.Formatting.Score)
	assert.Equal(t, 68, result.TotalScore)

	assert.Equal(t, []string{
		"Add these role-specific keywords where they honestly apply: django, fastapi, pandas, numpy.",
		SuggestActionVerbs,
		"Resume is too short (under 300 words).",
	}, result.Suggestions)
}

func TestCalculateScore_EmptyResume(t *testing.T) {
	for _, role := range []string{"data analyst", "", "nonexistent role"} {
		t.Run(role, func(t *testing.T) {
			result := CalculateScore("", role)
			b := result.Breakdown

			assert.Equal(t, 0.0, b.KeywordMatch.Score)
			assert.Equal(t, 0.0, b.Sections.Score)
			assert.Equal(t, 0.0, b.ActionVerbs.Score)
			assert.Equal(t, 0.0, b.Quantification.Score)
			assert.Equal(t, 10.0, b.Formatting.Score)
			assert.Equal(t, 10, result.TotalScore)
		})
	}
}

func TestCalculateScore_EmptyResumeSuggestions(t *testing.T) {
	result := CalculateScore("", "data analyst")

	assert.Equal(t, []string{
		"Add these role-specific keywords where they honestly apply: python, pandas, numpy, sql, excel.",
		"Add a clearly labeled Education section.",
		SuggestActionVerbs,
		SuggestQuantification,
		"Resume is too short (under 300 words).",
	}, result.Suggestions)
}

func TestCalculateScore_RoleNormalization(t *testing.T) {
	a := CalculateScore(scenarioResume, "DATA SCIENTIST ")
	b := CalculateScore(scenarioResume, "data scientist")
	assert.Equal(t, a, b)
}

func TestCalculateScore_Idempotent(t *testing.T) {
	first := CalculateScore(scenarioResume, "backend developer")
	second := CalculateScore(scenarioResume, "backend developer")
	assert.Equal(t, first, second)
}

func TestCalculateScore_JavaFoundInsideJavascript(t *testing.T) {
	result := CalculateScore("Five years of JavaScript", "software engineer")
	assert.Contains(t, result.Breakdown.KeywordMatch.Evidence, "java")
}

func TestCalculateScore_FormattingSuggestionsCappedAtTwo(t *testing.T) {
	text := "~~~~~~ " + strings.Repeat("|", 11)
	result := CalculateScore(text, "qa engineer")

	require.Len(t, result.Breakdown.Formatting.Evidence, 3)
	n := len(result.Suggestions)
	require.GreaterOrEqual(t, n, 2)
	assert.Equal(t, "Resume is too short (under 300 words).", result.Suggestions[n-2])
	assert.Equal(t, "Too many special characters, which can confuse ATS parsers.", result.Suggestions[n-1])
}

func TestCalculateScore_StrongResumeHasNoSuggestions(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Education Skills Experience Projects Certifications Awards\n")
	sb.WriteString("developed implemented designed optimized built\n")
	sb.WriteString("docker kubernetes jenkins aws azure linux terraform git ci/cd\n")
	sb.WriteString("cut costs 20% saved $5000 over 3 years for 200 users across 12 projects\n")
	sb.WriteString(words(600))

	result := CalculateScore(sb.String(), "devops engineer")

	assert.Equal(t, 100, result.TotalScore)
	assert.Empty(t, result.Suggestions)
}

func TestCalculateScore_BoundsHold(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"日本語のテキスト 123",
		scenarioResume,
		strings.Repeat("python sql git 10% @@ | ", 400),
		strings.Repeat("â€¢ led ", 50),
	}

	for _, role := range taxonomy.RoleNames() {
		for _, text := range inputs {
			result := CalculateScore(text, role)
			assertBounded(t, result)
		}
	}
}

func assertBounded(t *testing.T, result types.ATSResult) {
	t.Helper()

	sum := 0.0
	for i, d := range result.Breakdown.Dimensions() {
		assert.GreaterOrEqual(t, d.Score, 0.0, types.DimensionNames[i])
		assert.LessOrEqual(t, d.Score, d.Max, types.DimensionNames[i])
		require.NotNil(t, d.Evidence, types.DimensionNames[i])
		sum += d.Score
	}
	assert.Equal(t, int(math.Floor(sum)), result.TotalScore)
	assert.GreaterOrEqual(t, result.TotalScore, 0)
	assert.LessOrEqual(t, result.TotalScore, 100)
}
