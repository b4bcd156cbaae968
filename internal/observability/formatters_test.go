package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/resume-coach/internal/analyzer"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/types"
	"github.com/stretchr/testify/assert"
)

const resume = "I developed a Python Flask REST API and improved performance by 30% for 5000 users. " +
	"Education: BS Computer Science. Skills: Python, SQL, Git. Experience: 2 years. Projects: built 3 projects."

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := analyzer.Analyze(resume, "python developer")
	p.PrintAnalysis(&result)
	output := buf.String()

	assert.Contains(t, output, "RESUME ANALYSIS")
	assert.Contains(t, output, "python developer")
	assert.Contains(t, output, "Quantification")
	assert.Contains(t, output, "Matching skills")
	assert.Contains(t, output, "Flask")
	assert.Contains(t, output, "SUGGESTIONS")
	assert.Contains(t, output, "1. ")
}

func TestPrintAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(nil)

	assert.Empty(t, buf.String())
}

func TestPrintAnalysis_TruncatesSkillLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := analyzer.Analyze("", "data scientist")
	p.PrintAnalysis(&result)

	assert.Contains(t, buf.String(), "... and 4 more")
	assert.Contains(t, buf.String(), analyzer.WarningEmptyDocument)
}

func TestPrintBox_LinesHaveFixedWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "short\n"+strings.Repeat("ü", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintExtraction(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	doc := ingestion.Document{Filename: "cv.pdf", Data: []byte("%PDF-1.4")}
	p.PrintExtraction(ingestion.NewMetadata(doc, ingestion.FormatPDF, "one two\nthree"))

	output := buf.String()
	assert.Contains(t, output, "cv.pdf")
	assert.Contains(t, output, "Words:   3")
	assert.Contains(t, output, "Lines:   2")
	assert.NotContains(t, output, "No extractable text")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintHistory("sassy", []types.Message{
		{Role: types.RoleSystem, Content: "secret instructions"},
		{Role: types.RoleUser, Content: "hi"},
		{Role: types.RoleAssistant, Content: "what now"},
	})

	output := buf.String()
	assert.Contains(t, output, "Persona: sassy")
	assert.Contains(t, output, "user: hi")
	assert.Contains(t, output, "assistant: what now")
	assert.NotContains(t, output, "secret instructions")
}

func TestPrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintHistory("helpful", nil)
	assert.Contains(t, buf.String(), "no messages yet")
}

func TestPrintFailure(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFailure("cv.txt", errors.New("unsupported"))
	assert.Equal(t, "✗ cv.txt: unsupported\n", buf.String())
}
