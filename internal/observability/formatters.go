// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// dimensionLabels are aligned with types.DimensionNames.
var dimensionLabels = []string{"Keywords", "Sections", "Action verbs", "Quantification", "Formatting"}

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(line string) string {
	runes := []rune(line)
	if len(runes) > boxWidth-4 {
		return string(runes[:boxWidth-7]) + "..."
	}
	return line
}

// writeList writes up to maxItemsToShow items, then a count of the rest.
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), maxItemsToShow)] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintExtraction outputs what was extracted from a document.
func (p *Printer) PrintExtraction(meta *ingestion.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:    %s\n", meta.Filename))
	sb.WriteString(fmt.Sprintf("Format:  %s (%d bytes)\n", meta.Format, meta.SizeBytes))
	sb.WriteString(fmt.Sprintf("Words:   %d\n", meta.WordCount))
	sb.WriteString(fmt.Sprintf("Lines:   %d\n", meta.LineCount))
	if meta.Empty {
		sb.WriteString("⚠ No extractable text\n")
	}

	p.printBox("📄 EXTRACTED DOCUMENT", sb.String())
}

// PrintAnalysis outputs the ATS score, its breakdown, the skill match and the suggestions.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:        %s\n", result.ResolvedRole))
	sb.WriteString(fmt.Sprintf("ATS score:   %d / 100\n", result.ATS.TotalScore))
	sb.WriteString(fmt.Sprintf("Skill match: %.1f%%\n", result.MatchScore))
	sb.WriteString("\n")

	sb.WriteString("Breakdown:\n")
	for i, d := range result.ATS.Breakdown.Dimensions() {
		sb.WriteString(fmt.Sprintf("  %-15s %5.1f / %-4g %s\n", dimensionLabels[i], d.Score, d.Max, bar(d.Score, d.Max)))
	}
	sb.WriteString("\n")

	writeList(&sb, "Matching skills", result.MatchingSkills)
	writeList(&sb, "Missing skills", result.MissingSkills)

	for _, w := range result.Warnings {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
	}

	p.printBox("📊 RESUME ANALYSIS", sb.String())

	suggestions := append(append([]string(nil), result.ATS.Suggestions...), result.Suggestions...)
	if len(suggestions) > 0 {
		var tips strings.Builder
		for i, s := range suggestions {
			tips.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
		}
		p.printBox("💡 SUGGESTIONS", tips.String())
	}
}

// bar renders score/max as a ten-cell gauge.
func bar(score, limit float64) string {
	filled := 0
	if limit > 0 {
		filled = int(score / limit * 10)
	}
	filled = min(max(filled, 0), 10)
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// PrintHistory outputs a chat history, skipping the system message.
func (p *Printer) PrintHistory(persona string, history []types.Message) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Persona: %s\n", persona))

	shown := 0
	for _, m := range history {
		if m.Role == types.RoleSystem {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		shown++
	}
	if shown == 0 {
		sb.WriteString("(no messages yet)\n")
	}

	p.printBox("💬 CHAT HISTORY", sb.String())
}

// PrintFailure outputs a one-line failure for a document in a batch.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailure(source string, err error) {
	fmt.Fprintf(p.out, "✗ %s: %v\n", source, err)
}
