// Package schemas embeds the JSON Schemas for documents the service produces and persists.
package schemas

import (
	"embed"
	"fmt"
)

// Schema file names.
const (
	AnalysisResult = "analysis_result.schema.json"
	ChatHistory    = "chat_history.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the raw contents of an embedded schema.
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	return string(data), nil
}

// Names lists all embedded schema files.
func Names() []string {
	return []string{AnalysisResult, ChatHistory}
}
