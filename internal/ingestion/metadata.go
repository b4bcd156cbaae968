package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Metadata describes an ingested document
type Metadata struct {
	Filename  string `json:"filename"`
	Format    Format `json:"format"`
	Timestamp string `json:"timestamp"` // RFC3339 format
	Hash      string `json:"hash"`      // SHA256 hex digest of the raw document
	SizeBytes int    `json:"size_bytes"`
	WordCount int    `json:"word_count"`
	LineCount int    `json:"line_count"`
	Empty     bool   `json:"empty"` // no extractable text
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(doc Document, format Format, text string) *Metadata {
	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}
	return &Metadata{
		Filename:  doc.Filename,
		Format:    format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(doc.Data),
		SizeBytes: len(doc.Data),
		WordCount: len(strings.Fields(text)),
		LineCount: lines,
		Empty:     strings.TrimSpace(text) == "",
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
