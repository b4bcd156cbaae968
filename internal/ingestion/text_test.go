package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	input := "# Title\n## Subtitle\nContent here"
	result := CleanText(input)

	assert.Contains(t, result, "# Title")
	assert.Contains(t, result, "## Subtitle")
	assert.Contains(t, result, "Content here")
}

func TestCleanText_PreserveBulletLists(t *testing.T) {
	input := "- Item 1\n- Item 2\n* Item 3"
	result := CleanText(input)

	assert.Contains(t, result, "- Item 1")
	assert.Contains(t, result, "- Item 2")
	assert.Contains(t, result, "* Item 3")
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	input := "Line    with    multiple    spaces"
	result := CleanText(input)

	assert.Contains(t, result, "Line with multiple spaces")
	assert.NotContains(t, result, "    ") // Should not have 4 spaces
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	input := "Line 1\n\n\n\n\nLine 2"
	result := CleanText(input)

	// Should have max 2 consecutive newlines
	assert.NotContains(t, result, "\n\n\n\n")
	// But should preserve up to 2
	assert.Contains(t, result, "\n\n")
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	input := "Line 1\r\nLine 2\rLine 3\nLine 4"
	result := CleanText(input)

	// All should be normalized to LF
	assert.NotContains(t, result, "\r\n")
	assert.NotContains(t, result, "\r")
	assert.Contains(t, result, "\n")
}

func TestCleanText_DeterministicOutput(t *testing.T) {
	input := "Test content   with   spaces\n\n\nMultiple   blank   lines"
	result1 := CleanText(input)
	result2 := CleanText(input)

	// Same input should produce identical output
	assert.Equal(t, result1, result2)
}

func TestCleanText_EmptyInput(t *testing.T) {
	result := CleanText("")
	assert.Empty(t, result)
}

func TestCleanText_OnlyWhitespace(t *testing.T) {
	result := CleanText("   \n  \n  ")
	assert.Empty(t, result)
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	input := "Test with émojis 🚀 and spéciàl chàracters"
	result := CleanText(input)

	assert.Contains(t, result, "émojis")
	assert.Contains(t, result, "🚀")
	assert.Contains(t, result, "spéciàl chàracters")
}

func TestCleanText_PreserveIndentation(t *testing.T) {
	input := "    Indented line\n  Less indented"
	result := CleanText(input)

	// Should preserve relative indentation
	assert.Contains(t, result, "Indented")
	assert.Contains(t, result, "Less indented")
}

func TestCleanText_PreserveUnicodeBullets(t *testing.T) {
	input := "• Led   migration\n  · Cut costs"
	result := CleanText(input)

	assert.Contains(t, result, "• Led   migration")
	assert.Contains(t, result, "  · Cut costs")
}

func TestIngest_DOCX(t *testing.T) {
	extractor, err := NewExtractor("")
	require.NoError(t, err)

	text, metadata, err := Ingest(context.Background(), extractor, Document{
		Filename: "resume.docx",
		Data:     buildDOCX(t, "Jane Doe", "Skills:   Python,  SQL"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\nSkills: Python, SQL", text)
	require.NotNil(t, metadata)
	assert.Equal(t, "resume.docx", metadata.Filename)
	assert.Equal(t, FormatDOCX, metadata.Format)
	assert.Equal(t, 5, metadata.WordCount)
	assert.Equal(t, 2, metadata.LineCount)
	assert.False(t, metadata.Empty)
	assert.Len(t, metadata.Hash, 64)
}

func TestIngest_EmptyDocumentIsNotAnError(t *testing.T) {
	extractor, err := NewExtractor("")
	require.NoError(t, err)

	text, metadata, err := Ingest(context.Background(), extractor, Document{
		Filename: "blank.docx",
		Data:     buildDOCX(t),
	})
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.True(t, metadata.Empty)
	assert.Equal(t, 0, metadata.LineCount)
}

func TestIngest_UnsupportedFormat(t *testing.T) {
	extractor, err := NewExtractor("")
	require.NoError(t, err)

	_, metadata, err := Ingest(context.Background(), extractor, Document{Filename: "resume.txt", Data: []byte("hi")})

	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Nil(t, metadata)
}
