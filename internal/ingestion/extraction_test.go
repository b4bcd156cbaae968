package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDOCX returns a minimal DOCX archive with one paragraph per argument.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type fakeBackend struct {
	text         string
	err          error
	availableErr error
}

func (f fakeBackend) Name() string     { return "fake" }
func (f fakeBackend) Available() error { return f.availableErr }
func (f fakeBackend) Extract(context.Context, []byte) (string, error) {
	return f.text, f.err
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{"resume.pdf", FormatPDF, false},
		{"RESUME.PDF", FormatPDF, false},
		{"cv.final.docx", FormatDOCX, false},
		{"resume.doc", "", true},
		{"resume.txt", "", true},
		{"resume", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				var unsupported *UnsupportedFormatError
				require.ErrorAs(t, err, &unsupported)
				assert.Contains(t, err.Error(), "upload only PDF or DOCX files")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_DOCX(t *testing.T) {
	extractor, err := NewExtractor(PDFBackendNative)
	require.NoError(t, err)

	text, err := extractor.Extract(context.Background(), Document{
		Filename: "resume.docx",
		Data:     buildDOCX(t, "Education", "B.S. &amp; M.S. in Computer Science"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Education\nB.S. & M.S. in Computer Science", text)
}

func TestExtractor_CorruptDOCX(t *testing.T) {
	extractor, err := NewExtractor("")
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), Document{Filename: "resume.docx", Data: []byte("not a zip")})

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, FormatDOCX, extractionErr.Format)
}

func TestExtractor_CorruptPDF(t *testing.T) {
	extractor, err := NewExtractor("")
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), Document{Filename: "resume.pdf", Data: []byte("%PDF-garbage")})

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, FormatPDF, extractionErr.Format)
}

func TestExtractor_UnsupportedFormatChecksExtensionFirst(t *testing.T) {
	extractor := NewExtractorWithBackends(nil)

	_, err := extractor.Extract(context.Background(), Document{Filename: "resume.odt"})

	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".odt", unsupported.Extension)
}

func TestExtractor_MissingBackend(t *testing.T) {
	extractor := NewExtractorWithBackends(map[Format]Backend{FormatDOCX: DOCXBackend{}})

	_, err := extractor.Extract(context.Background(), Document{Filename: "resume.pdf"})

	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, FormatPDF, missing.Format)
}

func TestExtractor_PDFToTextNotInstalled(t *testing.T) {
	extractor := NewExtractorWithBackends(map[Format]Backend{
		FormatPDF: PDFToTextBackend{Binary: "pdftotext-not-installed-anywhere"},
	})

	_, err := extractor.Extract(context.Background(), Document{Filename: "resume.pdf", Data: []byte("%PDF-1.4")})

	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, PDFBackendPDFToText, missing.Backend)
	assert.Contains(t, err.Error(), "poppler-utils")
	assert.NotNil(t, errors.Unwrap(err))
}

func TestExtractor_CleansBackendOutput(t *testing.T) {
	extractor := NewExtractorWithBackends(map[Format]Backend{
		FormatPDF: fakeBackend{text: "Skills:    Go\r\n\r\n\r\n\r\nExperience"},
	})

	text, err := extractor.Extract(context.Background(), Document{Filename: "resume.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "Skills: Go\n\nExperience", text)
}

func TestExtractor_BackendAvailabilityError(t *testing.T) {
	want := &MissingDependencyError{Format: FormatDOCX, Backend: "fake", Instruction: "install it"}
	extractor := NewExtractorWithBackends(map[Format]Backend{
		FormatDOCX: fakeBackend{availableErr: want},
	})

	_, err := extractor.Extract(context.Background(), Document{Filename: "resume.docx"})
	assert.Same(t, want, err)
}

func TestNewExtractor_UnknownBackend(t *testing.T) {
	_, err := NewExtractor("ocr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown PDF backend")
}

func TestDocumentXMLToText(t *testing.T) {
	xml := `<w:body><w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Role</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Line&#160;one</w:t><w:br/><w:t>Line   two</w:t></w:r></w:p></w:body>`

	got := DocumentXMLToText(xml)
	assert.Equal(t, "Name Role\nLine one\nLine two", got)
}
