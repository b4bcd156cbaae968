package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Format is a supported document container.
type Format string

// Supported formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// PDF backend names accepted by NewExtractor.
const (
	PDFBackendNative    = "native"
	PDFBackendPDFToText = "pdftotext"
)

// Document is an uploaded or downloaded file awaiting extraction.
type Document struct {
	Filename string
	Data     []byte
}

// Backend turns the raw bytes of one format into plain text.
type Backend interface {
	Name() string
	// Available reports a *MissingDependencyError when the backend cannot run on this host.
	Available() error
	Extract(ctx context.Context, data []byte) (string, error)
}

// Extractor selects a backend by file extension and returns cleaned text.
type Extractor struct {
	backends map[Format]Backend
}

// NewExtractor returns an extractor using the named PDF backend and the DOCX backend.
// An empty pdfBackend selects the native backend.
func NewExtractor(pdfBackend string) (*Extractor, error) {
	var pdfImpl Backend
	switch pdfBackend {
	case "", PDFBackendNative:
		pdfImpl = NativePDFBackend{}
	case PDFBackendPDFToText:
		pdfImpl = PDFToTextBackend{Binary: "pdftotext"}
	default:
		return nil, fmt.Errorf("unknown PDF backend %q", pdfBackend)
	}
	return NewExtractorWithBackends(map[Format]Backend{
		FormatPDF:  pdfImpl,
		FormatDOCX: DOCXBackend{},
	}), nil
}

// NewExtractorWithBackends returns an extractor over an explicit backend set.
// A format without a backend fails with *MissingDependencyError.
func NewExtractorWithBackends(backends map[Format]Backend) *Extractor {
	copied := make(map[Format]Backend, len(backends))
	for f, b := range backends {
		copied[f] = b
	}
	return &Extractor{backends: copied}
}

// DetectFormat maps a filename to a supported format by its extension.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", &UnsupportedFormatError{Filename: filename, Extension: ext}
	}
}

// Extract returns the cleaned text of doc. An empty result is not an error; callers decide how to degrade.
func (e *Extractor) Extract(ctx context.Context, doc Document) (string, error) {
	format, err := DetectFormat(doc.Filename)
	if err != nil {
		return "", err
	}

	backend, ok := e.backends[format]
	if !ok {
		return "", &MissingDependencyError{
			Format:      format,
			Backend:     "none",
			Instruction: fmt.Sprintf("no %s extraction backend is configured", format),
		}
	}
	if err := backend.Available(); err != nil {
		return "", err
	}

	text, err := backend.Extract(ctx, doc.Data)
	if err != nil {
		var missing *MissingDependencyError
		if errors.As(err, &missing) {
			return "", err
		}
		return "", &ExtractionError{Filename: doc.Filename, Format: format, Cause: err}
	}

	return CleanText(text), nil
}

// NativePDFBackend reads PDFs in-process.
type NativePDFBackend struct{}

// Name implements Backend.
func (NativePDFBackend) Name() string { return PDFBackendNative }

// Available implements Backend.
func (NativePDFBackend) Available() error { return nil }

// Extract implements Backend. Pages without a content stream are skipped.
func (NativePDFBackend) Extract(_ context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// PDFToTextBackend shells out to poppler's pdftotext, which keeps column layout better than the native reader.
type PDFToTextBackend struct {
	Binary string
}

// Name implements Backend.
func (b PDFToTextBackend) Name() string { return PDFBackendPDFToText }

// Available implements Backend.
func (b PDFToTextBackend) Available() error {
	if _, err := exec.LookPath(b.Binary); err != nil {
		return &MissingDependencyError{
			Format:      FormatPDF,
			Backend:     PDFBackendPDFToText,
			Instruction: "install poppler-utils (for example: apt-get install poppler-utils) or set PDF_BACKEND=native",
			Cause:       err,
		}
	}
	return nil
}

// Extract implements Backend.
func (b PDFToTextBackend) Extract(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "resume-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	out, err := exec.CommandContext(ctx, b.Binary, "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}

// DOCXBackend reads the main document part of a DOCX archive.
type DOCXBackend struct{}

// Name implements Backend.
func (DOCXBackend) Name() string { return "docx" }

// Available implements Backend.
func (DOCXBackend) Available() error { return nil }

// Extract implements Backend.
func (DOCXBackend) Extract(_ context.Context, data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return DocumentXMLToText(doc.Editable().GetContent()), nil
}

var (
	xmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
	inlineSpacePattern = regexp.MustCompile(`[ \t\f\v]+`)
)

// DocumentXMLToText converts WordprocessingML to plain text: one line per paragraph, tabs kept.
func DocumentXMLToText(xml string) string {
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	xml = strings.ReplaceAll(xml, "<w:br/>", "\n")
	text := xmlTagPattern.ReplaceAllString(xml, "")
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpacePattern.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
