package ingestion

import "fmt"

// UnsupportedFormatError is returned for documents that are neither PDF nor DOCX.
type UnsupportedFormatError struct {
	Filename  string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("unsupported file %q: upload only PDF or DOCX files", e.Filename)
	}
	return fmt.Sprintf("unsupported file type %q: upload only PDF or DOCX files", e.Extension)
}

// MissingDependencyError is returned when the extraction backend for a format is not installed.
type MissingDependencyError struct {
	Format      Format
	Backend     string
	Instruction string
	Cause       error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s extraction backend %q is unavailable: %s", e.Format, e.Backend, e.Instruction)
}

func (e *MissingDependencyError) Unwrap() error {
	return e.Cause
}

// ExtractionError wraps a failure inside a backend, such as a corrupt file.
type ExtractionError struct {
	Filename string
	Format   Format
	Cause    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s document %q: %v", e.Format, e.Filename, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
