package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var (
	// ErrUnsupportedFormat is returned when a filename's extension does not
	// match one of the supported document formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrUnsupportedSourceType is returned when a source is neither an
	// http(s) URL string nor a byte slice.
	ErrUnsupportedSourceType = errors.New("unsupported source type")
)

// ExtractionError indicates a format specific parse failure, e.g. a corrupt
// PDF or malformed CSV. The underlying parser error is available via Unwrap.
type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error extracting %s content: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Format enumerates the supported document formats.
type Format int

const (
	FormatPDF Format = iota
	FormatText
	FormatMarkdown
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatText:
		return "text"
	case FormatMarkdown:
		return "markdown"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// FormatForFilename maps a filename to its document format based on the
// extension, matched case insensitively.
func FormatForFilename(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".txt":
		return FormatText, nil
	case ".md":
		return FormatMarkdown, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, filename)
	}
}

// SupportedFilename reports whether the filename's extension maps to a
// supported format.
func SupportedFilename(filename string) bool {
	_, err := FormatForFilename(filename)
	return err == nil
}

// DocumentLoader converts heterogeneous document sources (raw file bytes or
// web pages) into normalized plain text.
type DocumentLoader struct {
	web *webExtractor
}

func NewDocumentLoader() *DocumentLoader {
	return &DocumentLoader{web: newWebExtractor()}
}

// Load extracts plain text from a source. A string beginning with http:// or
// https:// is fetched as a web page (filename is ignored); a byte slice is
// dispatched on the extension of filename. Any other source fails with
// ErrUnsupportedSourceType.
func (l *DocumentLoader) Load(source any, filename string) (string, error) {
	switch src := source.(type) {
	case string:
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			return l.web.extract(src)
		}
		return "", fmt.Errorf("%w: non-URL string", ErrUnsupportedSourceType)
	case []byte:
		return l.loadBytes(src, filename)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedSourceType, source)
	}
}

// LoadFile reads a file from disk and extracts text from it, keyed on the
// path's extension.
func (l *DocumentLoader) LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading file '%s': %w", path, err)
	}
	return l.loadBytes(data, path)
}

func (l *DocumentLoader) loadBytes(data []byte, filename string) (string, error) {
	format, err := FormatForFilename(filename)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatPDF:
		return extractPDF(data)
	case FormatText, FormatMarkdown:
		return decodeText(data), nil
	case FormatCSV:
		return extractCSV(data)
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, filename)
	}
}

// extractPDF parses pages sequentially, skips pages with no extractable text,
// and joins the remainder with newlines.
func extractPDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", &ExtractionError{Format: FormatPDF, Err: err}
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", &ExtractionError{Format: FormatPDF, Err: err}
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n"), nil
}
