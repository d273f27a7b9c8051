package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/taskport/internal/domain"
)

// DefaultMaxBytes caps the size of an input file.
const DefaultMaxBytes int64 = 10 * 1024 * 1024

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file is empty")
	ErrSizeLimitExceeded = errors.New("file size exceeds limit")
	ErrMalformedInput    = errors.New("malformed input")
)

// Reader turns raw file bytes into rows.
type Reader interface {
	Read(r io.Reader) ([]Row, error)
}

// DetectFormat maps a file name's extension to a source type.
func DetectFormat(filename string) (domain.SourceType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return domain.SourceCSV, nil
	case ".xlsx", ".xls":
		return domain.SourceExcel, nil
	}
	return "", fmt.Errorf("%w: %q (expected .csv, .xlsx or .xls)", ErrUnsupportedFormat, filepath.Ext(filename))
}

// NewReader returns the reader for a source type. maxBytes <= 0 selects
// DefaultMaxBytes.
func NewReader(source domain.SourceType, maxBytes int64) (Reader, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	switch source {
	case domain.SourceCSV:
		return &CSVReader{MaxBytes: maxBytes}, nil
	case domain.SourceExcel:
		return &SpreadsheetReader{MaxBytes: maxBytes}, nil
	}
	return nil, fmt.Errorf("%w: source type %q", ErrUnsupportedFormat, source)
}

// readLimited reads at most max bytes, failing on empty or oversized input.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	if n > max {
		return nil, fmt.Errorf("%w of %d bytes", ErrSizeLimitExceeded, max)
	}
	return buf.Bytes(), nil
}
