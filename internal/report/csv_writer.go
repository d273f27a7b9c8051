// Package report writes per-run error reports to disk.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alexanderramin/taskport/internal/domain"
)

// DefaultDir is used when no report directory is configured.
const DefaultDir = "error-reports"

// Headers are the fixed report columns, in order.
var Headers = []string{"Line Number", "Field", "Value", "Error Code", "Error Message"}

// CSVWriter stores one CSV file per import job under Dir.
type CSVWriter struct {
	Dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	if dir == "" {
		dir = DefaultDir
	}
	return &CSVWriter{Dir: dir}
}

func (w *CSVWriter) fileName(jobID string) string {
	return filepath.Join(w.Dir, fmt.Sprintf("import-errors-%s.csv", jobID))
}

// Write creates the report for jobID and returns its path. The file is
// written to a temporary name first so readers never see a partial report.
func (w *CSVWriter) Write(jobID string, rowErrors []domain.RowError) (string, error) {
	if jobID == "" {
		return "", errors.New("job id is required")
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, ".import-errors-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := cw.Write(Headers); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing report header: %w", err)
	}
	for _, e := range rowErrors {
		record := []string{strconv.Itoa(e.LineNumber), e.Field, e.Value, string(e.Code), e.Message}
		if err := cw.Write(record); err != nil {
			tmp.Close()
			return "", fmt.Errorf("writing report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("flushing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing report: %w", err)
	}

	path := w.fileName(jobID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publishing report: %w", err)
	}
	return path, nil
}

// Path returns the report location for jobID when the file exists.
func (w *CSVWriter) Path(jobID string) (string, bool) {
	path := w.fileName(jobID)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Delete removes a report. A missing file is not an error.
func (w *CSVWriter) Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting report: %w", err)
	}
	return nil
}
