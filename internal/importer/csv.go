package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVReader parses comma-separated text with a header row.
type CSVReader struct {
	MaxBytes int64
}

func (c *CSVReader) Read(r io.Reader) ([]Row, error) {
	data, err := readLimited(r, c.MaxBytes)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	h := newHeader(first)

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		line, _ := cr.FieldPos(0)
		row, ok := h.build(line, func(idx int) string {
			if idx >= len(record) {
				return ""
			}
			return record[idx]
		})
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
