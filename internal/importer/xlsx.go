package importer

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetReader parses the first worksheet of an Office Open XML
// workbook. Typed cells are normalized to the same strings a CSV export
// would carry: dates as yyyy-MM-dd, whole numbers without a decimal point
// and booleans as true/false.
type SpreadsheetReader struct {
	MaxBytes int64
}

// oleMagic opens a Compound File container, used by BIFF .xls files and
// encrypted workbooks.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

func (s *SpreadsheetReader) Read(r io.Reader) ([]Row, error) {
	data, err := readLimited(r, s.MaxBytes)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, oleMagic) {
		return nil, fmt.Errorf("%w: binary .xls and password-protected workbooks are not supported, save the file as unprotected .xlsx", ErrMalformedInput)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", ErrMalformedInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	sheet := sheets[0]

	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrMalformedInput, sheet, err)
	}

	headerIdx := -1
	for i, c := range cells {
		if !blankCells(c) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptyFile
	}

	conv := &cellConverter{f: f, sheet: sheet}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		conv.date1904 = *props.Date1904
	}

	h := newHeader(cells[headerIdx])
	var rows []Row
	for i := headerIdx + 1; i < len(cells); i++ {
		record := cells[i]
		rowNum := i + 1
		row, ok := h.build(rowNum, func(idx int) string {
			if idx >= len(record) || record[idx] == "" {
				return ""
			}
			return conv.value(idx+1, rowNum, record[idx])
		})
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type cellConverter struct {
	f        *excelize.File
	sheet    string
	date1904 bool
}

// value converts a raw cell value using the cell's type and number format.
func (c *cellConverter) value(col, row int, raw string) string {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := c.f.GetCellType(c.sheet, ref)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		switch strings.ToUpper(raw) {
		case "1", "TRUE":
			return "true"
		case "0", "FALSE":
			return "false"
		}
		return raw
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.Format("2006-01-02")
		}
		if len(raw) >= 10 {
			return raw[:10]
		}
		return raw
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if c.isDateFormatted(ref) {
			if t, err := excelize.ExcelDateToTime(n, c.date1904); err == nil {
				return t.Format("2006-01-02")
			}
		}
		return formatNumber(n)
	}
	return raw
}

func (c *cellConverter) isDateFormatted(ref string) bool {
	styleID, err := c.f.GetCellStyle(c.sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := c.f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return builtinDateFormats[style.NumFmt]
}

// builtinDateFormats are the built-in number format ids that render dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// isDateFormatCode reports whether a custom format code contains date tokens
// outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	s := strings.ToLower(b.String())
	return strings.ContainsAny(s, "yd") || strings.Contains(s, "mmm")
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func blankCells(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
