package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is the raw contents of an uploaded scorecard: a header row and the
// data rows below it, every row padded to the header width.
type Table struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// UnsupportedFormatError is returned for files that are neither CSV nor a
// readable Excel workbook.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q (expected .xlsx or .csv)", e.Name)
}

// Format reports which reader handles the named file, or "" if none does.
func Format(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "csv"
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return ""
	}
}

// LoadFile reads a scorecard from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Load(filepath.Base(path), f)
}

// Load reads a scorecard from r. The format is chosen from the extension of
// name; only the first worksheet of a workbook is read.
func Load(name string, r io.Reader) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch Format(name) {
	case "csv":
		records, err = readCSV(r)
	case "xlsx":
		records, err = readXLSX(r)
	default:
		return nil, &UnsupportedFormatError{Name: name}
	}
	if err != nil {
		return nil, err
	}
	return newTable(name, records), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	// Raw values keep percentage- or currency-formatted weights numeric.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// newTable takes the first non-blank record as the header.
func newTable(name string, records [][]string) *Table {
	t := &Table{Name: name}

	start := 0
	for start < len(records) && blank(records[start]) {
		start++
	}
	if start == len(records) {
		return t
	}

	t.Header = records[start]
	width := len(t.Header)
	for _, rec := range records[start+1:] {
		if len(rec) > width {
			width = len(rec)
		}
	}
	t.Header = pad(t.Header, width)

	t.Rows = make([][]string, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		t.Rows = append(t.Rows, pad(rec, width))
	}
	return t
}

func pad(rec []string, width int) []string {
	out := make([]string, width)
	copy(out, rec)
	return out
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
