package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrNoColumns is returned when a dataset has no header row to lay out.
var ErrNoColumns = errors.New("export: dataset has no columns")

// Dataset is a roster table. Rows are keyed by header; missing keys render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter writes rosters as RFC 4180 CSV for spreadsheet download.
// Cells that a spreadsheet would evaluate as a formula are quoted with a leading apostrophe.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType is the MIME type of Render output.
func (e *CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Render writes the header row followed by one line per roster entry.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, ErrNoColumns
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write roster header: %w", err)
	}
	line := make([]string, len(data.Headers))
	for n, row := range data.Rows {
		for i, column := range data.Headers {
			line[i] = neutralizeFormula(row[column])
		}
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("write roster row %d: %w", n+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush roster csv: %w", err)
	}
	return buf.Bytes(), nil
}

// neutralizeFormula prefixes cells starting with a formula trigger. Phone-like
// values such as "+62 812-555" or "-5" are left alone.
func neutralizeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '@', '\t', '\r':
		return "'" + cell
	case '+', '-':
		if strings.Trim(cell[1:], "0123456789 -()") != "" {
			return "'" + cell
		}
	}
	return cell
}
