package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Field is one labelled line of a single-record report.
type Field struct {
	Label string
	Value string
}

// PDFExporter renders datasets and single records into A4 PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType is the MIME type of the rendered documents.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	writeTitle(pdf, title)

	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (width - left - right) / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderRecord lays out fields as right-aligned labels followed by values.
func (e *PDFExporter) RenderRecord(fields []Field, title string) ([]byte, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("pdf record requires at least one field")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	writeTitle(pdf, title)

	const (
		labelWidth = 50.0
		valueWidth = 110.0
		lineHeight = 10.0
		lineStep   = 12.0
	)
	y := 40.0
	for _, f := range fields {
		pdf.SetXY(10, y)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(labelWidth, lineHeight, f.Label+"  ", "", 0, "R", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(valueWidth, lineHeight, f.Value, "", 0, "L", false, 0, "")
		y += lineStep
	}

	return output(pdf)
}

func writeTitle(pdf *gofpdf.Fpdf, title string) {
	if title == "" {
		return
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 20, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(5)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
