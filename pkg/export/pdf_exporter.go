package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMarginLeft  = 10.0
	pdfMarginTop   = 15.0
	pdfMarginRight = 10.0
)

// PDFExporter renders tables into a landscape A4 document, one table per page.
type PDFExporter struct {
	fontSize float64
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{fontSize: 8}
}

// Render creates a PDF document. The title heads every page; a table title,
// when present, is printed beneath it.
func (e *PDFExporter) Render(title string, tables ...Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("pdf requires at least one table")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - pdfMarginLeft - pdfMarginRight

	for i, table := range tables {
		if len(table.Data.Headers) == 0 {
			return nil, fmt.Errorf("pdf table %d requires at least one header", i)
		}
		pdf.AddPage()

		if title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		}
		if table.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, table.Title, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)

		colWidth := usable / float64(len(table.Data.Headers))
		pdf.SetFont("Arial", "B", e.fontSize+1)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range table.Data.Headers {
			pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", e.fontSize)
		for _, row := range table.Data.Rows {
			for _, value := range table.Data.Record(row) {
				pdf.CellFormat(colWidth, 7, fit(pdf, value, colWidth-2), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fit trims text until it fits the cell width.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"..") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ".."
}
