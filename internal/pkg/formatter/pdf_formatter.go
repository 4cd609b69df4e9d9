package formatter

import (
	"bytes"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	pdfFont       = "Helvetica"
	pdfLineHeight = 6.5
)

// PDFFormatter renders every section on its own page; the title heads the first one
type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func (mf *PDFFormatter) Format(h *entity.Handbook) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetTitle(h.Title, false)

	for i, section := range h.Sections {
		pdf.AddPage()

		if i == 0 {
			pdf.SetFont(pdfFont, "B", 24)
			pdf.Cell(0, 12, h.Title)
			pdf.Ln(18)
		}

		pdf.SetFont(pdfFont, "B", 14)
		pdf.Cell(0, 8, section.Heading)
		pdf.Ln(10)

		pdf.SetFont(pdfFont, "", 12)
		for _, line := range section.Lines {
			pdf.MultiCell(0, pdfLineHeight, line, "", "L", false)
		}
	}

	if len(h.Sections) == 0 {
		pdf.AddPage()
		pdf.SetFont(pdfFont, "B", 24)
		pdf.Cell(0, 12, h.Title)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
