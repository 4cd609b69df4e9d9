package formatter

import (
	"bytes"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(h *entity.Handbook) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Title")
	titlePar.AddRun().AddText(h.Title)

	for _, section := range h.Sections {
		headPar := doc.AddParagraph()
		headPar.SetStyle("Heading1")
		headPar.AddRun().AddText(section.Heading)

		for _, line := range section.Lines {
			doc.AddParagraph().AddRun().AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
