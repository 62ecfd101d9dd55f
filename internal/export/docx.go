package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"time"

	"github.com/jonathan/resume-builder/internal/types"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// Fixed entry time so identical documents produce identical archives.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	NS      string   `xml:"xmlns:w,attr"`
	Body    wBody    `xml:"w:body"`
}

type wBody struct {
	Paragraphs []wParagraph `xml:"w:p"`
}

type wParagraph struct {
	Runs []wRun `xml:"w:r,omitempty"`
}

type wRun struct {
	Props *wRunProps `xml:"w:rPr,omitempty"`
	Text  wText      `xml:"w:t"`
}

type wRunProps struct {
	Bold *struct{} `xml:"w:b,omitempty"`
	Size *wVal     `xml:"w:sz,omitempty"`
}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type wText struct {
	Space string `xml:"xml:space,attr"`
	Value string `xml:",chardata"`
}

func paragraph(text string, props *wRunProps) wParagraph {
	if text == "" {
		return wParagraph{}
	}
	return wParagraph{Runs: []wRun{{Props: props, Text: wText{Space: "preserve", Value: text}}}}
}

// documentXML renders one paragraph per text line. The name line and block
// headings are bold; everything else is plain.
func documentXML(layout textLayout) ([]byte, error) {
	headings := make(map[string]bool, len(layout.Blocks))
	for _, b := range layout.Blocks {
		headings[b.Heading] = true
	}

	doc := wDocument{NS: wordNS}
	for i, line := range layout.lines() {
		var props *wRunProps
		switch {
		case i == 0 && line == layout.Name && line != "":
			props = &wRunProps{Bold: &struct{}{}, Size: &wVal{Val: "32"}}
		case headings[line]:
			props = &wRunProps{Bold: &struct{}{}}
		}
		doc.Body.Paragraphs = append(doc.Body.Paragraphs, paragraph(line, props))
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// DOCXExporter wraps the text layout in a minimal WordprocessingML package.
type DOCXExporter struct{}

// NewDOCXExporter creates a DOCX exporter.
func NewDOCXExporter() *DOCXExporter {
	return &DOCXExporter{}
}

// Export builds the DOCX artifact. It needs no rendered surface; failures are
// *ExportSerializationError.
func (DOCXExporter) Export(doc *types.ResumeDocument) (*Artifact, error) {
	if doc == nil {
		doc = &types.ResumeDocument{}
	}

	body, err := documentXML(buildLayout(doc))
	if err != nil {
		return nil, &ExportSerializationError{Message: "failed to encode document body", Cause: err}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{"word/document.xml", body},
	}
	for _, part := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: part.name, Method: zip.Deflate, Modified: zipEpoch})
		if err != nil {
			return nil, &ExportSerializationError{Message: "failed to add " + part.name, Cause: err}
		}
		if _, err := w.Write(part.data); err != nil {
			return nil, &ExportSerializationError{Message: "failed to write " + part.name, Cause: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &ExportSerializationError{Message: "failed to finish archive", Cause: err}
	}

	return &Artifact{
		Filename:    Filename(doc.PersonalInfo, FormatDOCX),
		ContentType: ContentTypeDOCX,
		Data:        buf.Bytes(),
	}, nil
}
