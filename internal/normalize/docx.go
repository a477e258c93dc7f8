package normalize

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"discharge-companion/pkg"
)

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// normalizeDOCX extracts paragraph text from word/document.xml inside the
// OOXML archive, joins paragraphs with single newlines, and strips the
// result.
func normalizeDOCX(data []byte) (*pkg.CanonicalDocument, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &pkg.NormalizationError{Reason: pkg.ReasonParseError, Detail: "not a valid DOCX archive"}
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, &pkg.NormalizationError{Reason: pkg.ReasonParseError, Detail: "cannot open word/document.xml"}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &pkg.NormalizationError{Reason: pkg.ReasonParseError, Detail: "cannot read word/document.xml"}
		}

		text, err := parseDocumentXML(content)
		if err != nil {
			return nil, &pkg.NormalizationError{Reason: pkg.ReasonParseError, Detail: "malformed document XML"}
		}
		return &pkg.CanonicalDocument{Text: text, Source: pkg.SourceDOCX}, nil
	}
	return nil, &pkg.NormalizationError{Reason: pkg.ReasonParseError, Detail: "word/document.xml missing"}
}

// parseDocumentXML extracts paragraph text in document order.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", err
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				result.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(result.String()), nil
}
