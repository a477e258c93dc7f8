package normalize

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discharge-companion/pkg"
)

// withPages builds a normalizer whose PDF extractor returns fixed pages,
// so the join/strip policy is exercised without real PDF bytes.
func withPages(pages []string, err error) *Normalizer {
	return &Normalizer{pdfPages: func([]byte) ([]string, error) {
		return pages, err
	}}
}

// buildDOCX assembles a minimal OOXML archive around the given document XML.
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const twoParagraphDoc = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Patient was admitted for pneumonia.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Discharged on amoxicillin 500mg.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestNormalize_UnsupportedType(t *testing.T) {
	n := New()
	for _, ct := range []string{"image/png", "application/zip", "video/mp4", ""} {
		doc, err := n.Normalize([]byte("irrelevant"), ct)
		require.Error(t, err, ct)
		assert.Nil(t, doc)

		var nerr *pkg.NormalizationError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, pkg.ReasonUnsupportedType, nerr.Reason)
	}
}

func TestNormalize_PlainText(t *testing.T) {
	n := New()
	doc, err := n.Normalize([]byte("  hello patient \n"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hello patient", doc.Text)
	assert.Equal(t, pkg.SourcePlainText, doc.Source)
}

func TestNormalize_TextContentTypeParameters(t *testing.T) {
	n := New()
	doc, err := n.Normalize([]byte("hello"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Text)
}

func TestNormalize_InvalidUTF8(t *testing.T) {
	n := New()
	doc, err := n.Normalize([]byte{0xff, 0xfe, 0xfd}, "text/plain")
	require.Error(t, err)
	assert.Nil(t, doc)

	var nerr *pkg.NormalizationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, pkg.ReasonParseError, nerr.Reason)
}

func TestNormalize_EmptyTextReturned(t *testing.T) {
	// Empty after stripping is a valid result; the caller rejects it before
	// generation.
	n := New()
	doc, err := n.Normalize([]byte("   \n  "), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "", doc.Text)
}

func TestNormalize_PDFJoinsPagesWithBlankLines(t *testing.T) {
	n := withPages([]string{"page one", "page two"}, nil)
	doc, err := n.Normalize(nil, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "page one\n\npage two", doc.Text)
	assert.Equal(t, pkg.SourcePDF, doc.Source)
}

func TestNormalize_PDFEmptyPageTolerated(t *testing.T) {
	n := withPages([]string{"Patient was admitted for pneumonia.", ""}, nil)
	doc, err := n.Normalize(nil, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "Patient was admitted for pneumonia.", doc.Text)
}

func TestNormalize_PDFInteriorEmptyPage(t *testing.T) {
	n := withPages([]string{"first", "", "third"}, nil)
	doc, err := n.Normalize(nil, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "first\n\n\n\nthird", doc.Text)
}

func TestNormalize_PDFParseFailure(t *testing.T) {
	n := withPages(nil, errors.New("pdf: broken xref"))
	doc, err := n.Normalize(nil, "application/pdf")
	require.Error(t, err)
	assert.Nil(t, doc)

	var nerr *pkg.NormalizationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, pkg.ReasonParseError, nerr.Reason)
}

func TestNormalize_PDFMalformedBytesSurfaceAsParseError(t *testing.T) {
	// The real extractor must convert reader failures into parse errors,
	// never a panic.
	n := New()
	doc, err := n.Normalize([]byte("not a pdf at all"), "application/pdf")
	require.Error(t, err)
	assert.Nil(t, doc)

	var nerr *pkg.NormalizationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, pkg.ReasonParseError, nerr.Reason)
}

func TestNormalize_DOCXParagraphs(t *testing.T) {
	n := New()
	data := buildDOCX(t, twoParagraphDoc)

	doc, err := n.Normalize(data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	require.NoError(t, err)
	assert.Equal(t, "Patient was admitted for pneumonia.\nDischarged on amoxicillin 500mg.", doc.Text)
	assert.Equal(t, pkg.SourceDOCX, doc.Source)
}

func TestNormalize_LegacyWordContentType(t *testing.T) {
	n := New()
	data := buildDOCX(t, twoParagraphDoc)

	doc, err := n.Normalize(data, "application/msword")
	require.NoError(t, err)
	assert.Equal(t, pkg.SourceDOCX, doc.Source)
}

func TestNormalize_DOCXNotAnArchive(t *testing.T) {
	n := New()
	doc, err := n.Normalize([]byte("plain bytes"), "application/msword")
	require.Error(t, err)
	assert.Nil(t, doc)

	var nerr *pkg.NormalizationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, pkg.ReasonParseError, nerr.Reason)
}

func TestNormalize_DOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/other.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	n := New()
	_, err = n.Normalize(buf.Bytes(), "application/msword")
	require.Error(t, err)

	var nerr *pkg.NormalizationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, pkg.ReasonParseError, nerr.Reason)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New()
	docx := buildDOCX(t, twoParagraphDoc)

	cases := []struct {
		data []byte
		ct   string
	}{
		{[]byte("  some pasted text  "), "text/plain"},
		{docx, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	}
	for _, tc := range cases {
		first, err := n.Normalize(tc.data, tc.ct)
		require.NoError(t, err)
		second, err := n.Normalize(tc.data, tc.ct)
		require.NoError(t, err)
		assert.Equal(t, first.Text, second.Text)
	}

	p := withPages([]string{"a", "b"}, nil)
	first, err := p.Normalize(nil, "application/pdf")
	require.NoError(t, err)
	second, err := p.Normalize(nil, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
}
