package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"discharge-companion/pkg"
)

// normalizePDF joins per-page text with blank-line separators and strips
// the result.  A page with no extractable text contributes an empty string,
// not an error.
func (n *Normalizer) normalizePDF(data []byte) (*pkg.CanonicalDocument, error) {
	pages, err := n.pdfPages(data)
	if err != nil {
		return nil, &pkg.NormalizationError{Reason: pkg.ReasonParseError, Detail: err.Error()}
	}
	return &pkg.CanonicalDocument{
		Text:   strings.TrimSpace(strings.Join(pages, "\n\n")),
		Source: pkg.SourcePDF,
	}, nil
}

// extractPDFPages reads page text in document order.  The pdf package
// panics on some malformed files, so the recover converts that into an
// ordinary error.
func extractPDFPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// unextractable page counts as empty
			text = ""
		}
		pages = append(pages, text)
	}
	return pages, nil
}
