// Package normalize converts uploaded discharge documents into canonical
// plain text, keyed strictly by the declared content type.  It trusts the
// declaration and never sniffs bytes; anything it cannot handle comes back
// as a NormalizationError value, never a panic.
package normalize

import (
	"strings"
	"unicode/utf8"

	"discharge-companion/internal/metrics"
	"discharge-companion/pkg"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
)

// Normalizer converts uploads into canonical documents.
type Normalizer struct {
	// pdfPages extracts per-page text in document order.  Injected so the
	// page-join policy can be tested without real PDF bytes.
	pdfPages func(data []byte) ([]string, error)
}

// New creates a normalizer with the real PDF extractor.
func New() *Normalizer {
	return &Normalizer{pdfPages: extractPDFPages}
}

// Normalize converts raw bytes with a declared content type into a
// canonical document.  A successfully parsed document that is empty after
// stripping is still returned; rejecting empty text is the caller's job.
func (n *Normalizer) Normalize(data []byte, contentType string) (*pkg.CanonicalDocument, error) {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	var (
		doc *pkg.CanonicalDocument
		err error
	)
	switch {
	case mediaType == mimePDF:
		doc, err = n.normalizePDF(data)
	case mediaType == mimeDOCX || mediaType == mimeDOC:
		doc, err = normalizeDOCX(data)
	case strings.HasPrefix(mediaType, "text/"):
		doc, err = normalizeText(data)
	default:
		metrics.Normalizations.WithLabelValues("other", "unsupported").Inc()
		return nil, &pkg.NormalizationError{Reason: pkg.ReasonUnsupportedType, Detail: contentType}
	}

	source := sourceLabel(mediaType)
	if err != nil {
		metrics.Normalizations.WithLabelValues(source, "error").Inc()
		return nil, err
	}
	metrics.Normalizations.WithLabelValues(source, "ok").Inc()
	return doc, nil
}

func sourceLabel(mediaType string) string {
	switch {
	case mediaType == mimePDF:
		return string(pkg.SourcePDF)
	case mediaType == mimeDOCX || mediaType == mimeDOC:
		return string(pkg.SourceDOCX)
	default:
		return string(pkg.SourcePlainText)
	}
}

// normalizeText decodes a text/* upload as UTF-8 and strips surrounding
// whitespace.
func normalizeText(data []byte) (*pkg.CanonicalDocument, error) {
	if !utf8.Valid(data) {
		return nil, &pkg.NormalizationError{Reason: pkg.ReasonParseError, Detail: "content is not valid UTF-8"}
	}
	return &pkg.CanonicalDocument{
		Text:   strings.TrimSpace(string(data)),
		Source: pkg.SourcePlainText,
	}, nil
}
