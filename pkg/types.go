package pkg

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SourceKind identifies the original format of an uploaded discharge record.
type SourceKind string

const (
	SourcePDF       SourceKind = "pdf"
	SourceDOCX      SourceKind = "docx"
	SourcePlainText SourceKind = "text"
)

// CanonicalDocument is the normalized plain-text form of one discharge
// record.  It is created once per session from exactly one input source and
// only replaced when the user explicitly edits the text before generation
// or starts over.
type CanonicalDocument struct {
	Text   string     `json:"text"`
	Source SourceKind `json:"source"`
}

// Empty reports whether the document has no usable text.  Callers must
// reject empty documents before asking for a summary or an answer.
func (d *CanonicalDocument) Empty() bool {
	return d == nil || strings.TrimSpace(d.Text) == ""
}

// PatientSummary is the generated plain-language artifact: the eight fixed
// sections rendered as a single formatted text blob.  It is immutable and
// only replaced when the user starts over.
type PatientSummary struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TurnRole describes who authored a conversation turn.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one entry in the Q&A session.  Turns are strictly
// ordered by occurrence; the sequence is cleared whenever a new canonical
// document is adopted.
type ConversationTurn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// Session holds the mutable state of one user session: the canonical
// document, its summary, and the accumulated Q&A turns.  The HTTP layer is
// the only writer; core components receive the pieces as call arguments and
// return new values.
type Session struct {
	ID        string             `json:"id"`
	Document  *CanonicalDocument `json:"document,omitempty"`
	Summary   *PatientSummary    `json:"summary,omitempty"`
	Turns     []ConversationTurn `json:"turns,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// AdoptDocument installs a new canonical document.  Any previous summary
// and conversation belong to the old document and are discarded.
func (s *Session) AdoptDocument(doc *CanonicalDocument) {
	s.Document = doc
	s.Summary = nil
	s.Turns = nil
}

// Reset clears all per-document state so the user can start a new summary.
func (s *Session) Reset() {
	s.Document = nil
	s.Summary = nil
	s.Turns = nil
}

// QuestionCount returns how many user questions have been committed.
func (s *Session) QuestionCount() int {
	n := 0
	for _, t := range s.Turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// NormalizationReason classifies why a document could not be normalized.
type NormalizationReason string

const (
	ReasonUnsupportedType NormalizationReason = "unsupported_type"
	ReasonParseError      NormalizationReason = "parse_error"
)

// NormalizationError reports that an upload could not be converted into a
// canonical document.  It is always returned as a value, never raised as a
// panic, so the caller can surface it as a plain message.
type NormalizationError struct {
	Reason NormalizationReason
	Detail string
}

func (e *NormalizationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("normalization failed: %s", e.Reason)
	}
	return fmt.Sprintf("normalization failed: %s: %s", e.Reason, e.Detail)
}

// GenerationError covers any failure of the external completion service:
// network, auth, quota, or a malformed response.  The wrapped error carries
// the service-level cause.
type GenerationError struct {
	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Detail
	}
	return fmt.Sprintf("%s: %v", e.Detail, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ErrEmptyDocument is the caller-level precondition violation: empty
// canonical text must be rejected before any completion call is made.
var ErrEmptyDocument = errors.New("document text is empty")
