package core

import (
	"context"
	"time"

	"discharge-companion/internal/llm"
	"discharge-companion/pkg"
)

// Summarizer turns canonical discharge text into the fixed eight-section
// patient-facing summary.  It holds no state between calls.
type Summarizer struct {
	LLM llm.Client
}

// NewSummarizer constructs a summarizer backed by the given client.
func NewSummarizer(client llm.Client) *Summarizer {
	return &Summarizer{LLM: client}
}

// Generate issues exactly one completion request: the fixed policy prompt
// plus the canonical text as a single user message.  Any service failure
// comes back as a GenerationError with no partial result.  The caller
// guarantees doc.Text is non-empty.
func (s *Summarizer) Generate(ctx context.Context, doc *pkg.CanonicalDocument) (*pkg.PatientSummary, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: SummarySystemPrompt},
		{Role: llm.RoleUser, Content: documentContextPrefix + doc.Text},
	}
	text, err := s.LLM.Complete(ctx, messages)
	if err != nil {
		return nil, &pkg.GenerationError{Detail: "summary generation failed", Err: err}
	}
	return &pkg.PatientSummary{Text: text, GeneratedAt: time.Now()}, nil
}
