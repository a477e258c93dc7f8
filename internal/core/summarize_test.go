package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discharge-companion/internal/llm"
	"discharge-companion/pkg"
)

// fakeClient records the messages it was asked to complete and returns a
// canned response or error.
type fakeClient struct {
	response string
	err      error
	calls    [][]llm.Message
}

func (f *fakeClient) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestGenerate_BuildsPolicyRequest(t *testing.T) {
	client := &fakeClient{response: "1. Why you were in the hospital\n..."}
	s := NewSummarizer(client)

	doc := &pkg.CanonicalDocument{Text: "Patient was admitted for pneumonia.", Source: pkg.SourcePDF}
	summary, err := s.Generate(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, summary)

	require.Len(t, client.calls, 1, "exactly one outbound call per invocation")
	msgs := client.calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, SummarySystemPrompt, msgs[0].Content)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Equal(t, "Discharge summary:\nPatient was admitted for pneumonia.", msgs[1].Content)
}

func TestGenerate_SentinelPreservedVerbatim(t *testing.T) {
	// A missing-data scenario: the service falls back to the sentinel for a
	// section.  The phrase must appear unmodified in the summary.
	client := &fakeClient{response: "4. Your medicines\n" + Sentinel}
	s := NewSummarizer(client)

	summary, err := s.Generate(context.Background(), &pkg.CanonicalDocument{Text: "some record"})
	require.NoError(t, err)
	assert.Contains(t, summary.Text, Sentinel)
}

func TestGenerate_ServiceFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	client := &fakeClient{err: cause}
	s := NewSummarizer(client)

	summary, err := s.Generate(context.Background(), &pkg.CanonicalDocument{Text: "some record"})
	require.Error(t, err)
	assert.Nil(t, summary, "no partial summary on failure")

	var genErr *pkg.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, cause)
}

func TestGenerate_NoRetry(t *testing.T) {
	client := &fakeClient{err: errors.New("timeout")}
	s := NewSummarizer(client)

	_, _ = s.Generate(context.Background(), &pkg.CanonicalDocument{Text: "some record"})
	assert.Len(t, client.calls, 1)
}
