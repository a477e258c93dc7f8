package core

import (
	"context"

	"discharge-companion/internal/llm"
	"discharge-companion/pkg"
)

// ChatService answers patient questions about one discharge document.  Each
// call rebuilds the full grounded context: policy prompt, the whole
// canonical text, every prior turn in order, then the new question.  The
// document is resent on every turn; cost is bounded by the caller's
// question cap rather than by history windowing.
type ChatService struct {
	LLM llm.Client
}

// NewChatService constructs a chat service backed by the given client.
func NewChatService(client llm.Client) *ChatService {
	return &ChatService{LLM: client}
}

// Answer returns the assistant's reply and the turn sequence extended by
// exactly two entries: the question, then the answer.  On failure the prior
// turns are returned unchanged so committed history is never corrupted; the
// caller decides how to surface the pending question.
func (s *ChatService) Answer(ctx context.Context, doc *pkg.CanonicalDocument, priorTurns []pkg.ConversationTurn, question string) (string, []pkg.ConversationTurn, error) {
	messages := make([]llm.Message, 0, len(priorTurns)+3)
	messages = append(messages,
		llm.Message{Role: llm.RoleSystem, Content: ChatSystemPrompt},
		llm.Message{Role: llm.RoleUser, Content: documentContextPrefix + doc.Text},
	)
	for _, t := range priorTurns {
		messages = append(messages, llm.Message{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	answer, err := s.LLM.Complete(ctx, messages)
	if err != nil {
		return "", priorTurns, &pkg.GenerationError{Detail: "answer generation failed", Err: err}
	}

	updated := make([]pkg.ConversationTurn, 0, len(priorTurns)+2)
	updated = append(updated, priorTurns...)
	updated = append(updated,
		pkg.ConversationTurn{Role: pkg.RoleUser, Content: question},
		pkg.ConversationTurn{Role: pkg.RoleAssistant, Content: answer},
	)
	return answer, updated, nil
}
