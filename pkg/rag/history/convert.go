package history

import (
	"strings"

	"doc-qa-be/pkg/llm"
	"doc-qa-be/pkg/ragerr"
)

// Message is a caller-supplied conversation turn. History is ephemeral:
// the client sends it with every request, nothing is stored server-side.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToLLMMessages rebuilds caller history into the model-native message
// representation, validating roles along the way.
func ToLLMMessages(history []Message) ([]llm.Message, error) {
	messages := make([]llm.Message, 0, len(history))
	for i, msg := range history {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role != RoleUser && role != RoleAssistant {
			return nil, ragerr.Retrieval("history message %d has invalid role %q", i, msg.Role)
		}
		if strings.TrimSpace(msg.Content) == "" {
			return nil, ragerr.Retrieval("history message %d has empty content", i)
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages, nil
}
