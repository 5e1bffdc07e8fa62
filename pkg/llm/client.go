// Package llm is the boundary to the hosted text-completion service.
package llm

import "context"

// Provider-side roles. The completion API has no mid-history system role, so system
// prompts travel as model-authored turns.
const (
	RoleUser  = "user"
	RoleModel = "assistant"
)

// Message is one provider-side chat entry.
type Message struct {
	Role    string
	Content string
}

// Client completes a chat history. The last message is the new user turn.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
