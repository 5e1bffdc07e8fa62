package models

import "time"

// ChatRole is the author of a rolling-history entry.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the rolling history.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// SessionState is the per-session chat state. It is never persisted beyond the session store TTL.
type SessionState struct {
	SessionID      string        `json:"session_id"`
	RegistrationID string        `json:"ra"`
	DisplayName    string        `json:"nome"`
	Program        string        `json:"curso"`
	Messages       []ChatMessage `json:"messages"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Visible returns the history without system entries.
func (s *SessionState) Visible() []ChatMessage {
	out := make([]ChatMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Role != RoleSystem {
			out = append(out, m)
		}
	}
	return out
}

// SessionOwner identifies the session and the logged-in student it belongs to.
type SessionOwner struct {
	SessionID      string
	RegistrationID string
	DisplayName    string
	Program        string
}
