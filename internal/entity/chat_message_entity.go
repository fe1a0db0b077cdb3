package entity

import (
	"time"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one transcript entry. Assistant content grows while its
// submission streams and is frozen once the submission closes.
type ChatMessage struct {
	Id        string
	Role      ChatRole
	Content   string
	Citations []ChatCitation
	CreatedAt time.Time
}

// Clone returns a copy that shares nothing with the receiver.
func (m *ChatMessage) Clone() ChatMessage {
	out := *m
	if m.Citations != nil {
		out.Citations = make([]ChatCitation, len(m.Citations))
		copy(out.Citations, m.Citations)
	}
	return out
}
