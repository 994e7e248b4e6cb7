package agent

import "github.com/contratai/contratai/internal/core"

// DefaultMemoryLimit is 10 user/assistant pairs.
const DefaultMemoryLimit = 20

// Memory is the bounded log of completed turns. Only the user text and the
// final answer of each turn are kept; tool scaffolding is not.
type Memory struct {
	limit    int
	messages []core.Message
}

// NewMemory returns an empty memory holding at most limit messages.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &Memory{limit: limit}
}

// Append records one completed turn, evicting the oldest messages past the limit.
func (m *Memory) Append(user, assistant string) {
	m.messages = append(m.messages,
		core.Message{Role: core.RoleUser, Content: user},
		core.Message{Role: core.RoleAssistant, Content: assistant},
	)
	if over := len(m.messages) - m.limit; over > 0 {
		m.messages = append([]core.Message(nil), m.messages[over:]...)
	}
}

// Messages returns a copy of the retained messages, oldest first.
func (m *Memory) Messages() []core.Message {
	out := make([]core.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Clear drops every message.
func (m *Memory) Clear() { m.messages = nil }

// Len is the number of retained messages.
func (m *Memory) Len() int { return len(m.messages) }

// Limit is the configured cap.
func (m *Memory) Limit() int { return m.limit }
