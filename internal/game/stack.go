package game

import (
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one buffered chat line waiting for the next flush.
type Message struct {
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	At           time.Time `json:"timestamp"`
	AsGameMaster bool      `json:"as_game_master,omitempty"`
}

// Stack is an agent's ordered message buffer. Appending never flushes.
type Stack []Message

func (s *Stack) Push(m Message) { *s = append(*s, m) }

func (s Stack) Len() int { return len(s) }

// Drain empties the stack and returns what it held, oldest first.
func (s *Stack) Drain() []Message {
	out := []Message(*s)
	*s = nil
	return out
}

// Fold joins messages into a single episode body in their original order.
func Fold(msgs []Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		role := m.Role
		if role == "" {
			role = RoleUser
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(m.Content))
	}
	return b.String()
}

func flagged(msgs []Message) bool {
	for _, m := range msgs {
		if m.AsGameMaster {
			return true
		}
	}
	return false
}

func (s Stack) clone() Stack {
	if len(s) == 0 {
		return nil
	}
	return append(Stack(nil), s...)
}
