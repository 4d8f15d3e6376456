package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role tags which side of the conversation produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable turn of a transcript.
type Message struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	IsFromUser bool      `json:"isFromUser"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewMessage stamps a message with a fresh id. Callers validate text first.
func NewMessage(text string, fromUser bool) Message {
	return Message{
		ID:         uuid.NewString(),
		Text:       text,
		IsFromUser: fromUser,
		CreatedAt:  time.Now().UTC(),
	}
}

// Role reports the author of the message.
func (m Message) Role() Role {
	if m.IsFromUser {
		return RoleUser
	}
	return RoleAssistant
}

// Turn is the role-tagged form of a message handed to completion providers.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Turns converts a transcript into provider context, keeping at most the last
// limit entries. A non-positive limit keeps everything.
func Turns(messages []Message, limit int) []Turn {
	start := 0
	if limit > 0 && len(messages) > limit {
		start = len(messages) - limit
	}

	turns := make([]Turn, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		turns = append(turns, Turn{Role: msg.Role(), Text: text})
	}
	return turns
}
