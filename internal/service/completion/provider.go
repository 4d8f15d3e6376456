package completion

import (
	"context"
	"time"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
)

// Request is one completion call: the new message, who sent it and the turns
// that preceded it.
type Request struct {
	Message string
	UserID  string
	History []chat.Turn
}

// Provider produces an assistant reply for a request.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Result is the outcome of a completion chain run.
type Result struct {
	Text           string    `json:"response"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversationId,omitempty"`
	// Source names the layer that answered: a provider name or "canned".
	Source string `json:"source"`
}
