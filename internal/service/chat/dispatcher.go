package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

// Completer produces the assistant reply for a turn.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (completion.Result, error)
}

// Dispatcher runs conversational turns against a Completer.
type Dispatcher struct {
	completer    Completer
	historyLimit int
	log          *zap.Logger
}

// NewDispatcher creates a dispatcher. historyLimit caps how many previous
// messages are handed to the completer; zero or less sends all of them.
func NewDispatcher(completer Completer, historyLimit int, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		completer:    completer,
		historyLimit: historyLimit,
		log:          log.With(zap.String("module", "dispatcher")),
	}
}

// SendMessage runs one turn: the user message is appended before the
// completer is called, and the reply, or GenericErrorReply when no layer
// answered, is appended after. Turns on the same session never overlap.
func (d *Dispatcher) SendMessage(ctx context.Context, session *Session, text string) (*chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if session == nil || !session.Active() {
		return nil, ErrNoSession
	}

	if err := session.turn.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer session.turn.Release(1)

	userMsg := chat.NewMessage(text, true)
	history, err := session.beginTurn(userMsg, d.historyLimit)
	if err != nil {
		return nil, err
	}

	reply := GenericErrorReply
	result, err := d.completer.Complete(ctx, completion.Request{
		Message: text,
		UserID:  session.OwnerID(),
		History: history,
	})
	switch {
	case err != nil:
		d.log.Error("completion chain failed",
			zap.String("session_id", session.ID()),
			zap.String("code", string(completion.CodeOf(err))),
			zap.Error(err),
		)
	case strings.TrimSpace(result.Text) == "":
		d.log.Warn("completion chain returned empty text", zap.String("session_id", session.ID()))
	default:
		reply = strings.TrimSpace(result.Text)
		d.log.Debug("turn completed",
			zap.String("session_id", session.ID()),
			zap.String("source", result.Source),
		)
	}

	assistantMsg := chat.NewMessage(reply, false)
	if !session.finishTurn(assistantMsg) {
		d.log.Info("dropping reply for closed session", zap.String("session_id", session.ID()))
		return nil, ErrSessionClosed
	}
	return &assistantMsg, nil
}
