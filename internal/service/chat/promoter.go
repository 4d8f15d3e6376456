package chat

import (
	"context"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/suggestion"
)

// Promoter turns starter prompts into messages.
type Promoter struct {
	store      suggestion.Store
	dispatcher *Dispatcher
}

// NewPromoter creates a promoter over store.
func NewPromoter(store suggestion.Store, dispatcher *Dispatcher) *Promoter {
	return &Promoter{store: store, dispatcher: dispatcher}
}

// List returns every starter prompt.
func (p *Promoter) List() []suggestion.Prompt {
	return p.store.List()
}

// Visible returns the prompts to offer for session, none once the session
// has seen its first message.
func (p *Promoter) Visible(session *Session) []suggestion.Prompt {
	if session == nil || !session.SuggestionsVisible() {
		return nil
	}
	return p.store.List()
}

// Select sends the prompt's text exactly as if the user had typed it.
func (p *Promoter) Select(ctx context.Context, session *Session, id string) (*chat.Message, error) {
	prompt, ok := p.store.FindByID(id)
	if !ok {
		return nil, ErrSuggestionNotFound
	}
	return p.dispatcher.SendMessage(ctx, session, prompt.Text)
}
