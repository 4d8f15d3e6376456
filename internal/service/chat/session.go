package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
)

// Session is the live conversation of one owner. Only the Manager creates
// sessions; the Dispatcher mutates their transcript.
type Session struct {
	id        string
	ownerID   string
	createdAt time.Time

	// turn admits one dispatch at a time.
	turn *semaphore.Weighted
	emit func(chat.Event)

	mu                 sync.RWMutex
	transcript         []chat.Message
	active             bool
	suggestionsVisible bool
	loading            bool
}

func newSession(ownerID string, now time.Time, emit func(chat.Event)) *Session {
	if emit == nil {
		emit = func(chat.Event) {}
	}
	return &Session{
		id:                 fmt.Sprintf("%s-%d-%s", ownerID, now.UnixMilli(), uuid.NewString()[:8]),
		ownerID:            ownerID,
		createdAt:          now.UTC(),
		turn:               semaphore.NewWeighted(1),
		emit:               emit,
		transcript:         make([]chat.Message, 0, 16),
		active:             true,
		suggestionsVisible: true,
	}
}

func (s *Session) ID() string      { return s.id }
func (s *Session) OwnerID() string { return s.ownerID }

// Active reports whether the session still accepts messages.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SuggestionsVisible reports whether starter prompts should be offered.
func (s *Session) SuggestionsVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggestionsVisible
}

// Loading reports whether a reply is pending.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Transcript returns a copy of the messages in insertion order.
func (s *Session) Transcript() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Message(nil), s.transcript...)
}

// Len returns the transcript length.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcript)
}

// Snapshot copies the session state.
func (s *Session) Snapshot() chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return chat.Session{
		ID:                 s.id,
		OwnerID:            s.ownerID,
		Transcript:         append([]chat.Message(nil), s.transcript...),
		Active:             s.active,
		SuggestionsVisible: s.suggestionsVisible,
		Loading:            s.loading,
		CreatedAt:          s.createdAt,
	}
}

// beginTurn appends the user message, raises the loading flag and hides the
// suggestions. It returns the turns that preceded msg.
func (s *Session) beginTurn(msg chat.Message, historyLimit int) ([]chat.Turn, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, ErrNoSession
	}

	history := chat.Turns(s.transcript, historyLimit)
	s.transcript = append(s.transcript, msg)
	s.loading = true
	hidSuggestions := s.suggestionsVisible
	s.suggestionsVisible = false
	s.mu.Unlock()

	s.emit(s.event(chat.EventMessageAppended, &msg, true, false))
	s.emit(s.event(chat.EventLoadingChanged, nil, true, false))
	if hidSuggestions {
		s.emit(s.event(chat.EventSuggestionsChanged, nil, true, false))
	}
	return history, nil
}

// finishTurn appends the assistant reply and lowers the loading flag. A
// session deactivated in the meantime drops the reply.
func (s *Session) finishTurn(msg chat.Message) bool {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return false
	}
	s.transcript = append(s.transcript, msg)
	s.loading = false
	s.mu.Unlock()

	s.emit(s.event(chat.EventMessageAppended, &msg, false, false))
	s.emit(s.event(chat.EventLoadingChanged, nil, false, false))
	return true
}

// deactivate empties the transcript and retires the session.
func (s *Session) deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.active = false
	s.loading = false
	s.suggestionsVisible = true
}

func (s *Session) event(kind chat.EventType, msg *chat.Message, loading, suggestions bool) chat.Event {
	return chat.Event{
		Type:               kind,
		OwnerID:            s.ownerID,
		SessionID:          s.id,
		Message:            msg,
		Loading:            loading,
		SuggestionsVisible: suggestions,
	}
}
