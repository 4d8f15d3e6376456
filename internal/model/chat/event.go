package chat

// EventType enumerates the state changes a UI layer can react to.
type EventType string

const (
	EventMessageAppended    EventType = "message_appended"
	EventLoadingChanged     EventType = "loading_changed"
	EventSuggestionsChanged EventType = "suggestions_changed"
	EventSessionOpened      EventType = "session_opened"
	EventSessionCleared     EventType = "session_cleared"
)

// Event describes one change to a session.
type Event struct {
	Type               EventType `json:"type"`
	OwnerID            string    `json:"ownerId"`
	SessionID          string    `json:"sessionId"`
	Message            *Message  `json:"message,omitempty"`
	Loading            bool      `json:"loading"`
	SuggestionsVisible bool      `json:"suggestionsVisible"`
}
