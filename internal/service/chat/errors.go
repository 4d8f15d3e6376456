package chat

import "errors"

var (
	ErrNotAuthenticated   = errors.New("owner id is required")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrNoSession          = errors.New("no active session")
	ErrSessionClosed      = errors.New("session closed while the reply was pending")
	ErrSuggestionNotFound = errors.New("suggestion not found")
)

// GenericErrorReply is shown when no completion layer could answer.
const GenericErrorReply = "Lo siento, tuve un problema para responder. Por favor, inténtalo de nuevo en unos momentos."
