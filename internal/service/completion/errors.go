package completion

import (
	"errors"
	"fmt"
)

// Code classifies a ChatError.
type Code string

const (
	CodeInvalidMessage   Code = "INVALID_MESSAGE"
	CodeMissingField     Code = "MISSING_FIELD"
	CodeInvalidType      Code = "INVALID_TYPE"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeTransport        Code = "TRANSPORT_ERROR"
	CodeProvider         Code = "PROVIDER_ERROR"
	CodeUnknown          Code = "UNKNOWN_ERROR"
)

// ChatError is the single error shape surfaced by the conversational path.
type ChatError struct {
	Code    Code
	Message string
	// Status is the HTTP status observed, when the error came from a backend.
	Status int
	Cause  error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

// NewError builds a ChatError.
func NewError(code Code, message string, cause error) *ChatError {
	return &ChatError{Code: code, Message: message, Cause: cause}
}

// AsChatError returns err as a ChatError, wrapping unrecognized errors as UNKNOWN_ERROR.
func AsChatError(err error) *ChatError {
	if err == nil {
		return nil
	}
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr
	}
	return NewError(CodeUnknown, "unexpected chat failure", err)
}

// CodeOf extracts the code of err. Errors that are not ChatErrors report
// CodeUnknown; a nil error has no code.
func CodeOf(err error) Code {
	if chatErr := AsChatError(err); chatErr != nil {
		return chatErr.Code
	}
	return ""
}
