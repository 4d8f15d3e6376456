package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

// RespondJSON writes payload as a JSON response.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

// RespondError writes {"error": message, "code": code}.
func RespondError(w http.ResponseWriter, status int, code completion.Code, message string) {
	RespondJSON(w, status, completion.ErrorResponse{Error: message, Code: string(code)})
}

// RespondChatError maps err onto its status and error body.
func RespondChatError(w http.ResponseWriter, err error) {
	chatErr := completion.AsChatError(err)
	RespondError(w, StatusForCode(chatErr.Code), chatErr.Code, chatErr.Message)
}

// StatusForCode maps an error code to its HTTP status.
func StatusForCode(code completion.Code) int {
	switch code {
	case completion.CodeInvalidMessage, completion.CodeMissingField, completion.CodeInvalidType:
		return http.StatusBadRequest
	case completion.CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
