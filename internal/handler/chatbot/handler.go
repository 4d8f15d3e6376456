package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chatlog"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chatbot"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Service is the chatbot backend used by the handler.
type Service interface {
	SendMessage(ctx context.Context, in chatbot.SendMessageInput) (completion.SendMessageResponse, error)
	UserLogs(ctx context.Context, userID string, limit int) ([]chatlog.Entry, error)
	AllLogs(ctx context.Context, limit int) ([]chatlog.Entry, error)
	Statistics(ctx context.Context) (chatlog.Statistics, error)
}

// Handler exposes the chatbot endpoints.
type Handler struct {
	svc      Service
	validate *validator.Validate
	log      *zap.Logger
}

// New creates a chatbot handler.
func New(svc Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:      svc,
		validate: newValidator(),
		log:      log.With(zap.String("module", "chatbot_handler")),
	}
}

// RegisterRoutes mounts the chatbot routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chatbot-sendMessage", h.handleSendMessage)
	r.Get("/chatbot-getChatHistory", h.handleGetChatHistory)
	r.Get("/chatbot-getStatistics", h.handleGetStatistics)
	r.Get("/chatbot-getUserLogs", h.handleGetUserLogs)
	r.Get("/chatbot-exportLogs", h.handleExportLogs)
}

// MethodNotAllowed answers a known path called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondError(w, http.StatusMethodNotAllowed, completion.CodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed", r.Method))
}

// sendMessageRequest is the body of POST /chatbot-sendMessage.
type sendMessageRequest struct {
	Message *string `json:"message" validate:"omitnil,notblank,max=4000"`
	UserID  string  `json:"userId" validate:"max=256"`
	Context string  `json:"context" validate:"max=32768"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeSendMessage(w, r)
	if err != nil {
		utils.RespondChatError(w, err)
		return
	}

	out, err := h.svc.SendMessage(r.Context(), chatbot.SendMessageInput{
		Message: *req.Message,
		UserID:  req.UserID,
		Context: req.Context,
	})
	if err != nil {
		h.log.Error("send message failed", zap.String("user_id", req.UserID), zap.Error(err))
		utils.RespondChatError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) decodeSendMessage(w http.ResponseWriter, r *http.Request) (sendMessageRequest, error) {
	var req sendMessageRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return req, completion.NewError(completion.CodeInvalidType,
				fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind()), err)
		}
		return req, completion.NewError(completion.CodeInvalidMessage, "invalid request body", err)
	}
	if req.Message == nil {
		return req, completion.NewError(completion.CodeMissingField, "message is required", nil)
	}

	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return req, fieldError(fieldErrs[0])
		}
		return req, completion.NewError(completion.CodeInvalidMessage, "invalid request body", err)
	}
	return req, nil
}

func fieldError(fe validator.FieldError) *completion.ChatError {
	switch fe.Tag() {
	case "notblank":
		return completion.NewError(completion.CodeInvalidMessage, fe.Field()+" must not be empty", nil)
	case "max":
		return completion.NewError(completion.CodeInvalidMessage,
			fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()), nil)
	default:
		return completion.NewError(completion.CodeInvalidMessage, fe.Field()+" is invalid", nil)
	}
}

func (h *Handler) handleGetChatHistory(w http.ResponseWriter, r *http.Request) {
	// Transcripts are not persisted server side.
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"messages":       []any{},
		"count":          0,
		"userId":         r.URL.Query().Get("userId"),
		"conversationId": r.URL.Query().Get("conversationId"),
	})
}

func (h *Handler) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		h.log.Error("statistics failed", zap.Error(err))
		utils.RespondChatError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleGetUserLogs(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, completion.CodeMissingField, "userId is required")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		utils.RespondChatError(w, err)
		return
	}

	logs, err := h.svc.UserLogs(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("user logs failed", zap.String("user_id", userID), zap.Error(err))
		utils.RespondChatError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"logs":   logs,
		"count":  len(logs),
		"userId": userID,
	})
}

func (h *Handler) handleExportLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		utils.RespondChatError(w, err)
		return
	}

	logs, err := h.svc.AllLogs(r.Context(), limit)
	if err != nil {
		h.log.Error("export logs failed", zap.Error(err))
		utils.RespondChatError(w, err)
		return
	}

	now := time.Now().UTC()
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="chat-logs-%s.json"`, now.Format("2006-01-02")))
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"exportedAt": now.Format(time.RFC3339),
		"count":      len(logs),
		"logs":       logs,
	})
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, completion.NewError(completion.CodeInvalidType, "limit must be a non-negative integer", err)
	}
	return limit, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}
