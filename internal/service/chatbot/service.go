package chatbot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chatlog"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/ai"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
	logstore "github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/store/chatlog"
)

// AnonymousUser stands in for a missing user id in conversation ids and logs.
const AnonymousUser = "anonymous"

// recordTimeout bounds one fire-and-forget log write.
const recordTimeout = 5 * time.Second

// Completer produces replies; satisfied by *completion.Chain.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (completion.Result, error)
}

// SendMessageInput is a validated chatbot request.
type SendMessageInput struct {
	Message string
	UserID  string
	// Context is the serialized transcript sent by the client.
	Context string
}

// Service is the chatbot backend behind the HTTP endpoints.
type Service struct {
	completer Completer
	logs      logstore.Store
	log       *zap.Logger
	now       func() time.Time

	pending sync.WaitGroup
}

// NewService creates the chatbot service. logs may be nil to disable recording.
func NewService(completer Completer, logs logstore.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		completer: completer,
		logs:      logs,
		log:       log.With(zap.String("module", "chatbot")),
		now:       time.Now,
	}
}

// SendMessage answers one message and records the exchange in the background.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (completion.SendMessageResponse, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return completion.SendMessageResponse{}, completion.NewError(completion.CodeInvalidMessage, "message must not be empty", nil)
	}

	userID := strings.TrimSpace(in.UserID)
	started := s.now()

	result, err := s.completer.Complete(ctx, completion.Request{
		Message: message,
		UserID:  userID,
		History: ai.ParseTranscript(in.Context),
	})
	if err != nil {
		chatErr := completion.AsChatError(err)
		s.record(userID, "", message, chatErr.Message, chatlog.SourceError, started)
		return completion.SendMessageResponse{}, chatErr
	}

	out := completion.SendMessageResponse{
		Response:       result.Text,
		Timestamp:      result.Timestamp.UTC().Format(time.RFC3339Nano),
		ConversationID: ConversationID(userID, s.now()),
	}

	source := chatlog.SourceDirect
	if result.Source == completion.SourceCanned {
		source = chatlog.SourceCanned
	}
	s.record(userID, out.ConversationID, message, result.Text, source, started)

	return out, nil
}

// ConversationID builds "conv_<userId>_<unixMillis>", using AnonymousUser when
// userID is empty.
func ConversationID(userID string, at time.Time) string {
	if strings.TrimSpace(userID) == "" {
		userID = AnonymousUser
	}
	return fmt.Sprintf("conv_%s_%d", userID, at.UnixMilli())
}

// UserLogs returns the newest entries of one user.
func (s *Service) UserLogs(ctx context.Context, userID string, limit int) ([]chatlog.Entry, error) {
	if s.logs == nil {
		return []chatlog.Entry{}, nil
	}
	return s.logs.ListByUser(ctx, userID, limit)
}

// AllLogs returns the newest entries of every user.
func (s *Service) AllLogs(ctx context.Context, limit int) ([]chatlog.Entry, error) {
	if s.logs == nil {
		return []chatlog.Entry{}, nil
	}
	return s.logs.List(ctx, limit)
}

// Statistics aggregates the recorded exchanges.
func (s *Service) Statistics(ctx context.Context) (chatlog.Statistics, error) {
	if s.logs == nil {
		return chatlog.Statistics{BySource: map[string]int64{}}, nil
	}
	return s.logs.Stats(ctx)
}

// Wait blocks until pending log writes finish.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) record(userID, conversationID, message, response, source string, started time.Time) {
	if s.logs == nil {
		return
	}
	if userID == "" {
		userID = AnonymousUser
	}

	entry := chatlog.Entry{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: conversationID,
		Message:        message,
		Response:       response,
		Source:         source,
		LatencyMs:      s.now().Sub(started).Milliseconds(),
		CreatedAt:      s.now().UTC(),
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.logs.Append(ctx, entry); err != nil {
			s.log.Warn("failed to record chat log", zap.String("user_id", userID), zap.Error(err))
		}
	}()
}
