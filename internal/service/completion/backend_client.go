package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
)

// SendMessagePath is the primary backend's chat endpoint.
const SendMessagePath = "/chatbot-sendMessage"

// ContextFormatter renders prior turns into the backend's context string.
type ContextFormatter func(history []chat.Turn) string

// SendMessageRequest is the wire body of POST /chatbot-sendMessage.
type SendMessageRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
	Context string `json:"context,omitempty"`
}

// SendMessageResponse is the 200 body of POST /chatbot-sendMessage.
type SendMessageResponse struct {
	Response       string `json:"response"`
	Timestamp      string `json:"timestamp"`
	ConversationID string `json:"conversationId"`
}

// ErrorResponse is the non-2xx body of the chatbot endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// BackendClient calls the primary chatbot backend over HTTP.
type BackendClient struct {
	baseURL string
	format  ContextFormatter
	client  *http.Client
}

// NewBackendClient creates a client for baseURL. Timeouts come from the
// caller's context so the chain can bound each attempt.
func NewBackendClient(baseURL string, format ContextFormatter, log *zap.Logger) *BackendClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		format:  format,
		client: &http.Client{
			Transport: &loggingRoundTripper{
				inner: http.DefaultTransport.(*http.Transport).Clone(),
				log:   log.With(zap.String("module", "backend_client")),
			},
		},
	}
}

// CloseIdleConnections drops pooled keep-alive connections to the backend.
func (c *BackendClient) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

// Name implements Provider.
func (c *BackendClient) Name() string { return "backend" }

// Complete implements Provider.
func (c *BackendClient) Complete(ctx context.Context, req Request) (string, error) {
	text, _, err := c.CompleteWithConversation(ctx, req)
	return text, err
}

// CompleteWithConversation posts the message and returns the reply and the
// backend conversation id.
func (c *BackendClient) CompleteWithConversation(ctx context.Context, req Request) (string, string, error) {
	body := SendMessageRequest{
		Message: req.Message,
		UserID:  req.UserID,
	}
	if c.format != nil {
		body.Context = c.format(req.History)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", "", NewError(CodeUnknown, "encode backend request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SendMessagePath, bytes.NewReader(payload))
	if err != nil {
		return "", "", NewError(CodeTransport, "build backend request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", "", NewError(CodeTransport, "backend request aborted", err)
		}
		return "", "", NewError(CodeTransport, "backend unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", "", NewError(CodeTransport, "read backend response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody ErrorResponse
		_ = json.Unmarshal(raw, &errBody)
		msg := errBody.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		chatErr := NewError(CodeTransport, fmt.Sprintf("backend returned %d: %s", resp.StatusCode, msg), nil)
		chatErr.Status = resp.StatusCode
		return "", "", chatErr
	}

	var out SendMessageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", "", NewError(CodeTransport, "decode backend response", err)
	}
	return out.Response, out.ConversationID, nil
}

// loggingRoundTripper logs every outbound backend call.
type loggingRoundTripper struct {
	inner http.RoundTripper
	log   *zap.Logger
}

func (l *loggingRoundTripper) CloseIdleConnections() {
	if closer, ok := l.inner.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.inner.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		l.log.Warn("backend call failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	l.log.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)
	return resp, nil
}
