package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/analysis/canned"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
)

func TestBackendClientPostsMessage(t *testing.T) {
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, SendMessagePath, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SendMessageResponse{
			Response:       "respuesta",
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			ConversationID: "conv_ana_1",
		})
	}))
	defer srv.Close()

	format := func(history []chat.Turn) string { return "turns=" + string(rune('0'+len(history))) }
	client := NewBackendClient(srv.URL+"/", format, nil)

	text, convID, err := client.CompleteWithConversation(context.Background(), Request{
		Message: "hola",
		UserID:  "ana@ucv.edu.pe",
		History: []chat.Turn{{Role: chat.RoleUser, Text: "a"}, {Role: chat.RoleAssistant, Text: "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "respuesta", text)
	assert.Equal(t, "conv_ana_1", convID)
	assert.Equal(t, "hola", got.Message)
	assert.Equal(t, "ana@ucv.edu.pe", got.UserID)
	assert.Equal(t, "turns=2", got.Context)
}

func TestBackendClientNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "internal", Code: "UNKNOWN_ERROR"})
	}))
	defer srv.Close()

	client := NewBackendClient(srv.URL, nil, nil)
	_, err := client.Complete(context.Background(), Request{Message: "hola"})
	require.Error(t, err)

	chatErr := AsChatError(err)
	assert.Equal(t, CodeTransport, chatErr.Code)
	assert.Equal(t, http.StatusInternalServerError, chatErr.Status)
}

func TestBackendClientHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewBackendClient(srv.URL, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, Request{Message: "hola"})
	require.Error(t, err)
	assert.Equal(t, CodeTransport, CodeOf(err))
}

func TestChainFallsThroughFailingBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	chain := NewChain(ChainConfig{
		Primary: NewBackendClient(srv.URL, nil, nil),
		Canned:  canned.MustNew(),
	})

	res, err := chain.Complete(context.Background(), Request{Message: "vivo en tahuantinsuyo"})
	require.NoError(t, err)
	assert.Equal(t, SourceCanned, res.Source)
	assert.Contains(t, res.Text, "Tahuantinsuyo")
}

func TestChainKeepsBackendConversationID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(SendMessageResponse{Response: "ok", ConversationID: "conv_anonymous_7"})
	}))
	defer srv.Close()

	chain := NewChain(ChainConfig{Primary: NewBackendClient(srv.URL, nil, nil)})

	res, err := chain.Complete(context.Background(), Request{Message: "hola"})
	require.NoError(t, err)
	assert.Equal(t, "conv_anonymous_7", res.ConversationID)
	assert.Equal(t, "backend", res.Source)
}
