package chat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	modelchat "github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/suggestion"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chat"
)

func TestManagerOpenIsIdempotent(t *testing.T) {
	manager := chat.NewManager(zap.NewNop())

	first, err := manager.Open("ana@ucv.edu.pe")
	require.NoError(t, err)
	second, err := manager.Open("ana@ucv.edu.pe")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Contains(t, first.ID(), "ana@ucv.edu.pe-")
	assert.True(t, first.Active())
	assert.True(t, first.SuggestionsVisible())

	_, err = manager.Open("  ")
	assert.ErrorIs(t, err, chat.ErrNotAuthenticated)
}

func TestManagerSessionsAreIsolated(t *testing.T) {
	manager := chat.NewManager(zap.NewNop())
	dispatcher := chat.NewDispatcher(&recorder{}, 10, zap.NewNop())

	ana, err := manager.Open("ana")
	require.NoError(t, err)
	luis, err := manager.Open("luis")
	require.NoError(t, err)

	_, err = dispatcher.SendMessage(context.Background(), ana, "hola")
	require.NoError(t, err)

	assert.Equal(t, 2, ana.Len())
	assert.Zero(t, luis.Len())
	assert.True(t, luis.SuggestionsVisible())
}

func TestClearSessionAlwaysYieldsFreshSession(t *testing.T) {
	manager, session := openSession(t, "ana")
	dispatcher := chat.NewDispatcher(&recorder{}, 10, zap.NewNop())
	_, err := dispatcher.SendMessage(context.Background(), session, "hola")
	require.NoError(t, err)

	fresh, err := manager.ClearSession("ana")
	require.NoError(t, err)
	assert.NotEqual(t, session.ID(), fresh.ID())
	assert.Zero(t, fresh.Len())
	assert.True(t, fresh.SuggestionsVisible())
	assert.False(t, session.Active())

	current, ok := manager.Current("ana")
	require.True(t, ok)
	assert.Same(t, fresh, current)

	// Clearing an owner without history still produces an empty session.
	other, err := manager.ClearSession("luis")
	require.NoError(t, err)
	assert.Zero(t, other.Len())
	assert.True(t, other.SuggestionsVisible())

	_, err = manager.ClearSession("")
	assert.ErrorIs(t, err, chat.ErrNotAuthenticated)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	manager := chat.NewManager(zap.NewNop())

	var got []modelchat.EventType
	unsubscribe := manager.Subscribe("ana", func(ev modelchat.Event) {
		got = append(got, ev.Type)
	})

	_, err := manager.Open("ana")
	require.NoError(t, err)
	_, err = manager.Open("luis")
	require.NoError(t, err)
	manager.Close("ana")

	unsubscribe()
	unsubscribe()
	_, err = manager.Open("ana")
	require.NoError(t, err)

	assert.Equal(t, []modelchat.EventType{modelchat.EventSessionOpened, modelchat.EventSessionCleared}, got)
}

func TestSubscribeTrimsOwnerID(t *testing.T) {
	manager := chat.NewManager(zap.NewNop())

	var got []modelchat.EventType
	unsubscribe := manager.Subscribe("  ana ", func(ev modelchat.Event) {
		got = append(got, ev.Type)
	})
	defer unsubscribe()

	_, err := manager.Open("ana")
	require.NoError(t, err)

	assert.Equal(t, []modelchat.EventType{modelchat.EventSessionOpened}, got)
}

func TestClientLogoutDiscardsTranscript(t *testing.T) {
	manager := chat.NewManager(zap.NewNop())
	client := chat.NewClient(manager)
	dispatcher := chat.NewDispatcher(&recorder{}, 10, zap.NewNop())

	session, err := client.OnAuthChange(&chat.User{ID: "ana"})
	require.NoError(t, err)
	for _, text := range []string{"uno", "dos"} {
		_, err := dispatcher.SendMessage(context.Background(), session, text)
		require.NoError(t, err)
	}
	require.Equal(t, 4, session.Len())

	_, err = client.OnAuthChange(nil)
	require.NoError(t, err)

	assert.Zero(t, session.Len())
	assert.False(t, session.Active())
	assert.True(t, session.SuggestionsVisible())
	assert.Nil(t, client.User())
	assert.Nil(t, client.Session())
	_, ok := manager.Current("ana")
	assert.False(t, ok)

	_, err = client.ClearSession()
	assert.ErrorIs(t, err, chat.ErrNotAuthenticated)
}

func TestClientLoginIsIdempotentForSameUser(t *testing.T) {
	manager := chat.NewManager(zap.NewNop())
	client := chat.NewClient(manager)

	first, err := client.OnAuthChange(&chat.User{ID: "ana"})
	require.NoError(t, err)
	second, err := client.OnAuthChange(&chat.User{ID: "ana", DisplayName: "Ana"})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "Ana", client.User().DisplayName)

	_, err = client.OnAuthChange(&chat.User{ID: " "})
	assert.ErrorIs(t, err, chat.ErrNotAuthenticated)
}

func TestClientSwitchingUsersClosesPreviousSession(t *testing.T) {
	manager := chat.NewManager(zap.NewNop())
	client := chat.NewClient(manager)

	ana, err := client.OnAuthChange(&chat.User{ID: "ana"})
	require.NoError(t, err)
	luis, err := client.OnAuthChange(&chat.User{ID: "luis"})
	require.NoError(t, err)

	assert.False(t, ana.Active())
	assert.True(t, luis.Active())
	assert.Same(t, luis, client.Session())

	fresh, err := client.ClearSession()
	require.NoError(t, err)
	assert.Equal(t, "luis", fresh.OwnerID())
	assert.False(t, luis.Active())
}

func TestPromoter(t *testing.T) {
	rec := &recorder{}
	dispatcher := chat.NewDispatcher(rec, 10, zap.NewNop())
	promoter := chat.NewPromoter(suggestion.NewMemoryStore(suggestion.Seed()), dispatcher)
	manager, session := openSession(t, "ana")

	visible := promoter.Visible(session)
	require.Len(t, visible, 3)
	assert.Len(t, promoter.List(), 3)
	assert.Nil(t, promoter.Visible(nil))

	_, err := promoter.Select(context.Background(), session, "missing")
	assert.ErrorIs(t, err, chat.ErrSuggestionNotFound)
	assert.Zero(t, session.Len())

	reply, err := promoter.Select(context.Background(), session, visible[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "re: "+visible[0].Text, reply.Text)

	transcript := session.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, visible[0].Text, transcript[0].Text)
	assert.True(t, transcript[0].IsFromUser)
	assert.Empty(t, promoter.Visible(session))

	fresh, err := manager.ClearSession("ana")
	require.NoError(t, err)
	assert.Len(t, promoter.Visible(fresh), 3)
}
