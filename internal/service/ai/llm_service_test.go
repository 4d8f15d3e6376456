package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

type stubChatModel struct {
	reply string
	err   error
	input []*schema.Message
}

func (s *stubChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := s.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (s *stubChatModel) BindTools([]*schema.ToolInfo) error { return nil }

func TestChainProviderRendersPrompt(t *testing.T) {
	stub := &stubChatModel{reply: "Toma la Av. Naranjal."}
	provider, err := NewChainProvider(context.Background(), "ark", stub, zap.NewNop())
	require.NoError(t, err)

	reply, err := provider.Complete(context.Background(), completion.Request{
		Message: "¿Y desde Comas?",
		UserID:  "ana",
		History: []chat.Turn{
			{Role: chat.RoleUser, Text: "Hola"},
			{Role: chat.RoleAssistant, Text: "¡Hola!"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Toma la Av. Naranjal.", reply)
	assert.Equal(t, "ark", provider.Name())

	require.Len(t, stub.input, 4)
	assert.Equal(t, schema.System, stub.input[0].Role)
	assert.Equal(t, SystemPrompt, stub.input[0].Content)
	assert.Equal(t, schema.User, stub.input[1].Role)
	assert.Equal(t, schema.Assistant, stub.input[2].Role)
	assert.Equal(t, "¿Y desde Comas?", stub.input[3].Content)
}

func TestChainProviderWrapsModelErrors(t *testing.T) {
	provider, err := NewChainProvider(context.Background(), "ark", &stubChatModel{err: errors.New("quota")}, zap.NewNop())
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), completion.Request{Message: "hola"})
	require.Error(t, err)
	assert.Equal(t, completion.CodeProvider, completion.CodeOf(err))
}

func TestNewChainProviderRequiresModel(t *testing.T) {
	_, err := NewChainProvider(context.Background(), "ark", nil, nil)
	assert.Error(t, err)
}

func TestBuildContentsTagsRoles(t *testing.T) {
	contents := buildContents([]chat.Turn{
		{Role: chat.RoleUser, Text: "Hola"},
		{Role: chat.RoleAssistant, Text: "¡Hola!"},
	}, "¿Qué tal el tráfico?")

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, "¿Qué tal el tráfico?", contents[2].Parts[0].Text)
}
