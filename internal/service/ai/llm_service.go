package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

// ChainProvider answers through an eino chain: system prompt, history
// placeholder and query rendered into a chat model call.
type ChainProvider struct {
	name         string
	chain        compose.Runnable[map[string]any, *schema.Message]
	systemPrompt string
	log          *zap.Logger
}

// NewChainProvider compiles the prompt chain over chatModel.
func NewChainProvider(ctx context.Context, name string, chatModel model.ChatModel, log *zap.Logger) (*ChainProvider, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ChainProvider{
		name:         name,
		chain:        runnable,
		systemPrompt: SystemPrompt,
		log:          log.With(zap.String("module", "ai"), zap.String("provider", name)),
	}, nil
}

// Name implements completion.Provider.
func (p *ChainProvider) Name() string { return p.name }

// Complete implements completion.Provider.
func (p *ChainProvider) Complete(ctx context.Context, req completion.Request) (string, error) {
	response, err := p.chain.Invoke(ctx, p.buildChainInput(req))
	if err != nil {
		return "", completion.NewError(completion.CodeProvider, "chat chain failed", err)
	}
	if response == nil {
		return "", completion.NewError(completion.CodeProvider, "chat chain returned no message", nil)
	}

	p.log.Debug("generated response", zap.String("user_id", req.UserID), zap.Int("length", len(response.Content)))
	return response.Content, nil
}

func (p *ChainProvider) buildChainInput(req completion.Request) map[string]any {
	return map[string]any{
		"system":  p.systemPrompt,
		"history": buildHistoryMessages(req.History),
		"query":   req.Message,
	}
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return history
}
