package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/config"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

// GeminiProvider calls the Gemini API directly.
type GeminiProvider struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGeminiProvider validates the key and creates the client.
func NewGeminiProvider(ctx context.Context, cfg config.GeminiConfig, log *zap.Logger) (*GeminiProvider, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	if config.IsPlaceholderKey(cfg.APIKey) {
		return nil, config.ErrPlaceholderAPIKey
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  cfg.Model,
		log:    log.With(zap.String("module", "ai"), zap.String("provider", "gemini")),
	}, nil
}

// Name implements completion.Provider.
func (g *GeminiProvider) Name() string { return "gemini" }

// Complete implements completion.Provider.
func (g *GeminiProvider) Complete(ctx context.Context, req completion.Request) (string, error) {
	contents := buildContents(req.History, req.Message)

	temp := float32(0.7)
	topP := float32(0.9)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   1024,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", completion.NewError(completion.CodeProvider, "gemini generate content", err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", completion.NewError(completion.CodeProvider, "gemini returned empty text", nil)
	}

	g.log.Debug("generated response", zap.String("user_id", req.UserID), zap.Int("length", len(text)))
	return text, nil
}

func buildContents(history []chat.Turn, message string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == chat.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return append(contents, genai.NewContentFromText(message, genai.RoleUser))
}
