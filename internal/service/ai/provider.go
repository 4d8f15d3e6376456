package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/config"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

// NewDirectProvider picks the configured direct provider: Gemini first, then
// Ark. It returns nil without error when neither is configured.
func NewDirectProvider(ctx context.Context, cfg *config.Config, log *zap.Logger) (completion.Provider, error) {
	if cfg.Gemini.Enabled() {
		provider, err := NewGeminiProvider(ctx, cfg.Gemini, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini provider: %w", err)
		}
		return provider, nil
	}

	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		provider, err := NewChainProvider(ctx, "ark", chatModel, log)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}

	return nil, nil
}
