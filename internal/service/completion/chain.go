package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/analysis/canned"
)

// SourceCanned marks replies produced by the keyword table.
const SourceCanned = "canned"

// conversationIDer is implemented by providers that report the backend
// conversation id of their last answer.
type conversationIDer interface {
	CompleteWithConversation(ctx context.Context, req Request) (string, string, error)
}

// Chain runs the fallback order primary backend → direct provider → canned
// table, each remote attempt bounded by its own timeout.
type Chain struct {
	primary        Provider
	direct         Provider
	canned         *canned.Responder
	primaryTimeout time.Duration
	directTimeout  time.Duration
	log            *zap.Logger
	now            func() time.Time
}

// ChainConfig wires the layers. Nil layers are skipped.
type ChainConfig struct {
	Primary        Provider
	Direct         Provider
	Canned         *canned.Responder
	PrimaryTimeout time.Duration
	DirectTimeout  time.Duration
	Logger         *zap.Logger
}

// NewChain creates a fallback chain.
func NewChain(cfg ChainConfig) *Chain {
	primaryTimeout := cfg.PrimaryTimeout
	if primaryTimeout <= 0 {
		primaryTimeout = 8 * time.Second
	}
	directTimeout := cfg.DirectTimeout
	if directTimeout <= 0 {
		directTimeout = 15 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Chain{
		primary:        cfg.Primary,
		direct:         cfg.Direct,
		canned:         cfg.Canned,
		primaryTimeout: primaryTimeout,
		directTimeout:  directTimeout,
		log:            log.With(zap.String("module", "completion")),
		now:            time.Now,
	}
}

// Complete walks the chain until a layer answers. It only fails when every
// layer is missing or failed and no canned table is configured.
func (c *Chain) Complete(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Result{}, NewError(CodeInvalidMessage, "message is empty", nil)
	}

	var lastErr error

	for _, layer := range []struct {
		provider Provider
		timeout  time.Duration
	}{
		{c.primary, c.primaryTimeout},
		{c.direct, c.directTimeout},
	} {
		if layer.provider == nil {
			continue
		}

		text, conversationID, err := c.attempt(ctx, layer.provider, layer.timeout, req)
		if err == nil {
			return Result{
				Text:           text,
				Timestamp:      c.now().UTC(),
				ConversationID: conversationID,
				Source:         layer.provider.Name(),
			}, nil
		}

		lastErr = err
		c.log.Warn("completion layer failed, falling back",
			zap.String("provider", layer.provider.Name()),
			zap.String("code", string(CodeOf(err))),
			zap.Error(err),
		)

		// The caller gave up; canned replies are still cheap enough to serve.
		if ctx.Err() != nil {
			break
		}
	}

	if c.canned != nil {
		return Result{
			Text:      c.canned.Respond(req.Message),
			Timestamp: c.now().UTC(),
			Source:    SourceCanned,
		}, nil
	}

	if lastErr == nil {
		return Result{}, NewError(CodeProvider, "no completion provider configured", nil)
	}
	return Result{}, AsChatError(lastErr)
}

func (c *Chain) attempt(ctx context.Context, p Provider, timeout time.Duration, req Request) (string, string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		text           string
		conversationID string
		err            error
	)
	if withID, ok := p.(conversationIDer); ok {
		text, conversationID, err = withID.CompleteWithConversation(attemptCtx, req)
	} else {
		text, err = p.Complete(attemptCtx, req)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", "", NewError(CodeTransport, p.Name()+" timed out", err)
		}
		return "", "", AsChatError(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", NewError(CodeProvider, p.Name()+" returned an empty reply", nil)
	}
	return text, conversationID, nil
}
