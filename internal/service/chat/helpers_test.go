package chat_test

import (
	"context"
	"sync"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

// completerFunc adapts a function to chat.Completer.
type completerFunc func(ctx context.Context, req completion.Request) (completion.Result, error)

func (f completerFunc) Complete(ctx context.Context, req completion.Request) (completion.Result, error) {
	return f(ctx, req)
}

// funcProvider adapts a function to completion.Provider.
type funcProvider struct {
	name string
	fn   func(ctx context.Context, req completion.Request) (string, error)
}

func (p funcProvider) Name() string { return p.name }

func (p funcProvider) Complete(ctx context.Context, req completion.Request) (string, error) {
	return p.fn(ctx, req)
}

// recorder answers every request with "re: <message>" and keeps the requests.
type recorder struct {
	mu       sync.Mutex
	requests []completion.Request
}

func (r *recorder) Complete(_ context.Context, req completion.Request) (completion.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return completion.Result{Text: "re: " + req.Message, Source: "test"}, nil
}

func (r *recorder) calls() []completion.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]completion.Request(nil), r.requests...)
}

// gate blocks each call until released.
type gate struct {
	entered chan completion.Request
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan completion.Request, 4), release: make(chan struct{})}
}

func (g *gate) Complete(ctx context.Context, req completion.Request) (completion.Result, error) {
	g.entered <- req
	select {
	case <-g.release:
	case <-ctx.Done():
		return completion.Result{}, ctx.Err()
	}
	return completion.Result{Text: "re: " + req.Message, Source: "test"}, nil
}
