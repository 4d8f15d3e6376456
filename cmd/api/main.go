package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/analysis/canned"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/config"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/handler"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/suggestion"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/pkg/logger"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/ai"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chatbot"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
	logstore "github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/store/chatlog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(config.LogConfig{Level: "info"}).Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Warn("no .env file loaded, using process environment only", zap.Error(envErr))
	}

	table, err := canned.New()
	if err != nil {
		log.Fatal("failed to load canned responses", zap.Error(err))
	}

	direct, err := ai.NewDirectProvider(ctx, cfg, log)
	if err != nil {
		log.Warn("direct completion provider unavailable, continuing with canned replies", zap.Error(err))
		direct = nil
	} else if direct == nil {
		log.Info("no completion provider configured, set GEMINI_API_KEY or ARK_API_KEY + ARK_MODEL")
	} else {
		log.Info("direct completion provider ready", zap.String("provider", direct.Name()))
	}

	logs, closeLogs := openLogStore(ctx, cfg.Store, log)
	defer closeLogs()

	// This process is the chatbot backend: direct provider, then canned.
	backendChain := completion.NewChain(completion.ChainConfig{
		Direct:        direct,
		Canned:        table,
		DirectTimeout: cfg.Backend.DirectTimeout,
		Logger:        log,
	})
	chatbotSvc := chatbot.NewService(backendChain, logs, log)

	// Realtime clients go through the configured primary backend first.
	var primary completion.Provider
	if cfg.Backend.URL != "" {
		backend := completion.NewBackendClient(cfg.Backend.URL, ai.BuildContext, log)
		defer backend.CloseIdleConnections()
		primary = backend
		log.Info("primary chatbot backend configured", zap.String("url", cfg.Backend.URL))
	}
	sessionChain := completion.NewChain(completion.ChainConfig{
		Primary:        primary,
		Direct:         direct,
		Canned:         table,
		PrimaryTimeout: cfg.Backend.PrimaryTimeout,
		DirectTimeout:  cfg.Backend.DirectTimeout,
		Logger:         log,
	})

	prompts := suggestion.NewMemoryStore(suggestion.Seed())
	dispatcher := chat.NewDispatcher(sessionChain, cfg.Backend.HistoryLimit, log)

	router := handler.NewRouter(handler.Dependencies{
		Logger:      log,
		Suggestions: prompts,
		Chatbot:     chatbotSvc,
		Sessions:    chat.NewManager(log),
		Dispatcher:  dispatcher,
		Promoter:    chat.NewPromoter(prompts, dispatcher),
	})

	startServer(ctx, cfg.Server, router, log)
	chatbotSvc.Wait()
}

func openLogStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (logstore.Store, func()) {
	if !cfg.UseMongo() {
		log.Info("chat logs kept in memory")
		return logstore.NewMemoryStore(), func() {}
	}

	store, err := logstore.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, log)
	if err != nil {
		log.Warn("mongo unavailable, chat logs kept in memory", zap.Error(err))
		return logstore.NewMemoryStore(), func() {}
	}
	return store, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("failed to close mongo client", zap.Error(err))
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("UCV Green Mobility chat backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
