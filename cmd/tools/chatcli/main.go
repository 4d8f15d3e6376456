package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/analysis/canned"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/config"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/suggestion"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/pkg/logger"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/ai"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/chat"
	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

type options struct {
	backend string
	user    string
	timeout time.Duration
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "chatcli",
		Short: "Chat with the UCV mobility assistant from a terminal",
		Long: `Opens an interactive conversation using the same session, dispatch and
fallback chain as the mobile app. Lines are sent as messages; /1../3 pick a
suggestion, /clear starts over, /login <id> and /logout switch users, /quit exits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "", "primary chatbot backend URL (defaults to CHATBOT_BACKEND_URL)")
	cmd.Flags().StringVar(&opts.user, "user", "cli@ucv.edu.pe", "user id to sign in with")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "primary backend timeout (defaults to CHATBOT_BACKEND_TIMEOUT)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log provider activity to stderr")
	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := cfg.Log
	if !opts.verbose {
		logCfg.Level = "error"
	}
	log := logger.New(logCfg)
	defer func() { _ = log.Sync() }()

	chain, err := buildChain(ctx, cfg, opts, log)
	if err != nil {
		return err
	}

	manager := chat.NewManager(log)
	dispatcher := chat.NewDispatcher(chain, cfg.Backend.HistoryLimit, log)
	r := &repl{
		client:   chat.NewClient(manager),
		promoter: chat.NewPromoter(suggestion.NewMemoryStore(suggestion.Seed()), dispatcher),
		dispatch: dispatcher,
		out:      cmd.OutOrStdout(),
	}
	return r.run(ctx, cmd.InOrStdin(), opts.user)
}

func buildChain(ctx context.Context, cfg *config.Config, opts *options, log *zap.Logger) (*completion.Chain, error) {
	backendURL := cfg.Backend.URL
	if opts.backend != "" {
		backendURL = opts.backend
	}
	primaryTimeout := cfg.Backend.PrimaryTimeout
	if opts.timeout > 0 {
		primaryTimeout = opts.timeout
	}

	var primary completion.Provider
	if backendURL != "" {
		primary = completion.NewBackendClient(backendURL, ai.BuildContext, log)
	}

	direct, err := ai.NewDirectProvider(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("direct provider: %w", err)
	}

	table, err := canned.New()
	if err != nil {
		return nil, err
	}

	return completion.NewChain(completion.ChainConfig{
		Primary:        primary,
		Direct:         direct,
		Canned:         table,
		PrimaryTimeout: primaryTimeout,
		DirectTimeout:  cfg.Backend.DirectTimeout,
		Logger:         log,
	}), nil
}
