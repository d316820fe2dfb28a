package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	slackapi "github.com/slack-go/slack"

	"pmagent/internal/agent"
	"pmagent/internal/backoff"
	"pmagent/internal/channels"
	slackchan "pmagent/internal/channels/slack"
	"pmagent/internal/config"
	"pmagent/internal/ingest"
	"pmagent/internal/kb"
	"pmagent/internal/observability"
	"pmagent/internal/providers"
	gittool "pmagent/internal/tools/git"
	kbtool "pmagent/internal/tools/kb"
	"pmagent/internal/tools/message"
	"pmagent/internal/tools/websearch"
	"pmagent/internal/worker"
)

func runServe(ctx context.Context, configPath, mode string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(mode); err != nil {
		return err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mention filtering needs the bot's own user ID; discover it when the
	// config does not pin one.
	if mode == "socket" && cfg.Slack.BotUserID == "" {
		auth, err := slackapi.New(cfg.Slack.BotToken).AuthTestContext(ctx)
		if err != nil {
			return fmt.Errorf("slack auth test: %w", err)
		}
		cfg.Slack.BotUserID = auth.UserID
	}

	pipeline := ingest.NewPipeline(ingest.Options{
		ChannelID:      cfg.Slack.ChannelID,
		BotUserID:      cfg.Slack.BotUserID,
		RequireMention: mode == "socket",
		DedupSize:      cfg.Ingest.DedupSize,
		QueueSize:      cfg.Ingest.QueueSize,
		Logger:         logger,
	})

	source, out, err := buildTransport(cfg, mode, pipeline, logger)
	if err != nil {
		return err
	}

	store := kb.NewStore(cfg.KB.Root)
	registry, err := buildRegistry(store, out, cfg)
	if err != nil {
		return err
	}

	backend := providers.NewAnthropicBackend(
		cfg.Anthropic.APIKey,
		providers.WithBaseURL(cfg.Anthropic.BaseURL),
	)
	client := providers.NewClient(backend, cfg.Anthropic.Models,
		providers.WithAttempts(cfg.Agent.RetryAttempts),
		providers.WithTimeout(cfg.Agent.CallTimeout),
		providers.WithBackoffPolicy(backoff.Policy{Base: cfg.Agent.RetryBaseDelay}),
		providers.WithLogger(logger),
	)

	runner := agent.NewRunner(client, registry,
		agent.WithSystemPrompt(cfg.Anthropic.SystemPrompt),
		agent.WithMaxRounds(cfg.Agent.MaxRounds),
		agent.WithMaxTokens(cfg.Anthropic.MaxTokens),
		agent.WithLogger(logger),
	)
	w := worker.New(pipeline, runner, out, worker.Config{
		Timeout: cfg.Agent.RequestTimeout,
		Logger:  logger,
	})

	logger.Info("pmagent starting",
		"mode", mode,
		"channel", cfg.Slack.ChannelID,
		"models", cfg.Anthropic.Models)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	go func() { errCh <- source.Run(runCtx) }()
	go func() { errCh <- w.Run(runCtx) }()
	if cfg.Metrics.Enabled {
		go func() { errCh <- observability.ServeMetrics(runCtx, cfg.Metrics.Addr, logger) }()
	}

	err = <-errCh
	cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("pmagent stopped")
	return nil
}

// buildTransport wires the inbound source and outbound sender for the
// selected ingest mode.
func buildTransport(cfg *config.Config, mode string, pipeline *ingest.Pipeline, logger *slog.Logger) (channels.Source, channels.Outbound, error) {
	switch mode {
	case "socket":
		adapter := slackchan.NewAdapter(cfg.Slack.BotToken, cfg.Slack.AppToken, pipeline, logger)
		return adapter, slackchan.NewSender(adapter.Client()), nil

	case "poll":
		api := slackapi.New(cfg.Slack.BotToken)
		poller := slackchan.NewPoller(api, pipeline, slackchan.PollerConfig{
			ChannelID: cfg.Slack.ChannelID,
			Interval:  cfg.Ingest.PollInterval,
			PageSize:  cfg.Ingest.PageSize,
			Logger:    logger,
		})
		return poller, slackchan.NewSender(api), nil

	default:
		return nil, nil, fmt.Errorf("unknown mode %q, expected socket or poll", mode)
	}
}

func buildRegistry(store *kb.Store, out channels.Outbound, cfg *config.Config) (*agent.ToolRegistry, error) {
	registry := agent.NewToolRegistry()
	tools := []agent.Tool{
		kbtool.NewReadTool(store),
		kbtool.NewWriteTool(store),
		gittool.NewPushTool(store.Root(), cfg.KB.Branch, nil),
		message.NewNotifyTool(out, cfg.Slack.ChannelID),
		message.NewSendFileTool(out, store, cfg.Slack.ChannelID),
		websearch.NewSearchTool(),
	}
	for _, tool := range tools {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
