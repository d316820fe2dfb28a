package slack

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slack-go/slack"

	"pmagent/internal/ingest"
)

// Poller is a pull-mode source that periodically reads channel history and
// feeds new messages into the ingest pipeline. It exists for environments
// where Socket Mode is unavailable.
type Poller struct {
	api       APIClient
	pipeline  *ingest.Pipeline
	channelID string
	interval  time.Duration
	pageSize  int
	logger    *slog.Logger
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	ChannelID string
	Interval  time.Duration
	PageSize  int
	Logger    *slog.Logger
}

// NewPoller creates a history poller over the given API client.
func NewPoller(api APIClient, pipeline *ingest.Pipeline, cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		api:       api,
		pipeline:  pipeline,
		channelID: cfg.ChannelID,
		interval:  interval,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// Run seeds the dedup cache with existing history, then polls the channel
// until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.seed(ctx); err != nil {
		return fmt.Errorf("seed history: %w", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.pollOnce(ctx); err != nil {
				p.logger.Warn("history poll failed", "error", err)
			}
		}
	}
}

// seed marks the most recent page of history as seen so messages sent
// before startup are never reprocessed.
func (p *Poller) seed(ctx context.Context) error {
	resp, err := p.fetchHistory(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Timestamp)
	}
	p.pipeline.Seed(ids)
	p.logger.Info("history seeded", "messages", len(ids))
	return nil
}

// pollOnce offers the latest history page to the pipeline, oldest first so
// queue order matches arrival order.
func (p *Poller) pollOnce(ctx context.Context) error {
	resp, err := p.fetchHistory(ctx)
	if err != nil {
		return err
	}
	for i := len(resp.Messages) - 1; i >= 0; i-- {
		msg := resp.Messages[i]
		if msg.BotID != "" || msg.SubType != "" {
			continue
		}
		normalized, mentions := NormalizeText(msg.Text)
		p.pipeline.Offer(ingest.Event{
			MessageID: msg.Timestamp,
			ChannelID: p.channelID,
			SenderID:  msg.User,
			Text:      normalized,
			Mentions:  mentions,
		})
	}
	return nil
}

func (p *Poller) fetchHistory(ctx context.Context) (*slack.GetConversationHistoryResponse, error) {
	return p.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: p.channelID,
		Limit:     p.pageSize,
	})
}
