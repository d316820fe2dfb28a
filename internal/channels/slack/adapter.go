// Package slack adapts the Slack platform to the channels interfaces, with
// a Socket Mode push source, a history poller, and an outbound sender.
package slack

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"pmagent/internal/ingest"
)

// Adapter is a push-mode source that receives events over Socket Mode and
// feeds them into the ingest pipeline.
type Adapter struct {
	client   *slack.Client
	socket   *socketmode.Client
	pipeline *ingest.Pipeline
	logger   *slog.Logger
}

// NewAdapter creates a Socket Mode adapter. The app token must be an
// xapp- token with connections:write scope.
func NewAdapter(botToken, appToken string, pipeline *ingest.Pipeline, logger *slog.Logger) *Adapter {
	client := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
	)
	return &Adapter{
		client:   client,
		socket:   socketmode.New(client),
		pipeline: pipeline,
		logger:   logger,
	}
}

// Client returns the underlying API client, shared with the outbound sender.
func (a *Adapter) Client() *slack.Client {
	return a.client
}

// Run connects to Socket Mode and processes events until the context is
// cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	go a.handleEvents(ctx)
	return a.socket.RunContext(ctx)
}

func (a *Adapter) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-a.socket.Events:
			if !ok {
				return
			}
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				a.logger.Debug("connecting to socket mode")
			case socketmode.EventTypeConnected:
				a.logger.Info("connected to socket mode")
			case socketmode.EventTypeConnectionError:
				a.logger.Warn("socket mode connection error", "data", evt.Data)
			case socketmode.EventTypeEventsAPI:
				a.handleEventsAPI(evt)
			}
		}
	}
}

func (a *Adapter) handleEventsAPI(evt socketmode.Event) {
	apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		a.logger.Warn("unexpected event payload", "data", evt.Data)
		if evt.Request != nil {
			a.socket.Ack(*evt.Request)
		}
		return
	}
	if evt.Request != nil {
		a.socket.Ack(*evt.Request)
	}

	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}

	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		a.offer(ev.Channel, ev.TimeStamp, ev.User, ev.Text)
	case *slackevents.MessageEvent:
		if ev.BotID != "" || ev.SubType != "" {
			return
		}
		a.offer(ev.Channel, ev.TimeStamp, ev.User, ev.Text)
	}
}

func (a *Adapter) offer(channel, ts, user, text string) {
	normalized, mentions := NormalizeText(text)
	a.pipeline.Offer(ingest.Event{
		MessageID: ts,
		ChannelID: channel,
		SenderID:  user,
		Text:      normalized,
		Mentions:  mentions,
	})
}
