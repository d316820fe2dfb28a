// Package ingest filters, deduplicates, and queues inbound chat events for
// the worker.
package ingest

import (
	"log/slog"
	"regexp"
	"strings"

	"pmagent/internal/cache"
	"pmagent/internal/observability"
)

// mentionPattern matches @-mentions, which are stripped from the text
// before it reaches the agent.
var mentionPattern = regexp.MustCompile(`@\S+`)

// Event is a normalized inbound chat message.
type Event struct {
	MessageID string
	ChannelID string
	SenderID  string
	Text      string
	// Mentions holds the user IDs mentioned in the message.
	Mentions []string
}

// WorkItem is one accepted request waiting for the worker.
type WorkItem struct {
	ChannelID string
	MessageID string
	Text      string
}

// Pipeline applies the ingest rules to inbound events and feeds accepted
// work into a bounded queue consumed by a single worker.
type Pipeline struct {
	channelID      string
	botUserID      string
	requireMention bool
	seen           *cache.RecencyCache
	queue          chan WorkItem
	logger         *slog.Logger
}

// Options configures a Pipeline.
type Options struct {
	// ChannelID is the only channel whose messages are processed.
	ChannelID string
	// BotUserID identifies the bot itself; its own messages are ignored
	// and, when RequireMention is set, it must appear in the mentions.
	BotUserID string
	// RequireMention gates processing on the bot being @-mentioned.
	RequireMention bool
	// DedupSize bounds the recently-seen message ID cache.
	DedupSize int
	// QueueSize bounds the work queue.
	QueueSize int
	Logger    *slog.Logger
}

// NewPipeline creates a pipeline with the given options.
func NewPipeline(opts Options) *Pipeline {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		channelID:      opts.ChannelID,
		botUserID:      opts.BotUserID,
		requireMention: opts.RequireMention,
		seen:           cache.NewRecencyCache(opts.DedupSize),
		queue:          make(chan WorkItem, queueSize),
		logger:         logger,
	}
}

// Offer runs one event through the ingest rules. It returns true when the
// event was queued for processing. Offer never blocks: when the queue is
// full the event is dropped and logged.
func (p *Pipeline) Offer(ev Event) bool {
	// The message ID is recorded even when a later rule discards the
	// event, so a redelivery of a filtered message stays filtered.
	if p.seen.Check(ev.MessageID) {
		observability.MessagesReceived.WithLabelValues("duplicate").Inc()
		p.logger.Debug("duplicate message ignored", "message_id", ev.MessageID)
		return false
	}
	if ev.ChannelID != p.channelID {
		observability.MessagesReceived.WithLabelValues("filtered").Inc()
		return false
	}
	if ev.SenderID != "" && ev.SenderID == p.botUserID {
		observability.MessagesReceived.WithLabelValues("filtered").Inc()
		return false
	}
	if p.requireMention && !mentioned(ev.Mentions, p.botUserID) {
		observability.MessagesReceived.WithLabelValues("filtered").Inc()
		return false
	}

	text := StripMentions(ev.Text)
	if text == "" {
		observability.MessagesReceived.WithLabelValues("filtered").Inc()
		return false
	}

	item := WorkItem{
		ChannelID: ev.ChannelID,
		MessageID: ev.MessageID,
		Text:      text,
	}
	select {
	case p.queue <- item:
		observability.MessagesReceived.WithLabelValues("accepted").Inc()
		observability.QueueDepth.Set(float64(len(p.queue)))
		p.logger.Info("message queued",
			"message_id", ev.MessageID,
			"sender_id", ev.SenderID,
			"queue_len", len(p.queue))
		return true
	default:
		observability.MessagesReceived.WithLabelValues("dropped").Inc()
		p.logger.Warn("work queue full, message dropped", "message_id", ev.MessageID)
		return false
	}
}

// Items returns the channel the worker consumes accepted work from.
func (p *Pipeline) Items() <-chan WorkItem {
	return p.queue
}

// Seed marks message IDs as already seen without queueing them. It is used
// at startup to avoid reprocessing channel history.
func (p *Pipeline) Seed(messageIDs []string) {
	for _, id := range messageIDs {
		p.seen.Record(id)
	}
}

// StripMentions removes @-mentions from the text and trims whitespace.
func StripMentions(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

func mentioned(mentions []string, botUserID string) bool {
	for _, m := range mentions {
		if m == botUserID {
			return true
		}
	}
	return false
}
