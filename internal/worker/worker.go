// Package worker runs the single consumer that drains the ingest queue
// through the agent and delivers answers back to the chat.
package worker

import (
	"context"
	"log/slog"
	"time"

	"pmagent/internal/channels"
	"pmagent/internal/ingest"
	"pmagent/internal/observability"
)

// Agent produces an answer for one user request.
type Agent interface {
	Run(ctx context.Context, text string) (string, error)
}

// Worker consumes work items one at a time. Requests are therefore
// processed strictly in queue order.
type Worker struct {
	pipeline *ingest.Pipeline
	agent    Agent
	out      channels.Outbound
	timeout  time.Duration
	logger   *slog.Logger
}

// Config configures a Worker.
type Config struct {
	// Timeout bounds the processing of a single work item.
	Timeout time.Duration
	Logger  *slog.Logger
}

// New creates a worker over the given pipeline, agent, and outbound sender.
func New(pipeline *ingest.Pipeline, ag Agent, out channels.Outbound, cfg Config) *Worker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		pipeline: pipeline,
		agent:    ag,
		out:      out,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run consumes work items until the context is cancelled. A failed item is
// logged and never stops the worker.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-w.pipeline.Items():
			if !ok {
				return nil
			}
			w.process(ctx, item)
		}
	}
}

func (w *Worker) process(ctx context.Context, item ingest.WorkItem) {
	start := time.Now()
	observability.QueueDepth.Set(float64(len(w.pipeline.Items())))

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	answer, err := w.agent.Run(runCtx, item.Text)
	if err != nil {
		observability.WorkItems.WithLabelValues("failed").Inc()
		w.logger.Error("work item failed",
			"message_id", item.MessageID,
			"error", err,
			"duration", time.Since(start))
		return
	}

	if err := w.deliver(runCtx, item, answer); err != nil {
		observability.WorkItems.WithLabelValues("failed").Inc()
		w.logger.Error("answer delivery failed",
			"message_id", item.MessageID,
			"error", err)
		return
	}

	observability.WorkItems.WithLabelValues("answered").Inc()
	observability.WorkItemDuration.Observe(time.Since(start).Seconds())
	w.logger.Info("work item answered",
		"message_id", item.MessageID,
		"answer_len", len(answer),
		"duration", time.Since(start))
}

// deliver replies in the originating thread when the item carries a message
// timestamp, and posts to the channel otherwise.
func (w *Worker) deliver(ctx context.Context, item ingest.WorkItem, answer string) error {
	if item.MessageID != "" {
		return w.out.Reply(ctx, item.ChannelID, item.MessageID, answer)
	}
	return w.out.Post(ctx, item.ChannelID, answer)
}
