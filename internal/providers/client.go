package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pmagent/internal/agent"
	"pmagent/internal/backoff"
	"pmagent/internal/observability"
)

// Backend performs a single completion attempt against one model.
type Backend interface {
	Complete(ctx context.Context, model string, req *agent.CompletionRequest) (agent.Completion, error)
}

// Client walks an ordered list of models, retrying transient failures on
// each model before falling back to the next. It implements agent.Completer.
type Client struct {
	backend  Backend
	models   []string
	attempts int
	timeout  time.Duration
	policy   backoff.Policy
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAttempts sets the per-model retry budget.
func WithAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithTimeout bounds each individual completion attempt. An attempt that
// hits the deadline is classified transient and retried like a 5xx.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBackoffPolicy sets the delay policy between retries.
func WithBackoffPolicy(p backoff.Policy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// WithLogger sets the structured logger for attempt progress.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client over the given backend and ordered model list.
func NewClient(backend Backend, models []string, opts ...ClientOption) *Client {
	c := &Client{
		backend:  backend,
		models:   models,
		attempts: 3,
		policy:   backoff.DefaultPolicy(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete tries each model in order. Transient and overloaded failures are
// retried on the same model with linear backoff; other failures skip to the
// next model immediately. When every model is exhausted the returned error
// wraps ErrExhausted and the last attempt's cause.
func (c *Client) Complete(ctx context.Context, req *agent.CompletionRequest) (agent.Completion, error) {
	var lastErr error

	for _, model := range c.models {
		for attempt := 1; attempt <= c.attempts; attempt++ {
			completion, err := c.attemptOnce(ctx, model, req)
			if err == nil {
				observability.LLMAttempts.WithLabelValues(model, "ok").Inc()
				return completion, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err

			class := Classify(err)
			observability.LLMAttempts.WithLabelValues(model, class.String()).Inc()
			c.logger.Warn("completion attempt failed",
				"model", model,
				"attempt", attempt,
				"class", class.String(),
				"error", err)

			if class == ClassOther {
				break
			}
			if attempt < c.attempts {
				if err := c.policy.Sleep(ctx, attempt); err != nil {
					return nil, err
				}
			}
		}
	}

	if lastErr == nil {
		return nil, ErrExhausted
	}
	return nil, fmt.Errorf("%w: %w", ErrExhausted, lastErr)
}

func (c *Client) attemptOnce(ctx context.Context, model string, req *agent.CompletionRequest) (agent.Completion, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.backend.Complete(ctx, model, req)
}
