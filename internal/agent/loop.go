package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultMaxRounds bounds the number of model turns in one conversation.
	DefaultMaxRounds = 10

	// emptyAnswerPlaceholder stands in for a final answer with no text.
	emptyAnswerPlaceholder = "completed"

	// exhaustedPlaceholder is returned when the round budget runs out
	// before the model produces a final answer.
	exhaustedPlaceholder = "processing complete"
)

// Runner drives the multi-turn conversation between the model and the
// registered tools until the model produces a final answer or the round
// budget is exhausted.
type Runner struct {
	completer Completer
	registry  *ToolRegistry
	system    string
	maxRounds int
	maxTokens int
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSystemPrompt sets the system prompt sent on every model turn.
func WithSystemPrompt(system string) RunnerOption {
	return func(r *Runner) { r.system = system }
}

// WithMaxRounds overrides the conversation round budget.
func WithMaxRounds(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxRounds = n
		}
	}
}

// WithMaxTokens sets the per-turn completion token limit.
func WithMaxTokens(n int) RunnerOption {
	return func(r *Runner) { r.maxTokens = n }
}

// WithLogger sets the structured logger used for loop progress.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a conversation runner backed by the given completer
// and tool registry.
func NewRunner(completer Completer, registry *ToolRegistry, opts ...RunnerOption) *Runner {
	r := &Runner{
		completer: completer,
		registry:  registry,
		maxRounds: DefaultMaxRounds,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes one user request through the conversation loop and returns
// the model's final answer text. Tool failures are fed back to the model as
// error results and never abort the loop; only provider exhaustion or
// context cancellation surface as errors.
func (r *Runner) Run(ctx context.Context, userText string) (string, error) {
	messages := []Message{{Role: "user", Text: userText}}

	for round := 1; round <= r.maxRounds; round++ {
		completion, err := r.completer.Complete(ctx, &CompletionRequest{
			System:    r.system,
			Messages:  messages,
			Tools:     r.registry.Tools(),
			MaxTokens: r.maxTokens,
		})
		if err != nil {
			return "", err
		}

		switch c := completion.(type) {
		case FinalAnswer:
			text := c.Text()
			if strings.TrimSpace(text) == "" {
				text = emptyAnswerPlaceholder
			}
			r.logger.Info("conversation finished",
				"rounds", round,
				"answer_len", len(text))
			return text, nil

		case ToolCallBatch:
			if len(c.Calls) == 0 {
				r.logger.Warn("model requested tools but sent no calls", "round", round)
				return exhaustedPlaceholder, nil
			}
			messages = append(messages, Message{
				Role:      "assistant",
				Text:      c.Text,
				ToolCalls: c.Calls,
			})
			results := make([]ToolResult, 0, len(c.Calls))
			for _, call := range c.Calls {
				start := time.Now()
				res := r.registry.Execute(ctx, call)
				r.logger.Info("tool executed",
					"tool", call.Name,
					"round", round,
					"is_error", res.IsError,
					"duration", time.Since(start))
				results = append(results, *res)
			}
			messages = append(messages, Message{
				Role:        "user",
				ToolResults: results,
			})

		case IncompleteAnswer:
			r.logger.Warn("model stopped without finishing",
				"round", round,
				"stop_reason", c.StopReason)
			return exhaustedPlaceholder, nil

		default:
			r.logger.Warn("unrecognized completion shape", "round", round)
			return exhaustedPlaceholder, nil
		}
	}

	r.logger.Warn("round budget exhausted", "max_rounds", r.maxRounds)
	return exhaustedPlaceholder, nil
}
