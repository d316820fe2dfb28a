package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"pmagent/internal/agent"
)

const defaultMaxTokens = 4096

// AnthropicBackend performs non-streaming completions against the Anthropic
// Messages API.
type AnthropicBackend struct {
	client anthropic.Client
}

// AnthropicOption configures the backend.
type AnthropicOption func(*[]option.RequestOption)

// WithBaseURL points the backend at a non-default API endpoint.
func WithBaseURL(baseURL string) AnthropicOption {
	return func(opts *[]option.RequestOption) {
		if baseURL != "" {
			*opts = append(*opts, option.WithBaseURL(baseURL))
		}
	}
}

// NewAnthropicBackend creates a backend authenticated with the given API key.
func NewAnthropicBackend(apiKey string, opts ...AnthropicOption) *AnthropicBackend {
	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(&options)
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(options...),
	}
}

// Complete sends one completion request to the given model and interprets
// the response as either a final answer or a tool call batch.
func (b *AnthropicBackend) Complete(ctx context.Context, model string, req *agent.CompletionRequest) (agent.Completion, error) {
	params, err := b.buildParams(model, req)
	if err != nil {
		return nil, err
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapAPIError(model, err)
	}

	var texts []string
	var calls []agent.ToolCall
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			texts = append(texts, v.Text)
		case anthropic.ToolUseBlock:
			calls = append(calls, agent.ToolCall{
				ID:    v.ID,
				Name:  v.Name,
				Input: json.RawMessage(v.Input),
			})
		}
	}

	switch {
	case msg.StopReason == anthropic.StopReasonToolUse || len(calls) > 0:
		return agent.ToolCallBatch{
			Text:  strings.Join(texts, "\n"),
			Calls: calls,
		}, nil
	case msg.StopReason == anthropic.StopReasonEndTurn:
		return agent.FinalAnswer{Segments: texts}, nil
	default:
		// max_tokens, stop_sequence and the like never reach the user
		// as a truncated answer.
		return agent.IncompleteAnswer{StopReason: string(msg.StopReason)}, nil
	}
}

func (b *AnthropicBackend) buildParams(model string, req *agent.CompletionRequest) (anthropic.MessageNewParams, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	messages, err := convertMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		params.Tools = tools
	}

	return params, nil
}

func convertMessages(messages []agent.Message) ([]anthropic.MessageParam, error) {
	var result []anthropic.MessageParam

	for _, msg := range messages {
		var content []anthropic.ContentBlockParamUnion

		if msg.Text != "" {
			content = append(content, anthropic.NewTextBlock(msg.Text))
		}
		for _, res := range msg.ToolResults {
			content = append(content, anthropic.NewToolResultBlock(
				res.ToolCallID,
				res.Content,
				res.IsError,
			))
		}
		for _, call := range msg.ToolCalls {
			var input map[string]any
			if err := json.Unmarshal(call.Input, &input); err != nil {
				return nil, fmt.Errorf("invalid tool call input for %s: %w", call.Name, err)
			}
			content = append(content, anthropic.NewToolUseBlock(call.ID, input, call.Name))
		}

		if len(content) == 0 {
			continue
		}
		if msg.Role == "assistant" {
			result = append(result, anthropic.NewAssistantMessage(content...))
		} else {
			result = append(result, anthropic.NewUserMessage(content...))
		}
	}

	return result, nil
}

func convertTools(tools []agent.Tool) ([]anthropic.ToolUnionParam, error) {
	var result []anthropic.ToolUnionParam

	for _, tool := range tools {
		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(tool.Schema(), &schema); err != nil {
			return nil, fmt.Errorf("invalid tool schema for %s: %w", tool.Name(), err)
		}

		toolParam := anthropic.ToolUnionParamOfTool(schema, tool.Name())
		if toolParam.OfTool == nil {
			return nil, fmt.Errorf("invalid tool schema for %s: missing tool definition", tool.Name())
		}
		toolParam.OfTool.Description = anthropic.String(tool.Description())

		result = append(result, toolParam)
	}

	return result, nil
}

func wrapAPIError(model string, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Model:      model,
			StatusCode: apiErr.StatusCode,
			Cause:      err,
		}
	}
	return &ProviderError{Model: model, Cause: err}
}
