// Package agent implements the multi-turn tool-calling conversation loop.
package agent

import (
	"context"
	"encoding/json"
)

// Tool defines the interface that all agent tools must implement.
type Tool interface {
	// Name returns the unique tool identifier presented to the model.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// Schema returns the JSON schema for the tool's input parameters.
	Schema() json.RawMessage

	// Execute runs the tool with the given JSON input.
	Execute(ctx context.Context, input json.RawMessage) (*ToolResult, error)
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult is the outcome of executing a tool call.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id,omitempty"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// Message is one turn in the conversation transcript.
// A user turn carries Text or ToolResults; an assistant turn carries
// Text and possibly ToolCalls.
type Message struct {
	Role        string       `json:"role"`
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// Completion is the outcome of a single model turn: a FinalAnswer, a
// ToolCallBatch, or an IncompleteAnswer when the model stopped for any
// other reason.
type Completion interface {
	isCompletion()
}

// FinalAnswer is a completion where the model finished responding.
// Segments holds the individual text blocks of the response.
type FinalAnswer struct {
	Segments []string
}

func (FinalAnswer) isCompletion() {}

// Text joins the answer segments with newlines.
func (a FinalAnswer) Text() string {
	out := ""
	for i, s := range a.Segments {
		if i > 0 {
			out += "\n"
		}
		out += s
	}
	return out
}

// ToolCallBatch is a completion where the model requested tool executions.
// Text holds any commentary the model emitted alongside the calls.
type ToolCallBatch struct {
	Text  string
	Calls []ToolCall
}

func (ToolCallBatch) isCompletion() {}

// IncompleteAnswer is a completion cut short before a final answer, such
// as a max_tokens stop. Its partial text is never shown to the user.
type IncompleteAnswer struct {
	StopReason string
}

func (IncompleteAnswer) isCompletion() {}

// CompletionRequest contains all parameters for a model completion turn.
type CompletionRequest struct {
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Tools     []Tool    `json:"-"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// Completer produces one model turn for a conversation. Implementations
// own model selection and retry behavior.
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (Completion, error)
}
