package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type fakeTool struct {
	name    string
	schema  string
	execute func(ctx context.Context, input json.RawMessage) (*ToolResult, error)
}

func (t *fakeTool) Name() string            { return t.name }
func (t *fakeTool) Description() string     { return "fake tool for testing" }
func (t *fakeTool) Schema() json.RawMessage { return json.RawMessage(t.schema) }
func (t *fakeTool) Execute(ctx context.Context, input json.RawMessage) (*ToolResult, error) {
	return t.execute(ctx, input)
}

const echoSchema = `{
	"type": "object",
	"properties": {"msg": {"type": "string"}},
	"required": ["msg"]
}`

func newEchoTool() *fakeTool {
	return &fakeTool{
		name:   "echo",
		schema: echoSchema,
		execute: func(_ context.Context, input json.RawMessage) (*ToolResult, error) {
			var params struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(input, &params); err != nil {
				return nil, err
			}
			return &ToolResult{Content: params.Msg}, nil
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Run("valid tool", func(t *testing.T) {
		r := NewToolRegistry()
		if err := r.Register(newEchoTool()); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, ok := r.Get("echo"); !ok {
			t.Error("registered tool not found")
		}
		if len(r.Tools()) != 1 {
			t.Errorf("Tools() returned %d tools, want 1", len(r.Tools()))
		}
	})

	t.Run("empty name", func(t *testing.T) {
		r := NewToolRegistry()
		err := r.Register(&fakeTool{name: "", schema: "{}"})
		if err == nil {
			t.Error("expected error for empty tool name")
		}
	})

	t.Run("invalid schema", func(t *testing.T) {
		r := NewToolRegistry()
		err := r.Register(&fakeTool{name: "bad", schema: `{"type": 42}`})
		if err == nil {
			t.Error("expected error for invalid schema")
		}
	})
}

func TestRegistryExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		r := NewToolRegistry()
		if err := r.Register(newEchoTool()); err != nil {
			t.Fatal(err)
		}
		res := r.Execute(ctx, ToolCall{ID: "c1", Name: "echo", Input: json.RawMessage(`{"msg":"hello"}`)})
		if res.IsError {
			t.Errorf("unexpected error result: %s", res.Content)
		}
		if res.Content != "hello" {
			t.Errorf("content = %q, want %q", res.Content, "hello")
		}
		if res.ToolCallID != "c1" {
			t.Errorf("tool call id = %q, want c1", res.ToolCallID)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		r := NewToolRegistry()
		res := r.Execute(ctx, ToolCall{ID: "c2", Name: "missing"})
		if !res.IsError {
			t.Error("expected error result for unknown tool")
		}
		if !strings.Contains(res.Content, "tool not found") {
			t.Errorf("content = %q", res.Content)
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		r := NewToolRegistry()
		if err := r.Register(newEchoTool()); err != nil {
			t.Fatal(err)
		}
		res := r.Execute(ctx, ToolCall{ID: "c3", Name: "echo", Input: json.RawMessage(`{"msg": 42}`)})
		if !res.IsError {
			t.Error("expected error result for schema violation")
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		r := NewToolRegistry()
		if err := r.Register(newEchoTool()); err != nil {
			t.Fatal(err)
		}
		res := r.Execute(ctx, ToolCall{ID: "c4", Name: "echo", Input: json.RawMessage(`{}`)})
		if !res.IsError {
			t.Error("expected error result for missing required field")
		}
	})

	t.Run("tool error becomes result", func(t *testing.T) {
		r := NewToolRegistry()
		failing := &fakeTool{
			name:   "failing",
			schema: `{"type": "object"}`,
			execute: func(context.Context, json.RawMessage) (*ToolResult, error) {
				return nil, errors.New("disk on fire")
			},
		}
		if err := r.Register(failing); err != nil {
			t.Fatal(err)
		}
		res := r.Execute(ctx, ToolCall{ID: "c5", Name: "failing", Input: json.RawMessage(`{}`)})
		if !res.IsError {
			t.Error("expected error result")
		}
		if !strings.Contains(res.Content, "disk on fire") {
			t.Errorf("content = %q", res.Content)
		}
	})

	t.Run("tool panic is recovered", func(t *testing.T) {
		r := NewToolRegistry()
		panicking := &fakeTool{
			name:   "panicking",
			schema: `{"type": "object"}`,
			execute: func(context.Context, json.RawMessage) (*ToolResult, error) {
				panic("boom")
			},
		}
		if err := r.Register(panicking); err != nil {
			t.Fatal(err)
		}
		res := r.Execute(ctx, ToolCall{ID: "c6", Name: "panicking", Input: json.RawMessage(`{}`)})
		if !res.IsError {
			t.Error("expected error result for panicking tool")
		}
		if !strings.Contains(res.Content, "boom") {
			t.Errorf("content = %q", res.Content)
		}
	})

	t.Run("empty input treated as empty object", func(t *testing.T) {
		r := NewToolRegistry()
		open := &fakeTool{
			name:   "open",
			schema: `{"type": "object"}`,
			execute: func(context.Context, json.RawMessage) (*ToolResult, error) {
				return &ToolResult{Content: "ok"}, nil
			},
		}
		if err := r.Register(open); err != nil {
			t.Fatal(err)
		}
		res := r.Execute(ctx, ToolCall{ID: "c7", Name: "open"})
		if res.IsError {
			t.Errorf("unexpected error result: %s", res.Content)
		}
	})
}
