package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"pmagent/internal/agent"
)

// newMessageServer serves a canned Messages API response.
func newMessageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicBackendComplete(t *testing.T) {
	req := &agent.CompletionRequest{
		Messages: []agent.Message{{Role: "user", Text: "hi"}},
	}

	t.Run("end turn is a final answer", func(t *testing.T) {
		srv := newMessageServer(t, `{
			"id": "msg_1", "type": "message", "role": "assistant",
			"model": "claude-sonnet-4-6",
			"content": [
				{"type": "text", "text": "first"},
				{"type": "text", "text": "second"}
			],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`)
		b := NewAnthropicBackend("sk-test", WithBaseURL(srv.URL))

		got, err := b.Complete(context.Background(), "claude-sonnet-4-6", req)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		final, ok := got.(agent.FinalAnswer)
		if !ok {
			t.Fatalf("completion = %T", got)
		}
		if final.Text() != "first\nsecond" {
			t.Errorf("text = %q", final.Text())
		}
	})

	t.Run("tool use is a tool call batch", func(t *testing.T) {
		srv := newMessageServer(t, `{
			"id": "msg_2", "type": "message", "role": "assistant",
			"model": "claude-sonnet-4-6",
			"content": [
				{"type": "text", "text": "let me check"},
				{"type": "tool_use", "id": "call_1", "name": "read_knowledge_base", "input": {"section": "advertising"}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`)
		b := NewAnthropicBackend("sk-test", WithBaseURL(srv.URL))

		got, err := b.Complete(context.Background(), "claude-sonnet-4-6", req)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		batch, ok := got.(agent.ToolCallBatch)
		if !ok {
			t.Fatalf("completion = %T", got)
		}
		if batch.Text != "let me check" {
			t.Errorf("text = %q", batch.Text)
		}
		if len(batch.Calls) != 1 {
			t.Fatalf("calls = %+v", batch.Calls)
		}
		call := batch.Calls[0]
		if call.ID != "call_1" || call.Name != "read_knowledge_base" {
			t.Errorf("call = %+v", call)
		}
	})

	t.Run("max tokens stop is not a final answer", func(t *testing.T) {
		srv := newMessageServer(t, `{
			"id": "msg_3", "type": "message", "role": "assistant",
			"model": "claude-sonnet-4-6",
			"content": [{"type": "text", "text": "truncated partial answ"}],
			"stop_reason": "max_tokens",
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`)
		b := NewAnthropicBackend("sk-test", WithBaseURL(srv.URL))

		got, err := b.Complete(context.Background(), "claude-sonnet-4-6", req)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		incomplete, ok := got.(agent.IncompleteAnswer)
		if !ok {
			t.Fatalf("completion = %T, want IncompleteAnswer", got)
		}
		if incomplete.StopReason != "max_tokens" {
			t.Errorf("stop reason = %q", incomplete.StopReason)
		}
	})
}
