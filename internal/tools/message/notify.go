// Package message exposes outbound chat operations as tools.
package message

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"pmagent/internal/agent"
	"pmagent/internal/channels"
	"pmagent/internal/kb"
)

// NotifyTool posts a standalone notification to the team channel.
type NotifyTool struct {
	out       channels.Outbound
	channelID string
}

// NewNotifyTool creates the send_notification tool targeting the given
// channel.
func NewNotifyTool(out channels.Outbound, channelID string) *NotifyTool {
	return &NotifyTool{out: out, channelID: channelID}
}

func (t *NotifyTool) Name() string { return "send_notification" }

func (t *NotifyTool) Description() string {
	return "Send a notification message to the team channel."
}

func (t *NotifyTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"text": {"type": "string", "description": "Message content"}
		},
		"required": ["text"]
	}`)
}

func (t *NotifyTool) Execute(ctx context.Context, input json.RawMessage) (*agent.ToolResult, error) {
	var params struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, err
	}
	if err := t.out.Post(ctx, t.channelID, params.Text); err != nil {
		return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
	}
	return &agent.ToolResult{Content: "Notification sent to the team channel."}, nil
}

// SendFileTool uploads a knowledge base file to the team channel.
type SendFileTool struct {
	out       channels.Outbound
	store     *kb.Store
	channelID string
}

// NewSendFileTool creates the send_file tool over the given store and
// channel.
func NewSendFileTool(out channels.Outbound, store *kb.Store, channelID string) *SendFileTool {
	return &SendFileTool{out: out, store: store, channelID: channelID}
}

func (t *SendFileTool) Name() string { return "send_file" }

func (t *SendFileTool) Description() string {
	return "Send a knowledge base file to the team channel. " +
		"file_path is relative to the knowledge base root, " +
		"e.g. \"pain_points/members/alice.md\" or \"pain_points/matrix.md\". " +
		"A bare member name also works."
}

func (t *SendFileTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_path": {
				"type": "string",
				"description": "Path relative to the knowledge base root, or a member name"
			}
		},
		"required": ["file_path"]
	}`)
}

func (t *SendFileTool) Execute(ctx context.Context, input json.RawMessage) (*agent.ToolResult, error) {
	var params struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, err
	}

	path, err := t.store.ResolveFile(params.FilePath)
	if err != nil {
		return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
	}
	if err := t.out.UploadFile(ctx, t.channelID, path); err != nil {
		return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
	}
	return &agent.ToolResult{
		Content: fmt.Sprintf("File %q sent to the team channel.", filepath.Base(path)),
	}, nil
}
