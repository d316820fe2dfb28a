package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pmagent/internal/agent"
	"pmagent/internal/kb"
)

// WriteTool appends pain point cards to the submitter's member file.
type WriteTool struct {
	store *kb.Store
}

// NewWriteTool creates the add_pain_point tool over the given store.
func NewWriteTool(store *kb.Store) *WriteTool {
	return &WriteTool{store: store}
}

func (t *WriteTool) Name() string { return "add_pain_point" }

func (t *WriteTool) Description() string {
	return "Record a new pain point card in the knowledge base. " +
		"Call git_push afterwards to publish the change."
}

func (t *WriteTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"section":          {"type": "string", "description": "Function area: ` + strings.Join(kb.Sections(), "/") + `"},
			"title":            {"type": "string", "description": "One-line pain point title"},
			"scenario":         {"type": "string", "description": "When and where the pain occurs"},
			"current_approach": {"type": "string", "description": "How it is handled today (optional)"},
			"problem":          {"type": "string", "description": "What goes wrong"},
			"loss":             {"type": "string", "description": "Quantified loss in time or money (optional)"},
			"expected":         {"type": "string", "description": "Desired outcome"},
			"platform":         {"type": "string", "description": "Platform: amazon/tiktok/temu/standalone/general"},
			"submitter":        {"type": "string", "description": "Submitter's name"}
		},
		"required": ["section", "title", "scenario", "problem", "expected", "platform", "submitter"]
	}`)
}

func (t *WriteTool) Execute(_ context.Context, input json.RawMessage) (*agent.ToolResult, error) {
	var params struct {
		Section         string `json:"section"`
		Title           string `json:"title"`
		Scenario        string `json:"scenario"`
		CurrentApproach string `json:"current_approach"`
		Problem         string `json:"problem"`
		Loss            string `json:"loss"`
		Expected        string `json:"expected"`
		Platform        string `json:"platform"`
		Submitter       string `json:"submitter"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, err
	}

	number, err := t.store.AddPainPoint(kb.PainPoint{
		Section:         params.Section,
		Title:           params.Title,
		Scenario:        params.Scenario,
		CurrentApproach: params.CurrentApproach,
		Problem:         params.Problem,
		Loss:            params.Loss,
		Expected:        params.Expected,
		Platform:        params.Platform,
		Submitter:       params.Submitter,
	})
	if err != nil {
		return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
	}

	return &agent.ToolResult{
		Content: fmt.Sprintf("Pain point %q recorded in %s.md (card %d).",
			params.Title, params.Submitter, number),
	}, nil
}
