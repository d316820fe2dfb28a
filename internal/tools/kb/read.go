// Package kb exposes the knowledge base to the agent as read and write
// tools.
package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pmagent/internal/agent"
	"pmagent/internal/kb"
)

const (
	// statsSection selects the per-member pain point counts.
	statsSection = "member-stats"
	// memberPrefix selects one member's full pain point file.
	memberPrefix = "member:"
)

// ReadTool reads the pain point matrix, member statistics, or a single
// member's pain point file.
type ReadTool struct {
	store *kb.Store
}

// NewReadTool creates the read_knowledge_base tool over the given store.
func NewReadTool(store *kb.Store) *ReadTool {
	return &ReadTool{store: store}
}

func (t *ReadTool) Name() string { return "read_knowledge_base" }

func (t *ReadTool) Description() string {
	return "Read the e-commerce knowledge base. Modes: " +
		"leave section empty for the pain point matrix overview; " +
		"section='member-stats' for per-member pain point counts; " +
		"section='member:<name>' for one member's full pain point file; " +
		"a section name (" + strings.Join(kb.Sections(), "/") + ") for that matrix chapter."
}

func (t *ReadTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"section": {
				"type": "string",
				"description": "Section to read. Empty returns the matrix overview capped at 3000 characters."
			}
		},
		"required": []
	}`)
}

func (t *ReadTool) Execute(_ context.Context, input json.RawMessage) (*agent.ToolResult, error) {
	var params struct {
		Section string `json:"section"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, err
	}
	section := strings.TrimSpace(params.Section)

	switch {
	case section == statsSection:
		stats, err := t.store.MemberStats()
		if err != nil {
			return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
		}
		return &agent.ToolResult{Content: formatStats(stats)}, nil

	case strings.HasPrefix(section, memberPrefix):
		name := strings.TrimSpace(strings.TrimPrefix(section, memberPrefix))
		content, err := t.store.ReadMember(name)
		if err != nil {
			return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
		}
		return &agent.ToolResult{Content: content}, nil

	case section == "":
		content, err := t.store.ReadOverview()
		if err != nil {
			return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
		}
		return &agent.ToolResult{Content: content}, nil

	default:
		content, err := t.store.ReadSection(section)
		if err != nil {
			return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
		}
		return &agent.ToolResult{Content: content}, nil
	}
}

func formatStats(stats []kb.MemberStat) string {
	var b strings.Builder
	b.WriteString("## Member pain point counts\n\n")
	total := 0
	for _, s := range stats {
		fmt.Fprintf(&b, "- %s: %d\n", s.Name, s.Count)
		total += s.Count
	}
	fmt.Fprintf(&b, "\n**Total: %d members, %d pain points**", len(stats), total)
	return b.String()
}
