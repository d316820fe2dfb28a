// Package git exposes publishing the knowledge base repository as a tool.
package git

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"pmagent/internal/agent"
)

// Runner executes one git command in a directory and returns its combined
// output. It exists so tests can run without a real repository.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// ExecRunner runs git via os/exec.
func ExecRunner(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// PushTool commits and pushes the knowledge base repository.
type PushTool struct {
	dir    string
	branch string
	run    Runner
}

// NewPushTool creates the git_push tool for the given repository directory
// and branch.
func NewPushTool(dir, branch string, run Runner) *PushTool {
	if run == nil {
		run = ExecRunner
	}
	if branch == "" {
		branch = "main"
	}
	return &PushTool{dir: dir, branch: branch, run: run}
}

func (t *PushTool) Name() string { return "git_push" }

func (t *PushTool) Description() string {
	return "Commit knowledge base changes and push them to the remote. " +
		"Call this after add_pain_point."
}

func (t *PushTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"commit_message": {
				"type": "string",
				"description": "Commit message, e.g. \"feat: add advertising pain point from alice\""
			}
		},
		"required": ["commit_message"]
	}`)
}

func (t *PushTool) Execute(ctx context.Context, input json.RawMessage) (*agent.ToolResult, error) {
	var params struct {
		CommitMessage string `json:"commit_message"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, err
	}

	steps := [][]string{
		{"add", "."},
		{"commit", "-m", params.CommitMessage},
		{"push", "origin", t.branch},
	}
	for _, args := range steps {
		out, err := t.run(ctx, t.dir, args...)
		if err != nil {
			// A commit with a clean tree is not a failure.
			if args[0] == "commit" && strings.Contains(out, "nothing to commit") {
				return &agent.ToolResult{
					Content: "Nothing to commit, the knowledge base is unchanged.",
				}, nil
			}
			return &agent.ToolResult{
				Content: fmt.Sprintf("git %s failed: %v\n%s", strings.Join(args, " "), err, out),
				IsError: true,
			}, nil
		}
	}

	return &agent.ToolResult{
		Content: fmt.Sprintf("Pushed to origin/%s, commit: %s", t.branch, params.CommitMessage),
	}, nil
}
