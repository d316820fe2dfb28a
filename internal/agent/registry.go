package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"pmagent/internal/observability"
)

// ToolRegistry manages available tools with thread-safe registration and lookup.
// Tool input schemas are compiled at registration time and enforced on every
// dispatch, so tools only ever see input that matches their declared schema.
type ToolRegistry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	schemas map[string]*jsonschema.Schema
}

// NewToolRegistry creates a new empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a tool to the registry, compiling its input schema.
// If a tool with the same name already exists, it is replaced.
func (r *ToolRegistry) Register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is required")
	}

	compiled, err := jsonschema.CompileString(name+".schema.json", string(tool.Schema()))
	if err != nil {
		return fmt.Errorf("compile schema for tool %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = tool
	r.schemas[name] = compiled
	return nil
}

// Get returns a tool by name and a boolean indicating if it was found.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Tools returns all registered tools for passing to the model.
func (r *ToolRegistry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	return tools
}

// Execute runs a tool by name with the given JSON input. Failures of any
// kind, including an unknown tool, invalid input, a tool error, or a tool
// panic, come back as an error-flagged result rather than a Go error, so
// the conversation can continue and the model sees what went wrong.
func (r *ToolRegistry) Execute(ctx context.Context, call ToolCall) (result *ToolResult) {
	defer func() {
		status := "ok"
		if result != nil && result.IsError {
			status = "error"
		}
		observability.ToolExecutions.WithLabelValues(call.Name, status).Inc()
	}()
	defer func() {
		if rec := recover(); rec != nil {
			result = &ToolResult{
				ToolCallID: call.ID,
				Content:    fmt.Sprintf("tool %s panicked: %v", call.Name, rec),
				IsError:    true,
			}
		}
	}()

	r.mu.RLock()
	tool, ok := r.tools[call.Name]
	schema := r.schemas[call.Name]
	r.mu.RUnlock()
	if !ok {
		return &ToolResult{
			ToolCallID: call.ID,
			Content:    "tool not found: " + call.Name,
			IsError:    true,
		}
	}

	input := call.Input
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	var decoded any
	if err := json.Unmarshal(input, &decoded); err != nil {
		return &ToolResult{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("invalid input for tool %s: %v", call.Name, err),
			IsError:    true,
		}
	}
	if err := schema.Validate(decoded); err != nil {
		return &ToolResult{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("input for tool %s does not match schema: %v", call.Name, err),
			IsError:    true,
		}
	}

	res, err := tool.Execute(ctx, input)
	if err != nil {
		return &ToolResult{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("tool %s failed: %v", call.Name, err),
			IsError:    true,
		}
	}
	if res == nil {
		res = &ToolResult{Content: ""}
	}
	res.ToolCallID = call.ID
	return res
}
