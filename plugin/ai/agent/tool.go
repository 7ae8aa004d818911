package agent

import (
	"context"
	"fmt"
)

// Tool is the interface for agent tools. Arguments arrive as the raw JSON
// object the model produced for the call.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Description returns a description of what the tool does.
	Description() string

	// Schema returns the JSON schema for the tool's arguments object.
	Schema() map[string]any

	// Run executes the tool with the given arguments.
	Run(ctx context.Context, arguments string) (string, error)
}

// ToolRegistry manages the collection of tools bound to the oracle.
type ToolRegistry struct {
	tools map[string]Tool
	order []string
}

// NewToolRegistry creates a new ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool names in registration order.
func (r *ToolRegistry) List() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	return len(r.tools)
}
