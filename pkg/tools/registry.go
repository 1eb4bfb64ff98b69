// Package tools defines the assistant's tool surface: the tool type, the
// registry handlers are dispatched from, and the built-in weather and
// location tools.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrToolNotFound is returned when a tool is not present in the registry.
var ErrToolNotFound = errors.New("tool not found")

// Handler executes a tool with already-validated arguments.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool describes a callable tool. The same definition backs every deployment
// mode: the MCP server and the Bedrock action group both derive their wire
// schemas from InputSchema.
type Tool struct {
	// Name is the unique tool identifier.
	Name string

	// Description tells the model when to use the tool.
	Description string

	// InputSchema is the JSON schema for the tool arguments.
	InputSchema map[string]any

	// Alternative optionally names a tool to fall back to when this one
	// fails. The alternative receives the same arguments.
	Alternative string

	// Handler executes the tool.
	Handler Handler
}

// Registry holds the registered tools.
//
// It is safe for concurrent use through RWMutex locking.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool to the registry. Registering a duplicate name or a
// tool without a handler is an error.
func (r *Registry) Register(tool *Tool) error {
	if tool == nil || tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s has no handler", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s is already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Get resolves a tool by name.
func (r *Registry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool, nil
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		list = append(list, tool)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
