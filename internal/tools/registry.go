package tools

import (
	"context"
	"fmt"
	"sort"
)

// Invocation is the structured result returned across the tool boundary to
// the host integration layer.
type Invocation struct {
	Status    string
	Artifacts []string
	Messages  []string
}

// Tool is one externally invokable operation taking explicit string
// arguments. Tools never read ambient state; everything arrives in args.
type Tool interface {
	Name() string
	Run(ctx context.Context, args map[string]string) (Invocation, error)
}

type Registry struct{ tools map[string]Tool }

func NewRegistry() *Registry { return &Registry{tools: map[string]Tool{}} }

func (r *Registry) Register(tool Tool) { r.tools[tool.Name()] = tool }

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke dispatches one tool call by name.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]string) (Invocation, error) {
	tool, ok := r.tools[name]
	if !ok {
		return Invocation{}, fmt.Errorf("unknown tool %q", name)
	}
	return tool.Run(ctx, args)
}

func requireArg(args map[string]string, key string) (string, error) {
	value, ok := args[key]
	if !ok || value == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return value, nil
}
