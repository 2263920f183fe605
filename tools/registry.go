package tools

import (
	"sync"

	"github.com/funcall-ai/funcall/pkg/llms"
)

// Registry maps tool names to their implementations and schemas. A later
// Register with the same name overwrites the prior entry. Each orchestrator
// owns its own Registry; the mutex covers registration concurrent with
// lookups.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ITool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ITool),
	}
}

// Register adds a tool, replacing any prior tool with the same name. The
// original registration position is kept on overwrite.
func (r *Registry) Register(list ...ITool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range list {
		name := t.Name()
		if _, ok := r.tools[name]; !ok {
			r.order = append(r.order, name)
		}
		r.tools[name] = t
	}
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (ITool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// List returns the registered tools in registration order.
func (r *Registry) List() []ITool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]ITool, 0, len(r.order))
	for _, name := range r.order {
		res = append(res, r.tools[name])
	}
	return res
}

// Defs returns the tool definitions to send with a generate call.
func (r *Registry) Defs() []llms.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]llms.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		res = append(res, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return res
}
