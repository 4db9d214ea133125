// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package tool

// Registry maps tool names to tools for one composed agent.
// Registration order is preserved for listing; lookup is by name.
// A registry is owned by exactly one agent and is read-only after
// composition finishes.
type Registry struct {
	byName map[string]*Tool
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Tool)}
}

// Register adds a tool. It is a no-op when the tool or its name is empty.
// Registering a duplicate name overwrites the earlier entry and keeps its
// position in the listing order.
func (r *Registry) Register(t *Tool) {
	if t == nil || t.Name == "" {
		return
	}
	if _, exists := r.byName[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.byName[t.Name] = t
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// List returns all tools in insertion order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the registered tool names in insertion order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.byName) }
