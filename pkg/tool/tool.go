// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool holds the runtime tool model: declared specifications bound
// (or left unbound) to implementations, the per-agent registry, and the
// execution dispatcher.
package tool

import "context"

// Func is a tool implementation. Arguments are positional; the returned
// value is opaque to the dispatcher.
type Func func(ctx context.Context, args []any) (any, error)

// Catalog maps declared tool names to implementations. Catalogs are
// populated externally, treated as immutable, and consulted by the
// composer when binding tools.
type Catalog map[string]Func

// Lookup returns the implementation bound to name, if any.
func (c Catalog) Lookup(name string) (Func, bool) {
	fn, ok := c[name]
	return fn, ok
}

// Spec is a parsed tool declaration document. Name and Description are
// lifted out of the raw mapping; everything else stays in Raw.
type Spec struct {
	Name        string
	Description string
	// ExecutionEnvironment is the declared execution_environment.type.
	ExecutionEnvironment string
	// DefaultMode is the declared execution_policy.default_mode.
	DefaultMode string
	// Raw is the full declaration document.
	Raw map[string]any
}

// SpecFromDoc lifts the well-known fields out of a parsed declaration.
// The name may be empty; the composer decides what to do with unnamed specs.
func SpecFromDoc(doc map[string]any) Spec {
	spec := Spec{Raw: doc}
	if name, ok := doc["name"].(string); ok {
		spec.Name = name
	}
	if desc, ok := doc["description"].(string); ok {
		spec.Description = desc
	}
	if env, ok := doc["execution_environment"].(map[string]any); ok {
		if typ, ok := env["type"].(string); ok {
			spec.ExecutionEnvironment = typ
		}
	}
	if pol, ok := doc["execution_policy"].(map[string]any); ok {
		if mode, ok := pol["default_mode"].(string); ok {
			spec.DefaultMode = mode
		}
	}
	return spec
}

// Tool is a declared tool, optionally bound to an implementation.
// An unbound tool is a valid, reportable state, not an error.
type Tool struct {
	Name string
	Spec Spec
	impl Func
}

// New creates a Tool from its spec and an optional implementation.
func New(spec Spec, impl Func) *Tool {
	return &Tool{Name: spec.Name, Spec: spec, impl: impl}
}

// Implementation returns the bound implementation, if present.
func (t *Tool) Implementation() (Func, bool) {
	if t == nil || t.impl == nil {
		return nil, false
	}
	return t.impl, true
}

// Bound reports whether the tool has an implementation.
func (t *Tool) Bound() bool {
	_, ok := t.Implementation()
	return ok
}
