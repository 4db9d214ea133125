// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

// Package role composes declarative role documents into runnable agents.
package role

import (
	"context"

	"github.com/jllopis/rolekit/pkg/tool"
)

// Agent is one fully resolved role. It is built once per composition call,
// stateless after construction, and safe for concurrent read-only use.
type Agent struct {
	Name        string
	Description string
	// Persona is the merged persona sub-tree from prompt imports
	// (last import wins).
	Persona map[string]any
	// Rules hold the raw text of each imported rule file, in declaration order.
	Rules []string
	// Registry owns the agent's tools.
	Registry *tool.Registry
	// Diagnostics records every fragment that was skipped or left unbound
	// during composition. Composition still succeeds; the list preserves
	// debuggability of the tolerant defaults.
	Diagnostics []Diagnostic
}

// RunTool dispatches one of the agent's tools by name.
func (a *Agent) RunTool(ctx context.Context, name string, args any) tool.Result {
	return tool.Dispatch(ctx, a.Registry, name, args)
}

// DiagnosticKind classifies a non-fatal composition event.
type DiagnosticKind string

const (
	// DiagPromptWithoutPersona marks a prompt import that declared no
	// mapping-typed persona field.
	DiagPromptWithoutPersona DiagnosticKind = "prompt_without_persona"

	// DiagToolDocSkipped marks a tool import whose document parsed to a
	// non-mapping or empty value and was skipped.
	DiagToolDocSkipped DiagnosticKind = "tool_doc_skipped"

	// DiagUnnamedToolSpec marks a tool specification without a name; it is
	// never registered.
	DiagUnnamedToolSpec DiagnosticKind = "unnamed_tool_spec"

	// DiagDuplicateToolName marks a later specification overwriting an
	// earlier one with the same name.
	DiagDuplicateToolName DiagnosticKind = "duplicate_tool_name"

	// DiagUnboundTool marks a registered tool with no implementation in
	// the catalog.
	DiagUnboundTool DiagnosticKind = "unbound_tool"
)

// Diagnostic describes one tolerated irregularity found during composition.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind"`
	// Ref is the import reference or tool name the diagnostic concerns.
	Ref    string `json:"ref"`
	Detail string `json:"detail,omitempty"`
}
