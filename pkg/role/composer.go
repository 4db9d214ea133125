// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package role

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jllopis/rolekit/pkg/document"
	"github.com/jllopis/rolekit/pkg/sandbox"
	"github.com/jllopis/rolekit/pkg/tool"
)

// Composer resolves role documents into Agents. The implementation catalog
// is injected so tests and embedders can supply their own lookup.
type Composer struct {
	root    *sandbox.Root
	catalog tool.Catalog
	logger  *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger used for non-fatal composition diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewComposer creates a Composer bound to a sandbox root and an
// implementation catalog.
func NewComposer(root *sandbox.Root, catalog tool.Catalog, opts ...Option) *Composer {
	c := &Composer{root: root, catalog: catalog, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose resolves rolePath (relative to the sandbox root) and assembles
// one Agent. Composition is all-or-nothing: any unresolvable import aborts
// and no partially built Agent is ever returned.
func (c *Composer) Compose(ctx context.Context, rolePath string) (*Agent, error) {
	resolved, err := document.Resolve(c.root, c.root.Dir(), rolePath)
	if err != nil {
		return nil, err
	}
	doc, err := document.LoadStructured(c.root, resolved)
	if err != nil {
		return nil, err
	}

	// All subsequent imports resolve relative to the role's directory.
	roleDir := filepath.Dir(resolved)

	agent := &Agent{
		Name:        roleName(doc, roleDir),
		Description: roleDescription(doc),
		Registry:    tool.NewRegistry(),
	}

	imports := importsSection(doc)

	if err := c.composePersona(agent, roleDir, imports); err != nil {
		return nil, err
	}
	if err := c.composeRules(agent, roleDir, imports); err != nil {
		return nil, err
	}
	specs, err := c.collectToolSpecs(agent, roleDir, imports)
	if err != nil {
		return nil, err
	}
	c.bindTools(ctx, agent, specs)

	return agent, nil
}

func roleName(doc map[string]any, roleDir string) string {
	if name, ok := doc["name"].(string); ok && strings.TrimSpace(name) != "" {
		return name
	}
	// Fallback keeps every composed entity addressable.
	return filepath.Base(roleDir)
}

func roleDescription(doc map[string]any) string {
	if desc, ok := doc["description"].(string); ok {
		return desc
	}
	return ""
}

func importsSection(doc map[string]any) map[string]any {
	if imports, ok := doc["imports"].(map[string]any); ok {
		return imports
	}
	return map[string]any{}
}

// importRefs returns the entries of one imports list. Non-string entries
// come back as empty strings so the resolver rejects them as invalid.
func importRefs(imports map[string]any, key string) []string {
	seq, ok := imports[key].([]any)
	if !ok {
		return nil
	}
	refs := make([]string, len(seq))
	for i, entry := range seq {
		if s, ok := entry.(string); ok {
			refs[i] = s
		}
	}
	return refs
}

func (c *Composer) composePersona(agent *Agent, roleDir string, imports map[string]any) error {
	for _, ref := range importRefs(imports, "prompts") {
		path, err := document.Resolve(c.root, roleDir, ref)
		if err != nil {
			return err
		}
		doc, err := document.LoadStructured(c.root, path)
		if err != nil {
			return err
		}
		if persona, ok := doc["persona"].(map[string]any); ok {
			// Later prompt imports win outright; this is a deliberate
			// last-wins replacement, not a deep merge.
			agent.Persona = persona
			continue
		}
		agent.Diagnostics = append(agent.Diagnostics, Diagnostic{
			Kind: DiagPromptWithoutPersona,
			Ref:  ref,
		})
	}
	return nil
}

func (c *Composer) composeRules(agent *Agent, roleDir string, imports map[string]any) error {
	for _, ref := range importRefs(imports, "rules") {
		path, err := document.Resolve(c.root, roleDir, ref)
		if err != nil {
			return err
		}
		text, err := document.LoadText(c.root, path)
		if err != nil {
			return err
		}
		agent.Rules = append(agent.Rules, text)
	}
	return nil
}

func (c *Composer) collectToolSpecs(agent *Agent, roleDir string, imports map[string]any) ([]tool.Spec, error) {
	var specs []tool.Spec
	for _, ref := range importRefs(imports, "tools") {
		path, err := document.Resolve(c.root, roleDir, ref)
		if err != nil {
			return nil, err
		}
		doc, err := document.LoadStructured(c.root, path)
		if err != nil {
			return nil, err
		}
		if len(doc) == 0 {
			agent.Diagnostics = append(agent.Diagnostics, Diagnostic{
				Kind:   DiagToolDocSkipped,
				Ref:    ref,
				Detail: "document is not a non-empty mapping",
			})
			continue
		}
		specs = append(specs, tool.SpecFromDoc(doc))
	}
	return specs, nil
}

func (c *Composer) bindTools(ctx context.Context, agent *Agent, specs []tool.Spec) {
	for _, spec := range specs {
		if spec.Name == "" {
			agent.Diagnostics = append(agent.Diagnostics, Diagnostic{
				Kind:   DiagUnnamedToolSpec,
				Ref:    spec.Description,
				Detail: "specification has no name and was not registered",
			})
			continue
		}
		if _, exists := agent.Registry.Get(spec.Name); exists {
			agent.Diagnostics = append(agent.Diagnostics, Diagnostic{
				Kind:   DiagDuplicateToolName,
				Ref:    spec.Name,
				Detail: "later declaration overwrites the earlier one",
			})
		}
		impl, bound := c.catalog.Lookup(spec.Name)
		if !bound {
			agent.Diagnostics = append(agent.Diagnostics, Diagnostic{
				Kind:   DiagUnboundTool,
				Ref:    spec.Name,
				Detail: "no implementation in catalog",
			})
			c.logger.WarnContext(ctx, "tool declared but not implemented",
				slog.String("agent", agent.Name),
				slog.String("tool", spec.Name))
		}
		agent.Registry.Register(tool.New(spec, impl))
	}
}
