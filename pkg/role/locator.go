// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package role

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
	"github.com/jllopis/rolekit/pkg/sandbox"
)

const (
	rolesDir = "role"
	toolsDir = "tool"
	roleFile = "role.yaml"
)

// Locator finds role and tool documents by short name under the
// conventional sandbox layout: role/<name>/role.yaml and
// tool/**/<name>.yaml. Lookups are deterministic and never leave the
// sandbox.
type Locator struct {
	root *sandbox.Root
}

// NewLocator creates a Locator for the given sandbox root.
func NewLocator(root *sandbox.Root) *Locator {
	return &Locator{root: root}
}

// validName rejects anything that is not a simple identifier: path
// separators and traversal segments never reach the filesystem.
func validName(name string) bool {
	return name != "" &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.Contains(name, "..")
}

// LocateRole returns the sandbox-relative path of role/<name>/role.yaml.
func (l *Locator) LocateRole(name string) (string, error) {
	if !validName(name) {
		return "", rkerrors.Newf(rkerrors.CodeInvalidInput,
			"role names must be simple identifiers without path separators")
	}
	rel := filepath.Join(rolesDir, name, roleFile)
	candidate := filepath.Join(l.root.Dir(), rel)
	if err := l.root.AdmitResolved(candidate); err != nil {
		return "", err
	}
	if _, err := os.Stat(candidate); err != nil {
		return "", rkerrors.Newf(rkerrors.CodeNotFound,
			"role definition for %q was not found", name)
	}
	return rel, nil
}

// LocateTool returns the sandbox-relative path of the specification for
// tool name: tool/<name>.yaml when present, otherwise the first match of a
// sorted recursive search for <name>.yaml under tool/.
func (l *Locator) LocateTool(name string) (string, error) {
	if !validName(name) {
		return "", rkerrors.Newf(rkerrors.CodeInvalidInput,
			"tool names must be simple identifiers without path separators")
	}
	toolsRoot := filepath.Join(l.root.Dir(), toolsDir)
	if err := l.root.AdmitResolved(toolsRoot); err != nil {
		return "", err
	}

	direct := filepath.Join(toolsRoot, name+".yaml")
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return l.root.Rel(direct), nil
	}

	var matches []string
	_ = filepath.WalkDir(toolsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name+".yaml" {
			matches = append(matches, path)
		}
		return nil
	})
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", rkerrors.Newf(rkerrors.CodeNotFound,
			"tool specification for %q was not found", name)
	}
	return l.root.Rel(matches[0]), nil
}

// ListRoles enumerates every role/<name>/role.yaml under the sandbox,
// returning sandbox-relative paths in sorted order.
func (l *Locator) ListRoles() ([]string, error) {
	rolesRoot := filepath.Join(l.root.Dir(), rolesDir)
	if _, err := os.Stat(rolesRoot); err != nil {
		return nil, nil
	}
	var roles []string
	err := filepath.WalkDir(rolesRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == roleFile {
			roles = append(roles, l.root.Rel(path))
		}
		return nil
	})
	if err != nil {
		return nil, rkerrors.New(rkerrors.CodeInternal, "failed to enumerate roles", err)
	}
	sort.Strings(roles)
	return roles, nil
}
