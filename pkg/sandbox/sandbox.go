// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

// Package sandbox enforces the process-wide path containment boundary.
// Every filesystem access in the engine must pass through Admit (or a
// Root helper) before the path is touched.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
)

// Admit decides whether candidate is contained within base.
// It is a pure, syntactic predicate: no filesystem access is performed.
// A candidate is denied when its path relative to base starts with a
// parent-traversal segment, or when no relative path exists at all
// (the two paths share no common ancestor under base).
func Admit(base, candidate string) error {
	rel, err := filepath.Rel(base, candidate)
	if err != nil {
		return rkerrors.New(rkerrors.CodeAccessDenied,
			"path is outside of the sandbox root", err).
			WithContext("base", base)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return rkerrors.Newf(rkerrors.CodeAccessDenied,
			"access to %q is outside of the sandbox root", rel).
			WithContext("base", base)
	}
	return nil
}

// Root is the fixed sandbox boundary. It is created once at process start
// and never mutated.
type Root struct {
	dir string
}

// NewRoot fixes the sandbox boundary at dir. The directory must exist.
func NewRoot(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, rkerrors.New(rkerrors.CodeInvalidInput, "invalid sandbox root", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, rkerrors.Newf(rkerrors.CodeInvalidInput, "sandbox root %q does not exist", dir)
	}
	if !info.IsDir() {
		return nil, rkerrors.Newf(rkerrors.CodeInvalidInput, "sandbox root %q is not a directory", dir)
	}
	return &Root{dir: abs}, nil
}

// Dir returns the absolute sandbox root directory.
func (r *Root) Dir() string { return r.dir }

// Admit checks candidate against the root boundary.
func (r *Root) Admit(candidate string) error {
	return Admit(r.dir, candidate)
}

// AdmitResolved hardens Admit by resolving symlinks before the containment
// check, so a link inside the sandbox cannot smuggle a target outside it.
// Nonexistent paths fall back to the syntactic check: existence is the
// resolver's concern, not the guard's.
func (r *Root) AdmitResolved(candidate string) error {
	if err := r.Admit(candidate); err != nil {
		return err
	}
	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return rkerrors.New(rkerrors.CodeAccessDenied, "cannot resolve path", err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(r.dir)
	if err != nil {
		resolvedRoot = r.dir
	}
	return Admit(resolvedRoot, resolved)
}

// Rel returns candidate relative to the root when possible, for
// caller-facing messages that must not leak absolute paths.
func (r *Root) Rel(candidate string) string {
	rel, err := filepath.Rel(r.dir, candidate)
	if err != nil {
		return filepath.Base(candidate)
	}
	return rel
}
