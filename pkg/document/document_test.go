// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
	"github.com/jllopis/rolekit/pkg/sandbox"
)

func newRoot(t *testing.T) *sandbox.Root {
	t.Helper()
	root, err := sandbox.NewRoot(t.TempDir())
	if err != nil {
		t.Fatalf("new root: %v", err)
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadStructured(t *testing.T) {
	root := newRoot(t)
	path := filepath.Join(root.Dir(), "role.yaml")
	writeFile(t, path, "name: coder\nimports:\n  rules:\n    - rules/base.md\n")

	doc, err := LoadStructured(root, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc["name"] != "coder" {
		t.Fatalf("unexpected name: %v", doc["name"])
	}
	imports, ok := doc["imports"].(map[string]any)
	if !ok {
		t.Fatalf("expected imports mapping, got %T", doc["imports"])
	}
	rules, ok := imports["rules"].([]any)
	if !ok || len(rules) != 1 {
		t.Fatalf("unexpected rules: %v", imports["rules"])
	}
}

func TestLoadStructuredNonMappingRoot(t *testing.T) {
	root := newRoot(t)
	path := filepath.Join(root.Dir(), "list.yaml")
	writeFile(t, path, "- one\n- two\n")

	doc, err := LoadStructured(root, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty mapping for non-mapping root, got %v", doc)
	}
}

func TestLoadStructuredParseError(t *testing.T) {
	root := newRoot(t)
	path := filepath.Join(root.Dir(), "conf", "broken.yaml")
	writeFile(t, path, "name: [unclosed\n")

	_, err := LoadStructured(root, path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !rkerrors.HasCode(err, rkerrors.CodeParseError) {
		t.Fatalf("expected PARSE_ERROR, got %v", err)
	}
	// The message names the sandbox-relative path, never the absolute one.
	if !strings.Contains(err.Error(), filepath.Join("conf", "broken.yaml")) {
		t.Fatalf("expected relative path in message, got %q", err.Error())
	}
	if strings.Contains(err.Error(), root.Dir()) {
		t.Fatalf("message leaks absolute path: %q", err.Error())
	}
}

func TestLoadStructuredOutsideRoot(t *testing.T) {
	root := newRoot(t)
	outside := filepath.Join(t.TempDir(), "other.yaml")
	writeFile(t, outside, "name: x\n")

	if _, err := LoadStructured(root, outside); !rkerrors.HasCode(err, rkerrors.CodeAccessDenied) {
		t.Fatalf("expected ACCESS_DENIED, got %v", err)
	}
}

func TestLoadText(t *testing.T) {
	root := newRoot(t)
	path := filepath.Join(root.Dir(), "rules", "base.md")
	writeFile(t, path, "# Always answer politely.\n")

	text, err := LoadText(root, path)
	if err != nil {
		t.Fatalf("load text: %v", err)
	}
	if text != "# Always answer politely.\n" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestResolve(t *testing.T) {
	root := newRoot(t)
	roleDir := filepath.Join(root.Dir(), "role", "coder")
	rolePath := filepath.Join(roleDir, "role.yaml")
	writeFile(t, rolePath, "name: coder\n")
	writeFile(t, filepath.Join(roleDir, "prompt.yaml"), "persona: {}\n")

	// Base may be the role file or its directory, uniformly.
	for _, base := range []string{rolePath, roleDir} {
		got, err := Resolve(root, base, "prompt.yaml")
		if err != nil {
			t.Fatalf("resolve from %q: %v", base, err)
		}
		if got != filepath.Join(roleDir, "prompt.yaml") {
			t.Fatalf("unexpected resolution: %q", got)
		}
	}
}

func TestResolveEmptyRef(t *testing.T) {
	root := newRoot(t)
	if _, err := Resolve(root, root.Dir(), ""); !rkerrors.HasCode(err, rkerrors.CodeInvalidImport) {
		t.Fatalf("expected INVALID_IMPORT for empty ref, got %v", err)
	}
	if _, err := Resolve(root, root.Dir(), "   "); !rkerrors.HasCode(err, rkerrors.CodeInvalidImport) {
		t.Fatalf("expected INVALID_IMPORT for blank ref, got %v", err)
	}
}

func TestResolveMissing(t *testing.T) {
	root := newRoot(t)
	_, err := Resolve(root, root.Dir(), "missing.yaml")
	if !rkerrors.HasCode(err, rkerrors.CodeMissingImport) {
		t.Fatalf("expected MISSING_IMPORT, got %v", err)
	}
	// Caller-facing message names the original reference, not an absolute path.
	if !strings.Contains(err.Error(), `"missing.yaml"`) {
		t.Fatalf("expected original ref in message, got %q", err.Error())
	}
	if strings.Contains(err.Error(), root.Dir()) {
		t.Fatalf("message leaks absolute path: %q", err.Error())
	}
}

func TestResolveEscape(t *testing.T) {
	root := newRoot(t)
	// Even when a file exists at the external location, escape is INVALID_IMPORT.
	outside := filepath.Dir(root.Dir())
	writeFile(t, filepath.Join(outside, "exists.yaml"), "name: x\n")

	_, err := Resolve(root, root.Dir(), "../exists.yaml")
	if !rkerrors.HasCode(err, rkerrors.CodeInvalidImport) {
		t.Fatalf("expected INVALID_IMPORT for escaping ref, got %v", err)
	}
}
