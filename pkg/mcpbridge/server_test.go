package mcpbridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
	"github.com/jllopis/rolekit/pkg/runtime"
	"github.com/jllopis/rolekit/pkg/sandbox"
	"github.com/jllopis/rolekit/pkg/tool"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newBridge(t *testing.T) *Bridge {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "role/echo/role.yaml", `
name: echo
imports:
  tools:
    - ../../tool/echo.yaml
`)
	writeFile(t, dir, "tool/echo.yaml", "name: echo\ndescription: repeats input\n")
	root, err := sandbox.NewRoot(dir)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	catalog := tool.Catalog{
		"echo": func(ctx context.Context, args []any) (any, error) {
			if len(args) == 0 {
				return nil, nil
			}
			return args[0], nil
		},
	}
	return New(runtime.New(root, catalog), "rolekit", "test", nil)
}

func TestExpose(t *testing.T) {
	bridge := newBridge(t)
	agent, err := bridge.Expose(context.Background(), "role/echo/role.yaml")
	if err != nil {
		t.Fatalf("Expose: %v", err)
	}
	if agent.Name != "echo" {
		t.Fatalf("agent name = %q, want echo", agent.Name)
	}
	if agent.Registry.Len() != 1 {
		t.Fatalf("registered %d tools, want 1", agent.Registry.Len())
	}
}

func TestExposeComposeFailure(t *testing.T) {
	bridge := newBridge(t)
	if _, err := bridge.Expose(context.Background(), "role/absent/role.yaml"); !rkerrors.HasCode(err, rkerrors.CodeMissingImport) {
		t.Fatalf("error = %v, want MISSING_IMPORT", err)
	}
}

func TestResultContent(t *testing.T) {
	result, err := resultContent("plain")
	if err != nil {
		t.Fatalf("resultContent: %v", err)
	}
	if result.IsError {
		t.Fatal("unexpected error result")
	}

	result, err = resultContent(map[string]any{"layout": "grid"})
	if err != nil {
		t.Fatalf("resultContent: %v", err)
	}
	if result.IsError {
		t.Fatal("unexpected error result")
	}

	if _, err := resultContent(nil); err != nil {
		t.Fatalf("resultContent(nil): %v", err)
	}
}
