package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
	"github.com/jllopis/rolekit/pkg/router"
	"github.com/jllopis/rolekit/pkg/sandbox"
	"github.com/jllopis/rolekit/pkg/session"
	"github.com/jllopis/rolekit/pkg/tool"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newEngine(t *testing.T, opts ...Option) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "role/echo/role.yaml", `
name: echo
imports:
  prompts:
    - persona.yaml
  tools:
    - ../../tool/echo.yaml
`)
	writeFile(t, dir, "role/echo/persona.yaml", "persona:\n  tone: flat\n")
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
	return New(root, catalog, opts...), dir
}

func TestComposeAndDispatch(t *testing.T) {
	engine, _ := newEngine(t)
	agent, err := engine.Compose(context.Background(), "role/echo/role.yaml")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if agent.Name != "echo" {
		t.Fatalf("agent name = %q, want echo", agent.Name)
	}

	result := engine.Dispatch(context.Background(), agent, "echo", []any{"hi"})
	if !result.OK() {
		t.Fatalf("dispatch failed: %s", result.Message())
	}
	if result.Value() != "hi" {
		t.Fatalf("dispatch value = %v, want hi", result.Value())
	}
}

func TestComposeNamed(t *testing.T) {
	engine, _ := newEngine(t)
	agent, err := engine.ComposeNamed(context.Background(), "echo")
	if err != nil {
		t.Fatalf("ComposeNamed: %v", err)
	}
	if agent.Name != "echo" {
		t.Fatalf("agent name = %q, want echo", agent.Name)
	}

	if _, err := engine.ComposeNamed(context.Background(), "nope"); !rkerrors.HasCode(err, rkerrors.CodeNotFound) {
		t.Fatalf("unknown role error = %v, want NOT_FOUND", err)
	}
}

func TestRunMissingTool(t *testing.T) {
	engine, _ := newEngine(t)
	result, err := engine.Run(context.Background(), "role/echo/role.yaml", "absent", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.OK() {
		t.Fatal("expected dispatch failure for unknown tool")
	}
	want := "Tool 'absent' not found in agent's registry."
	if result.Message() != want {
		t.Fatalf("message = %q, want %q", result.Message(), want)
	}
}

func TestRunComposeFailure(t *testing.T) {
	engine, dir := newEngine(t)
	writeFile(t, dir, "role/broken/role.yaml", `
name: broken
imports:
  rules:
    - missing.md
`)
	if _, err := engine.Run(context.Background(), "role/broken/role.yaml", "echo", nil); !rkerrors.HasCode(err, rkerrors.CodeMissingImport) {
		t.Fatalf("error = %v, want MISSING_IMPORT", err)
	}
}

func TestRouteWithoutTable(t *testing.T) {
	engine, _ := newEngine(t)
	if got := engine.Route(context.Background(), router.Request{}); got != nil {
		t.Fatalf("Route without table = %v, want nil", got)
	}
}

func TestRouteWithTable(t *testing.T) {
	table := router.NewTable([]router.Candidate{
		{Name: "swot", RequiredFields: []string{"S", "W", "O", "T"}},
	}, 0.8)
	engine, _ := newEngine(t, WithRoutingTable(table))

	got := engine.Route(context.Background(), router.Request{
		Buckets: map[string][]any{"S": {"a"}, "W": {"b"}, "O": {"c"}, "T": {"d"}},
	})
	if got == nil || got.Name != "swot" {
		t.Fatalf("Route = %v, want swot", got)
	}
}

func TestSessionRecording(t *testing.T) {
	store, err := session.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	engine, _ := newEngine(t, WithSessionStore(store))
	agent, err := engine.Compose(context.Background(), "role/echo/role.yaml")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	engine.Dispatch(context.Background(), agent, "echo", []any{"x"})

	events, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(events))
	}
	if events[0].Kind != session.KindDispatch || events[1].Kind != session.KindComposition {
		t.Fatalf("unexpected event kinds: %v %v", events[0].Kind, events[1].Kind)
	}
}

func TestRoles(t *testing.T) {
	engine, _ := newEngine(t)
	roles, err := engine.Roles(context.Background())
	if err != nil {
		t.Fatalf("Roles: %v", err)
	}
	want := filepath.Join("role", "echo", "role.yaml")
	if len(roles) != 1 || roles[0] != want {
		t.Fatalf("roles = %v, want [%s]", roles, want)
	}
}
