package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/jllopis/rolekit/pkg/catalog"
	"github.com/jllopis/rolekit/pkg/config"
	"github.com/jllopis/rolekit/pkg/role"
	"github.com/jllopis/rolekit/pkg/router"
	"github.com/jllopis/rolekit/pkg/runtime"
	"github.com/jllopis/rolekit/pkg/sandbox"
	"github.com/jllopis/rolekit/pkg/session"
	"github.com/jllopis/rolekit/pkg/telemetry"
)

const version = "dev"

type globalFlags struct {
	ConfigPath string
	Root       string
	JSON       bool
	Help       bool
}

type toolOutput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Bound       bool   `json:"bound"`
}

type composeOutput struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Persona     map[string]any    `json:"persona"`
	Rules       []string          `json:"rules"`
	Tools       []toolOutput      `json:"tools"`
	Diagnostics []role.Diagnostic `json:"diagnostics,omitempty"`
}

type runOutput struct {
	OK      bool   `json:"ok"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
}

type routeOutput struct {
	Matched     bool   `json:"matched"`
	Framework   string `json:"framework,omitempty"`
	Description string `json:"description,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(err)
	}
	if global.Root != "" {
		cfg.Sandbox.Root = global.Root
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	switch args[0] {
	case "serve":
		ensureNoArgs(args[1:])
		runServe(ctx, cfg, logger, global.ConfigPath)
	case "compose":
		runCompose(ctx, cfg, logger, global, args[1:])
	case "run":
		runRun(ctx, cfg, logger, global, args[1:])
	case "route":
		runRoute(ctx, cfg, logger, global, args[1:])
	case "validate":
		runValidate(ctx, cfg, logger, global, args[1:])
	case "list":
		ensureNoArgs(args[1:])
		runList(ctx, cfg, logger, global)
	case "mcp":
		runMCP(ctx, cfg, logger, args[1:])
	case "help":
		printUsage()
	case "version":
		fmt.Println(version)
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--root":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --root")
			}
			flags.Root = args[i+1]
			i++
		case strings.HasPrefix(arg, "--root="):
			flags.Root = strings.TrimPrefix(arg, "--root=")
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

// buildEngine assembles the engine from configuration. A missing routing
// catalog is not fatal outside the route command; composition and
// dispatch work without one.
func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...runtime.Option) (*runtime.Engine, func(), error) {
	root, err := sandbox.NewRoot(cfg.Sandbox.Root)
	if err != nil {
		return nil, nil, err
	}

	opts := append([]runtime.Option{runtime.WithLogger(logger)}, extra...)

	table, err := router.Load(root, cfg.Router.CatalogPath, cfg.Router.RulesPath)
	if err != nil {
		logger.WarnContext(ctx, "routing catalog unavailable",
			slog.String("catalog", cfg.Router.CatalogPath),
			slog.Any("error", err))
	} else {
		opts = append(opts, runtime.WithRoutingTable(table))
	}

	cleanup := func() {}
	if cfg.Session.Enabled {
		store, err := session.Open(cfg.Session.DBPath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, runtime.WithSessionStore(store))
		cleanup = func() { _ = store.Close() }
	}

	return runtime.New(root, catalog.Default(), opts...), cleanup, nil
}

// composeArg treats arguments containing a path separator or a .yaml
// suffix as sandbox-relative document paths, and everything else as a
// role name looked up under role/<name>/role.yaml.
func composeArg(ctx context.Context, engine *runtime.Engine, arg string) (*role.Agent, error) {
	if isRolePath(arg) {
		return engine.Compose(ctx, arg)
	}
	return engine.ComposeNamed(ctx, arg)
}

func isRolePath(arg string) bool {
	return strings.ContainsAny(arg, `/\`) || strings.HasSuffix(arg, ".yaml")
}

func runCompose(ctx context.Context, cfg *config.Config, logger *slog.Logger, global globalFlags, args []string) {
	cmd := flag.NewFlagSet("compose", flag.ContinueOnError)
	if err := cmd.Parse(args); err != nil {
		fatal(err)
	}
	if cmd.NArg() != 1 {
		fatal(fmt.Errorf("usage: rolekit compose <role|role-path>"))
	}

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	agent, err := composeArg(ctx, engine, cmd.Arg(0))
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(composeView(agent))
		return
	}
	printAgent(os.Stdout, agent)
}

func runRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, global globalFlags, args []string) {
	cmd := flag.NewFlagSet("run", flag.ContinueOnError)
	argsJSON := cmd.String("args", "", "Tool arguments as JSON")
	if err := cmd.Parse(args); err != nil {
		fatal(err)
	}
	if cmd.NArg() != 2 {
		fatal(fmt.Errorf("usage: rolekit run <role|role-path> <tool> [--args <json>]"))
	}

	var toolArgs any
	if *argsJSON != "" {
		if err := json.Unmarshal([]byte(*argsJSON), &toolArgs); err != nil {
			fatal(fmt.Errorf("invalid --args: %w", err))
		}
	}

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	agent, err := composeArg(ctx, engine, cmd.Arg(0))
	if err != nil {
		fatal(err)
	}
	result := engine.Dispatch(ctx, agent, cmd.Arg(1), toolArgs)

	if global.JSON {
		printJSON(runOutput{OK: result.OK(), Result: result.Value(), Message: result.Message()})
		if !result.OK() {
			os.Exit(1)
		}
		return
	}
	if !result.OK() {
		fatal(fmt.Errorf("%s", result.Message()))
	}
	printJSON(result.Value())
}

func runRoute(ctx context.Context, cfg *config.Config, logger *slog.Logger, global globalFlags, args []string) {
	cmd := flag.NewFlagSet("route", flag.ContinueOnError)
	file := cmd.String("file", "", "Read the routing payload from a file instead of stdin")
	if err := cmd.Parse(args); err != nil {
		fatal(err)
	}
	ensureNoArgs(cmd.Args())

	payload, err := readPayload(*file)
	if err != nil {
		fatal(err)
	}
	var req router.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		fatal(fmt.Errorf("invalid routing payload: %w", err))
	}

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	candidate := engine.Route(ctx, req)
	out := routeOutput{Matched: candidate != nil}
	if candidate != nil {
		out.Framework = candidate.Name
		out.Description = candidate.Description
	}
	if global.JSON {
		printJSON(out)
		return
	}
	if !out.Matched {
		fmt.Println("no applicable framework")
		return
	}
	fmt.Println(out.Framework)
}

func runList(ctx context.Context, cfg *config.Config, logger *slog.Logger, global globalFlags) {
	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	roles, err := engine.Roles(ctx)
	if err != nil {
		fatal(err)
	}
	if global.JSON {
		if roles == nil {
			roles = []string{}
		}
		printJSON(roles)
		return
	}
	for _, r := range roles {
		fmt.Println(r)
	}
}

func composeView(agent *role.Agent) composeOutput {
	out := composeOutput{
		Name:        agent.Name,
		Description: agent.Description,
		Persona:     agent.Persona,
		Rules:       agent.Rules,
		Diagnostics: agent.Diagnostics,
		Tools:       []toolOutput{},
	}
	if out.Persona == nil {
		out.Persona = map[string]any{}
	}
	if out.Rules == nil {
		out.Rules = []string{}
	}
	for _, t := range agent.Registry.List() {
		out.Tools = append(out.Tools, toolOutput{
			Name:        t.Name,
			Description: t.Spec.Description,
			Bound:       t.Bound(),
		})
	}
	return out
}

func printAgent(w io.Writer, agent *role.Agent) {
	fmt.Fprintf(w, "Agent: %s\n", agent.Name)
	if agent.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", agent.Description)
	}
	fmt.Fprintf(w, "Rules: %d\n", len(agent.Rules))

	tools := agent.Registry.List()
	if len(tools) > 0 {
		fmt.Fprintln(w, "Tools:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, t := range tools {
			state := "bound"
			if !t.Bound() {
				state = "unbound"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", t.Name, state, t.Spec.Description)
		}
		tw.Flush()
	}
	if len(agent.Diagnostics) > 0 {
		fmt.Fprintln(w, "Diagnostics:")
		for _, d := range agent.Diagnostics {
			fmt.Fprintf(w, "  %s: %s\n", d.Kind, d.Detail)
		}
	}
}

func readPayload(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printJSON(value any) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(payload))
}

func printUsage() {
	fmt.Println(`Rolekit CLI

Usage:
  rolekit [global flags] <command> [args]

Global flags:
  --config <path>      Path to rolekit.yaml
  --root <dir>         Sandbox root (overrides config)
  --json               JSON output

Commands:
  serve                              Start the HTTP API
  compose <role|role-path>           Compose a role and print the agent
  run <role> <tool> [--args <json>]  Compose a role and dispatch one tool
  route [--file <path>]              Route a payload (stdin by default)
  validate [role-path ...]           Compose roles and report diagnostics
  list                               List role documents under the sandbox
  mcp <role|role-path>               Expose a composed agent over MCP stdio
  version
  help`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func ensureNoArgs(args []string) {
	if len(args) > 0 {
		fatal(fmt.Errorf("unexpected args: %v", args))
	}
}
