// Package runtime wires the composition, dispatch, and routing components
// into one engine with tracing, metrics, and session logging around them.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/rolekit/pkg/role"
	"github.com/jllopis/rolekit/pkg/router"
	"github.com/jllopis/rolekit/pkg/sandbox"
	"github.com/jllopis/rolekit/pkg/session"
	"github.com/jllopis/rolekit/pkg/telemetry"
	"github.com/jllopis/rolekit/pkg/tool"
)

// Engine is the synchronous, stateless-per-call entry point. Every call
// composes its own Agent from scratch; nothing is cached across calls, so
// a changed import path can never be masked by stale state.
type Engine struct {
	root     *sandbox.Root
	composer *role.Composer
	locator  *role.Locator
	table    *router.Table
	store    *session.Store
	metrics  *telemetry.EngineMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRoutingTable attaches the coverage-router table.
func WithRoutingTable(table *router.Table) Option {
	return func(e *Engine) { e.table = table }
}

// WithSessionStore attaches a best-effort session log.
func WithSessionStore(store *session.Store) Option {
	return func(e *Engine) { e.store = store }
}

// WithMetrics attaches engine metrics.
func WithMetrics(metrics *telemetry.EngineMetrics) Option {
	return func(e *Engine) { e.metrics = metrics }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine bound to a sandbox root and implementation catalog.
func New(root *sandbox.Root, catalog tool.Catalog, opts ...Option) *Engine {
	e := &Engine{
		root:   root,
		logger: slog.Default(),
		tracer: otel.Tracer("rolekit/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.composer = role.NewComposer(root, catalog, role.WithLogger(e.logger))
	e.locator = role.NewLocator(root)
	return e
}

// Root returns the engine's sandbox root.
func (e *Engine) Root() *sandbox.Root { return e.root }

// Compose resolves rolePath into an Agent.
func (e *Engine) Compose(ctx context.Context, rolePath string) (*role.Agent, error) {
	ctx, span := e.tracer.Start(ctx, "engine.compose",
		trace.WithAttributes(attribute.String("role.path", rolePath)))
	defer span.End()

	start := time.Now()
	agent, err := e.composer.Compose(ctx, rolePath)
	e.metrics.RecordComposition(ctx, rolePath, time.Since(start).Seconds(), err)

	if err != nil {
		span.RecordError(err)
		e.logger.ErrorContext(ctx, "composition failed",
			slog.String("role_path", rolePath),
			slog.Any("error", err))
		e.record(ctx, session.Event{
			Kind: session.KindComposition, Role: rolePath,
			Outcome: "failure", Detail: err.Error(),
		})
		return nil, err
	}

	e.logger.InfoContext(ctx, "composed agent",
		slog.String("agent", agent.Name),
		slog.Int("tools", agent.Registry.Len()),
		slog.Int("rules", len(agent.Rules)),
		slog.Int("diagnostics", len(agent.Diagnostics)))
	e.record(ctx, session.Event{
		Kind: session.KindComposition, Role: agent.Name, Outcome: "success",
	})
	return agent, nil
}

// ComposeNamed locates role/<name>/role.yaml and composes it.
func (e *Engine) ComposeNamed(ctx context.Context, name string) (*role.Agent, error) {
	rolePath, err := e.locator.LocateRole(name)
	if err != nil {
		return nil, err
	}
	return e.Compose(ctx, rolePath)
}

// Run composes rolePath and dispatches toolName with args. Dispatch
// outcomes are data, never errors: only composition can fail here.
func (e *Engine) Run(ctx context.Context, rolePath, toolName string, args any) (tool.Result, error) {
	agent, err := e.Compose(ctx, rolePath)
	if err != nil {
		return tool.Result{}, err
	}
	return e.Dispatch(ctx, agent, toolName, args), nil
}

// Dispatch invokes one of the agent's tools inside the failure boundary.
func (e *Engine) Dispatch(ctx context.Context, agent *role.Agent, toolName string, args any) tool.Result {
	ctx, span := e.tracer.Start(ctx, "engine.dispatch",
		trace.WithAttributes(
			attribute.String("agent", agent.Name),
			attribute.String("tool", toolName)))
	defer span.End()

	result := agent.RunTool(ctx, toolName, args)
	e.metrics.RecordDispatch(ctx, toolName, result.OK())

	outcome := "success"
	detail := ""
	if !result.OK() {
		outcome = "failure"
		detail = result.Message()
		e.logger.WarnContext(ctx, "tool dispatch failed",
			slog.String("agent", agent.Name),
			slog.String("tool", toolName),
			slog.String("message", result.Message()))
	}
	e.record(ctx, session.Event{
		Kind: session.KindDispatch, Role: agent.Name, Tool: toolName,
		Outcome: outcome, Detail: detail,
	})
	return result
}

// Route applies the coverage router to one request payload. It returns
// nil both when no table is configured and when no rule matches.
func (e *Engine) Route(ctx context.Context, req router.Request) *router.Candidate {
	if e.table == nil {
		return nil
	}
	ctx, span := e.tracer.Start(ctx, "engine.route")
	defer span.End()

	candidate := e.table.Route(req)
	name := ""
	if candidate != nil {
		name = candidate.Name
		span.SetAttributes(attribute.String("candidate", name))
	}
	e.metrics.RecordRoute(ctx, name)
	e.record(ctx, session.Event{
		Kind: session.KindRoute, Tool: name, Outcome: "success",
	})
	return candidate
}

// Roles lists the role documents available under the sandbox.
func (e *Engine) Roles(ctx context.Context) ([]string, error) {
	return e.locator.ListRoles()
}

// record writes a session event, logging and swallowing store failures.
func (e *Engine) record(ctx context.Context, event session.Event) {
	if e.store == nil {
		return
	}
	if err := e.store.Record(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "session log write failed", slog.Any("error", err))
	}
}
