// Package mcpbridge exposes a composed agent's tool registry over the
// Model Context Protocol, so external MCP clients can call the same tools
// the dispatcher serves locally.
package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jllopis/rolekit/pkg/role"
	"github.com/jllopis/rolekit/pkg/runtime"
)

// Bridge wraps the mcp-go server around one composed agent.
type Bridge struct {
	engine    *runtime.Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// New creates an MCP bridge advertised under name/version.
func New(engine *runtime.Engine, name, version string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		engine:    engine,
		mcpServer: server.NewMCPServer(name, version),
		logger:    logger,
	}
}

// Expose composes rolePath and registers every tool of the resulting
// agent, bound and unbound alike. Unbound tools surface their dispatch
// failure message to the MCP client rather than being hidden.
func (b *Bridge) Expose(ctx context.Context, rolePath string) (*role.Agent, error) {
	agent, err := b.engine.Compose(ctx, rolePath)
	if err != nil {
		return nil, err
	}
	for _, t := range agent.Registry.List() {
		b.register(agent, t.Name, t.Spec.Description)
	}
	b.logger.InfoContext(ctx, "exposing agent over mcp",
		slog.String("agent", agent.Name),
		slog.Int("tools", agent.Registry.Len()))
	return agent, nil
}

func (b *Bridge) register(agent *role.Agent, name, description string) {
	t := mcp.NewTool(name, mcp.WithDescription(description))
	b.mcpServer.AddTool(t, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		result := b.engine.Dispatch(ctx, agent, name, args)
		if !result.OK() {
			return mcp.NewToolResultError(result.Message()), nil
		}
		return resultContent(result.Value())
	})
}

// ServeStdio starts the bridge on stdio.
func (b *Bridge) ServeStdio() error {
	return server.ServeStdio(b.mcpServer)
}

// resultContent renders a dispatch value as MCP text content. Strings
// pass through; everything else is JSON-encoded.
func resultContent(value any) (*mcp.CallToolResult, error) {
	switch v := value.(type) {
	case nil:
		return mcp.NewToolResultText(""), nil
	case string:
		return mcp.NewToolResultText(v), nil
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode tool result: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
