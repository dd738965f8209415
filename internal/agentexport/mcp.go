package agentexport

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kayz/promptsmith/internal/logger"
	"github.com/kayz/promptsmith/internal/promptbuild"
)

// ToMCPTools returns MCP server tools. Tools declared without a handler get
// one that reports the tool as unavailable.
func ToMCPTools(b *promptbuild.Builder) []server.ServerTool {
	rt := b.ExportRuntime()
	out := make([]server.ServerTool, 0, len(rt.Order))
	for _, name := range rt.Order {
		tool := rt.Tools[name]
		params := parameters(tool)
		props, _ := params["properties"].(map[string]any)
		required, _ := params["required"].([]string)

		handler := tool.Handler
		if handler == nil {
			handler = unavailable(name)
		}
		out = append(out, server.ServerTool{
			Tool: mcp.Tool{
				Name:        name,
				Description: tool.Description,
				InputSchema: mcp.ToolInputSchema{
					Type:       "object",
					Properties: props,
					Required:   required,
				},
			},
			Handler: handler,
		})
	}
	return out
}

// NewMCPServer returns an MCP server exposing the builder's tools.
func NewMCPServer(b *promptbuild.Builder, name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	tools := ToMCPTools(b)
	for _, t := range tools {
		s.AddTool(t.Tool, t.Handler)
	}
	logger.Debug("agentexport: mcp server %s exposes %d tools", name, len(tools))
	return s
}

func unavailable(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError(fmt.Sprintf("tool %s has no handler attached", name)), nil
	}
}
