package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/observekit/datadog-mcp/internal/ddclient"
	"github.com/observekit/datadog-mcp/internal/tools"
)

const (
	ServerName    = "datadog-mcp"
	ServerVersion = "1.0.0"
)

// New creates and configures a new MCP server with all tools
func New(clients *ddclient.Clients, log *logrus.Logger, slowThreshold time.Duration) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(toolLogging(log, slowThreshold)),
	)

	// Register all tools
	registerTools(s, clients)

	return s
}

func registerTools(s *server.MCPServer, clients *ddclient.Clients) {
	for _, td := range allTools(clients) {
		s.AddTool(td.Tool, td.Handler)
	}
}

func allTools(clients *ddclient.Clients) []tools.ToolDef {
	all := []tools.ToolDef{}
	all = append(all, tools.RegisterMetricsTools(clients)...)
	all = append(all, tools.RegisterLogsTools(clients)...)
	all = append(all, tools.RegisterEventsTools(clients)...)
	all = append(all, tools.RegisterMonitorsTools(clients)...)
	all = append(all, tools.RegisterAPMTools(clients)...)
	return all
}

// ServerTools returns all registered tools for inspection
func ServerTools(clients *ddclient.Clients) []mcp.Tool {
	defs := allTools(clients)
	result := make([]mcp.Tool, len(defs))
	for i, td := range defs {
		result[i] = td.Tool
	}
	return result
}

// toolLogging emits one structured line per tool invocation: tool name,
// request id, duration, slow flag, error flag.
func toolLogging(log *logrus.Logger, slowThreshold time.Duration) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, request)
			elapsed := time.Since(start)

			fields := logrus.Fields{
				"tool":        request.Params.Name,
				"request_id":  uuid.NewString(),
				"duration_ms": elapsed.Milliseconds(),
				"slow":        elapsed >= slowThreshold,
			}
			if err != nil {
				fields["error"] = err.Error()
			} else if result != nil && result.IsError {
				fields["is_error"] = true
			}
			log.WithFields(fields).Info("tool call completed")

			return result, err
		}
	}
}
