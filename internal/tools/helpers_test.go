package tools

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

// findHandler pulls one tool's handler out of a registration list.
func findHandler(t *testing.T, defs []ToolDef, name string) server.ToolHandlerFunc {
	t.Helper()
	for _, td := range defs {
		if td.Tool.Name == name {
			return td.Handler
		}
	}
	t.Fatalf("tool %q not registered", name)
	return nil
}

// callRequest builds the loosely-typed request a client would send.
func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// resultText extracts the single text content item every reply carries.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is not text")
	return tc.Text
}
