package tools

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/observekit/datadog-mcp/internal/ddclient"
)

// successResult serializes a reply struct as the tool's text content. Reply
// bodies are structs, not maps, so identical input produces byte-identical
// replies.
func successResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(formatToolError("failed to serialize response", 0))
	}
	return mcp.NewToolResultText(string(data))
}

// errorResult renders an error as an error reply, with the vendor status
// (when the error carries one) driving the hint.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(formatToolError(err.Error(), ddclient.StatusCode(err)))
}

// formatToolError appends at most one actionable hint to the message. The
// precedence is fixed and first-match-wins: a message could satisfy several
// rules, and reordering would change which hint users see.
func formatToolError(message string, statusCode int) string {
	var hint string
	lower := strings.ToLower(message)
	switch {
	case statusCode == 401 || statusCode == 403:
		hint = "Check that your Datadog API key and application key are valid and have the required scopes."
	case statusCode == 404:
		hint = "No matching resource was found. Verify the identifier and your Datadog site."
	case statusCode == 429:
		hint = "Datadog rate limit reached. Wait before retrying or reduce the request frequency."
	case strings.Contains(lower, "before end time"):
		hint = "Ensure the start time is strictly before the end time."
	case strings.Contains(lower, "invalid") && strings.Contains(lower, "format"):
		hint = "Timestamps may be Unix seconds, Unix milliseconds, or an ISO-8601 string."
	}
	if hint == "" {
		return message
	}
	return message + " Hint: " + hint
}
