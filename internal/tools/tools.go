// Package tools defines the callable MCP tools, one file per Datadog domain.
// Handlers never propagate errors to the protocol layer: every failure is
// rendered as an error reply with an actionable hint.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/observekit/datadog-mcp/internal/timeutil"
)

// Common errors
var (
	errMissingMetricName = errors.New("metricName is required")
	errMissingFilter     = errors.New("filter is required")
	errMissingQuery      = errors.New("query is required")
	errMissingMonitorID  = errors.New("monitorId is required")
	errMissingLogID      = errors.New("logId is required")
)

// ToolDef pairs a tool with its handler
type ToolDef struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Response-size controls. Lists are capped before serialization so a large
// vendor page cannot blow up the reply; free-text fields are clipped.
const (
	maxListEntries     = 100
	maxLogEntries      = 50
	maxTextChars       = 300
	maxPointsPerSeries = 100
)

// timestampArg reads a required timestamp argument that may arrive as a
// number or a string, normalized into the unit the domain client expects.
func timestampArg(request mcp.CallToolRequest, key string, unit timeutil.Unit) (int64, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	return timeutil.Normalize(v, unit)
}

// numberArg reads an optional numeric argument, tolerating JSON numbers,
// strings and json.Number. ok is false when the argument is absent.
func numberArg(request mcp.CallToolRequest, key string) (float64, bool, error) {
	args := request.GetArguments()
	v, present := args[key]
	if !present || v == nil {
		return 0, false, nil
	}
	switch t := v.(type) {
	case float64:
		return t, true, nil
	case int:
		return float64(t), true, nil
	case int64:
		return float64(t), true, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("%s must be a number", key)
		}
		return f, true, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%s must be a number", key)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
}

// pageSizeArg reads the optional pageSize argument; 0 means "use the default"
// and lets the client apply its own clamp.
func pageSizeArg(request mcp.CallToolRequest) (int32, error) {
	f, ok, err := numberArg(request, "pageSize")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if f < 0 {
		return 0, fmt.Errorf("pageSize must be non-negative")
	}
	return int32(f), nil
}

// stringSliceArg extracts a string-array argument, tolerating the loose
// shapes JSON decoding produces.
func stringSliceArg(request mcp.CallToolRequest, key string) []string {
	args := request.GetArguments()
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = v
	default:
		data, _ := json.Marshal(raw)
		json.Unmarshal(data, &out)
	}
	return out
}

// truncateText clips free-text fields to the reply cap.
func truncateText(s string) string {
	if len(s) <= maxTextChars {
		return s
	}
	return s[:maxTextChars] + "..."
}
