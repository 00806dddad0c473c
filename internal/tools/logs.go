package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/observekit/datadog-mcp/internal/ddclient"
	"github.com/observekit/datadog-mcp/internal/timeutil"
)

// RegisterLogsTools registers the logs domain tools.
func RegisterLogsTools(c *ddclient.Clients) []ToolDef {
	return []ToolDef{
		{
			Tool: mcp.NewTool("search_logs",
				mcp.WithDescription("Search Datadog logs with a query filter over a time range, newest first."),
				mcp.WithString("filter", mcp.Required(), mcp.Description("Log search query, e.g. 'service:api status:error'")),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("to", mcp.Required(), mcp.Description("End time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithNumber("pageSize", mcp.Description("Logs per page, capped at 100. Default 10.")),
				mcp.WithString("cursor", mcp.Description("Pagination cursor from a previous reply")),
			),
			Handler: searchLogsHandler(c),
		},
		{
			Tool: mcp.NewTool("get_log_by_id",
				mcp.WithDescription("Fetch a single log by its id within a time range."),
				mcp.WithString("logId", mcp.Required(), mcp.Description("Log id (letters, digits, '_' and '-' only)")),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("to", mcp.Required(), mcp.Description("End time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
			),
			Handler: getLogByIDHandler(c),
		},
	}
}

type logEntryReply struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp,omitempty"`
	Status    string   `json:"status,omitempty"`
	Service   string   `json:"service,omitempty"`
	Host      string   `json:"host,omitempty"`
	Message   string   `json:"message,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type logsSearchReply struct {
	Filter     string          `json:"filter"`
	LogsCount  int             `json:"logsCount"`
	HasMore    bool            `json:"hasMore"`
	NextCursor string          `json:"nextCursor,omitempty"`
	Logs       []logEntryReply `json:"logs"`
}

func searchLogsHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := request.GetString("filter", "")
		if filter == "" {
			return errorResult(errMissingFilter), nil
		}

		from, err := timestampArg(request, "from", timeutil.UnitMilliseconds)
		if err != nil {
			return errorResult(err), nil
		}
		to, err := timestampArg(request, "to", timeutil.UnitMilliseconds)
		if err != nil {
			return errorResult(err), nil
		}
		pageSize, err := pageSizeArg(request)
		if err != nil {
			return errorResult(err), nil
		}
		cursor := request.GetString("cursor", "")

		result, err := c.Logs.Search(ctx, filter, from, to, pageSize, cursor)
		if err != nil {
			return errorResult(err), nil
		}

		reply := logsSearchReply{
			Filter:     filter,
			LogsCount:  len(result.Logs),
			HasMore:    result.NextCursor != "",
			NextCursor: result.NextCursor,
			Logs:       []logEntryReply{},
		}
		for i, l := range result.Logs {
			if i >= maxLogEntries {
				break
			}
			reply.Logs = append(reply.Logs, shapeLogReply(l))
		}
		return successResult(reply), nil
	}
}

func getLogByIDHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logID := request.GetString("logId", "")
		if logID == "" {
			return errorResult(errMissingLogID), nil
		}

		from, err := timestampArg(request, "from", timeutil.UnitMilliseconds)
		if err != nil {
			return errorResult(err), nil
		}
		to, err := timestampArg(request, "to", timeutil.UnitMilliseconds)
		if err != nil {
			return errorResult(err), nil
		}

		entry, err := c.Logs.GetByID(ctx, logID, from, to)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(shapeLogReply(*entry)), nil
	}
}

func shapeLogReply(l ddclient.LogEntry) logEntryReply {
	return logEntryReply{
		ID:        l.ID,
		Timestamp: l.Timestamp,
		Status:    l.Status,
		Service:   l.Service,
		Host:      l.Host,
		Message:   truncateText(l.Message),
		Tags:      l.Tags,
	}
}
