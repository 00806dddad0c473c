package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/observekit/datadog-mcp/internal/ddclient"
	"github.com/observekit/datadog-mcp/internal/timeutil"
)

// RegisterEventsTools registers the events domain tools.
func RegisterEventsTools(c *ddclient.Clients) []ToolDef {
	return []ToolDef{
		{
			Tool: mcp.NewTool("search_events",
				mcp.WithDescription("Search the Datadog event stream with a query over a time range."),
				mcp.WithString("query", mcp.Required(), mcp.Description("Event search query, e.g. 'source:kubernetes priority:normal'")),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("to", mcp.Required(), mcp.Description("End time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithNumber("pageSize", mcp.Description("Events per page, capped at 100. Default 10.")),
			),
			Handler: searchEventsHandler(c),
		},
		{
			Tool: mcp.NewTool("search_events_by_tags",
				mcp.WithDescription("Search events carrying all of the given tags. Tags are combined with AND."),
				mcp.WithArray("tags", mcp.Required(),
					mcp.Description("Tags that must all be present, e.g. ['env:prod', 'team:payments']"),
					mcp.Items(map[string]interface{}{"type": "string"}),
				),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("to", mcp.Required(), mcp.Description("End time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithNumber("pageSize", mcp.Description("Events per page, capped at 100. Default 10.")),
			),
			Handler: searchEventsByTagsHandler(c),
		},
		{
			Tool: mcp.NewTool("get_events_by_alert_type",
				mcp.WithDescription("Search alert events of one type (error, warning, info, success)."),
				mcp.WithString("alertType", mcp.Required(), mcp.Description("One of: error, warning, info, success")),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("to", mcp.Required(), mcp.Description("End time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithNumber("pageSize", mcp.Description("Events per page, capped at 100. Default 10.")),
			),
			Handler: getEventsByAlertTypeHandler(c),
		},
		{
			Tool: mcp.NewTool("get_events_by_monitor_id",
				mcp.WithDescription("Search events produced by one monitor."),
				mcp.WithNumber("monitorId", mcp.Required(), mcp.Description("Monitor id (0 is valid)")),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("to", mcp.Required(), mcp.Description("End time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithNumber("pageSize", mcp.Description("Events per page, capped at 100. Default 10.")),
			),
			Handler: getEventsByMonitorIDHandler(c),
		},
	}
}

type eventReply struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Text      string   `json:"text,omitempty"`
	Status    string   `json:"status,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type eventsSearchReply struct {
	Query       string       `json:"query"`
	EventsCount int          `json:"eventsCount"`
	HasMore     bool         `json:"hasMore"`
	NextCursor  string       `json:"nextCursor,omitempty"`
	Events      []eventReply `json:"events"`
}

// eventTimeRange pulls the shared from/to/pageSize arguments for the events
// domain (unit: seconds).
func eventTimeRange(request mcp.CallToolRequest) (from, to int64, pageSize int32, err error) {
	from, err = timestampArg(request, "from", timeutil.UnitSeconds)
	if err != nil {
		return 0, 0, 0, err
	}
	to, err = timestampArg(request, "to", timeutil.UnitSeconds)
	if err != nil {
		return 0, 0, 0, err
	}
	pageSize, err = pageSizeArg(request)
	if err != nil {
		return 0, 0, 0, err
	}
	return from, to, pageSize, nil
}

func shapeEventsReply(result *ddclient.EventsSearchResult) eventsSearchReply {
	reply := eventsSearchReply{
		Query:       result.Query,
		EventsCount: len(result.Events),
		HasMore:     result.NextCursor != "",
		NextCursor:  result.NextCursor,
		Events:      []eventReply{},
	}
	for i, e := range result.Events {
		if i >= maxListEntries {
			break
		}
		reply.Events = append(reply.Events, eventReply{
			ID:        e.ID,
			Title:     truncateText(e.Title),
			Text:      truncateText(e.Text),
			Status:    e.Status,
			Timestamp: e.Timestamp,
			Tags:      e.Tags,
		})
	}
	return reply
}

func searchEventsHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := request.GetString("query", "")
		if q == "" {
			return errorResult(errMissingQuery), nil
		}
		from, to, pageSize, err := eventTimeRange(request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := c.Events.Search(ctx, q, from, to, pageSize)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(shapeEventsReply(result)), nil
	}
}

func searchEventsByTagsHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags := stringSliceArg(request, "tags")
		from, to, pageSize, err := eventTimeRange(request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := c.Events.SearchByTags(ctx, tags, from, to, pageSize)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(shapeEventsReply(result)), nil
	}
}

func getEventsByAlertTypeHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		alertType := request.GetString("alertType", "")
		from, to, pageSize, err := eventTimeRange(request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := c.Events.SearchByAlertType(ctx, alertType, from, to, pageSize)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(shapeEventsReply(result)), nil
	}
}

func getEventsByMonitorIDHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// monitor id 0 is valid, so presence is a nil check, never truthiness
		id, ok, err := numberArg(request, "monitorId")
		if err != nil {
			return errorResult(err), nil
		}
		if !ok {
			return errorResult(errMissingMonitorID), nil
		}
		from, to, pageSize, err := eventTimeRange(request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := c.Events.SearchByMonitorID(ctx, int64(id), from, to, pageSize)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(shapeEventsReply(result)), nil
	}
}
