package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/observekit/datadog-mcp/internal/ddclient"
)

// RegisterMonitorsTools registers the monitors domain tools.
func RegisterMonitorsTools(c *ddclient.Clients) []ToolDef {
	return []ToolDef{
		{
			Tool: mcp.NewTool("list_monitors",
				mcp.WithDescription("List Datadog monitors with combinable filters (name substring, tags, monitor type)."),
				mcp.WithString("name", mcp.Description("Substring to match against monitor names")),
				mcp.WithArray("tags",
					mcp.Description("Monitor tags that must all be present"),
					mcp.Items(map[string]interface{}{"type": "string"}),
				),
				mcp.WithString("monitorType", mcp.Description("Monitor type, e.g. 'metric alert', 'log alert'")),
				mcp.WithNumber("pageSize", mcp.Description("Monitors per page, capped at 100. Default 10.")),
			),
			Handler: listMonitorsHandler(c),
		},
		{
			Tool: mcp.NewTool("get_monitor",
				mcp.WithDescription("Get the full definition of one monitor by id."),
				mcp.WithNumber("monitorId", mcp.Required(), mcp.Description("Monitor id (0 is valid)")),
			),
			Handler: getMonitorHandler(c),
		},
		{
			Tool: mcp.NewTool("get_monitor_status",
				mcp.WithDescription("Get the overall and per-group state of one monitor by id."),
				mcp.WithNumber("monitorId", mcp.Required(), mcp.Description("Monitor id (0 is valid)")),
			),
			Handler: getMonitorStatusHandler(c),
		},
	}
}

type monitorReply struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name,omitempty"`
	Type         string   `json:"type,omitempty"`
	Query        string   `json:"query,omitempty"`
	Message      string   `json:"message,omitempty"`
	OverallState string   `json:"overallState,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

type monitorsListReply struct {
	MonitorsCount int            `json:"monitorsCount"`
	HasMore       bool           `json:"hasMore"`
	Monitors      []monitorReply `json:"monitors"`
}

func shapeMonitorReply(m ddclient.MonitorSummary) monitorReply {
	return monitorReply{
		ID:           m.ID,
		Name:         truncateText(m.Name),
		Type:         m.Type,
		Query:        m.Query,
		Message:      truncateText(m.Message),
		OverallState: m.OverallState,
		Tags:         m.Tags,
	}
}

func listMonitorsHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.GetString("name", "")
		tags := stringSliceArg(request, "tags")
		monitorType := request.GetString("monitorType", "")
		pageSize, err := pageSizeArg(request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := c.Monitors.List(ctx, name, tags, monitorType, pageSize)
		if err != nil {
			return errorResult(err), nil
		}

		reply := monitorsListReply{
			MonitorsCount: len(result.Monitors),
			HasMore:       result.HasMore,
			Monitors:      []monitorReply{},
		}
		for i, m := range result.Monitors {
			if i >= maxListEntries {
				break
			}
			reply.Monitors = append(reply.Monitors, shapeMonitorReply(m))
		}
		return successResult(reply), nil
	}
}

// monitorIDArg reads the required monitorId, treating 0 as present and valid.
func monitorIDArg(request mcp.CallToolRequest) (int64, error) {
	id, ok, err := numberArg(request, "monitorId")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errMissingMonitorID
	}
	return int64(id), nil
}

func getMonitorHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := monitorIDArg(request)
		if err != nil {
			return errorResult(err), nil
		}

		monitor, err := c.Monitors.Get(ctx, id)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(shapeMonitorReply(*monitor)), nil
	}
}

func getMonitorStatusHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := monitorIDArg(request)
		if err != nil {
			return errorResult(err), nil
		}

		status, err := c.Monitors.Status(ctx, id)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(status), nil
	}
}
