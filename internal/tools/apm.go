package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/observekit/datadog-mcp/internal/ddclient"
	"github.com/observekit/datadog-mcp/internal/timeutil"
)

// RegisterAPMTools registers the APM/services domain tools.
func RegisterAPMTools(c *ddclient.Clients) []ToolDef {
	return []ToolDef{
		{
			Tool: mcp.NewTool("query_traces",
				mcp.WithDescription("Query APM traces over a time range. With a service name, traces are grouped from a direct span search; otherwise (or when the span search fails) a coarser summary is synthesized from trace metrics. The reply says which path produced it."),
				mcp.WithString("service", mcp.Description("Service name to search spans for")),
				mcp.WithString("operation", mcp.Description("Operation name to narrow the span search")),
				mcp.WithString("filter", mcp.Description("Extra span search query appended as-is")),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("to", mcp.Required(), mcp.Description("End time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithNumber("pageSize", mcp.Description("Traces per page, capped at 100. Default 10.")),
			),
			Handler: queryTracesHandler(c),
		},
		{
			Tool: mcp.NewTool("list_services",
				mcp.WithDescription("List service names registered in the Datadog service catalog."),
				mcp.WithNumber("pageSize", mcp.Description("Services per page, capped at 100. Default 10.")),
			),
			Handler: listServicesHandler(c),
		},
	}
}

type traceReply struct {
	TraceID      string  `json:"traceId,omitempty"`
	Service      string  `json:"service,omitempty"`
	ResourceName string  `json:"resourceName,omitempty"`
	SpanCount    int     `json:"spanCount,omitempty"`
	DurationMs   float64 `json:"durationMs"`
	StartTime    string  `json:"startTime,omitempty"`
}

type tracesReply struct {
	TracesCount int          `json:"tracesCount"`
	Source      string       `json:"source"`
	Message     string       `json:"message"`
	Traces      []traceReply `json:"traces"`
}

func queryTracesHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		service := request.GetString("service", "")
		operation := request.GetString("operation", "")
		filter := request.GetString("filter", "")

		from, err := timestampArg(request, "from", timeutil.UnitSeconds)
		if err != nil {
			return errorResult(err), nil
		}
		to, err := timestampArg(request, "to", timeutil.UnitSeconds)
		if err != nil {
			return errorResult(err), nil
		}
		pageSize, err := pageSizeArg(request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := c.APM.QueryTraces(ctx, service, operation, filter, from, to, pageSize)
		if err != nil {
			return errorResult(err), nil
		}

		reply := tracesReply{
			TracesCount: len(result.Traces),
			Source:      result.Source,
			Message:     result.Message,
			Traces:      []traceReply{},
		}
		for i, t := range result.Traces {
			if i >= maxListEntries {
				break
			}
			reply.Traces = append(reply.Traces, traceReply{
				TraceID:      t.TraceID,
				Service:      t.Service,
				ResourceName: truncateText(t.ResourceName),
				SpanCount:    t.SpanCount,
				DurationMs:   t.DurationMs,
				StartTime:    t.StartTime,
			})
		}
		return successResult(reply), nil
	}
}

type servicesReply struct {
	ServicesCount int      `json:"servicesCount"`
	HasMore       bool     `json:"hasMore"`
	Services      []string `json:"services"`
}

func listServicesHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageSize, err := pageSizeArg(request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := c.APM.ListServices(ctx, pageSize)
		if err != nil {
			return errorResult(err), nil
		}

		reply := servicesReply{
			ServicesCount: len(result.Services),
			HasMore:       result.HasMore,
			Services:      result.Services,
		}
		if len(reply.Services) > maxListEntries {
			reply.Services = reply.Services[:maxListEntries]
		}
		if reply.Services == nil {
			reply.Services = []string{}
		}
		return successResult(reply), nil
	}
}
