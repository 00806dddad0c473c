package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/observekit/datadog-mcp/internal/ddclient"
	"github.com/observekit/datadog-mcp/internal/timeutil"
)

// RegisterMetricsTools registers the metrics domain tools.
func RegisterMetricsTools(c *ddclient.Clients) []ToolDef {
	return []ToolDef{
		{
			Tool: mcp.NewTool("query_metrics",
				mcp.WithDescription("Query Datadog timeseries metrics over a time range. Returns one series per matching scope."),
				mcp.WithString("metricName", mcp.Required(), mcp.Description("Metric name, e.g. 'system.cpu.user'")),
				mcp.WithString("filter", mcp.Description("Scope filter placed inside the braces, e.g. 'host:web-1,env:prod'. Must not contain '{' or '}'.")),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("to", mcp.Required(), mcp.Description("End time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
			),
			Handler: queryMetricsHandler(c),
		},
		{
			Tool: mcp.NewTool("list_active_metrics",
				mcp.WithDescription("List metric names actively reporting since a start time, optionally narrowed by host or tag filter."),
				mcp.WithString("from", mcp.Required(), mcp.Description("Start time: Unix seconds, Unix milliseconds, or ISO-8601 string")),
				mcp.WithString("host", mcp.Description("Only metrics reported by this host")),
				mcp.WithString("tagFilter", mcp.Description("Tag filter, e.g. 'env:prod'")),
			),
			Handler: listActiveMetricsHandler(c),
		},
		{
			Tool: mcp.NewTool("get_metric_metadata",
				mcp.WithDescription("Get the stored metadata (type, unit, description) for a metric name."),
				mcp.WithString("metricName", mcp.Required(), mcp.Description("Metric name to look up")),
			),
			Handler: getMetricMetadataHandler(c),
		},
	}
}

type metricSeriesReply struct {
	Metric      string      `json:"metric"`
	Scope       string      `json:"scope,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
	Unit        string      `json:"unit,omitempty"`
	PointsCount int         `json:"pointsCount"`
	Points      [][]float64 `json:"points"`
}

type metricsQueryReply struct {
	Metric      string              `json:"metric"`
	Query       string              `json:"query"`
	From        int64               `json:"from"`
	To          int64               `json:"to"`
	SeriesCount int                 `json:"seriesCount"`
	Series      []metricSeriesReply `json:"series"`
}

func queryMetricsHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metricName := request.GetString("metricName", "")
		if metricName == "" {
			return errorResult(errMissingMetricName), nil
		}
		filter := request.GetString("filter", "")

		from, err := timestampArg(request, "from", timeutil.UnitSeconds)
		if err != nil {
			return errorResult(err), nil
		}
		to, err := timestampArg(request, "to", timeutil.UnitSeconds)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := c.Metrics.Query(ctx, metricName, filter, from, to)
		if err != nil {
			return errorResult(err), nil
		}

		reply := metricsQueryReply{
			Metric:      metricName,
			Query:       result.Query,
			From:        result.FromSec,
			To:          result.ToSec,
			SeriesCount: len(result.Series),
			Series:      []metricSeriesReply{},
		}
		for i, s := range result.Series {
			if i >= maxListEntries {
				break
			}
			sr := metricSeriesReply{
				Metric:      s.Metric,
				Scope:       s.Scope,
				DisplayName: s.DisplayName,
				Unit:        s.Unit,
				PointsCount: len(s.Points),
				Points:      s.Points,
			}
			if len(sr.Points) > maxPointsPerSeries {
				sr.Points = sr.Points[:maxPointsPerSeries]
			}
			reply.Series = append(reply.Series, sr)
		}
		return successResult(reply), nil
	}
}

type activeMetricsReply struct {
	From         int64    `json:"from"`
	MetricsCount int      `json:"metricsCount"`
	Truncated    bool     `json:"truncated,omitempty"`
	Metrics      []string `json:"metrics"`
}

func listActiveMetricsHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, err := timestampArg(request, "from", timeutil.UnitSeconds)
		if err != nil {
			return errorResult(err), nil
		}
		host := request.GetString("host", "")
		tagFilter := request.GetString("tagFilter", "")

		metrics, err := c.Metrics.ListActive(ctx, from, host, tagFilter)
		if err != nil {
			return errorResult(err), nil
		}

		reply := activeMetricsReply{From: from, MetricsCount: len(metrics), Metrics: metrics}
		if len(metrics) > maxListEntries {
			reply.Metrics = metrics[:maxListEntries]
			reply.Truncated = true
		}
		if reply.Metrics == nil {
			reply.Metrics = []string{}
		}
		return successResult(reply), nil
	}
}

func getMetricMetadataHandler(c *ddclient.Clients) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metricName := request.GetString("metricName", "")
		if metricName == "" {
			return errorResult(errMissingMetricName), nil
		}

		meta, err := c.Metrics.Metadata(ctx, metricName)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(meta), nil
	}
}
