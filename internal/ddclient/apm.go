package ddclient

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"github.com/observekit/datadog-mcp/internal/timeutil"
)

// SpansAPI is the slice of the Datadog V2 spans API this client uses.
type SpansAPI interface {
	ListSpans(ctx context.Context, body datadogV2.SpansListRequest) (datadogV2.SpansListResponse, *http.Response, error)
}

// ServiceDefinitionsAPI is the slice of the service catalog API this client
// uses.
type ServiceDefinitionsAPI interface {
	ListServiceDefinitions(ctx context.Context, o ...datadogV2.ListServiceDefinitionsOptionalParameters) (datadogV2.ServiceDefinitionsListResponse, *http.Response, error)
}

// APMClient queries traces and the service catalog. Time unit: seconds.
//
// Trace queries have two paths of different fidelity. When a service name is
// given, spans are listed directly and grouped into traces; if that call
// fails, or no service name was given, trace-derived metrics are queried and
// a coarser summary is synthesized. The result says which path produced it.
type APMClient struct {
	spans    SpansAPI
	metrics  MetricsAPI
	services ServiceDefinitionsAPI
	auth     authFunc
}

// NewAPMClient builds a client over arbitrary APIs; used by tests.
func NewAPMClient(spans SpansAPI, metrics MetricsAPI, services ServiceDefinitionsAPI) *APMClient {
	return &APMClient{spans: spans, metrics: metrics, services: services}
}

// Trace source values reported in TracesResult.
const (
	TraceSourceSpans   = "spans"
	TraceSourceMetrics = "metrics"
)

// TraceSummary is one trace, either grouped from spans or synthesized from a
// metric series.
type TraceSummary struct {
	TraceID      string  `json:"traceId,omitempty"`
	Service      string  `json:"service,omitempty"`
	ResourceName string  `json:"resourceName,omitempty"`
	SpanCount    int     `json:"spanCount,omitempty"`
	DurationMs   float64 `json:"durationMs"`
	StartTime    string  `json:"startTime,omitempty"`
}

// TracesResult carries the traces plus which path produced them. Message is
// always non-empty and human-readable; Source is the coarse discriminator.
type TracesResult struct {
	Traces  []TraceSummary
	Source  string
	Message string
}

// QueryTraces returns trace summaries for [fromSec, toSec). See the type
// comment for the two-path behavior. When both paths fail, the error of the
// last attempted path (metrics) is returned, since it is the more specific
// failure.
func (c *APMClient) QueryTraces(ctx context.Context, service, operation, filter string, fromSec, toSec int64, limit int32) (*TracesResult, error) {
	if err := validateRange(fromSec, toSec); err != nil {
		return nil, err
	}
	limit = clampPageSize(limit)

	var spanErr error
	if service != "" {
		result, err := c.tracesFromSpans(ctx, service, operation, filter, fromSec, toSec, limit)
		if err == nil {
			return result, nil
		}
		spanErr = err
	}

	result, err := c.tracesFromMetrics(ctx, service, fromSec, toSec, limit)
	if err != nil {
		return nil, err
	}
	if spanErr != nil {
		result.Message = fmt.Sprintf("span search failed (%v); %s", spanErr, result.Message)
	}
	return result, nil
}

func (c *APMClient) tracesFromSpans(ctx context.Context, service, operation, filter string, fromSec, toSec int64, limit int32) (*TracesResult, error) {
	parts := []string{fmt.Sprintf("service:%s", service)}
	if operation != "" {
		parts = append(parts, fmt.Sprintf("operation_name:%s", operation))
	}
	if filter != "" {
		parts = append(parts, filter)
	}
	q := strings.Join(parts, " ")

	body := datadogV2.SpansListRequest{
		Data: &datadogV2.SpansListRequestData{
			Attributes: &datadogV2.SpansListRequestAttributes{
				Filter: &datadogV2.SpansQueryFilter{
					Query: datadog.PtrString(q),
					From:  datadog.PtrString(timeutil.SecondsToRFC3339(fromSec)),
					To:    datadog.PtrString(timeutil.SecondsToRFC3339(toSec)),
				},
				Page: &datadogV2.SpansListRequestPage{Limit: datadog.PtrInt32(limit)},
				Sort: datadogV2.SPANSSORT_TIMESTAMP_DESCENDING.Ptr(),
			},
			Type: datadogV2.SPANSLISTREQUESTTYPE_SEARCH_REQUEST.Ptr(),
		},
	}

	resp, httpResp, err := c.spans.ListSpans(withAuth(ctx, c.auth), body)
	if err != nil {
		return nil, newAPIError("list spans", httpResp, err)
	}

	// Group spans by trace id; the trace duration is the maximum observed
	// span duration, since the root span is not guaranteed to be in the page.
	byTrace := map[string]*TraceSummary{}
	spanCount := 0
	for _, span := range resp.GetData() {
		attrs, ok := span.GetAttributesOk()
		if !ok {
			continue
		}
		traceID := attrs.GetTraceId()
		if traceID == "" {
			continue
		}
		spanCount++
		summary, seen := byTrace[traceID]
		if !seen {
			summary = &TraceSummary{TraceID: traceID, Service: attrs.GetService()}
			byTrace[traceID] = summary
		}
		summary.SpanCount++
		if rn := attrs.GetResourceName(); rn != "" && summary.ResourceName == "" {
			summary.ResourceName = rn
		}
		if start, ok := attrs.GetStartTimestampOk(); ok && start != nil {
			ts := start.UTC().Format("2006-01-02T15:04:05.000Z07:00")
			if summary.StartTime == "" || ts < summary.StartTime {
				summary.StartTime = ts
			}
			if end, ok := attrs.GetEndTimestampOk(); ok && end != nil {
				if d := float64(end.Sub(*start).Microseconds()) / 1000; d > summary.DurationMs {
					summary.DurationMs = d
				}
			}
		}
	}

	traces := make([]TraceSummary, 0, len(byTrace))
	for _, summary := range byTrace {
		traces = append(traces, *summary)
	}
	sort.Slice(traces, func(i, j int) bool {
		if traces[i].StartTime != traces[j].StartTime {
			return traces[i].StartTime > traces[j].StartTime
		}
		return traces[i].TraceID < traces[j].TraceID
	})

	return &TracesResult{
		Traces:  traces,
		Source:  TraceSourceSpans,
		Message: fmt.Sprintf("Derived %d traces from %d spans via span search.", len(traces), spanCount),
	}, nil
}

func (c *APMClient) tracesFromMetrics(ctx context.Context, service string, fromSec, toSec int64, limit int32) (*TracesResult, error) {
	scope := "*"
	if service != "" {
		scope = fmt.Sprintf("service:%s", service)
	}
	q := fmt.Sprintf("avg:trace.http.request.duration{%s} by {resource_name}", scope)

	resp, httpResp, err := c.metrics.QueryMetrics(withAuth(ctx, c.auth), fromSec, toSec, q)
	if err != nil {
		return nil, newAPIError("query trace metrics", httpResp, err)
	}

	result := &TracesResult{
		Source:  TraceSourceMetrics,
		Message: "Synthesized trace summaries from trace metrics (fallback path, lower fidelity).",
	}
	for _, series := range resp.GetSeries() {
		if int32(len(result.Traces)) >= limit {
			break
		}
		summary := TraceSummary{
			Service:      service,
			ResourceName: scopeResource(series.GetScope()),
		}
		var sum float64
		var n int
		for _, point := range series.GetPointlist() {
			if len(point) < 2 || point[1] == nil {
				continue
			}
			sum += *point[1]
			n++
		}
		if n > 0 {
			// trace.* duration metrics report seconds
			summary.DurationMs = sum / float64(n) * 1000
		}
		result.Traces = append(result.Traces, summary)
	}
	return result, nil
}

// scopeResource pulls the resource_name out of a series scope string like
// "resource_name:get_/api/users,service:api".
func scopeResource(scope string) string {
	for _, part := range strings.Split(scope, ",") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(part), "resource_name:"); ok {
			return v
		}
	}
	return scope
}

// ServicesResult carries the service catalog names.
type ServicesResult struct {
	Services []string
	HasMore  bool
}

// ListServices returns service names from the service catalog.
func (c *APMClient) ListServices(ctx context.Context, pageSize int32) (*ServicesResult, error) {
	limit := clampPageSize(pageSize)

	params := *datadogV2.NewListServiceDefinitionsOptionalParameters().WithPageSize(int64(limit))
	resp, httpResp, err := c.services.ListServiceDefinitions(withAuth(ctx, c.auth), params)
	if err != nil {
		return nil, newAPIError("list services", httpResp, err)
	}

	result := &ServicesResult{}
	for _, def := range resp.GetData() {
		if id := def.GetId(); id != "" {
			result.Services = append(result.Services, id)
		}
	}
	sort.Strings(result.Services)
	result.HasMore = int32(len(resp.GetData())) == limit
	return result, nil
}
