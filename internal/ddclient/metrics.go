package ddclient

import (
	"context"
	"net/http"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"

	"github.com/observekit/datadog-mcp/internal/query"
)

// MetricsAPI is the slice of the Datadog V1 metrics API this client uses.
type MetricsAPI interface {
	QueryMetrics(ctx context.Context, from int64, to int64, q string) (datadogV1.MetricsQueryResponse, *http.Response, error)
	ListActiveMetrics(ctx context.Context, from int64, o ...datadogV1.ListActiveMetricsOptionalParameters) (datadogV1.MetricsListResponse, *http.Response, error)
	GetMetricMetadata(ctx context.Context, metricName string) (datadogV1.MetricMetadata, *http.Response, error)
}

// MetricsClient queries timeseries metrics. Time unit: seconds.
type MetricsClient struct {
	api  MetricsAPI
	auth authFunc
}

// NewMetricsClient builds a client over an arbitrary MetricsAPI; used by
// tests to substitute a fake.
func NewMetricsClient(api MetricsAPI) *MetricsClient {
	return &MetricsClient{api: api}
}

// MetricSeries is one timeseries from a metric query, with null points
// dropped.
type MetricSeries struct {
	Metric      string      `json:"metric"`
	Scope       string      `json:"scope,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
	Unit        string      `json:"unit,omitempty"`
	Points      [][]float64 `json:"points"`
}

// MetricsQueryResult is the shaped outcome of a metric query.
type MetricsQueryResult struct {
	Query   string
	FromSec int64
	ToSec   int64
	Series  []MetricSeries
}

// Query runs a timeseries query for metricName scoped by filter over
// [fromSec, toSec).
func (c *MetricsClient) Query(ctx context.Context, metricName, filter string, fromSec, toSec int64) (*MetricsQueryResult, error) {
	q, err := query.MetricQuery(metricName, filter)
	if err != nil {
		return nil, err
	}
	if err := validateRange(fromSec, toSec); err != nil {
		return nil, err
	}

	resp, httpResp, err := c.api.QueryMetrics(withAuth(ctx, c.auth), fromSec, toSec, q)
	if err != nil {
		return nil, newAPIError("query metrics", httpResp, err)
	}

	result := &MetricsQueryResult{Query: q, FromSec: fromSec, ToSec: toSec}
	for _, s := range resp.GetSeries() {
		series := MetricSeries{
			Metric:      s.GetMetric(),
			Scope:       s.GetScope(),
			DisplayName: s.GetDisplayName(),
		}
		if units := s.GetUnit(); len(units) > 0 {
			series.Unit = units[0].GetName()
		}
		for _, point := range s.GetPointlist() {
			if len(point) < 2 || point[0] == nil || point[1] == nil {
				continue
			}
			series.Points = append(series.Points, []float64{*point[0], *point[1]})
		}
		result.Series = append(result.Series, series)
	}
	return result, nil
}

// ListActive returns the metric names actively reporting since fromSec,
// optionally narrowed by host or tag filter.
func (c *MetricsClient) ListActive(ctx context.Context, fromSec int64, host, tagFilter string) ([]string, error) {
	params := *datadogV1.NewListActiveMetricsOptionalParameters()
	if host != "" {
		params = *params.WithHost(host)
	}
	if tagFilter != "" {
		params = *params.WithTagFilter(tagFilter)
	}

	resp, httpResp, err := c.api.ListActiveMetrics(withAuth(ctx, c.auth), fromSec, params)
	if err != nil {
		return nil, newAPIError("list active metrics", httpResp, err)
	}
	return resp.GetMetrics(), nil
}

// MetricMetadataResult mirrors the vendor metadata record.
type MetricMetadataResult struct {
	Metric      string `json:"metric"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
	PerUnit     string `json:"perUnit,omitempty"`
	Integration string `json:"integration,omitempty"`
	ShortName   string `json:"shortName,omitempty"`
}

// Metadata fetches the stored metadata for a metric name.
func (c *MetricsClient) Metadata(ctx context.Context, metricName string) (*MetricMetadataResult, error) {
	q, err := query.MetricQuery(metricName, "")
	if err != nil {
		return nil, err
	}

	resp, httpResp, err := c.api.GetMetricMetadata(withAuth(ctx, c.auth), q)
	if err != nil {
		return nil, newAPIError("get metric metadata", httpResp, err)
	}
	return &MetricMetadataResult{
		Metric:      q,
		Type:        resp.GetType(),
		Description: resp.GetDescription(),
		Unit:        resp.GetUnit(),
		PerUnit:     resp.GetPerUnit(),
		Integration: resp.GetIntegration(),
		ShortName:   resp.GetShortName(),
	}, nil
}
