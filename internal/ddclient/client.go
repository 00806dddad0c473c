// Package ddclient wraps the Datadog API SDK, one client per domain. Every
// method validates its input before any network call and returns a plain
// result plus an error; SDK failures surface as *APIError carrying the HTTP
// status. Nothing in this package panics across its boundary.
package ddclient

import (
	"context"
	"errors"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"github.com/observekit/datadog-mcp/internal/config"
)

const (
	defaultPageSize int32 = 10
	maxPageSize     int32 = 100
)

// errStartAfterEnd is the exact range-ordering failure every domain reports.
var errStartAfterEnd = errors.New("Start time must be before end time")

// authFunc decorates a request context with the API credentials and site.
// Tests leave it nil.
type authFunc func(context.Context) context.Context

// Clients bundles the five domain clients. Constructed once at startup and
// treated as read-only afterwards.
type Clients struct {
	Metrics  *MetricsClient
	Logs     *LogsClient
	Events   *EventsClient
	Monitors *MonitorsClient
	APM      *APMClient
}

// New builds the domain clients over a single Datadog API client configured
// from cfg.
func New(cfg *config.Config) *Clients {
	apiClient := datadog.NewAPIClient(datadog.NewConfiguration())

	auth := func(ctx context.Context) context.Context {
		ctx = context.WithValue(ctx, datadog.ContextAPIKeys, map[string]datadog.APIKey{
			"apiKeyAuth": {Key: cfg.APIKey},
			"appKeyAuth": {Key: cfg.AppKey},
		})
		return context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{
			"site": cfg.Site,
		})
	}

	metricsAPI := datadogV1.NewMetricsApi(apiClient)

	return &Clients{
		Metrics:  &MetricsClient{api: metricsAPI, auth: auth},
		Logs:     &LogsClient{api: datadogV2.NewLogsApi(apiClient), auth: auth},
		Events:   &EventsClient{api: datadogV2.NewEventsApi(apiClient), auth: auth},
		Monitors: &MonitorsClient{api: datadogV1.NewMonitorsApi(apiClient), auth: auth},
		APM: &APMClient{
			spans:    datadogV2.NewSpansApi(apiClient),
			metrics:  metricsAPI,
			services: datadogV2.NewServiceDefinitionApi(apiClient),
			auth:     auth,
		},
	}
}

func withAuth(ctx context.Context, auth authFunc) context.Context {
	if auth == nil {
		return ctx
	}
	return auth(ctx)
}

// validateRange enforces strict from < to ordering after both ends have been
// normalized into the same unit.
func validateRange(from, to int64) error {
	if from >= to {
		return errStartAfterEnd
	}
	return nil
}

// clampPageSize applies the default and the hard cap shared by all domains.
func clampPageSize(requested int32) int32 {
	if requested <= 0 {
		return defaultPageSize
	}
	if requested > maxPageSize {
		return maxPageSize
	}
	return requested
}
