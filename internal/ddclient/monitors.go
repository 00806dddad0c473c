package ddclient

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"

	"github.com/observekit/datadog-mcp/internal/query"
)

// MonitorsAPI is the slice of the Datadog V1 monitors API this client uses.
type MonitorsAPI interface {
	ListMonitors(ctx context.Context, o ...datadogV1.ListMonitorsOptionalParameters) ([]datadogV1.Monitor, *http.Response, error)
	GetMonitor(ctx context.Context, monitorID int64, o ...datadogV1.GetMonitorOptionalParameters) (datadogV1.Monitor, *http.Response, error)
}

// MonitorsClient lists and inspects monitors. Monitor id 0 is valid; callers
// check presence with a nil test, never truthiness.
type MonitorsClient struct {
	api  MonitorsAPI
	auth authFunc
}

// NewMonitorsClient builds a client over an arbitrary MonitorsAPI; used by
// tests.
func NewMonitorsClient(api MonitorsAPI) *MonitorsClient {
	return &MonitorsClient{api: api}
}

// MonitorSummary is one shaped monitor record.
type MonitorSummary struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name,omitempty"`
	Type         string   `json:"type,omitempty"`
	Query        string   `json:"query,omitempty"`
	Message      string   `json:"message,omitempty"`
	OverallState string   `json:"overallState,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// MonitorsListResult carries one page of monitors. HasMore is set when the
// vendor returned a full page, meaning another page may exist.
type MonitorsListResult struct {
	Monitors []MonitorSummary
	HasMore  bool
}

// List returns monitors matching the combinable filters. The vendor API has
// no monitor-type parameter, so the type filter applies after the call.
func (c *MonitorsClient) List(ctx context.Context, name string, tags []string, monitorType string, pageSize int32) (*MonitorsListResult, error) {
	limit := clampPageSize(pageSize)

	params := *datadogV1.NewListMonitorsOptionalParameters().WithPageSize(limit)
	if name != "" {
		params = *params.WithName(name)
	}
	if len(tags) > 0 {
		tagList, err := query.MonitorTagList(tags)
		if err != nil {
			return nil, err
		}
		params = *params.WithMonitorTags(tagList)
	}

	monitors, httpResp, err := c.api.ListMonitors(withAuth(ctx, c.auth), params)
	if err != nil {
		return nil, newAPIError("list monitors", httpResp, err)
	}

	result := &MonitorsListResult{HasMore: int32(len(monitors)) == limit}
	for _, m := range monitors {
		if monitorType != "" && !strings.EqualFold(string(m.GetType()), monitorType) {
			continue
		}
		result.Monitors = append(result.Monitors, shapeMonitor(m))
	}
	return result, nil
}

// Get fetches one monitor by id.
func (c *MonitorsClient) Get(ctx context.Context, id int64) (*MonitorSummary, error) {
	if err := query.ValidateMonitorID(float64(id)); err != nil {
		return nil, err
	}

	monitor, httpResp, err := c.api.GetMonitor(withAuth(ctx, c.auth), id)
	if err != nil {
		return nil, newAPIError("get monitor", httpResp, err)
	}
	summary := shapeMonitor(monitor)
	return &summary, nil
}

// MonitorGroupStatus is the per-group state of a monitor.
type MonitorGroupStatus struct {
	Group           string `json:"group"`
	Status          string `json:"status,omitempty"`
	LastTriggeredTs int64  `json:"lastTriggeredTs,omitempty"`
}

// MonitorStatusResult is the state-focused view of a monitor.
type MonitorStatusResult struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name,omitempty"`
	OverallState string               `json:"overallState,omitempty"`
	Groups       []MonitorGroupStatus `json:"groups,omitempty"`
}

// Status fetches a monitor with group states included.
func (c *MonitorsClient) Status(ctx context.Context, id int64) (*MonitorStatusResult, error) {
	if err := query.ValidateMonitorID(float64(id)); err != nil {
		return nil, err
	}

	params := *datadogV1.NewGetMonitorOptionalParameters().WithGroupStates("all")
	monitor, httpResp, err := c.api.GetMonitor(withAuth(ctx, c.auth), id, params)
	if err != nil {
		return nil, newAPIError("get monitor status", httpResp, err)
	}

	result := &MonitorStatusResult{
		ID:           monitor.GetId(),
		Name:         monitor.GetName(),
		OverallState: string(monitor.GetOverallState()),
	}
	if state, ok := monitor.GetStateOk(); ok {
		for group, gs := range state.GetGroups() {
			status := MonitorGroupStatus{
				Group:  group,
				Status: string(gs.GetStatus()),
			}
			if ts, ok := gs.GetLastTriggeredTsOk(); ok && ts != nil {
				status.LastTriggeredTs = *ts
			}
			result.Groups = append(result.Groups, status)
		}
		// map iteration order is random; keep replies deterministic
		sort.Slice(result.Groups, func(i, j int) bool {
			return result.Groups[i].Group < result.Groups[j].Group
		})
	}
	return result, nil
}

func shapeMonitor(m datadogV1.Monitor) MonitorSummary {
	return MonitorSummary{
		ID:           m.GetId(),
		Name:         m.GetName(),
		Type:         string(m.GetType()),
		Query:        m.GetQuery(),
		Message:      m.GetMessage(),
		OverallState: string(m.GetOverallState()),
		Tags:         m.GetTags(),
	}
}
