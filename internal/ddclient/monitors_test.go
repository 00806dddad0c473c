package ddclient

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMonitorsAPI struct {
	listCalls  int
	lastParams datadogV1.ListMonitorsOptionalParameters
	listResp   []datadogV1.Monitor
	listErr    error

	getCalls   int
	lastID     int64
	lastStates string
	getResp    datadogV1.Monitor
	getErr     error
	getHTTP    *http.Response
}

func (f *fakeMonitorsAPI) ListMonitors(ctx context.Context, o ...datadogV1.ListMonitorsOptionalParameters) ([]datadogV1.Monitor, *http.Response, error) {
	f.listCalls++
	if len(o) > 0 {
		f.lastParams = o[0]
	}
	return f.listResp, nil, f.listErr
}

func (f *fakeMonitorsAPI) GetMonitor(ctx context.Context, monitorID int64, o ...datadogV1.GetMonitorOptionalParameters) (datadogV1.Monitor, *http.Response, error) {
	f.getCalls++
	f.lastID = monitorID
	f.lastStates = ""
	if len(o) > 0 && o[0].GroupStates != nil {
		f.lastStates = *o[0].GroupStates
	}
	return f.getResp, f.getHTTP, f.getErr
}

func makeMonitors(n int) []datadogV1.Monitor {
	monitors := make([]datadogV1.Monitor, 0, n)
	for i := 0; i < n; i++ {
		monitors = append(monitors, datadogV1.Monitor{
			Id:    datadog.PtrInt64(int64(i)),
			Name:  datadog.PtrString(fmt.Sprintf("monitor-%d", i)),
			Type:  datadogV1.MONITORTYPE_METRIC_ALERT,
			Query: "avg(last_5m):avg:system.cpu.user{*} > 90",
		})
	}
	return monitors
}

func TestMonitorsList(t *testing.T) {
	api := &fakeMonitorsAPI{listResp: makeMonitors(3)}
	c := NewMonitorsClient(api)

	result, err := c.List(context.Background(), "monitor", []string{"env:prod"}, "", 50)
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls)
	assert.Len(t, result.Monitors, 3)
	assert.False(t, result.HasMore)
	require.NotNil(t, api.lastParams.Name)
	assert.Equal(t, "monitor", *api.lastParams.Name)
	require.NotNil(t, api.lastParams.MonitorTags)
	assert.Equal(t, "env:prod", *api.lastParams.MonitorTags)
	require.NotNil(t, api.lastParams.PageSize)
	assert.Equal(t, int32(50), *api.lastParams.PageSize)
}

func TestMonitorsListClampsPageSize(t *testing.T) {
	api := &fakeMonitorsAPI{listResp: makeMonitors(100)}
	c := NewMonitorsClient(api)

	result, err := c.List(context.Background(), "", nil, "", 1000)
	require.NoError(t, err)
	require.NotNil(t, api.lastParams.PageSize)
	assert.Equal(t, int32(100), *api.lastParams.PageSize, "requested 1000, vendor called with the cap")
	assert.True(t, result.HasMore, "a full page means more may exist")
}

func TestMonitorsListFiltersTypeClientSide(t *testing.T) {
	monitors := makeMonitors(2)
	monitors[1].Type = datadogV1.MONITORTYPE_LOG_ALERT
	c := NewMonitorsClient(&fakeMonitorsAPI{listResp: monitors})

	result, err := c.List(context.Background(), "", nil, "log alert", 10)
	require.NoError(t, err)
	require.Len(t, result.Monitors, 1)
	assert.Equal(t, "log alert", result.Monitors[0].Type)
}

func TestMonitorsGetAcceptsZeroID(t *testing.T) {
	api := &fakeMonitorsAPI{getResp: datadogV1.Monitor{
		Id:   datadog.PtrInt64(0),
		Name: datadog.PtrString("zeroth"),
	}}
	c := NewMonitorsClient(api)

	monitor, err := c.Get(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, api.getCalls, "id 0 is valid and reaches the vendor")
	assert.Equal(t, int64(0), monitor.ID)
	assert.Equal(t, "zeroth", monitor.Name)
}

func TestMonitorsGetRejectsNegativeID(t *testing.T) {
	api := &fakeMonitorsAPI{}
	c := NewMonitorsClient(api)

	_, err := c.Get(context.Background(), -1)
	require.Error(t, err)
	assert.Equal(t, 0, api.getCalls)
}

func TestMonitorsStatus(t *testing.T) {
	api := &fakeMonitorsAPI{getResp: datadogV1.Monitor{
		Id:           datadog.PtrInt64(42),
		Name:         datadog.PtrString("cpu high"),
		OverallState: datadogV1.MONITOROVERALLSTATES_ALERT.Ptr(),
		State: &datadogV1.MonitorState{
			Groups: map[string]datadogV1.MonitorStateGroup{
				"host:web-2": {Status: datadogV1.MONITOROVERALLSTATES_ALERT.Ptr(), LastTriggeredTs: datadog.PtrInt64(1700000100)},
				"host:web-1": {Status: datadogV1.MONITOROVERALLSTATES_OK.Ptr()},
			},
		},
	}}
	c := NewMonitorsClient(api)

	status, err := c.Status(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "all", api.lastStates)
	assert.Equal(t, "Alert", status.OverallState)
	require.Len(t, status.Groups, 2)
	// groups sorted for deterministic replies
	assert.Equal(t, "host:web-1", status.Groups[0].Group)
	assert.Equal(t, "host:web-2", status.Groups[1].Group)
	assert.Equal(t, int64(1700000100), status.Groups[1].LastTriggeredTs)
}

func TestMonitorsStatusWrapsVendorError(t *testing.T) {
	api := &fakeMonitorsAPI{getErr: assert.AnError, getHTTP: &http.Response{StatusCode: 404}}
	c := NewMonitorsClient(api)

	_, err := c.Status(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, 404, StatusCode(err))
}
