package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observekit/datadog-mcp/internal/ddclient"
)

type stubMonitorsAPI struct {
	listCalls int
	listResp  []datadogV1.Monitor
	listErr   error

	getCalls int
	lastID   int64
	getResp  datadogV1.Monitor
	getErr   error
	getHTTP  *http.Response
}

func (s *stubMonitorsAPI) ListMonitors(ctx context.Context, o ...datadogV1.ListMonitorsOptionalParameters) ([]datadogV1.Monitor, *http.Response, error) {
	s.listCalls++
	return s.listResp, nil, s.listErr
}

func (s *stubMonitorsAPI) GetMonitor(ctx context.Context, monitorID int64, o ...datadogV1.GetMonitorOptionalParameters) (datadogV1.Monitor, *http.Response, error) {
	s.getCalls++
	s.lastID = monitorID
	return s.getResp, s.getHTTP, s.getErr
}

func stubMonitors(n int) []datadogV1.Monitor {
	monitors := make([]datadogV1.Monitor, 0, n)
	for i := 0; i < n; i++ {
		monitors = append(monitors, datadogV1.Monitor{
			Id:   datadog.PtrInt64(int64(i)),
			Name: datadog.PtrString(fmt.Sprintf("monitor-%d", i)),
		})
	}
	return monitors
}

func monitorsClients(api *stubMonitorsAPI) *ddclient.Clients {
	return &ddclient.Clients{Monitors: ddclient.NewMonitorsClient(api)}
}

// A successful listing reports monitorsCount == N and includes all N monitors
// when N is within the cap.
func TestListMonitorsToolRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		api := &stubMonitorsAPI{listResp: stubMonitors(n)}
		handler := findHandler(t, RegisterMonitorsTools(monitorsClients(api)), "list_monitors")

		result, err := handler(context.Background(), callRequest("list_monitors", map[string]any{
			"pageSize": float64(100),
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		var body monitorsListReply
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
		assert.Equal(t, n, body.MonitorsCount, "n=%d", n)
		assert.Len(t, body.Monitors, n)
		assert.Equal(t, n == 100, body.HasMore)
	}
}

// Monitor id 0 is falsy but valid; the vendor call must proceed.
func TestGetMonitorStatusToolZeroID(t *testing.T) {
	api := &stubMonitorsAPI{getResp: datadogV1.Monitor{
		Id:           datadog.PtrInt64(0),
		Name:         datadog.PtrString("zeroth"),
		OverallState: datadogV1.MONITOROVERALLSTATES_OK.Ptr(),
	}}
	handler := findHandler(t, RegisterMonitorsTools(monitorsClients(api)), "get_monitor_status")

	result, err := handler(context.Background(), callRequest("get_monitor_status", map[string]any{
		"monitorId": float64(0),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 1, api.getCalls)
	assert.Equal(t, int64(0), api.lastID)

	var body ddclient.MonitorStatusResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	assert.Equal(t, "OK", body.OverallState)
}

func TestGetMonitorStatusToolMissingID(t *testing.T) {
	api := &stubMonitorsAPI{}
	handler := findHandler(t, RegisterMonitorsTools(monitorsClients(api)), "get_monitor_status")

	result, err := handler(context.Background(), callRequest("get_monitor_status", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, 0, api.getCalls)
}

func TestGetMonitorToolNotFoundHint(t *testing.T) {
	api := &stubMonitorsAPI{getErr: assert.AnError, getHTTP: &http.Response{StatusCode: 404}}
	handler := findHandler(t, RegisterMonitorsTools(monitorsClients(api)), "get_monitor")

	result, err := handler(context.Background(), callRequest("get_monitor", map[string]any{
		"monitorId": float64(123),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No matching resource")
}

func TestListMonitorsToolIdempotent(t *testing.T) {
	api := &stubMonitorsAPI{listResp: stubMonitors(5)}
	handler := findHandler(t, RegisterMonitorsTools(monitorsClients(api)), "list_monitors")

	args := map[string]any{"name": "monitor", "pageSize": float64(10)}
	first, err := handler(context.Background(), callRequest("list_monitors", args))
	require.NoError(t, err)
	second, err := handler(context.Background(), callRequest("list_monitors", args))
	require.NoError(t, err)
	assert.Equal(t, resultText(t, first), resultText(t, second))
}
