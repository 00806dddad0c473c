package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observekit/datadog-mcp/internal/ddclient"
)

type stubEventsAPI struct {
	calls    int
	lastBody datadogV2.EventsListRequest
	resp     datadogV2.EventsListResponse
	err      error
}

func (s *stubEventsAPI) SearchEvents(ctx context.Context, o ...datadogV2.SearchEventsOptionalParameters) (datadogV2.EventsListResponse, *http.Response, error) {
	s.calls++
	if len(o) > 0 && o[0].Body != nil {
		s.lastBody = *o[0].Body
	}
	return s.resp, nil, s.err
}

func stubEventsResponse(ids ...string) datadogV2.EventsListResponse {
	resp := datadogV2.EventsListResponse{}
	for _, id := range ids {
		resp.Data = append(resp.Data, datadogV2.EventResponse{
			Id:         datadog.PtrString(id),
			Attributes: &datadogV2.EventResponseAttributes{Message: datadog.PtrString("scaled up")},
		})
	}
	return resp
}

func eventsClients(api *stubEventsAPI) *ddclient.Clients {
	return &ddclient.Clients{Events: ddclient.NewEventsClient(api)}
}

func TestSearchEventsTool(t *testing.T) {
	api := &stubEventsAPI{resp: stubEventsResponse("ev-1", "ev-2")}
	handler := findHandler(t, RegisterEventsTools(eventsClients(api)), "search_events")

	result, err := handler(context.Background(), callRequest("search_events", map[string]any{
		"query": "source:kubernetes",
		"from":  float64(1700000000),
		"to":    float64(1700003600),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var body eventsSearchReply
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	assert.Equal(t, 2, body.EventsCount)
	assert.Equal(t, "source:kubernetes", body.Query)
}

func TestSearchEventsByTagsToolRejectsBooleanKeywords(t *testing.T) {
	api := &stubEventsAPI{}
	handler := findHandler(t, RegisterEventsTools(eventsClients(api)), "search_events_by_tags")

	for _, tags := range []any{
		[]any{"env:prod AND team:core"},
		[]any{"a OR b"},
		[]any{"a and b"},
	} {
		result, err := handler(context.Background(), callRequest("search_events_by_tags", map[string]any{
			"tags": tags,
			"from": float64(1700000000),
			"to":   float64(1700003600),
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	}
	assert.Equal(t, 0, api.calls, "no vendor call on tag validation failure")
}

func TestSearchEventsByTagsTool(t *testing.T) {
	api := &stubEventsAPI{resp: stubEventsResponse("ev-1")}
	handler := findHandler(t, RegisterEventsTools(eventsClients(api)), "search_events_by_tags")

	result, err := handler(context.Background(), callRequest("search_events_by_tags", map[string]any{
		"tags": []any{"env:prod", "team:core"},
		"from": float64(1700000000),
		"to":   float64(1700003600),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	filter := api.lastBody.GetFilter()
	assert.Equal(t, "env:prod AND team:core", filter.GetQuery())
}

func TestGetEventsByAlertTypeTool(t *testing.T) {
	api := &stubEventsAPI{resp: stubEventsResponse()}
	handler := findHandler(t, RegisterEventsTools(eventsClients(api)), "get_events_by_alert_type")

	result, err := handler(context.Background(), callRequest("get_events_by_alert_type", map[string]any{
		"alertType": "error",
		"from":      float64(1700000000),
		"to":        float64(1700003600),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = handler(context.Background(), callRequest("get_events_by_alert_type", map[string]any{
		"alertType": "catastrophic",
		"from":      float64(1700000000),
		"to":        float64(1700003600),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, 1, api.calls)
}

func TestGetEventsByMonitorIDToolZeroIsValid(t *testing.T) {
	api := &stubEventsAPI{resp: stubEventsResponse()}
	handler := findHandler(t, RegisterEventsTools(eventsClients(api)), "get_events_by_monitor_id")

	result, err := handler(context.Background(), callRequest("get_events_by_monitor_id", map[string]any{
		"monitorId": float64(0),
		"from":      float64(1700000000),
		"to":        float64(1700003600),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 1, api.calls)
	filter := api.lastBody.GetFilter()
	assert.Equal(t, "@monitor.id:0", filter.GetQuery())
}

func TestGetEventsByMonitorIDToolMissingID(t *testing.T) {
	api := &stubEventsAPI{}
	handler := findHandler(t, RegisterEventsTools(eventsClients(api)), "get_events_by_monitor_id")

	result, err := handler(context.Background(), callRequest("get_events_by_monitor_id", map[string]any{
		"from": float64(1700000000),
		"to":   float64(1700003600),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, 0, api.calls)
}
