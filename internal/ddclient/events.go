package ddclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"github.com/observekit/datadog-mcp/internal/query"
	"github.com/observekit/datadog-mcp/internal/timeutil"
)

// EventsAPI is the slice of the Datadog V2 events API this client uses.
type EventsAPI interface {
	SearchEvents(ctx context.Context, o ...datadogV2.SearchEventsOptionalParameters) (datadogV2.EventsListResponse, *http.Response, error)
}

// EventsClient searches the event stream. Time unit: seconds.
type EventsClient struct {
	api  EventsAPI
	auth authFunc
}

// NewEventsClient builds a client over an arbitrary EventsAPI; used by tests.
func NewEventsClient(api EventsAPI) *EventsClient {
	return &EventsClient{api: api}
}

// Event is one shaped event record.
type Event struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Text      string   `json:"text,omitempty"`
	Status    string   `json:"status,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// EventsSearchResult carries matching events plus a next-page cursor when the
// backend reports more.
type EventsSearchResult struct {
	Query      string
	Events     []Event
	NextCursor string
}

// Search is the generic event query; the tag/alert-type/monitor wrappers all
// delegate here, so range validation and clamping live here only.
func (c *EventsClient) Search(ctx context.Context, q string, fromSec, toSec int64, pageSize int32) (*EventsSearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if err := validateRange(fromSec, toSec); err != nil {
		return nil, err
	}
	limit := clampPageSize(pageSize)

	body := datadogV2.EventsListRequest{
		Filter: &datadogV2.EventsQueryFilter{
			Query: datadog.PtrString(q),
			From:  datadog.PtrString(timeutil.SecondsToRFC3339(fromSec)),
			To:    datadog.PtrString(timeutil.SecondsToRFC3339(toSec)),
		},
		Page: &datadogV2.EventsRequestPage{Limit: datadog.PtrInt32(limit)},
		Sort: datadogV2.EVENTSSORT_TIMESTAMP_DESCENDING.Ptr(),
	}

	resp, httpResp, err := c.api.SearchEvents(withAuth(ctx, c.auth), *datadogV2.NewSearchEventsOptionalParameters().WithBody(body))
	if err != nil {
		return nil, newAPIError("search events", httpResp, err)
	}

	result := &EventsSearchResult{Query: q}
	for _, e := range resp.GetData() {
		result.Events = append(result.Events, shapeEvent(e))
	}
	if meta, ok := resp.GetMetaOk(); ok {
		if page, ok := meta.GetPageOk(); ok {
			result.NextCursor = page.GetAfter()
		}
	}
	return result, nil
}

// SearchByTags searches events carrying all the given tags. Tag validation
// happens before any vendor call; range validation is Search's job.
func (c *EventsClient) SearchByTags(ctx context.Context, tags []string, fromSec, toSec int64, pageSize int32) (*EventsSearchResult, error) {
	q, err := query.TagsQuery(tags)
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, q, fromSec, toSec, pageSize)
}

// SearchByAlertType searches alert events of the given type.
func (c *EventsClient) SearchByAlertType(ctx context.Context, alertType string, fromSec, toSec int64, pageSize int32) (*EventsSearchResult, error) {
	if err := query.ValidateAlertType(alertType); err != nil {
		return nil, err
	}
	q := fmt.Sprintf("source:alert status:%s", strings.ToLower(alertType))
	return c.Search(ctx, q, fromSec, toSec, pageSize)
}

// SearchByMonitorID searches events produced by one monitor. The id may be 0.
func (c *EventsClient) SearchByMonitorID(ctx context.Context, monitorID int64, fromSec, toSec int64, pageSize int32) (*EventsSearchResult, error) {
	if err := query.ValidateMonitorID(float64(monitorID)); err != nil {
		return nil, err
	}
	q := fmt.Sprintf("@monitor.id:%d", monitorID)
	return c.Search(ctx, q, fromSec, toSec, pageSize)
}

func shapeEvent(e datadogV2.EventResponse) Event {
	event := Event{ID: e.GetId()}
	if attrs, ok := e.GetAttributesOk(); ok {
		event.Text = attrs.GetMessage()
		event.Tags = attrs.GetTags()
		if ts, ok := attrs.GetTimestampOk(); ok && ts != nil {
			event.Timestamp = ts.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		if inner, ok := attrs.GetAttributesOk(); ok {
			event.Title = inner.GetTitle()
			event.Status = string(inner.GetStatus())
		}
	}
	return event
}
