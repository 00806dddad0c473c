package ddclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"github.com/observekit/datadog-mcp/internal/query"
	"github.com/observekit/datadog-mcp/internal/timeutil"
)

// LogsAPI is the slice of the Datadog V2 logs API this client uses.
type LogsAPI interface {
	ListLogs(ctx context.Context, o ...datadogV2.ListLogsOptionalParameters) (datadogV2.LogsListResponse, *http.Response, error)
}

// LogsClient searches logs. Time unit: milliseconds at the client boundary;
// the vendor filter itself takes RFC3339 strings, so the conversion happens
// here and not in the tool layer.
type LogsClient struct {
	api  LogsAPI
	auth authFunc
}

// NewLogsClient builds a client over an arbitrary LogsAPI; used by tests.
func NewLogsClient(api LogsAPI) *LogsClient {
	return &LogsClient{api: api}
}

// LogEntry is one shaped log record.
type LogEntry struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp,omitempty"`
	Status    string   `json:"status,omitempty"`
	Service   string   `json:"service,omitempty"`
	Host      string   `json:"host,omitempty"`
	Message   string   `json:"message,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// LogsSearchResult carries the page of matching logs plus the cursor for the
// next page when the backend reports more.
type LogsSearchResult struct {
	Logs       []LogEntry
	NextCursor string
}

// Search lists logs matching filter between fromMs and toMs, newest first.
func (c *LogsClient) Search(ctx context.Context, filter string, fromMs, toMs int64, pageSize int32, cursor string) (*LogsSearchResult, error) {
	if filter == "" {
		return nil, fmt.Errorf("filter is required")
	}
	if err := validateRange(fromMs, toMs); err != nil {
		return nil, err
	}
	limit := clampPageSize(pageSize)

	page := datadogV2.LogsListRequestPage{Limit: datadog.PtrInt32(limit)}
	if cursor != "" {
		page.Cursor = datadog.PtrString(cursor)
	}
	body := datadogV2.LogsListRequest{
		Filter: &datadogV2.LogsQueryFilter{
			Query: datadog.PtrString(filter),
			From:  datadog.PtrString(timeutil.MillisToRFC3339(fromMs)),
			To:    datadog.PtrString(timeutil.MillisToRFC3339(toMs)),
		},
		Page: &page,
		Sort: datadogV2.LOGSSORT_TIMESTAMP_DESCENDING.Ptr(),
	}

	resp, httpResp, err := c.api.ListLogs(withAuth(ctx, c.auth), *datadogV2.NewListLogsOptionalParameters().WithBody(body))
	if err != nil {
		return nil, newAPIError("search logs", httpResp, err)
	}

	result := &LogsSearchResult{}
	for _, l := range resp.GetData() {
		result.Logs = append(result.Logs, shapeLog(l))
	}
	if meta, ok := resp.GetMetaOk(); ok {
		if page, ok := meta.GetPageOk(); ok {
			result.NextCursor = page.GetAfter()
		}
	}
	return result, nil
}

// GetByID looks up a single log by its id within [fromMs, toMs). The id is
// validated before being interpolated into the search query.
func (c *LogsClient) GetByID(ctx context.Context, logID string, fromMs, toMs int64) (*LogEntry, error) {
	if err := query.ValidateLogID(logID); err != nil {
		return nil, err
	}
	result, err := c.Search(ctx, fmt.Sprintf("@id:%s", logID), fromMs, toMs, 1, "")
	if err != nil {
		return nil, err
	}
	if len(result.Logs) == 0 {
		return nil, &APIError{
			Message:    fmt.Sprintf("no log found with id %s", logID),
			StatusCode: http.StatusNotFound,
		}
	}
	return &result.Logs[0], nil
}

func shapeLog(l datadogV2.Log) LogEntry {
	entry := LogEntry{ID: l.GetId()}
	if attrs, ok := l.GetAttributesOk(); ok {
		entry.Status = attrs.GetStatus()
		entry.Service = attrs.GetService()
		entry.Host = attrs.GetHost()
		entry.Message = attrs.GetMessage()
		entry.Tags = attrs.GetTags()
		if ts, ok := attrs.GetTimestampOk(); ok && ts != nil {
			entry.Timestamp = ts.UTC().Format("2006-01-02T15:04:05.000Z07:00")
		}
	}
	return entry
}
