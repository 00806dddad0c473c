package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatToolErrorHints(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		status   int
		wantHint string
	}{
		{name: "401 credentials", message: "failed to query metrics", status: 401, wantHint: "API key"},
		{name: "403 credentials", message: "failed to query metrics", status: 403, wantHint: "API key"},
		{name: "404 not found", message: "failed to get monitor", status: 404, wantHint: "No matching resource"},
		{name: "429 rate limit", message: "failed to search logs", status: 429, wantHint: "rate limit"},
		{name: "range ordering", message: "Start time must be before end time", status: 0, wantHint: "strictly before"},
		{name: "timestamp format", message: `invalid timestamp format: "soon"`, status: 0, wantHint: "ISO-8601"},
		{name: "no hint", message: "something else went wrong", status: 500, wantHint: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatToolError(tt.message, tt.status)
			assert.Contains(t, got, tt.message)
			if tt.wantHint == "" {
				assert.NotContains(t, got, "Hint:")
			} else {
				assert.Contains(t, got, tt.wantHint)
			}
		})
	}
}

// A message matching several rules gets exactly the highest-precedence hint.
func TestFormatToolErrorFirstMatchWins(t *testing.T) {
	got := formatToolError("invalid timestamp format: Start time must be before end time", 429)
	assert.Contains(t, got, "rate limit")
	assert.NotContains(t, got, "strictly before")
	assert.NotContains(t, got, "ISO-8601")
	assert.Equal(t, 1, strings.Count(got, "Hint:"))
}

func TestTruncateText(t *testing.T) {
	short := "fits"
	assert.Equal(t, short, truncateText(short))

	long := ""
	for len(long) <= maxTextChars {
		long += "0123456789"
	}
	got := truncateText(long)
	assert.Len(t, got, maxTextChars+3)
	assert.Contains(t, got, "...")
}
