// Package query assembles Datadog query strings and filter fragments from
// caller-supplied input. Every rule here guards a point where untrusted text
// reaches a vendor query parser, so fragments are validated before any
// concatenation happens.
package query

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	maxTagLength   = 256
	maxLogIDLength = 512
)

var logIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var alertTypes = map[string]bool{
	"error":   true,
	"warning": true,
	"info":    true,
	"success": true,
}

// MetricQuery builds a metric scope query: name{filter}, or the bare name
// when filter is empty. Braces in the filter would alter the scope grammar
// and are rejected.
func MetricQuery(name, filter string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("metricName is required")
	}
	if strings.ContainsAny(filter, "{}") {
		return "", fmt.Errorf("filter must not contain '{' or '}'")
	}
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return name, nil
	}
	return fmt.Sprintf("%s{%s}", name, filter), nil
}

// TagsQuery joins tags into an event search query with " AND ". Each tag must
// be non-empty, at most 256 characters, and must not embed the boolean
// keywords " AND " / " OR " (any case), which are query-language operators.
func TagsQuery(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", fmt.Errorf("at least one tag is required")
	}
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			return "", fmt.Errorf("tags must be non-empty")
		}
		if len(tag) > maxTagLength {
			return "", fmt.Errorf("tag exceeds %d characters", maxTagLength)
		}
		upper := strings.ToUpper(tag)
		if strings.Contains(upper, " AND ") || strings.Contains(upper, " OR ") {
			return "", fmt.Errorf("tag %q must not contain boolean keywords", tag)
		}
	}
	return strings.Join(tags, " AND "), nil
}

// MonitorTagList joins monitor tags into the comma-separated form the monitor
// listing API takes. Empty entries are rejected rather than silently dropped.
func MonitorTagList(tags []string) (string, error) {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return "", fmt.Errorf("tags must be non-empty")
		}
	}
	return strings.Join(tags, ","), nil
}

// ValidateLogID restricts a log id to the safe character set before it is
// interpolated into a log search query.
func ValidateLogID(id string) error {
	if id == "" {
		return fmt.Errorf("logId is required")
	}
	if len(id) > maxLogIDLength {
		return fmt.Errorf("logId exceeds %d characters", maxLogIDLength)
	}
	if !logIDPattern.MatchString(id) {
		return fmt.Errorf("logId may only contain letters, digits, '_' and '-'")
	}
	return nil
}

// ValidateMonitorID accepts any non-negative finite number. Zero is a valid
// monitor id.
func ValidateMonitorID(id float64) error {
	if math.IsNaN(id) || math.IsInf(id, 0) {
		return fmt.Errorf("monitorId must be a finite number")
	}
	if id < 0 {
		return fmt.Errorf("monitorId must be non-negative")
	}
	return nil
}

// ValidateAlertType restricts the alert type to the values Datadog emits.
func ValidateAlertType(t string) error {
	if !alertTypes[strings.ToLower(t)] {
		return fmt.Errorf("alertType must be one of error, warning, info, success")
	}
	return nil
}
