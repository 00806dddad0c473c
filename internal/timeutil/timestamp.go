// Package timeutil normalizes the heterogeneous timestamp formats accepted
// by the tools (Unix seconds, Unix milliseconds, ISO-8601 strings) into the
// epoch unit each Datadog API expects.
package timeutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Unit is the epoch unit a downstream API consumes.
type Unit int

const (
	UnitSeconds Unit = iota
	UnitMilliseconds
)

// AmbiguityThreshold separates bare numbers interpreted as seconds from those
// interpreted as milliseconds. 1e10 seconds is year 2286, 1e10 milliseconds is
// November 2001, so values in between are inherently ambiguous; this is a
// heuristic, not a guarantee, and callers near the boundary should pass
// ISO-8601 strings instead.
const AmbiguityThreshold = 10_000_000_000

// Normalize converts v into an integer Unix timestamp in the requested unit.
// v may be a number (float64, any integer type, json.Number) or a string
// (ISO-8601 first, then a numeric epoch). Fractional values floor.
func Normalize(v any, unit Unit) (int64, error) {
	switch t := v.(type) {
	case float64:
		return normalizeNumber(t, unit)
	case float32:
		return normalizeNumber(float64(t), unit)
	case int:
		return normalizeNumber(float64(t), unit)
	case int32:
		return normalizeNumber(float64(t), unit)
	case int64:
		return normalizeNumber(float64(t), unit)
	case json.Number:
		return normalizeString(t.String(), unit)
	case string:
		return normalizeString(t, unit)
	default:
		return 0, fmt.Errorf("invalid timestamp format: %v", v)
	}
}

func normalizeNumber(f float64, unit Unit) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid timestamp format: %v", f)
	}
	f = math.Floor(f)
	if math.Abs(f) < AmbiguityThreshold {
		// seconds
		if unit == UnitMilliseconds {
			return int64(f) * 1000, nil
		}
		return int64(f), nil
	}
	// milliseconds
	if unit == UnitSeconds {
		return int64(math.Floor(f / 1000)), nil
	}
	return int64(f), nil
}

func normalizeString(s string, unit Unit) (int64, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		if unit == UnitMilliseconds {
			return t.UnixMilli(), nil
		}
		return t.Unix(), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return normalizeNumber(f, unit)
	}
	return 0, fmt.Errorf("invalid timestamp format: %q", s)
}

// SecondsToRFC3339 renders epoch seconds as an RFC3339 UTC string, the form
// the Datadog V2 filter objects require.
func SecondsToRFC3339(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// MillisToRFC3339 renders epoch milliseconds as an RFC3339 UTC string.
func MillisToRFC3339(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
