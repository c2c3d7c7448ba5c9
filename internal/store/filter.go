package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// compileFilter turns a SearchFilter into the wire-level conjunction of
// predicates. Returns nil for an empty filter.
func compileFilter(filter SearchFilter) (map[string]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var must []map[string]any
	dateRange := map[string]any{}

	for _, key := range keys {
		value := filter[key]
		if value == nil {
			continue
		}
		switch key {
		case "date_from":
			ts, err := toTimestamp(value)
			if err != nil {
				return nil, fmt.Errorf("filter date_from: %w", err)
			}
			dateRange["gte"] = ts
		case "date_to":
			ts, err := toTimestamp(value)
			if err != nil {
				return nil, fmt.Errorf("filter date_to: %w", err)
			}
			dateRange["lte"] = ts
		default:
			must = append(must, map[string]any{
				"key":   key,
				"match": map[string]any{"value": value},
			})
		}
	}

	if len(dateRange) > 0 {
		must = append(must, map[string]any{
			"key":   "registry_date",
			"range": dateRange,
		})
	}
	if len(must) == 0 {
		return nil, nil
	}
	return map[string]any{"must": must}, nil
}

// toTimestamp accepts a POSIX timestamp in any numeric form or a
// YYYY-MM-DD string, and returns seconds since epoch.
func toTimestamp(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("numeric value %q: %w", v, err)
		}
		return f, nil
	case string:
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return 0, fmt.Errorf("date value %q is not YYYY-MM-DD", v)
		}
		return float64(t.Unix()), nil
	default:
		return 0, fmt.Errorf("unsupported date value of type %T", value)
	}
}
