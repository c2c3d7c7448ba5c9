package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFilterEmpty(t *testing.T) {
	compiled, err := compileFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, compiled)

	compiled, err = compileFilter(SearchFilter{})
	require.NoError(t, err)
	assert.Nil(t, compiled)
}

func TestCompileFilterExactMatch(t *testing.T) {
	compiled, err := compileFilter(SearchFilter{"client": "B"})
	require.NoError(t, err)

	expected := map[string]any{
		"must": []map[string]any{
			{"key": "client", "match": map[string]any{"value": "B"}},
		},
	}
	assert.Equal(t, expected, compiled)
}

func TestCompileFilterDateRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)

	compiled, err := compileFilter(SearchFilter{
		"date_from": "2025-01-01",
		"date_to":   1738368000.0,
	})
	require.NoError(t, err)

	expected := map[string]any{
		"must": []map[string]any{
			{"key": "registry_date", "range": map[string]any{
				"gte": float64(from.Unix()),
				"lte": 1738368000.0,
			}},
		},
	}
	assert.Equal(t, expected, compiled)
}

func TestCompileFilterCombined(t *testing.T) {
	compiled, err := compileFilter(SearchFilter{
		"client":    "A",
		"product":   "X",
		"date_from": 100.0,
	})
	require.NoError(t, err)

	must, ok := compiled["must"].([]map[string]any)
	require.True(t, ok)
	// Exact matches in key order, range condition last.
	require.Len(t, must, 3)
	assert.Equal(t, "client", must[0]["key"])
	assert.Equal(t, "product", must[1]["key"])
	assert.Equal(t, "registry_date", must[2]["key"])
}

func TestCompileFilterSkipsNil(t *testing.T) {
	compiled, err := compileFilter(SearchFilter{"client": nil, "date_from": nil})
	require.NoError(t, err)
	assert.Nil(t, compiled)
}

func TestCompileFilterBadDate(t *testing.T) {
	_, err := compileFilter(SearchFilter{"date_from": "not-a-date"})
	assert.Error(t, err)

	_, err = compileFilter(SearchFilter{"date_to": []string{"x"}})
	assert.Error(t, err)
}

func TestToTimestampForms(t *testing.T) {
	ts, err := toTimestamp(42)
	require.NoError(t, err)
	assert.Equal(t, 42.0, ts)

	ts, err = toTimestamp(int64(43))
	require.NoError(t, err)
	assert.Equal(t, 43.0, ts)

	day := time.Date(2025, 11, 14, 0, 0, 0, 0, time.Local)
	ts, err = toTimestamp("2025-11-14")
	require.NoError(t, err)
	assert.Equal(t, float64(day.Unix()), ts)
}
