package tools

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memexlabs/prometheus/pkg/store"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	s, err := store.New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return Deps{Store: s, Index: vectorindex.NewMemory(), Log: zerolog.Nop()}
}

func seedRecord(t *testing.T, deps Deps, id string, ts time.Time, text string) {
	t.Helper()
	rec := store.NewRecord(id, float64(ts.Unix()), ts.Format(time.RFC3339), "screen_0", text, "", "edge")
	require.NoError(t, deps.Store.PutRecord(rec))
	require.NoError(t, deps.Index.Upsert(context.Background(), []string{id}, []string{text},
		[]vectorindex.Metadata{{"timestamp": float64(ts.Unix())}}))
}

func TestNewRegistryHasAllEightTools(t *testing.T) {
	r := NewRegistry()
	want := []string{
		"search-screenshots", "get-stats", "activity-graph", "time-range-summary",
		"sample-time-range", "vector-search-windowed", "search-recent-relevant", "daily-summary",
	}
	for _, name := range want {
		tool, ok := r.Get(name)
		assert.True(t, ok, "missing tool %q", name)
		assert.Equal(t, name, tool.Name)
	}
	assert.Len(t, r.List(), len(want))
}

func TestRegistryCallUnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call(context.Background(), Deps{}, "does-not-exist", nil)
	assert.Error(t, err)
}

func TestRegistryCallGetStats(t *testing.T) {
	r := NewRegistry()
	deps := newTestDeps(t)
	now := time.Now()
	seedRecord(t, deps, now.Format("2006-01-02T15-04-05")+"_screen_0", now, "hello world")

	res, err := r.Call(context.Background(), deps, "get-stats", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 1, res["file_count"])
}

func TestRegistryCallSearchScreenshotsFallsBackWithoutIndex(t *testing.T) {
	r := NewRegistry()
	deps := newTestDeps(t)
	deps.Index = nil
	now := time.Now()
	seedRecord(t, deps, now.Format("2006-01-02T15-04-05")+"_screen_0", now, "a rare term appears here")

	res, err := r.Call(context.Background(), deps, "search-screenshots", map[string]interface{}{"query": "rare"})
	require.NoError(t, err)
	results, ok := res["results"].([]Result)
	require.True(t, ok)
	assert.Len(t, results, 1)
}

func TestRegistryCallDailySummaryBucketsByPeriod(t *testing.T) {
	r := NewRegistry()
	deps := newTestDeps(t)
	day := time.Date(2026, 7, 29, 0, 0, 0, 0, time.Local)
	morning := day.Add(8 * time.Hour)
	evening := day.Add(18 * time.Hour)
	seedRecord(t, deps, morning.Format("2006-01-02T15-04-05")+"_screen_0", morning, "morning text")
	seedRecord(t, deps, evening.Format("2006-01-02T15-04-05")+"_screen_0", evening, "evening text")

	res, err := r.Call(context.Background(), deps, "daily-summary", map[string]interface{}{"date": "2026-07-29"})
	require.NoError(t, err)
	periods, ok := res["periods"].([]Result)
	require.True(t, ok)
	require.Len(t, periods, 6)

	found := map[string]int{}
	for _, p := range periods {
		found[p["period"].(string)] = p["total_captures"].(int)
	}
	assert.Equal(t, 1, found["morning"])
	assert.Equal(t, 1, found["evening"])
	assert.Equal(t, 0, found["night"])
}

func TestExpandingWindowsMatchesScenarioS3(t *testing.T) {
	windows := expandingWindows(7, 30)
	require.GreaterOrEqual(t, len(windows), 2)
	assert.Equal(t, 7.0, windows[0])
	assert.Equal(t, 28.0, windows[1])
}
