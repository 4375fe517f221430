package instance

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

func TestNewManagerBuildsConfiguredInstances(t *testing.T) {
	base := t.TempDir()
	pages := t.TempDir()
	m, err := NewManager(base, pages, []string{"personal", "walmart"}, func(string) vectorindex.Index {
		return vectorindex.NewMemory()
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"personal", "walmart"}, m.List())

	home, ok := m.Home()
	require.True(t, ok)
	assert.Equal(t, "personal", home.Name)

	_, ok = m.Get("alaska")
	assert.False(t, ok)
}

func TestInstanceToolDefinitionsArePrefixed(t *testing.T) {
	inst, err := New(Config{Name: "walmart", RecordDir: t.TempDir(), PagesDir: t.TempDir()}, vectorindex.NewMemory(), zerolog.Nop())
	require.NoError(t, err)

	defs := inst.GetToolDefinitions()
	require.Len(t, defs, 8)
	for _, d := range defs {
		assert.Contains(t, d.Description, "[WALMART]")
	}
	assert.True(t, inst.HasTool("get-stats"))
	assert.False(t, inst.HasTool("not-a-tool"))
}

func TestInstanceCallToolDispatchesToRegistry(t *testing.T) {
	inst, err := New(Config{Name: "personal", RecordDir: t.TempDir(), PagesDir: t.TempDir()}, vectorindex.NewMemory(), zerolog.Nop())
	require.NoError(t, err)

	res, err := inst.CallTool(context.Background(), "get-stats", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 0, res["file_count"])

	_, err = inst.CallTool(context.Background(), "nonexistent", nil)
	assert.Error(t, err)
}
