package edgesync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOCRFile(t *testing.T, dir, id, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), []byte(body), 0o644))
}

func TestScanLocalRecordsSkipsEmptyText(t *testing.T) {
	dir := t.TempDir()
	writeOCRFile(t, dir, "a", `{"text":"hello","screen_name":"screen_0","timestamp":1.0,"timestamp_iso":"2026-07-30T10:00:00"}`)
	writeOCRFile(t, dir, "b", `{"text":"","screen_name":"screen_0"}`)

	records, err := ScanLocalRecords(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "hello", records[0].Text)
	assert.Equal(t, "screen_0", records[0].Metadata["screen_name"])
}

func TestScanLocalRecordsOnMissingDirReturnsEmpty(t *testing.T) {
	records, err := ScanLocalRecords(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDiffExcludesExistingIDs(t *testing.T) {
	local := []LocalRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out := Diff(local, []string{"a"})
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
}
