package edgesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport lets a test script per-batch behavior: a batch whose
// first id is in tooLargeFor gets *ErrBatchTooLarge; one with a positive
// count in failCounts fails that many times before succeeding.
type fakeTransport struct {
	mu          sync.Mutex
	existing    []string
	tooLargeFor map[string]bool
	failCounts  map[string]int
	uploaded    [][]string
}

func (f *fakeTransport) ExistingIDs(ctx context.Context) ([]string, error) {
	return f.existing, nil
}

func (f *fakeTransport) Upload(ctx context.Context, batch []LocalRecord) (int, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := batch[0].ID
	if f.tooLargeFor[key] {
		return 0, nil, &ErrBatchTooLarge{BatchSize: len(batch)}
	}
	if n, ok := f.failCounts[key]; ok && n > 0 {
		f.failCounts[key] = n - 1
		return 0, nil, errors.New("transient failure")
	}

	ids := make([]string, len(batch))
	for i, r := range batch {
		ids[i] = r.ID
	}
	f.uploaded = append(f.uploaded, ids)
	return len(batch), nil, nil
}

func records(ids ...string) []LocalRecord {
	out := make([]LocalRecord, len(ids))
	for i, id := range ids {
		out[i] = LocalRecord{ID: id, Text: "x"}
	}
	return out
}

func TestRunUploadsOnlyMissingIDs(t *testing.T) {
	transport := &fakeTransport{existing: []string{"a"}, tooLargeFor: map[string]bool{}, failCounts: map[string]int{}}
	report, err := Run(context.Background(), transport, records("a", "b", "c"), Config{BackoffBase: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Empty(t, report.Errors)
}

func TestRunDryRunUploadsNothing(t *testing.T) {
	transport := &fakeTransport{tooLargeFor: map[string]bool{}, failCounts: map[string]int{}}
	report, err := Run(context.Background(), transport, records("a", "b"), Config{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	assert.Empty(t, transport.uploaded)
}

func TestRunSplitsTooLargeBatch(t *testing.T) {
	// "a" is rejected as too large no matter how small its batch shrinks
	// to, down to and including a single document — which the orchestrator
	// must then count as an error rather than splitting further. "b",
	// "c", "d" succeed once isolated from "a" by the split.
	transport := &fakeTransport{tooLargeFor: map[string]bool{"a": true}, failCounts: map[string]int{}}
	report, err := Run(context.Background(), transport, records("a", "b", "c", "d"), Config{BatchSize: 4, BackoffBase: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Synced)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "a")
	// the too-large batch must have been split into more than one upload
	assert.Greater(t, len(transport.uploaded), 1)
}

func TestRunRetriesTransientFailureThenSucceeds(t *testing.T) {
	transport := &fakeTransport{tooLargeFor: map[string]bool{}, failCounts: map[string]int{"a": 2}}
	report, err := Run(context.Background(), transport, records("a", "b"), Config{BatchSize: 2, BackoffBase: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Empty(t, report.Errors)
}

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	transport := &fakeTransport{tooLargeFor: map[string]bool{}, failCounts: map[string]int{"a": 10}}
	report, err := Run(context.Background(), transport, records("a"), Config{BatchSize: 1, BackoffBase: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	require.Len(t, report.Errors, 1)
}

func TestRunSingleDocumentTooLargeIsCountedAsError(t *testing.T) {
	transport := &fakeTransport{tooLargeFor: map[string]bool{"a": true}, failCounts: map[string]int{}}
	report, err := Run(context.Background(), transport, records("a"), Config{BatchSize: 1, BackoffBase: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	require.Len(t, report.Errors, 1)
}
