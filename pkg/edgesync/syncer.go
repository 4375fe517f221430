package edgesync

import (
	"context"
	"errors"
	"time"
)

// DefaultBatchSize matches spec.md 4.13's default POST batch size.
const DefaultBatchSize = 100

const maxAttempts = 3

// Report is the outcome of one sync run: {synced, errors}, per spec.md
// 4.13.
type Report struct {
	Synced int
	Errors []string
}

// Config configures one Run.
type Config struct {
	BatchSize int
	DryRun    bool
	// BackoffBase scales the exponential retry delay (BackoffBase *
	// 2^attempt). Defaults to one second, matching spec.md 4.13's
	// "2^attempt seconds"; tests override it to keep the retry loop fast.
	BackoffBase time.Duration
}

// Run diffs local against transport's existing ids, then uploads the
// difference in batches, splitting any batch the transport rejects as too
// large and retrying other transient failures with exponential backoff.
// Dry-run mode still fetches existing ids (so a caller can report what
// would be synced) but issues no uploads.
func Run(ctx context.Context, transport Transport, local []LocalRecord, cfg Config) (Report, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}

	existing, err := transport.ExistingIDs(ctx)
	if err != nil {
		return Report{}, err
	}
	toSync := Diff(local, existing)

	if cfg.DryRun {
		return Report{Synced: 0}, nil
	}

	report := Report{}
	for _, batch := range chunk(toSync, cfg.BatchSize) {
		uploadBatch(ctx, transport, batch, cfg.BackoffBase, &report)
	}
	return report, nil
}

func uploadBatch(ctx context.Context, transport Transport, batch []LocalRecord, backoffBase time.Duration, report *Report) {
	if len(batch) == 0 {
		return
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		written, docErrors, err := transport.Upload(ctx, batch)
		if err == nil {
			report.Synced += written
			report.Errors = append(report.Errors, docErrors...)
			return
		}

		var tooLarge *ErrBatchTooLarge
		if errors.As(err, &tooLarge) {
			if len(batch) == 1 {
				report.Errors = append(report.Errors, "batch too large even at a single document: "+batch[0].ID)
				return
			}
			mid := len(batch) / 2
			uploadBatch(ctx, transport, batch[:mid], backoffBase, report)
			uploadBatch(ctx, transport, batch[mid:], backoffBase, report)
			return
		}

		lastErr = err
		if attempt < maxAttempts {
			delay := backoffBase * time.Duration(int64(1)<<uint(attempt))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				report.Errors = append(report.Errors, "sync cancelled: "+ctx.Err().Error())
				return
			}
		}
	}
	report.Errors = append(report.Errors, "batch upload failed after retries: "+lastErr.Error())
}

func chunk(records []LocalRecord, size int) [][]LocalRecord {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]LocalRecord
	for i := 0; i < len(records); i += size {
		end := i + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[i:end])
	}
	return batches
}
