package edgesync

import (
	"context"
	"fmt"
)

// ErrBatchTooLarge signals the transport rejected a batch as too large
// (HTTP 413 for the tunneled transport). The caller splits the batch in
// half and retries each half recursively, per spec.md 4.13; a
// single-document batch that still gets this error is counted as an
// error instead of splitting further.
type ErrBatchTooLarge struct {
	BatchSize int
}

func (e *ErrBatchTooLarge) Error() string {
	return fmt.Sprintf("batch of %d documents rejected as too large", e.BatchSize)
}

// Transport uploads batches of local records to a destination and reports
// which ids are already present there. Direct and Tunneled are the two
// concrete implementations spec.md 4.13 names.
type Transport interface {
	// ExistingIDs returns every id already present at the destination, so
	// Run can diff before uploading.
	ExistingIDs(ctx context.Context) ([]string, error)

	// Upload sends one batch and returns how many documents were
	// accepted plus per-document error detail. It returns
	// *ErrBatchTooLarge (via errors.As) if the whole batch was rejected
	// for size; in that case written and docErrors are both zero.
	Upload(ctx context.Context, batch []LocalRecord) (written int, docErrors []string, err error)
}
