package edgesync

import (
	"context"
	"fmt"

	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

// DirectTransport talks straight to C2 on the LAN — no HTTP size limit
// applies to a local upsert call, so it never returns *ErrBatchTooLarge;
// Run's retry loop still protects it against transient connection
// failures.
type DirectTransport struct {
	Index vectorindex.Index
}

// NewDirectTransport builds a transport over an already-connected vector
// index client (typically vectorindex.NewHTTPClient pointed at the LAN
// Chroma server named by the edge's instance config).
func NewDirectTransport(index vectorindex.Index) *DirectTransport {
	return &DirectTransport{Index: index}
}

func (d *DirectTransport) ExistingIDs(ctx context.Context) ([]string, error) {
	ids, err := d.Index.GetIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("direct sync: get ids: %w", err)
	}
	return ids, nil
}

func (d *DirectTransport) Upload(ctx context.Context, batch []LocalRecord) (int, []string, error) {
	ids := make([]string, 0, len(batch))
	texts := make([]string, 0, len(batch))
	metas := make([]vectorindex.Metadata, 0, len(batch))
	for _, r := range batch {
		ids = append(ids, r.ID)
		texts = append(texts, r.Text)
		metas = append(metas, vectorindex.Metadata(r.Metadata))
	}

	if err := d.Index.Upsert(ctx, ids, texts, metas); err != nil {
		return 0, nil, fmt.Errorf("direct sync: upsert: %w", err)
	}
	return len(ids), nil, nil
}
