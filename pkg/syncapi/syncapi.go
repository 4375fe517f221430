// Package syncapi implements C8: the edge-to-server differential sync
// endpoint. POST /{instance}/sync accepts a batch of documents, writes each
// raw JSON body to the record store, and batch-upserts non-empty text into
// the vector index. GET /{instance}/sync/status returns the server's
// authoritative id set (from C1, not C2) so an edge client can diff.
package syncapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/memexlabs/prometheus/pkg/instance"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

// Document is one record as sent by the edge sync client: the raw JSON
// body to persist verbatim, plus the fields the vector index needs pulled
// out for upsert.
type Document struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
	RawJSON  map[string]interface{} `json:"raw_json"`
}

// Request is the POST /{instance}/sync body.
type Request struct {
	Documents []Document `json:"documents"`
}

// Result is the POST /{instance}/sync response. Errors is capped at 10
// entries per spec.md's "cap error detail", matching the reference.
type Result struct {
	Status  string   `json:"status"`
	Written int      `json:"written"`
	Indexed int      `json:"indexed"`
	Errors  []string `json:"errors"`
}

const maxErrorDetail = 10

// Sync writes every document to inst's record store and batch-upserts
// non-empty-text documents into its vector index. Continues past
// individual write/index failures, accumulating them into Result.Errors —
// a single bad document must not abort the whole batch (idempotent: the
// same document id can be re-synced safely since C1 writes are
// write-temp-then-rename).
func Sync(ctx context.Context, inst *instance.Instance, req Request) Result {
	result := Result{Status: "ok"}

	for _, doc := range req.Documents {
		raw := doc.RawJSON
		if raw == nil {
			raw = map[string]interface{}{"id": doc.ID, "text": doc.Text, "metadata": doc.Metadata}
		}
		b, err := json.Marshal(raw)
		if err != nil {
			result.Errors = appendCapped(result.Errors, fmt.Sprintf("write %s: %v", doc.ID, err))
			continue
		}
		if err := inst.Store.Put(doc.ID, b); err != nil {
			result.Errors = appendCapped(result.Errors, fmt.Sprintf("write %s: %v", doc.ID, err))
			continue
		}
		result.Written++
	}

	if inst.Index != nil && len(req.Documents) > 0 {
		var ids, texts []string
		var metas []vectorindex.Metadata
		for _, doc := range req.Documents {
			if doc.Text == "" {
				continue
			}
			ids = append(ids, doc.ID)
			texts = append(texts, doc.Text)
			metas = append(metas, flattenMetadata(doc.Metadata))
		}
		if len(ids) > 0 {
			if err := inst.Index.Upsert(ctx, ids, texts, metas); err != nil {
				result.Errors = appendCapped(result.Errors, fmt.Sprintf("vector upsert: %v", err))
			} else {
				result.Indexed = len(ids)
			}
		}
	}

	return result
}

// flattenMetadata keeps only string/int/float64/bool values, per spec.md
// 4.2's "metadata must be flattened, types preserved exactly" contract —
// nested structures are dropped rather than silently stringified.
func flattenMetadata(meta map[string]interface{}) vectorindex.Metadata {
	out := make(vectorindex.Metadata, len(meta))
	for k, v := range meta {
		switch v.(type) {
		case string, int, int64, float64, float32, bool:
			out[k] = v
		}
	}
	return out
}

func appendCapped(errs []string, msg string) []string {
	if len(errs) >= maxErrorDetail {
		return errs
	}
	return append(errs, msg)
}

// StatusResult is the GET /{instance}/sync/status response: the server's
// authoritative set of known ids for the caller to diff against.
type StatusResult struct {
	Instance string   `json:"instance"`
	Count    int      `json:"count"`
	IDs      []string `json:"ids"`
}

// Status returns the current id set for inst, sourced from C1 (the record
// store) rather than the vector index, per spec.md 4.8 — the filesystem is
// authoritative, the vector index is a derived view.
func Status(inst *instance.Instance) (StatusResult, error) {
	ids, err := inst.Store.ListIDs()
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{Instance: inst.Name, Count: len(ids), IDs: ids}, nil
}
