// Package vectorindex defines the abstract vector store contract (C2) and
// two implementations: an HTTP client for a Chroma-compatible collection
// service (the real embedded vector-store engine is explicitly out of
// scope per spec.md §1), and an in-memory stub used as the "None"
// capability implementation for test builds and as the fallback substrate
// when search-screenshots runs with no vector backend configured.
package vectorindex

import "context"

// Where is a boolean expression over metadata fields using the operators
// spec.md 4.2 names: $gte, $lte, $lt, $and. Operator maps carry exactly one
// key each; $and carries a list of sub-expressions.
type Where map[string]interface{}

// Gte builds {field: {"$gte": value}}.
func Gte(field string, value interface{}) Where { return Where{field: Where{"$gte": value}} }

// Lte builds {field: {"$lte": value}}.
func Lte(field string, value interface{}) Where { return Where{field: Where{"$lte": value}} }

// Lt builds {field: {"$lt": value}}.
func Lt(field string, value interface{}) Where { return Where{field: Where{"$lt": value}} }

// And composes sub-expressions with "$and", dropping nil entries. A single
// non-nil expression is returned unwrapped (spec only requires $and when
// both C2 and a caller filter are present, not unconditionally).
func And(exprs ...Where) Where {
	nonNil := make([]Where, 0, len(exprs))
	for _, e := range exprs {
		if len(e) > 0 {
			nonNil = append(nonNil, e)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return Where{"$and": nonNil}
	}
}

// Metadata is a flat map of scalar values (string/int/float64/bool). Callers
// are responsible for flattening any nested structure before calling
// Upsert — implementers must preserve the exact scalar type on round trip.
type Metadata map[string]interface{}

// Hit is one result row from Query: lower Distance means more similar.
type Hit struct {
	ID       string
	Text     string
	Metadata Metadata
	Distance float64
}

// Index is the abstract vector store contract (C2).
type Index interface {
	// Upsert idempotently adds or replaces ids/texts/metadatas. Entries
	// whose text is empty are skipped (nothing to embed).
	Upsert(ctx context.Context, ids []string, texts []string, metadatas []Metadata) error

	// Query returns up to k hits ordered by ascending distance.
	Query(ctx context.Context, text string, k int, where Where) ([]Hit, error)

	// Count returns the number of distinct ids currently indexed.
	Count(ctx context.Context) (int, error)

	// GetIDs returns every id currently indexed (used by sync diffing in
	// the direct-transport edge client; the server's own diff uses the
	// record store, not this method, per spec.md 4.8).
	GetIDs(ctx context.Context) ([]string, error)
}
