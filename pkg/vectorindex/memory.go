package vectorindex

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Index used as the "None" capability implementation
// (Design Note: capability interfaces selected at startup, with a stub for
// test builds) and as the fallback substrate when no real vector backend is
// configured. Relevance is approximated by token-overlap distance rather
// than a real embedding — adequate for tests and for degraded-mode search,
// never claimed to be semantically equivalent to a real embedding index.
type Memory struct {
	mu    sync.RWMutex
	ids   []string
	texts map[string]string
	metas map[string]Metadata
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{
		texts: make(map[string]string),
		metas: make(map[string]Metadata),
	}
}

func (m *Memory) Upsert(_ context.Context, ids []string, texts []string, metadatas []Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if i >= len(texts) || strings.TrimSpace(texts[i]) == "" {
			continue
		}
		if _, exists := m.texts[id]; !exists {
			m.ids = append(m.ids, id)
		}
		m.texts[id] = texts[i]
		if i < len(metadatas) {
			m.metas[id] = metadatas[i]
		}
	}
	return nil
}

func (m *Memory) Query(_ context.Context, text string, k int, where Where) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	queryTokens := tokenize(text)
	hits := make([]Hit, 0, len(m.ids))
	for _, id := range m.ids {
		meta := m.metas[id]
		if !matchesWhere(meta, where) {
			continue
		}
		dist := tokenDistance(queryTokens, tokenize(m.texts[id]))
		hits = append(hits, Hit{ID: id, Text: m.texts[id], Metadata: meta, Distance: dist})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids), nil
}

func (m *Memory) GetIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out, nil
}

func tokenize(s string) map[string]int {
	counts := make(map[string]int)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		counts[f]++
	}
	return counts
}

// tokenDistance is 1 - Jaccard similarity over token sets, clamped to
// [0,1] so it composes with the relevance formula max(0, 1-distance)
// the same way a real embedding distance would.
func tokenDistance(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		if len(a) == 0 && len(b) == 0 {
			return 0
		}
		return 1
	}
	intersection := 0
	union := len(b)
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	similarity := float64(intersection) / float64(union)
	return 1 - similarity
}

func matchesWhere(meta Metadata, where Where) bool {
	if len(where) == 0 {
		return true
	}
	if sub, ok := where["$and"]; ok {
		exprs, ok := sub.([]Where)
		if !ok {
			return true
		}
		for _, e := range exprs {
			if !matchesWhere(meta, e) {
				return false
			}
		}
		return true
	}
	for field, cond := range where {
		condMap, ok := cond.(Where)
		if !ok {
			continue
		}
		value, present := meta[field]
		if !present {
			return false
		}
		for op, target := range condMap {
			if !compareOp(op, value, target) {
				return false
			}
		}
	}
	return true
}

func compareOp(op string, value, target interface{}) bool {
	vf, vok := toFloat(value)
	tf, tok := toFloat(target)
	if !vok || !tok {
		return false
	}
	switch op {
	case "$gte":
		return vf >= tf
	case "$lte":
		return vf <= tf
	case "$lt":
		return vf < tf
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
