package tools

import (
	"context"
	"sort"
	"time"

	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

func searchRecentRelevantTool() *Tool {
	return &Tool{
		Name:        "search-recent-relevant",
		Description: "Combines vector relevance with recency, expanding the search window until hits are found or max_days is reached.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query":          map[string]interface{}{"type": "string"},
				"initial_days":   map[string]interface{}{"type": "number", "default": 7},
				"max_days":       map[string]interface{}{"type": "number", "default": 30},
				"recency_weight": map[string]interface{}{"type": "number", "default": 0.3},
				"min_score":      map[string]interface{}{"type": "number", "default": 0},
				"k":              map[string]interface{}{"type": "integer", "default": 10},
			},
			"required": []string{"query"},
		},
		Execute: executeSearchRecentRelevant,
	}
}

// expandingWindows generates the day-window sequence initial -> x4 -> x2 ->
// x2 ... capped at max, per spec.md 4.4. It always includes at least one
// window, and a final window == max is appended if not already reached.
func expandingWindows(initial, max float64) []float64 {
	if initial <= 0 {
		initial = 1
	}
	if max < initial {
		max = initial
	}
	windows := []float64{initial}
	next := initial * 4
	first := true
	for next <= max {
		windows = append(windows, next)
		if first {
			next = next * 2
			first = false
		} else {
			next = next * 2
		}
	}
	if windows[len(windows)-1] < max {
		windows = append(windows, max)
	}
	return windows
}

func executeSearchRecentRelevant(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error) {
	query, _ := args["query"].(string)
	initialDays := floatArg(args, "initial_days", 7)
	maxDays := floatArg(args, "max_days", 30)
	recencyWeight := floatArg(args, "recency_weight", 0.3)
	minScore := floatArg(args, "min_score", 0)
	k := intArg(args, "k", 10)

	windows := expandingWindows(initialDays, maxDays)
	now := time.Now()

	var windowsSearched []float64
	var hits []vectorindex.Hit

	for _, days := range windows {
		windowsSearched = append(windowsSearched, days)
		if deps.Index == nil {
			break
		}
		start := now.Add(-time.Duration(days * 24 * float64(time.Hour)))
		where := vectorindex.Gte("timestamp", float64(start.Unix()))
		found, err := deps.Index.Query(ctx, query, k*4, where)
		if err != nil {
			break
		}
		hits = found
		if len(hits) > 0 {
			break
		}
	}

	type scored struct {
		hit       vectorindex.Hit
		combined  float64
		timestamp float64
	}
	var candidates []scored
	seenTimestamps := make(map[float64]int)

	for _, h := range hits {
		ts, _ := h.Metadata["timestamp"].(float64)
		ageDays := now.Sub(time.Unix(int64(ts), 0)).Hours() / 24
		relevance := Relevance(h.Distance)
		recency := Recency(ageDays, maxDays)
		combined := Combined(relevance, recency, recencyWeight)
		if combined < minScore {
			continue
		}
		if existingIdx, ok := seenTimestamps[ts]; ok {
			if candidates[existingIdx].combined < combined {
				candidates[existingIdx] = scored{h, combined, ts}
			}
			continue
		}
		seenTimestamps[ts] = len(candidates)
		candidates = append(candidates, scored{h, combined, ts})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].combined > candidates[j].combined })
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Result{
			"id":       c.hit.ID,
			"text":     c.hit.Text,
			"combined": c.combined,
		})
	}

	return Result{
		"query":            map[string]interface{}{"query": query, "initial_days": initialDays, "max_days": maxDays, "recency_weight": recencyWeight},
		"windows_searched": windowsSearched,
		"results":          results,
	}, nil
}
