package tools

import (
	"context"
	"time"

	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

func vectorSearchWindowedTool() *Tool {
	return &Tool{
		Name:        "vector-search-windowed",
		Description: "Returns one top vector-search hit per fixed-width time window spanning the requested range.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query":       map[string]interface{}{"type": "string"},
				"start":       map[string]interface{}{"type": "string"},
				"end":         map[string]interface{}{"type": "string"},
				"max_results": map[string]interface{}{"type": "integer", "default": 10},
			},
			"required": []string{"query", "start", "end"},
		},
		Execute: executeVectorSearchWindowed,
	}
}

func executeVectorSearchWindowed(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error) {
	query, _ := args["query"].(string)
	start, end, err := requiredRange(args)
	if err != nil {
		return nil, err
	}
	maxResults := intArg(args, "max_results", 10)
	if maxResults <= 0 {
		maxResults = 1
	}

	rangeSecs := end.Sub(start).Seconds()
	window := time.Hour
	if candidate := time.Duration(rangeSecs/float64(maxResults)) * time.Second; candidate > window {
		window = candidate
	}

	results := make([]Result, 0, maxResults)
	for winStart := start; winStart.Before(end); winStart = winStart.Add(window) {
		winEnd := winStart.Add(window)
		if winEnd.After(end) {
			winEnd = end
		}

		var hit *Result
		if deps.Index != nil {
			where := vectorindex.And(
				vectorindex.Gte("timestamp", float64(winStart.Unix())),
				vectorindex.Lte("timestamp", float64(winEnd.Unix())),
			)
			hits, qErr := deps.Index.Query(ctx, query, 1, where)
			if qErr == nil && len(hits) > 0 {
				h := hits[0]
				hit = &Result{
					"id":        h.ID,
					"text":      h.Text,
					"distance":  h.Distance,
					"relevance": Relevance(h.Distance),
					"window":    winStart.Format(time.RFC3339),
				}
			}
		}
		if hit != nil {
			results = append(results, *hit)
		}
	}

	return Result{
		"query":          map[string]interface{}{"query": query, "start": args["start"], "end": args["end"]},
		"window_seconds": window.Seconds(),
		"results":        results,
	}, nil
}
