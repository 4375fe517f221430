package tools

import (
	"context"
	"sort"
	"time"
)

func timeRangeSummaryTool() *Tool {
	return &Tool{
		Name:        "time-range-summary",
		Description: "Evenly distributed, deterministic sample of records in a date range.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start":       map[string]interface{}{"type": "string"},
				"end":         map[string]interface{}{"type": "string"},
				"max_results": map[string]interface{}{"type": "integer", "default": 20},
			},
			"required": []string{"start", "end"},
		},
		Execute: executeTimeRangeSummary,
	}
}

type idTs struct {
	id string
	ts time.Time
}

func executeTimeRangeSummary(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error) {
	start, end, err := requiredRange(args)
	if err != nil {
		return nil, err
	}
	maxResults := intArg(args, "max_results", 20)

	var all []idTs
	err = deps.Store.IterInRange(start, end, func(id string, ts time.Time) error {
		all = append(all, idTs{id, ts})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ts.Before(all[j].ts) })

	sampled := evenSample(all, maxResults)

	results := make([]Result, 0, len(sampled))
	for _, e := range sampled {
		rec, ok, err := deps.Store.Get(e.id)
		if err != nil || !ok {
			continue
		}
		results = append(results, Result{"id": e.id, "timestamp": e.ts.Unix(), "text": rec.Text})
	}

	return Result{
		"query":        map[string]interface{}{"start": args["start"], "end": args["end"], "max_results": maxResults},
		"results":      results,
		"total_in_range": len(all),
	}, nil
}

// evenSample picks at most max elements at the fractional step N/max
// (element floor(i*N/max) for i = 0..max-1), deterministic and starting at
// index 0, matching spec.md 4.4's "sampling step = N/max".
func evenSample(items []idTs, max int) []idTs {
	n := len(items)
	if max <= 0 || n == 0 {
		return nil
	}
	if n <= max {
		return items
	}
	step := float64(n) / float64(max)
	out := make([]idTs, 0, max)
	for i := 0; i < max; i++ {
		idx := int(float64(i) * step)
		if idx >= n {
			idx = n - 1
		}
		out = append(out, items[idx])
	}
	return out
}
