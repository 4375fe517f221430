package tools

import (
	"context"
	"time"
)

func activityGraphTool() *Tool {
	return &Tool{
		Name:        "activity-graph",
		Description: "Buckets capture counts by day or hour over a date range.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start":       map[string]interface{}{"type": "string"},
				"end":         map[string]interface{}{"type": "string"},
				"granularity": map[string]interface{}{"type": "string", "enum": []string{"day", "hour"}, "default": "day"},
				"fill_empty":  map[string]interface{}{"type": "boolean", "default": false},
			},
			"required": []string{"start", "end"},
		},
		Execute: executeActivityGraph,
	}
}

func executeActivityGraph(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error) {
	start, end, err := requiredRange(args)
	if err != nil {
		return nil, err
	}
	granularity := stringArg(args, "granularity", "day")
	fillEmpty, _ := args["fill_empty"].(bool)

	bucketKey := func(t time.Time) string {
		if granularity == "hour" {
			return t.Format("2006-01-02T15")
		}
		return t.Format("2006-01-02")
	}

	counts := make(map[string]int)
	total := 0
	err = deps.Store.IterInRange(start, end, func(id string, ts time.Time) error {
		counts[bucketKey(ts)]++
		total++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fillEmpty {
		step := time.Hour
		if granularity == "day" {
			step = 24 * time.Hour
		}
		for t := truncateTo(start, granularity); !t.After(end); t = t.Add(step) {
			key := bucketKey(t)
			if _, ok := counts[key]; !ok {
				counts[key] = 0
			}
		}
	}

	buckets := make([]Result, 0, len(counts))
	for key, n := range counts {
		buckets = append(buckets, Result{"bucket": key, "count": n})
	}

	return Result{
		"query":       map[string]interface{}{"start": args["start"], "end": args["end"], "granularity": granularity},
		"buckets":     buckets,
		"total_count": total,
	}, nil
}

func truncateTo(t time.Time, granularity string) time.Time {
	if granularity == "hour" {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
