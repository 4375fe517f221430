package tools

import (
	"context"
	"sort"
	"time"
)

func sampleTimeRangeTool() *Tool {
	return &Tool{
		Name:        "sample-time-range",
		Description: "Window-first sampling: divides the range into fixed windows and returns the first record per window.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start":           map[string]interface{}{"type": "string"},
				"end":             map[string]interface{}{"type": "string"},
				"samples":         map[string]interface{}{"type": "integer", "default": 10},
				"min_window_secs": map[string]interface{}{"type": "number", "default": 60},
			},
			"required": []string{"start", "end"},
		},
		Execute: executeSampleTimeRange,
	}
}

func executeSampleTimeRange(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error) {
	start, end, err := requiredRange(args)
	if err != nil {
		return nil, err
	}
	samples := intArg(args, "samples", 10)
	minWindowSecs := floatArg(args, "min_window_secs", 60)

	rangeSecs := end.Sub(start).Seconds()
	windowSecs := minWindowSecs
	if samples > 0 {
		candidate := rangeSecs / float64(samples)
		if candidate > windowSecs {
			windowSecs = candidate
		}
	}
	window := time.Duration(windowSecs * float64(time.Second))
	if window <= 0 {
		window = time.Minute
	}

	var all []idTs
	err = deps.Store.IterInRange(start, end, func(id string, ts time.Time) error {
		all = append(all, idTs{id, ts})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ts.Before(all[j].ts) })

	var picked []idTs
	lastWindow := int64(-1)
	for _, e := range all {
		w := int64(e.ts.Sub(start) / window)
		if w != lastWindow {
			picked = append(picked, e)
			lastWindow = w
		}
	}

	results := make([]Result, 0, len(picked))
	for _, e := range picked {
		rec, ok, err := deps.Store.Get(e.id)
		if err != nil || !ok {
			continue
		}
		results = append(results, Result{"id": e.id, "timestamp": e.ts.Unix(), "text": rec.Text})
	}

	return Result{
		"query":           map[string]interface{}{"start": args["start"], "end": args["end"], "samples": samples},
		"window_seconds":  window.Seconds(),
		"results":         results,
	}, nil
}
