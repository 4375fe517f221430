package tools

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// periodFor classifies an hour into one of the six fixed periods.
// late_night is the tail end of the day (22:00-24:00) carved out of
// "night" so every hour maps to exactly one of the six names.
func periodFor(hour int) string {
	switch {
	case hour >= 0 && hour < 6:
		return "early_morning"
	case hour >= 6 && hour < 11:
		return "morning"
	case hour >= 11 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 20:
		return "evening"
	case hour >= 20 && hour < 22:
		return "night"
	default:
		return "late_night"
	}
}

func dailySummaryTool() *Tool {
	return &Tool{
		Name:        "daily-summary",
		Description: "Samples captures from each fixed time-of-day period (early_morning, morning, afternoon, evening, night, late_night) for a given date.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"date":              map[string]interface{}{"type": "string", "description": "YYYY-MM-DD"},
				"samples_per_period": map[string]interface{}{"type": "integer", "default": 3},
			},
			"required": []string{"date"},
		},
		Execute: executeDailySummary,
	}
}

func executeDailySummary(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error) {
	dateStr, _ := args["date"].(string)
	if dateStr == "" {
		return nil, fmt.Errorf("date is required")
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return nil, err
	}
	samplesPerPeriod := intArg(args, "samples_per_period", 3)

	start := day
	end := day.Add(24*time.Hour - time.Second)

	byPeriod := make(map[string][]idTs)
	err = deps.Store.IterInRange(start, end, func(id string, ts time.Time) error {
		p := periodFor(ts.Hour())
		byPeriod[p] = append(byPeriod[p], idTs{id, ts})
		return nil
	})
	if err != nil {
		return nil, err
	}

	periodOrder := []string{"early_morning", "morning", "afternoon", "evening", "night", "late_night"}
	periods := make([]Result, 0, len(periodOrder))
	for _, name := range periodOrder {
		entries := byPeriod[name]
		sort.Slice(entries, func(i, j int) bool { return entries[i].ts.Before(entries[j].ts) })
		sampled := evenSample(entries, samplesPerPeriod)

		captures := make([]Result, 0, len(sampled))
		for _, e := range sampled {
			rec, ok, rErr := deps.Store.Get(e.id)
			if rErr != nil || !ok {
				continue
			}
			captures = append(captures, Result{"id": e.id, "timestamp": e.ts.Unix(), "text": rec.Text})
		}
		periods = append(periods, Result{
			"period":        name,
			"total_captures": len(entries),
			"captures":      captures,
		})
	}

	return Result{
		"query":   map[string]interface{}{"date": dateStr, "samples_per_period": samplesPerPeriod},
		"periods": periods,
	}, nil
}
