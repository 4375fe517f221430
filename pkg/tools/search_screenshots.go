package tools

import (
	"context"
	"strings"
	"time"

	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

func searchScreenshotsTool() *Tool {
	return &Tool{
		Name:        "search-screenshots",
		Description: "Vector search over captured screenshots with an optional date range filter. Falls back to a substring scan of the record store when the vector index is unavailable.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string", "description": "search text"},
				"start": map[string]interface{}{"type": "string", "description": "ISO-8601 start, inclusive"},
				"end":   map[string]interface{}{"type": "string", "description": "ISO-8601 end, inclusive"},
				"k":     map[string]interface{}{"type": "integer", "description": "max results", "default": 10},
			},
			"required": []string{"query"},
		},
		Execute: executeSearchScreenshots,
	}
}

func executeSearchScreenshots(ctx context.Context, deps Deps, args map[string]interface{}) (Result, error) {
	query, _ := args["query"].(string)
	k := intArg(args, "k", 10)

	start, end, hasRange, err := optionalRange(args)
	if err != nil {
		return nil, err
	}

	echo := Result{"query": query, "k": k}
	if hasRange {
		echo["start"] = args["start"]
		echo["end"] = args["end"]
	}

	if deps.Index == nil {
		return substringFallback(deps, query, start, end, hasRange, k, echo)
	}

	var where vectorindex.Where
	if hasRange {
		where = vectorindex.And(
			vectorindex.Gte("timestamp", float64(start.Unix())),
			vectorindex.Lte("timestamp", float64(end.Unix())),
		)
	}

	hits, err := deps.Index.Query(ctx, query, k, where)
	if err != nil {
		// Upstream vector failure: degrade to the same fallback path
		// rather than surfacing upstream_failure for a search tool.
		return substringFallback(deps, query, start, end, hasRange, k, echo)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			"id":        h.ID,
			"text":      h.Text,
			"metadata":  h.Metadata,
			"distance":  h.Distance,
			"relevance": Relevance(h.Distance),
		})
	}
	echo["results"] = results
	echo["source"] = "vector"
	return echo, nil
}

func substringFallback(deps Deps, query string, start, end time.Time, hasRange bool, k int, echo Result) (Result, error) {
	results := make([]Result, 0, k)
	q := strings.ToLower(query)

	scan := func(id string, ts time.Time) error {
		if len(results) >= k {
			return nil
		}
		rec, ok, err := deps.Store.Get(id)
		if err != nil || !ok {
			return nil
		}
		if q != "" && !strings.Contains(strings.ToLower(rec.Text), q) {
			return nil
		}
		results = append(results, Result{
			"id":        id,
			"text":      rec.Text,
			"metadata":  map[string]interface{}{"timestamp": rec.TimestampUnix, "screen_name": rec.ScreenName},
			"distance":  nil,
			"relevance": nil,
		})
		return nil
	}

	var err error
	if hasRange {
		err = deps.Store.IterInRange(start, end, scan)
	} else {
		ids, listErr := deps.Store.ListIDs()
		err = listErr
		if err == nil {
			for _, id := range ids {
				if scanErr := scan(id, time.Time{}); scanErr != nil {
					break
				}
			}
		}
	}
	if err != nil {
		return nil, err
	}
	echo["results"] = results
	echo["source"] = "substring_fallback"
	return echo, nil
}
