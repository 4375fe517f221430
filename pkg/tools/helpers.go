package tools

import (
	"fmt"
	"time"
)

// intArg reads an integer argument that may arrive as float64 (JSON
// numbers decode that way), falling back to def when absent or the wrong
// type.
func intArg(args map[string]interface{}, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func floatArg(args map[string]interface{}, key string, def float64) float64 {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

func stringArg(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// requiredRange parses "start"/"end" from args, erroring if either is
// absent or malformed.
func requiredRange(args map[string]interface{}) (start, end time.Time, err error) {
	startStr, _ := args["start"].(string)
	endStr, _ := args["end"].(string)
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start and end are required")
	}
	start, err = ParseRangeBound(startStr, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = ParseRangeBound(endStr, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// optionalRange parses "start"/"end" if both are present; hasRange is
// false (with no error) when either is entirely absent.
func optionalRange(args map[string]interface{}) (start, end time.Time, hasRange bool, err error) {
	startStr, hasStart := args["start"].(string)
	endStr, hasEnd := args["end"].(string)
	if !hasStart || !hasEnd || startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	start, err = ParseRangeBound(startStr, false)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	end, err = ParseRangeBound(endStr, true)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return start, end, true, nil
}
