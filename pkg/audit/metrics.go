package audit

import (
	"bufio"
	"encoding/json"
	"os"
)

// Metrics is the aggregated view over the usage log that backs
// GET /api/metrics and GET /api/instance/{name}/detail. Computed by a full
// scan of usage.jsonl — spec.md 4.11 requires these logs be the sole input,
// no database.
type Metrics struct {
	TotalCalls      int            `json:"total_calls"`
	CallsByInstance map[string]int `json:"calls_by_instance"`
	CallsByTool     map[string]int `json:"calls_by_tool"`
	TotalDurationMs int64          `json:"total_duration_ms"`
}

// AvgDurationMs returns the mean duration across every recorded call, or 0
// if none were recorded.
func (m Metrics) AvgDurationMs() float64 {
	if m.TotalCalls == 0 {
		return 0
	}
	return float64(m.TotalDurationMs) / float64(m.TotalCalls)
}

// ReadMetrics scans the usage log at path and aggregates it. A missing file
// (no calls yet) is not an error — it yields a zero Metrics.
func ReadMetrics(path string) (Metrics, error) {
	m := Metrics{CallsByInstance: map[string]int{}, CallsByTool: map[string]int{}}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return m, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev UsageEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		m.TotalCalls++
		m.CallsByInstance[ev.Instance]++
		m.CallsByTool[ev.Tool]++
		m.TotalDurationMs += ev.DurationMs
	}
	return m, scanner.Err()
}

// ReadInstanceMetrics filters ReadMetrics down to a single instance's calls
// by re-scanning with a filter, used by /api/instance/{name}/detail.
func ReadInstanceMetrics(path, instance string) (Metrics, error) {
	m := Metrics{CallsByInstance: map[string]int{}, CallsByTool: map[string]int{}}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return m, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev UsageEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		if ev.Instance != instance {
			continue
		}
		m.TotalCalls++
		m.CallsByInstance[ev.Instance]++
		m.CallsByTool[ev.Tool]++
		m.TotalDurationMs += ev.DurationMs
	}
	return m, scanner.Err()
}
