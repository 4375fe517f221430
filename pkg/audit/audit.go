// Package audit implements C11: a plain key=value audit log (one line per
// request) and a JSONL usage log (one object per successful tool call).
// Both are append-only files; writes are kept under PIPE_BUF so each line
// lands as a single atomic write syscall even under concurrent writers.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// maxLineBytes is kept comfortably under the POSIX PIPE_BUF guarantee
// (historically 4096 on Linux) so a single os.File.Write of one line never
// interleaves with another writer's line.
const maxLineBytes = 4000

// Logger owns both append-only files. A single mutex per file serializes
// writes from this process; atomicity across processes relies on O_APPEND.
type Logger struct {
	auditMu  sync.Mutex
	auditF   *os.File
	usageMu  sync.Mutex
	usageF   *os.File
}

// Open opens (creating if needed) the audit and usage log files under dir,
// named audit.log and usage.jsonl per spec.md §6's on-disk layout.
func Open(dir string) (*Logger, error) {
	auditF, err := os.OpenFile(dir+"/audit.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open audit.log: %w", err)
	}
	usageF, err := os.OpenFile(dir+"/usage.jsonl", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		auditF.Close()
		return nil, fmt.Errorf("audit: open usage.jsonl: %w", err)
	}
	return &Logger{auditF: auditF, usageF: usageF}, nil
}

// Close closes both underlying files.
func (l *Logger) Close() error {
	err1 := l.auditF.Close()
	err2 := l.usageF.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Fields is an ordered list of key=value pairs for one audit line. Using a
// slice instead of a map keeps line output deterministic.
type Fields []Field

// Field is one key=value pair.
type Field struct {
	Key   string
	Value string
}

// F is a convenience constructor for a Field with any value stringified.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: fmt.Sprintf("%v", value)}
}

func (fs Fields) render() string {
	var b strings.Builder
	for i, f := range fs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(sanitize(f.Value))
	}
	return b.String()
}

// sanitize strips characters that would break the key=value line grammar
// (newlines and spaces inside a value would be ambiguous with the next
// field) without pulling in a full CSV/logfmt encoder for one line.
func sanitize(v string) string {
	v = strings.ReplaceAll(v, "\n", "\\n")
	v = strings.ReplaceAll(v, " ", "_")
	return v
}

// Event writes one audit line of the form "<KIND> k=v k=v ...", e.g.
// "AUTH_FAIL instance=personal ip=1.2.3.4 endpoint=/personal/mcp error=invalid_token".
func (l *Logger) Event(kind string, fields ...Field) {
	line := kind
	if rendered := Fields(fields).render(); rendered != "" {
		line += " " + rendered
	}
	line += "\n"
	if len(line) > maxLineBytes {
		line = line[:maxLineBytes-1] + "\n"
	}

	l.auditMu.Lock()
	defer l.auditMu.Unlock()
	_, _ = l.auditF.WriteString(line)
}

// AuthFail records a failed authentication attempt.
func (l *Logger) AuthFail(instance, ip, endpoint, reason string) {
	l.Event("AUTH_FAIL", F("instance", instance), F("ip", ip), F("endpoint", endpoint), F("error", reason))
}

// Sync records a completed sync batch.
func (l *Logger) Sync(instance, ip string, documents int) {
	l.Event("SYNC", F("instance", instance), F("ip", ip), F("documents", documents))
}

// ToolOK records a successful tool call's duration.
func (l *Logger) ToolOK(instance, ip, tool string, durationMs int64) {
	l.Event("TOOL_OK", F("instance", instance), F("ip", ip), F("tool", tool), F("duration_ms", durationMs))
}

// RateLimited records a rate-limit rejection.
func (l *Logger) RateLimited(instance, ip, limitType string) {
	l.Event("RATE_LIMIT", F("instance", instance), F("ip", ip), F("type", limitType))
}

// UsageEvent is the JSONL shape appended for every successful tool call,
// per spec.md §4.11 / the original's _log_usage_event.
type UsageEvent struct {
	Timestamp  string `json:"ts"`
	Event      string `json:"event"`
	Instance   string `json:"instance"`
	Tool       string `json:"tool"`
	QueryLen   int    `json:"query_len"`
	Results    int    `json:"results"`
	DurationMs int64  `json:"duration_ms"`
}

// Usage appends one usage event, stamping ts with now in RFC3339 form.
func (l *Logger) Usage(now time.Time, instance, tool string, queryLen, results int, durationMs int64) error {
	ev := UsageEvent{
		Timestamp:  now.UTC().Format(time.RFC3339),
		Event:      "tool_call",
		Instance:   instance,
		Tool:       tool,
		QueryLen:   queryLen,
		Results:    results,
		DurationMs: durationMs,
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	if len(line) > maxLineBytes {
		return fmt.Errorf("audit: usage event exceeds max line size")
	}

	l.usageMu.Lock()
	defer l.usageMu.Unlock()
	_, err = l.usageF.Write(line)
	return err
}
