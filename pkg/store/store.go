package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Store is a directory of JSON documents, one per record, filename
// "<id>.json". All operations are safe for concurrent use: the OS already
// serializes writes to distinct files, and Put is atomic via
// write-temp-then-rename so a reader never observes a partial document.
type Store struct {
	dir string
	log zerolog.Logger
}

// New creates a Store rooted at dir, creating the directory if absent.
func New(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log.With().Str("component", "store").Str("dir", dir).Logger()}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Put writes raw as "<id>.json" atomically (write-temp-then-rename).
// Re-writing the same id with equal content is legal (idempotent upsert);
// spec.md does not require detecting or rejecting a differing overwrite.
func (s *Store) Put(id string, raw []byte) error {
	final := s.path(id)
	tmp := final + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixNano())

	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("store: write temp for %s: %w", id, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: rename into place for %s: %w", id, err)
	}
	return nil
}

// PutRecord marshals and writes a Record.
func (s *Store) PutRecord(r Record) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal record %s: %w", r.ID, err)
	}
	return s.Put(r.ID, raw)
}

// Get reads and unmarshals "<id>.json". Returns (nil, false, nil) if absent.
func (s *Store) Get(id string) (*Record, bool, error) {
	raw, ok, err := s.GetRaw(id)
	if err != nil || !ok {
		return nil, ok, err
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false, fmt.Errorf("store: unmarshal %s: %w", id, err)
	}
	return &r, true, nil
}

// GetRaw reads the raw bytes of "<id>.json" without unmarshaling, used by
// the sync endpoint which stores arbitrary raw_json payloads.
func (s *Store) GetRaw(id string) ([]byte, bool, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: read %s: %w", id, err)
	}
	return raw, true, nil
}

// Exists reports whether "<id>.json" is present, without reading its body.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// ListIDs enumerates "*.json" and returns the set of id stems. It tolerates
// files appearing or disappearing mid-scan (a concurrent writer), since a
// directory read under most filesystems is only a best-effort snapshot.
func (s *Store) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: list %s: %w", s.dir, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.Contains(name, ".tmp-") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns len(ListIDs()) without allocating the full id slice twice.
func (s *Store) Count() (int, error) {
	ids, err := s.ListIDs()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// IterInRange scans filenames (not document bodies) whose encoded or
// mtime-derived timestamp falls within [start, end], calling fn for each
// matching id in filename order. A read error for one file is logged and
// skipped rather than aborting the scan, per spec.md 4.1's failure policy.
func (s *Store) IterInRange(start, end time.Time, fn func(id string, ts time.Time) error) error {
	ids, err := s.ListIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		ts := timestampForFile(s.path(id), id)
		if ts.Before(start) || ts.After(end) {
			continue
		}
		if err := fn(id, ts); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("iter_in_range callback failed, skipping")
			continue
		}
	}
	return nil
}

// Dir returns the store's root directory (used by get-stats for disk usage).
func (s *Store) Dir() string { return s.dir }

// DiskUsageBytes sums the size of every record file under the store.
func (s *Store) DiskUsageBytes() (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
