// Package edgesync implements the edge sync client (C13): it diffs local
// OCR records against the server's (or a direct vector store's) known id
// set and uploads the difference, with 413-driven batch splitting and
// exponential backoff on the tunneled transport.
package edgesync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// LocalRecord is one local OCR record read off disk, ready to sync.
type LocalRecord struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
	Raw      map[string]interface{}
}

// ScanLocalRecords reads every "<id>.json" record under ocrDir, skipping
// files with empty text — mirroring cli/commands/sync.py's "if not text:
// continue" behavior: a capture with no OCR text has nothing to embed and
// is not worth syncing.
func ScanLocalRecords(ocrDir string) ([]LocalRecord, error) {
	entries, err := os.ReadDir(ocrDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []LocalRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(ocrDir, e.Name()))
		if err != nil {
			continue
		}
		var body map[string]interface{}
		if err := json.Unmarshal(raw, &body); err != nil {
			continue
		}
		text, _ := body["text"].(string)
		if text == "" {
			continue
		}
		records = append(records, LocalRecord{
			ID:       strings.TrimSuffix(e.Name(), ".json"),
			Text:     text,
			Metadata: extractMetadata(body),
			Raw:      body,
		})
	}
	return records, nil
}

func extractMetadata(body map[string]interface{}) map[string]interface{} {
	meta := map[string]interface{}{"data_type": "ocr"}
	for _, key := range []string{"timestamp", "timestamp_iso", "screen_name", "word_count", "text_length", "screenshot_path", "source"} {
		if v, ok := body[key]; ok {
			meta[key] = v
		}
	}
	return meta
}
