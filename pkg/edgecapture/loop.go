// Package edgecapture implements the edge capture loop (C12): periodic
// multi-screen capture, bounded-concurrency OCR, and local persistence of
// the resulting records, with a best-effort vector upsert that never
// blocks capture.
package edgecapture

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/memexlabs/prometheus/pkg/store"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

const (
	// DefaultCaptureInterval matches spec.md 4.12's default of 60 seconds.
	DefaultCaptureInterval = 60 * time.Second
	// DefaultMaxConcurrentOCR matches spec.md 4.12's default of 4 workers.
	DefaultMaxConcurrentOCR = 4

	shutdownGrace      = 10 * time.Second
	timestampLayout    = "2006-01-02T15:04:05.000000"
	upsertTimeout      = 10 * time.Second
	captureSourceLabel = "flow-runner"
)

// Config configures one capture loop run.
type Config struct {
	InstanceName     string
	ImagesDir        string
	OCRDir           string
	CaptureInterval  time.Duration
	MaxConcurrentOCR int
}

// Loop is the edge capture loop. On a fixed interval it captures every
// detected screen, resizes and saves each as JPEG, dispatches OCR through
// a bounded worker pool, and writes the resulting record to disk.
type Loop struct {
	cfg      Config
	capturer ScreenCapturer
	backend  OCRBackend
	// upserter receives a best-effort vector upsert per OCR'd record. It
	// is nil in tunneled hosting modes, where C13's sync client owns
	// getting records into the vector index instead.
	upserter vectorindex.Index
	log      zerolog.Logger

	pool *ocrPool
}

// NewLoop builds a capture loop. capturer and backend must not be nil;
// upserter may be nil (see Loop.upserter).
func NewLoop(cfg Config, capturer ScreenCapturer, backend OCRBackend, upserter vectorindex.Index, log zerolog.Logger) *Loop {
	if cfg.CaptureInterval <= 0 {
		cfg.CaptureInterval = DefaultCaptureInterval
	}
	if cfg.MaxConcurrentOCR <= 0 {
		cfg.MaxConcurrentOCR = DefaultMaxConcurrentOCR
	}
	l := &Loop{
		cfg:      cfg,
		capturer: capturer,
		backend:  backend,
		upserter: upserter,
		log:      log.With().Str("component", "edgecapture").Str("instance", cfg.InstanceName).Logger(),
	}
	l.pool = newOCRPool(cfg.MaxConcurrentOCR, l.processTask)
	return l
}

// Run captures immediately, then every cfg.CaptureInterval until ctx is
// cancelled. On cancellation it stops dispatching new captures, drains
// in-flight OCR tasks up to a grace period, then returns.
func (l *Loop) Run(ctx context.Context) error {
	if err := os.MkdirAll(l.cfg.ImagesDir, 0o755); err != nil {
		return fmt.Errorf("edgecapture: create images dir: %w", err)
	}
	if err := os.MkdirAll(l.cfg.OCRDir, 0o755); err != nil {
		return fmt.Errorf("edgecapture: create ocr dir: %w", err)
	}

	l.pool.start(ctx, l.cfg.MaxConcurrentOCR)
	defer l.pool.closeAndWait(shutdownGrace)

	l.captureAllScreens(ctx)

	ticker := time.NewTicker(l.cfg.CaptureInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("capture loop stopping")
			return nil
		case <-ticker.C:
			l.captureAllScreens(ctx)
		}
	}
}

// captureAllScreens enumerates screens and, for each, saves a resized JPEG
// and enqueues an OCR task. An individual screen's capture or save failure
// is logged and skipped; it never aborts the remaining screens.
func (l *Loop) captureAllScreens(ctx context.Context) {
	screens, err := l.capturer.Detect()
	if err != nil {
		l.log.Error().Err(err).Msg("screen detection failed")
		return
	}
	if len(screens) == 0 {
		l.log.Warn().Msg("no screens detected, skipping capture")
		return
	}

	ts := time.Now().UTC()
	tsISO := ts.Format(timestampLayout)
	l.log.Info().Int("screens", len(screens)).Str("timestamp", tsISO).Msg("capturing screens")

	for _, screen := range screens {
		img, err := l.capturer.Capture(screen)
		if err != nil {
			l.log.Error().Err(err).Str("screen", screen.Name).Msg("capture failed")
			continue
		}

		imagePath, err := l.saveScreenshot(img, tsISO, screen.Name)
		if err != nil {
			l.log.Warn().Err(err).Str("screen", screen.Name).Msg("failed to save screenshot, continuing without image")
			imagePath = ""
		}

		task := ocrTask{
			timestampISO:  tsISO,
			timestampUnix: float64(ts.UnixNano()) / 1e9,
			screenName:    screen.Name,
			imagePath:     imagePath,
		}
		select {
		case l.pool.tasks <- task:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) saveScreenshot(img image.Image, tsISO, screenName string) (string, error) {
	data, err := encodeResizedJPEG(img)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.jpg", sanitizeTimestamp(tsISO), screenName)
	path := filepath.Join(l.cfg.ImagesDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func sanitizeTimestamp(ts string) string {
	r := strings.NewReplacer(":", "-", ".", "-")
	return r.Replace(ts)
}

// processTask runs OCR for one captured screen, writes the resulting
// record to ocr/<id>.json, and fires a best-effort vector upsert. It runs
// inside one of the ocrPool's worker goroutines, bounded by
// MaxConcurrentOCR, so it never blocks captureAllScreens.
func (l *Loop) processTask(ctx context.Context, task ocrTask) {
	var text string
	if task.imagePath != "" {
		t, err := l.backend.ExtractText(ctx, task.imagePath)
		if err != nil {
			l.log.Error().Err(err).Str("screen", task.screenName).Msg("ocr failed")
		} else {
			text = t
		}
	}

	id := fmt.Sprintf("%s_%s", sanitizeTimestamp(task.timestampISO), task.screenName)
	rec := store.NewRecord(id, task.timestampUnix, task.timestampISO, task.screenName, text, task.imagePath, captureSourceLabel)

	if err := l.writeOCRRecord(rec); err != nil {
		l.log.Error().Err(err).Str("id", id).Msg("failed to write ocr record")
		return
	}
	l.log.Info().Str("id", id).Int("text_length", rec.TextLength).Int("word_count", rec.WordCount).Msg("ocr complete")

	l.fireUpsert(rec)
}

func (l *Loop) writeOCRRecord(rec store.Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	path := filepath.Join(l.cfg.OCRDir, rec.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// fireUpsert performs a best-effort vector upsert. Its failure is logged
// and never propagated: spec.md 4.12 requires "C2 failures MUST NOT block
// capture", and since this runs inside an OCR worker rather than the
// capture dispatch path, even a slow upsert only occupies one of
// MaxConcurrentOCR workers, not the capture ticker.
func (l *Loop) fireUpsert(rec store.Record) {
	if l.upserter == nil || rec.Text == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), upsertTimeout)
	defer cancel()

	meta := vectorindex.Metadata{
		"timestamp":     rec.TimestampUnix,
		"timestamp_iso": rec.TimestampISO,
		"screen_name":   rec.ScreenName,
		"text_length":   rec.TextLength,
		"word_count":    rec.WordCount,
		"source":        rec.Source,
		"data_type":     rec.DataType,
	}
	if rec.ScreenshotPath != "" {
		meta["screenshot_path"] = rec.ScreenshotPath
	}

	if err := l.upserter.Upsert(ctx, []string{rec.ID}, []string{rec.Text}, []vectorindex.Metadata{meta}); err != nil {
		l.log.Warn().Err(err).Str("id", rec.ID).Msg("vector upsert failed, ocr data already saved")
	}
}
