package edgecapture

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

type fakeCapturer struct {
	screens []Screen
	img     image.Image
}

func (f *fakeCapturer) Detect() ([]Screen, error) { return f.screens, nil }

func (f *fakeCapturer) Capture(Screen) (image.Image, error) { return f.img, nil }

type fakeBackend struct {
	text string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) ExtractText(ctx context.Context, imagePath string) (string, error) {
	return f.text, nil
}

type fakeUpserter struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeUpserter) Upsert(ctx context.Context, ids []string, texts []string, metas []vectorindex.Metadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, ids...)
	return nil
}

func (f *fakeUpserter) Query(ctx context.Context, text string, k int, where vectorindex.Where) ([]vectorindex.Hit, error) {
	return nil, nil
}

func (f *fakeUpserter) Count(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeUpserter) GetIDs(ctx context.Context) ([]string, error) { return nil, nil }

func newTestImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestLoopCapturesAndWritesOCRRecord(t *testing.T) {
	imagesDir := t.TempDir()
	ocrDir := t.TempDir()
	upserter := &fakeUpserter{}

	loop := NewLoop(Config{
		InstanceName:     "personal",
		ImagesDir:        imagesDir,
		OCRDir:           ocrDir,
		CaptureInterval:  time.Hour,
		MaxConcurrentOCR: 2,
	},
		&fakeCapturer{screens: []Screen{{Name: "screen_0", Index: 0}}, img: newTestImage()},
		&fakeBackend{text: "hello world"},
		upserter,
		zerolog.Nop(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := loop.Run(ctx)
	require.NoError(t, err)

	images, err := os.ReadDir(imagesDir)
	require.NoError(t, err)
	assert.Len(t, images, 1)

	ocrFiles, err := os.ReadDir(ocrDir)
	require.NoError(t, err)
	require.Len(t, ocrFiles, 1)

	raw, err := os.ReadFile(filepath.Join(ocrDir, ocrFiles[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hello world")

	upserter.mu.Lock()
	defer upserter.mu.Unlock()
	assert.Len(t, upserter.ids, 1)
}

func TestLoopSkipsCaptureWhenNoScreensDetected(t *testing.T) {
	imagesDir := t.TempDir()
	ocrDir := t.TempDir()

	loop := NewLoop(Config{
		ImagesDir:       imagesDir,
		OCRDir:          ocrDir,
		CaptureInterval: time.Hour,
	}, &fakeCapturer{screens: nil}, &fakeBackend{}, nil, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, loop.Run(ctx))

	images, err := os.ReadDir(imagesDir)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestLoopWithoutUpserterStillWritesRecord(t *testing.T) {
	imagesDir := t.TempDir()
	ocrDir := t.TempDir()

	loop := NewLoop(Config{
		ImagesDir:       imagesDir,
		OCRDir:          ocrDir,
		CaptureInterval: time.Hour,
	}, &fakeCapturer{screens: []Screen{{Name: "screen_0"}}, img: newTestImage()},
		&fakeBackend{text: "x"}, nil, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, loop.Run(ctx))

	ocrFiles, err := os.ReadDir(ocrDir)
	require.NoError(t, err)
	assert.Len(t, ocrFiles, 1)
}
