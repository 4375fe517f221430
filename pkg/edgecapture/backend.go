package edgecapture

import "context"

// OCRBackend extracts text from a saved screenshot file. Implementations
// are selected once at startup per spec.md 4.12: a missing backend is a
// fatal error, not a per-capture failure.
type OCRBackend interface {
	Name() string
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// NullBackend is the "None" capability implementation for test builds and
// for runs with OCR explicitly disabled: it always returns empty text
// rather than failing a capture.
type NullBackend struct{}

func (NullBackend) Name() string { return "none" }

func (NullBackend) ExtractText(ctx context.Context, imagePath string) (string, error) {
	return "", nil
}
