package edgecapture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TesseractBackend shells out to the tesseract CLI, mirroring pytesseract's
// own subprocess-based wrapper in the original capture loop — there is no
// Go OCR library in the retrieved corpus, and invoking the real CLI is the
// idiom the reference implementation itself uses.
type TesseractBackend struct {
	binary string
}

// NewTesseractBackend builds a backend that invokes binary (or "tesseract"
// on $PATH if empty).
func NewTesseractBackend(binary string) *TesseractBackend {
	if binary == "" {
		binary = "tesseract"
	}
	return &TesseractBackend{binary: binary}
}

func (t *TesseractBackend) Name() string { return "tesseract" }

func (t *TesseractBackend) ExtractText(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, imagePath, "stdout", "-l", "eng")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// DetectBackend picks the best available OCR backend. On this platform set
// that is tesseract only — a native vision API has no portable Go binding
// in the corpus, so unlike the Python original's Apple Vision / Tesseract
// pair, this is a single-backend detection that fails fatally if tesseract
// is not on $PATH, per spec.md 4.12.
func DetectBackend() (OCRBackend, error) {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("no OCR backend available: install tesseract-ocr: %w", err)
	}
	return NewTesseractBackend(path), nil
}
