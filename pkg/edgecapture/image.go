package edgecapture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	ximage "golang.org/x/image/draw"
)

const (
	maxLongEdge = 1280
	jpegQuality = 70
)

// encodeResizedJPEG converts img to RGB, resizes so the long edge is at
// most maxLongEdge while preserving aspect ratio, and encodes as JPEG at
// jpegQuality — matching the original's Pillow resize+save pipeline
// (LANCZOS there; CatmullRom is golang.org/x/image's closest analogue).
func encodeResizedJPEG(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	longEdge := width
	if height > longEdge {
		longEdge = height
	}

	var rgb image.Image
	if longEdge > maxLongEdge {
		newWidth := width * maxLongEdge / longEdge
		newHeight := height * maxLongEdge / longEdge
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		ximage.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, ximage.Over, nil)
		rgb = resized
	} else {
		flat := image.NewRGBA(bounds)
		draw.Draw(flat, bounds, img, bounds.Min, draw.Src)
		rgb = flat
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
