package edgecapture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillTestImage(img *image.RGBA) {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x += 37 {
		for y := b.Min.Y; y < b.Max.Y; y += 37 {
			img.Set(x, y, color.White)
		}
	}
}

func TestEncodeResizedJPEGShrinksWideImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	fillTestImage(img)

	data, err := encodeResizedJPEG(img)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, maxLongEdge, decoded.Bounds().Dx())
	assert.Equal(t, 640, decoded.Bounds().Dy())
}

func TestEncodeResizedJPEGLeavesSmallImagesUnscaled(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	fillTestImage(img)

	data, err := encodeResizedJPEG(img)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())
}
