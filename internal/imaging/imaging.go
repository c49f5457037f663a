// Package imaging prepares uploaded clothing photos for storage: it
// normalizes them to a bounded JPEG and extracts dominant named colors for
// the catalog.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxDimension = 800
	jpegQuality  = 80
)

// Normalize decodes an image in any supported format, scales it down so
// neither dimension exceeds 800px (never upscales), and re-encodes it as
// JPEG. The result is what gets persisted and synced.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	ratio := math.Min(math.Min(maxDimension/float64(width), maxDimension/float64(height)), 1)
	dstW := int(math.Round(float64(width) * ratio))
	dstH := int(math.Round(float64(height) * ratio))

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
