package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// Depth is the bit depth of every normalized cover.
const Depth = 32

// Cover is a normalized cover image ready for embedding: PNG-encoded
// 32-bit RGBA pixels plus the dimensions the picture block needs.
type Cover struct {
	PNG    []byte
	Width  int
	Height int
}

// NormalizeCover decodes an exported texture and re-encodes it as RGBA
// PNG. When maxEdge is positive and either dimension exceeds it, the
// image is scaled down to fit, preserving aspect ratio; it is never
// scaled up.
func NormalizeCover(data []byte, maxEdge int) (Cover, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Cover{}, fmt.Errorf("decode cover: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return Cover{}, fmt.Errorf("cover has empty bounds %v", bounds)
	}

	if maxEdge > 0 && (width > maxEdge || height > maxEdge) {
		if width >= height {
			height = int(float64(maxEdge) * float64(height) / float64(width))
			width = maxEdge
		} else {
			width = int(float64(maxEdge) * float64(width) / float64(height))
			height = maxEdge
		}
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return Cover{}, fmt.Errorf("encode cover: %w", err)
	}
	return Cover{PNG: buf.Bytes(), Width: width, Height: height}, nil
}
