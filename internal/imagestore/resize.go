package imagestore

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	// Registered decoders for source images.
	_ "image/png"

	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// Resizer scales encoded image bytes to fit within a box.
type Resizer interface {
	Resize(data []byte, maxWidth, maxHeight int) ([]byte, error)
}

// ResizerFunc adapts a function to Resizer.
type ResizerFunc func(data []byte, maxWidth, maxHeight int) ([]byte, error)

// Resize calls f.
func (f ResizerFunc) Resize(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	return f(data, maxWidth, maxHeight)
}

// BoxResizer decodes JPEG, PNG or WebP input and encodes a JPEG that fits
// within the box with the source aspect ratio. Images already inside the
// box are re-encoded without scaling.
type BoxResizer struct {
	Quality int
	Scaler  draw.Scaler
}

// NewBoxResizer returns a BoxResizer using Catmull-Rom resampling.
func NewBoxResizer() *BoxResizer {
	return &BoxResizer{Quality: 85, Scaler: draw.CatmullRom}
}

// Resize implements Resizer.
func (r *BoxResizer) Resize(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("resize: invalid box %dx%d", maxWidth, maxHeight)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("resize: decode: %w", err)
	}

	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxWidth, maxHeight)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("resize: empty image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha channel; flatten onto white.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	r.Scaler.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: r.Quality}); err != nil {
		return nil, fmt.Errorf("resize: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// FitWithin returns the largest size with the aspect ratio of w×h that fits
// within maxW×maxH. Sizes already inside the box are returned unchanged.
// Neither returned dimension is rounded below 1 for a non-empty input.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare w/maxW with h/maxH without floating point.
	if w*maxH >= h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}
