// Package imageprep normalizes receipt photos before extraction: bounded
// downscale, white background, JPEG re-encode. Oversized or transparent
// sources produce garbage reads and oversized payloads.
package imageprep

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// DefaultMaxDimension is the bounding box for the longest image side.
// 1024px is the sweet spot for text-reading models.
const DefaultMaxDimension = 1024

// jpegQuality keeps payloads small and strips metadata that breaks mobile
// uploads.
const jpegQuality = 70

// Prepare decodes a PNG or JPEG, scales it down so neither side exceeds
// maxDim (never up), paints it over a white background, and re-encodes as
// JPEG. maxDim <= 0 uses DefaultMaxDimension.
func Prepare(raw []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("imageprep: decoding image: %w", err)
	}

	w, h := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), maxDim)

	// White background first: transparent PNG regions otherwise render
	// black after the JPEG conversion.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("imageprep: encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin shrinks (w, h) proportionally into a maxDim square. Images
// already inside the box keep their size.
func fitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		scaled := h * maxDim / w
		if scaled < 1 {
			scaled = 1
		}
		return maxDim, scaled
	}
	scaled := w * maxDim / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, maxDim
}
