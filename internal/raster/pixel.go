package raster

import (
	"image"
	"image/draw"
)

// PixelBuffer is the canonical uncompressed RGBA representation used as the
// universal intermediate for raster conversions: 4 bytes per pixel,
// row-major, no padding between rows.
type PixelBuffer struct {
	Pix    []byte
	Width  int
	Height int
}

// FromImage converts any image into a canonical pixel buffer, copying only
// when the source is not already tightly-packed NRGBA at the origin.
func FromImage(img image.Image) *PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == w*4 && b.Min == (image.Point{}) {
		return &PixelBuffer{Pix: nrgba.Pix, Width: w, Height: h}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &PixelBuffer{Pix: dst.Pix, Width: w, Height: h}
}

// Image wraps the buffer as an *image.NRGBA without copying.
func (p *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Pix,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}
