package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"media-convert/internal/formats"
	"media-convert/internal/logging"

	// Native image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat indicates the input format is not supported by the
// native decode path and is not a libvips-handled format.
var ErrUnsupportedFormat = errors.New("format not natively supported")

// Limits bound decoded image size to guard against decompression bombs.
type Limits struct {
	// MaxDimension is the maximum width or height accepted.
	MaxDimension int
	// MaxPixels is the maximum total pixel count (width * height).
	// A 50MP frame uses ~200MB as RGBA.
	MaxPixels int
}

// DefaultLimits returns the decode bounds used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxDimension: 8192, MaxPixels: 50_000_000}
}

// DecodeToRGBA normalizes an arbitrary still-image byte buffer into a
// canonical RGBA pixel buffer using the default limits. The ext tag decides
// the decode path; HEIF-family, PDF and SVG inputs go through libvips,
// everything else through the native decoder stack.
func DecodeToRGBA(ext string, buf []byte) (*PixelBuffer, error) {
	return DecodeToRGBAWithLimits(ext, buf, DefaultLimits())
}

// DecodeToRGBAWithLimits is DecodeToRGBA with explicit size bounds.
func DecodeToRGBAWithLimits(ext string, buf []byte, limits Limits) (*PixelBuffer, error) {
	ext = formats.Normalize(ext)

	if len(buf) == 0 {
		return nil, fmt.Errorf("empty input buffer")
	}

	if formats.HEIFFamily[ext] || ext == "pdf" || ext == "svg" {
		return decodeWithVips(buf, limits)
	}

	// Probe dimensions before committing to a full decode.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(buf)); err == nil {
		if err := limits.check(cfg.Width, cfg.Height); err != nil {
			return nil, err
		}
	}

	img, name, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("format %q is not natively supported: %w", ext, ErrUnsupportedFormat)
		}
		// Sniffed but corrupt input: propagate the decoder's error as-is.
		return nil, err
	}

	logging.Debug("Decoded %s input as %s: %dx%d", ext, name, img.Bounds().Dx(), img.Bounds().Dy())

	b := img.Bounds()
	if err := limits.check(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	return FromImage(img), nil
}

func (l Limits) check(width, height int) error {
	if l.MaxDimension > 0 && (width > l.MaxDimension || height > l.MaxDimension) {
		return fmt.Errorf("image dimensions %dx%d exceed maximum dimension %d", width, height, l.MaxDimension)
	}
	if l.MaxPixels > 0 && width*height > l.MaxPixels {
		return fmt.Errorf("image size %dx%d exceeds maximum pixel count %d", width, height, l.MaxPixels)
	}
	return nil
}
