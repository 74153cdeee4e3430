package raster

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"media-convert/internal/formats"
)

// ErrEncodeFailed indicates the platform encode call rejected the pixel
// buffer or target format.
var ErrEncodeFailed = errors.New("encode failed")

// DefaultQuality is the encode quality used when the caller passes zero.
const DefaultQuality = 0.85

// Blob is an encoded image with its resolved MIME type.
type Blob struct {
	Data []byte
	MIME string
}

// MIMEForTarget resolves a target extension tag to the MIME type the encoded
// blob will carry. Unknown tags fall back to PNG.
func MIMEForTarget(toExt string) string {
	switch formats.Normalize(toExt) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "avif":
		return "image/avif"
	case "gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

// EncodeFromRGBA serializes a canonical RGBA pixel buffer to the target
// raster format. Quality (0, 1] is forwarded only for lossy targets; PNG
// encoding is lossless and ignores it. The returned blob's MIME type always
// matches MIMEForTarget(toExt).
func EncodeFromRGBA(toExt string, pb *PixelBuffer, quality float64) (*Blob, error) {
	if pb == nil || len(pb.Pix) == 0 || pb.Width <= 0 || pb.Height <= 0 {
		return nil, fmt.Errorf("%w: empty pixel buffer", ErrEncodeFailed)
	}
	if quality <= 0 || quality > 1 {
		quality = DefaultQuality
	}

	img := pb.Image()
	mime := MIMEForTarget(toExt)

	var buf bytes.Buffer
	var err error

	switch mime {
	case "image/jpeg":
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(percent(quality)))
	case "image/webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(percent(quality))})
	case "image/avif":
		var data []byte
		data, err = encodeAvifWithVips(pb, quality)
		if err == nil {
			buf.Write(data)
		}
	case "image/gif":
		err = imaging.Encode(&buf, img, imaging.GIF)
	default:
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncodeFailed, toExt, err)
	}

	return &Blob{Data: buf.Bytes(), MIME: mime}, nil
}

func percent(quality float64) int {
	p := int(quality*100 + 0.5)
	if p < 1 {
		p = 1
	}
	if p > 100 {
		p = 100
	}
	return p
}
