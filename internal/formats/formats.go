package formats

import "strings"

// Family classifies a format tag by the pipeline that handles it.
type Family string

const (
	// FamilyImage is a raster image format handled by the raster bridge.
	FamilyImage Family = "image"
	// FamilyAudio is an audio container/codec handled by the transcoding engine.
	FamilyAudio Family = "audio"
	// FamilyVideo is a video container handled by the transcoding engine.
	FamilyVideo Family = "video"
	// FamilyDocument is a paged document rasterized page-by-page.
	FamilyDocument Family = "document"
	// FamilyOther is an unrecognized format.
	FamilyOther Family = "other"
)

// ImageFormats maps raster image format tags to whether they are supported
// as a conversion source or target.
var ImageFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "webp": true, "tiff": true, "tif": true,
	"heic": true, "heif": true, "avif": true,
}

// AudioFormats maps audio format tags to whether they are supported.
var AudioFormats = map[string]bool{
	"mp3": true, "wav": true, "ogg": true, "aac": true,
	"flac": true, "m4a": true,
}

// VideoFormats maps video container tags to whether they are supported.
var VideoFormats = map[string]bool{
	"mp4": true, "mov": true, "avi": true, "webm": true,
	"mkv": true, "gif": true, "flv": true, "wmv": true,
}

// HEIFFamily maps format tags that require the dedicated HEIF decoder
// instead of the native decode path.
var HEIFFamily = map[string]bool{
	"heic": true, "heif": true, "avif": true,
}

// mimeTypes maps format tags to MIME types for download responses.
var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"heic": "image/heic",
	"heif": "image/heif",
	"avif": "image/avif",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"aac":  "audio/aac",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
}

// Normalize lower-cases a format tag and strips a leading dot so both
// "PNG" and ".png" resolve to "png".
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "."))
}

// FamilyOf returns the family a format tag belongs to. Tags appearing in
// multiple tables resolve image first so "gif" routes to the raster bridge
// when used as an image source.
func FamilyOf(tag string) Family {
	tag = Normalize(tag)
	switch {
	case ImageFormats[tag]:
		return FamilyImage
	case AudioFormats[tag]:
		return FamilyAudio
	case VideoFormats[tag]:
		return FamilyVideo
	case tag == "pdf":
		return FamilyDocument
	default:
		return FamilyOther
	}
}

// MIMEType returns the MIME type for a format tag, or
// "application/octet-stream" when the tag is unknown.
func MIMEType(tag string) string {
	if mt, ok := mimeTypes[Normalize(tag)]; ok {
		return mt
	}
	return "application/octet-stream"
}
