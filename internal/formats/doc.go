// Package formats declares the file format tags the converter understands
// and how they group into families (raster image, audio, video).
//
// Format tags are lower-case extension strings without the leading dot
// ("mp4", "webp", "heic"). All conversion routing keys off these tags.
package formats
