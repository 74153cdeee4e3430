// Package raster converts still images between formats through a canonical
// uncompressed RGBA pixel buffer.
//
// Decoding normalizes arbitrary input bytes to a PixelBuffer using either
// the native decoder stack (stdlib image plus golang.org/x/image) or, for
// the HEIF family and paged/vector inputs (PDF, SVG), libvips. Encoding
// serializes a PixelBuffer to a target format: JPEG/PNG/GIF via imaging,
// WebP via chai2010/webp, AVIF via libvips.
//
// A PixelBuffer is owned by the call that produced it and is not retained
// past the encode step, keeping peak memory bounded for large images.
package raster
