// Package manifest holds the tools manifest: the table mapping each
// (source, target) format pair to the conversion engine that services it.
//
// The manifest is produced out-of-band (it drives the individual tool pages
// of the product); the converter only honors it. A compiled-in default
// covers the shipped format pairs, and a JSON manifest file can override it,
// optionally hot-reloaded on change.
package manifest
