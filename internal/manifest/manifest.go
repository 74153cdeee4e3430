package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"media-convert/internal/formats"
)

// Kind identifies which conversion engine services a format pair.
type Kind string

const (
	// KindRaster is the canonical-pixel-buffer image path.
	KindRaster Kind = "canvas-raster"
	// KindTranscode is the audio/video transcoding engine path.
	KindTranscode Kind = "wasm-transcode"
	// KindPDF rasterizes the first page of a PDF document.
	KindPDF Kind = "pdf-page-rasterize"
	// KindSVG rasterizes a vector image.
	KindSVG Kind = "svg-converter"
)

var validKinds = map[Kind]bool{
	KindRaster:    true,
	KindTranscode: true,
	KindPDF:       true,
	KindSVG:       true,
}

// Tool is one conversion pair in the tools manifest.
type Tool struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Engine Kind   `json:"engine"`
}

type manifestFile struct {
	Tools []Tool `json:"tools"`
}

type pairKey struct {
	from, to string
}

// Table maps (from, to) pairs to the engine that services them. Lookups and
// reloads may race, so access is guarded.
type Table struct {
	mu    sync.RWMutex
	pairs map[pairKey]Kind
	tools []Tool
}

// Load reads a JSON tools manifest from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	tools, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	t := &Table{}
	t.replace(tools)
	return t, nil
}

// Reload re-reads path and atomically swaps the table contents.
func (t *Table) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	tools, err := parse(data)
	if err != nil {
		return fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	t.replace(tools)
	return nil
}

func parse(data []byte) ([]Tool, error) {
	var mf manifestFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, err
	}
	if len(mf.Tools) == 0 {
		return nil, fmt.Errorf("manifest declares no tools")
	}
	for i, tool := range mf.Tools {
		if tool.From == "" || tool.To == "" {
			return nil, fmt.Errorf("tool %d: missing from/to format", i)
		}
		if !validKinds[tool.Engine] {
			return nil, fmt.Errorf("tool %d (%s to %s): unknown engine %q", i, tool.From, tool.To, tool.Engine)
		}
	}
	return mf.Tools, nil
}

func (t *Table) replace(tools []Tool) {
	pairs := make(map[pairKey]Kind, len(tools))
	normalized := make([]Tool, 0, len(tools))
	for _, tool := range tools {
		from := formats.Normalize(tool.From)
		to := formats.Normalize(tool.To)
		pairs[pairKey{from, to}] = tool.Engine
		normalized = append(normalized, Tool{From: from, To: to, Engine: tool.Engine})
	}

	t.mu.Lock()
	t.pairs = pairs
	t.tools = normalized
	t.mu.Unlock()
}

// Lookup returns the engine kind for a format pair.
func (t *Table) Lookup(from, to string) (Kind, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	kind, ok := t.pairs[pairKey{formats.Normalize(from), formats.Normalize(to)}]
	return kind, ok
}

// Tools returns a copy of the manifest entries sorted by (from, to).
func (t *Table) Tools() []Tool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Tool, len(t.tools))
	copy(out, t.tools)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Len returns the number of manifest entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tools)
}

// rasterTargets are the image formats the raster bridge can encode.
var rasterTargets = []string{"png", "jpg", "jpeg", "webp", "gif", "avif"}

// transcodeVideoTargets are the container targets for video sources.
var transcodeVideoTargets = []string{"mp4", "mov", "webm", "avi", "gif", "mp3", "wav", "ogg"}

// transcodeAudioTargets are the targets for audio sources.
var transcodeAudioTargets = []string{"mp3", "wav", "ogg"}

// Default builds the compiled-in selection table covering the shipped
// format pairs.
func Default() *Table {
	var tools []Tool

	for from := range formats.ImageFormats {
		for _, to := range rasterTargets {
			if from == to {
				continue
			}
			tools = append(tools, Tool{From: from, To: to, Engine: KindRaster})
		}
	}

	for _, to := range rasterTargets {
		if to == "avif" {
			// Document/vector sources rasterize to the common web formats only.
			continue
		}
		tools = append(tools, Tool{From: "pdf", To: to, Engine: KindPDF})
		tools = append(tools, Tool{From: "svg", To: to, Engine: KindSVG})
	}

	for from := range formats.VideoFormats {
		if from == "gif" {
			// gif sources route through the raster bridge.
			continue
		}
		for _, to := range transcodeVideoTargets {
			if from == to {
				continue
			}
			tools = append(tools, Tool{From: from, To: to, Engine: KindTranscode})
		}
	}

	for from := range formats.AudioFormats {
		for _, to := range transcodeAudioTargets {
			if from == to {
				continue
			}
			tools = append(tools, Tool{From: from, To: to, Engine: KindTranscode})
		}
	}

	t := &Table{}
	t.replace(tools)
	return t
}
