// Package normalize undoes the artifacts the external converter adds to its
// output. The converter prepends an empty tile to every charset that lacks
// one and pads maps with an odd number of cells with an extra cell. Both
// have to be removed before tile counts are used for compression or frame
// offsets.
package normalize

import (
	"github.com/bodgit/vbconv/decoder"
	"github.com/bodgit/vbconv/tile"
)

// Options describes how the output was produced.
type Options struct {
	// Shared is set when the charset lives in a shared tileset file and the
	// maps in separate files.
	Shared        bool
	ReduceUnique  bool
	ReduceFlipped bool
}

// TrimMap drops the padding cell appended to a map that holds more cells than
// its dimensions allow. It reports whether a cell was dropped.
func TrimMap(m *decoder.Map) bool {
	if n := m.Width * m.Height; n > 0 && len(m.Data) > n {
		m.Data = m.Data[:len(m.Data)-1]
		return true
	}
	return false
}

func leadingEmpty(t *decoder.Tiles) bool {
	if len(t.Data) < tile.Words {
		return false
	}
	for _, w := range t.Data[:tile.Words] {
		if w != 0 {
			return false
		}
	}
	return true
}

func referenced(maps []*decoder.Map) bool {
	for _, m := range maps {
		for _, c := range m.Data {
			if c&tile.IndexMask == 0 {
				return true
			}
		}
	}
	return false
}

// Charset removes the leading empty tile from t when no map cell refers to
// it, shifting every map cell down by one tile. The maps must all refer to t.
// It reports whether the tile was removed.
func Charset(t *decoder.Tiles, maps []*decoder.Map, opts Options) bool {
	for _, m := range maps {
		TrimMap(m)
	}

	if !leadingEmpty(t) {
		return false
	}
	if referenced(maps) {
		return false
	}
	// With a shared tileset and no map reduction there is no telling which
	// tiles belong to whom, so the tile stays
	if opts.Shared && !opts.ReduceUnique && !opts.ReduceFlipped {
		return false
	}

	t.Data = t.Data[tile.Words:]
	if t.Count > 0 {
		t.Count--
	}
	for _, m := range maps {
		for i, c := range m.Data {
			m.Data[i] = c&^tile.IndexMask | (c&tile.IndexMask - 1)
		}
	}

	return true
}

// File normalizes a file holding both its charset and its map.
func File(f *decoder.File, opts Options) bool {
	return Charset(&f.Tiles, []*decoder.Map{&f.Map}, opts)
}
