// Package animation assembles decoded converter output into animation frames
// and computes the frame tile offset table the runtime uses to find each
// frame in a tile stream.
package animation

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bodgit/vbconv/compress"
	"github.com/bodgit/vbconv/decoder"
	"github.com/bodgit/vbconv/tile"
)

// ErrFrameMismatch is returned when tile data cannot hold the configured
// frames.
var ErrFrameMismatch = errors.New("animation: tile data does not match frames")

// Assembly is a tile stream split into frames.
type Assembly struct {
	Tiles decoder.Tiles
	Maps  []decoder.Map
	// Frames is the number of frames.
	Frames int
	// FrameLengths holds the word length of each frame.
	FrameLengths []int
	// FrameOffsets holds the word offset of each frame in the raw stream,
	// counting the header.
	FrameOffsets []int
	// LargestFrame is the highest tile count of any one frame.
	LargestFrame int
}

// FrameSize returns the number of words in a frame of w by h tiles.
func FrameSize(w, h int) int {
	return tile.Words * w * h
}

func offsets(lengths []int) []int {
	out := make([]int, len(lengths))
	off := compress.HeaderLength
	for i, n := range lengths {
		out[i] = off
		off += n
	}
	return out
}

// Spritesheet splits the charset of a single image holding frames stacked
// vertically, each frame w by h tiles. The last frame takes whatever words
// remain, so the frame lengths always cover the stream.
func Spritesheet(f *decoder.File, frames, w, h int) (*Assembly, error) {
	size := FrameSize(w, h)
	if frames < 1 || size < 1 {
		return nil, fmt.Errorf("%w: %d frames of %dx%d tiles", ErrFrameMismatch, frames, w, h)
	}

	rest := len(f.Tiles.Data) - (frames-1)*size
	if rest < 1 {
		return nil, fmt.Errorf("%w: %d words for %d frames of %d words", ErrFrameMismatch, len(f.Tiles.Data), frames, size)
	}

	lengths := make([]int, frames)
	for i := range lengths {
		lengths[i] = size
	}
	lengths[frames-1] = rest

	largest := w * h
	if n := rest / tile.Words; n > largest {
		largest = n
	}

	return &Assembly{
		Tiles:        f.Tiles,
		Maps:         []decoder.Map{f.Map},
		Frames:       frames,
		FrameLengths: lengths,
		FrameOffsets: offsets(lengths),
		LargestFrame: largest,
	}, nil
}

// Sort orders files by filename, the order frames are played in.
func Sort(files []*decoder.File) {
	sort.SliceStable(files, func(i, j int) bool {
		return filepath.Base(files[i].Path) < filepath.Base(files[j].Path)
	})
}

// Individual concatenates one decoded file per frame, in filename order. Map
// rows of each frame are appended below those of the previous one.
func Individual(files []*decoder.File) (*Assembly, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrFrameMismatch)
	}

	sorted := append([]*decoder.File(nil), files...)
	Sort(sorted)

	a := &Assembly{Frames: len(sorted)}
	m := decoder.Map{Width: sorted[0].Map.Width}

	for _, f := range sorted {
		if len(f.Tiles.Data) == 0 || len(f.Tiles.Data)%tile.Words != 0 {
			return nil, fmt.Errorf("%w: %s has no whole tiles", ErrFrameMismatch, f.Path)
		}

		a.Tiles.Data = append(a.Tiles.Data, f.Tiles.Data...)
		a.Tiles.Count += f.Tiles.Count
		a.FrameLengths = append(a.FrameLengths, len(f.Tiles.Data))
		if f.Tiles.Count > a.LargestFrame {
			a.LargestFrame = f.Tiles.Count
		}

		m.Data = append(m.Data, f.Map.Data...)
		m.Height += f.Map.Height
	}

	a.Tiles.Width = sorted[0].Tiles.Width
	a.Tiles.Height = sorted[0].Tiles.Height
	a.FrameOffsets = offsets(a.FrameLengths)
	if len(m.Data) > 0 {
		a.Maps = []decoder.Map{m}
	}

	return a, nil
}

// Compress compresses the assembled stream frame by frame so that no
// compressed symbol spans two frames.
func (a *Assembly) Compress(c compress.Compressor) (compress.Result, error) {
	return compress.Tiles(a.Tiles.Data, c, a.FrameLengths)
}
