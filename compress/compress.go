/*
Package compress implements the lossless tile stream compression understood by
the runtime.

Compressed and raw tile streams alike are emitted after a single header word
holding the ID of the compressor, so frame offsets into the stream start at
HeaderLength.
*/
package compress

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// HeaderLength is the number of words preceding tile data.
const HeaderLength = 1

var errUnknown = errors.New("compress: unknown compressor")

// A Compressor transforms a word stream into a shorter one.
type Compressor interface {
	// ID is written to the header word.
	ID() uint32
	Name() string
	Compress(words []uint32) []uint32
	// Decompress restores n words from compressed data.
	Decompress(words []uint32, n int) ([]uint32, error)
}

// None is the ID written when data is stored raw.
const None uint32 = 0

// Lookup returns the compressor called name. NONE, or an empty name, yields
// a nil Compressor.
func Lookup(name string) (Compressor, error) {
	switch strings.ToUpper(name) {
	case "", "NONE":
		return nil, nil
	case "RLE":
		return RLE{}, nil
	}
	return nil, fmt.Errorf("%w: %s", errUnknown, name)
}

// Header returns the header word for data compressed with c.
func Header(c Compressor) uint32 {
	if c == nil {
		return None
	}
	return c.ID()
}

// Ratio returns the change in size as a percentage of the uncompressed size.
// Negative values mean the data got smaller. The result is rounded to two
// decimal places.
func Ratio(uncompressed, compressed int) float64 {
	if uncompressed == 0 {
		return 0
	}
	r := -(float64(uncompressed-compressed) / float64(uncompressed) * 100)
	r = math.Round(r*100) / 100
	if r == 0 {
		// Avoid -0 in generated output
		return 0
	}
	return r
}

// Result is the outcome of compressing a tile stream.
type Result struct {
	Data []uint32
	// FrameOffsets holds the word offset of each frame counting the header,
	// only set when frame lengths were given.
	FrameOffsets []int
	Ratio        float64
	// Raw is the length of the uncompressed stream.
	Raw int
}

// Smaller reports whether the compressed data is strictly shorter than the
// raw data.
func (r Result) Smaller() bool {
	return len(r.Data) < r.Raw
}

// Tiles compresses data with c. When frames holds the word length of each
// animation frame, compression restarts at every frame boundary so that each
// frame decompresses on its own, and the offset of each frame is recorded.
func Tiles(data []uint32, c Compressor, frames []int) (Result, error) {
	r := Result{Raw: len(data)}

	lengths := frames
	if len(lengths) == 0 {
		lengths = []int{len(data)}
	}

	sum := 0
	for _, n := range lengths {
		if n < 0 {
			return Result{}, fmt.Errorf("compress: negative frame length %d", n)
		}
		sum += n
	}
	if sum != len(data) {
		return Result{}, fmt.Errorf("compress: frame lengths cover %d of %d words", sum, len(data))
	}

	offset := HeaderLength
	start := 0
	for _, n := range lengths {
		chunk := data[start : start+n]
		start += n

		if c != nil {
			chunk = c.Compress(chunk)
		}

		if len(frames) > 0 {
			r.FrameOffsets = append(r.FrameOffsets, offset)
		}
		offset += len(chunk)
		r.Data = append(r.Data, chunk...)
	}

	r.Ratio = Ratio(r.Raw, len(r.Data))

	return r, nil
}

// Map would compress map cells with c. Map compression is not implemented:
// the configuration value is accepted and kept, but cells are always
// returned unchanged.
func Map(cells []uint16, c Compressor) []uint16 {
	return cells
}
