/*
Package palette builds the fixed palettes legal on the display hardware.

The hardware drives every pixel at one of four intensities selected by a 2 bit
index, index 0 always being black. The FrameBlend palette models two such
frames shown in rapid alternation, the eye averaging them into seven apparent
intensities.
*/
package palette

import (
	"fmt"
	"image/color"
	"strings"
)

const (
	// Colors is the number of entries in the Default palette.
	Colors = 4
	// BlendColors is the number of entries in the FrameBlend palette.
	BlendColors = Colors*2 - 1
)

var levels = [Colors]uint8{0x00, 0x55, 0xaa, 0xff}

// Mode selects how source pixels are mapped onto hardware indices.
type Mode int

const (
	// ModeDefault maps each pixel to one of the four hardware levels.
	ModeDefault Mode = iota
	// ModeFrameBlend maps each pixel to one of seven blended levels which are
	// then split across two sub-frames.
	ModeFrameBlend
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeFrameBlend:
		return "frameBlend"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses the configuration spelling of a Mode. An empty string
// yields ModeDefault.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "default":
		return ModeDefault, nil
	case "frameblend":
		return ModeFrameBlend, nil
	}
	return ModeDefault, fmt.Errorf("palette: unknown color mode %q", s)
}

// Palette returns the palette used for matching in mode m.
func (m Mode) Palette() color.Palette {
	if m == ModeFrameBlend {
		return FrameBlend()
	}
	return Default()
}

func red(v uint8) color.Color {
	return color.RGBA{v, 0, 0, 0xff}
}

// Default returns the four hardware intensity levels.
func Default() color.Palette {
	p := make(color.Palette, Colors)
	for i, v := range levels {
		p[i] = red(v)
	}
	return p
}

// FrameBlend returns the seven intensity levels obtainable by alternating two
// Default frames. Entry k is the average of the two indices returned by
// Split(k).
func FrameBlend() color.Palette {
	p := make(color.Palette, BlendColors)
	for k := range p {
		p[k] = red(uint8(k * 0xff / (BlendColors - 1)))
	}
	return p
}

// Split returns the pair of Default indices whose alternation produces the
// FrameBlend index k. The first index is never smaller than the second.
func Split(k uint8) (uint8, uint8) {
	if k >= BlendColors {
		k = BlendColors - 1
	}
	return (k + 1) >> 1, k >> 1
}
