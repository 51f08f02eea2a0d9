/*
Package tile implements the character and map format of the display hardware.

A tile (character) is 8 by 8 pixels with 2 bits per pixel. Each row of 8
pixels packs into 16 bits with the leftmost pixel in the lowest bits, and two
rows are stored per 32-bit word so that a tile occupies exactly four words.

A map is a grid of 16-bit cells. The low 14 bits select a tile, the top two
bits flip it vertically and horizontally.
*/
package tile

const (
	Width        = 8
	Height       = Width
	BitsPerPixel = 2
	// Words is the number of 32-bit words per tile.
	Words = Width * Height * BitsPerPixel / 32

	rowsPerWord = 32 / (Width * BitsPerPixel)
	pixelMask   = 1<<BitsPerPixel - 1
)

// Map cell layout
const (
	VFlip     uint16 = 1 << 15
	HFlip     uint16 = 1 << 14
	IndexMask uint16 = HFlip - 1
)

// Tile is one character in its packed form.
type Tile [Words]uint32

func position(x, y int) (int, uint) {
	return y / rowsPerWord, uint((y%rowsPerWord)*Width*BitsPerPixel + x*BitsPerPixel)
}

// At returns the palette index of the pixel at (x, y).
func (t *Tile) At(x, y int) uint8 {
	w, shift := position(x, y)
	return uint8(t[w] >> shift & pixelMask)
}

// Set changes the palette index of the pixel at (x, y).
func (t *Tile) Set(x, y int, index uint8) {
	w, shift := position(x, y)
	t[w] = t[w]&^(pixelMask<<shift) | uint32(index&pixelMask)<<shift
}

// Empty reports whether every pixel uses index 0.
func (t Tile) Empty() bool {
	return t == Tile{}
}

// FlipH returns t mirrored left to right.
func (t Tile) FlipH() (r Tile) {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			r.Set(Width-1-x, y, t.At(x, y))
		}
	}
	return
}

// FlipV returns t mirrored top to bottom.
func (t Tile) FlipV() (r Tile) {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			r.Set(x, Height-1-y, t.At(x, y))
		}
	}
	return
}

// Flatten returns the word stream of a charset.
func Flatten(tiles []Tile) []uint32 {
	words := make([]uint32, 0, len(tiles)*Words)
	for _, t := range tiles {
		words = append(words, t[:]...)
	}
	return words
}

// Split returns the charset held in a word stream. Trailing words that do not
// form a complete tile are ignored.
func Split(words []uint32) []Tile {
	tiles := make([]Tile, len(words)/Words)
	for i := range tiles {
		copy(tiles[i][:], words[i*Words:])
	}
	return tiles
}
