package tile

import (
	"errors"
	"image"
)

var errWrongSize = errors.New("tile: image is not a multiple of the tile size")

// Reduce selects which duplicate tiles are merged when building a map.
type Reduce struct {
	Unique  bool
	Flipped bool
}

// Encode cuts m into tiles, left to right then top to bottom. Palette indices
// are masked to 2 bits.
func Encode(m *image.Paletted) ([]Tile, error) {
	b := m.Bounds()
	if b.Dx()%Width != 0 || b.Dy()%Height != 0 {
		return nil, errWrongSize
	}

	tiles := make([]Tile, 0, b.Dx()/Width*b.Dy()/Height)
	for ty := b.Min.Y; ty < b.Max.Y; ty += Height {
		for tx := b.Min.X; tx < b.Max.X; tx += Width {
			var t Tile
			for y := 0; y < Height; y++ {
				for x := 0; x < Width; x++ {
					t.Set(x, y, m.ColorIndexAt(tx+x, ty+y))
				}
			}
			tiles = append(tiles, t)
		}
	}

	return tiles, nil
}

// Builder accumulates a charset over one or more images.
type Builder struct {
	r       Reduce
	charset []Tile
	seen    map[Tile]uint16
}

// NewBuilder returns a Builder merging duplicates as selected by r.
func NewBuilder(r Reduce) *Builder {
	return &Builder{
		r:    r,
		seen: make(map[Tile]uint16),
	}
}

// Charset returns the tiles collected so far.
func (b *Builder) Charset() []Tile {
	return b.charset
}

func (b *Builder) cell(t Tile) uint16 {
	if b.r.Unique {
		if i, ok := b.seen[t]; ok {
			return i
		}
	}
	if b.r.Flipped {
		if i, ok := b.seen[t.FlipH()]; ok {
			return i | HFlip
		}
		if i, ok := b.seen[t.FlipV()]; ok {
			return i | VFlip
		}
		if i, ok := b.seen[t.FlipH().FlipV()]; ok {
			return i | HFlip | VFlip
		}
	}

	i := uint16(len(b.charset))
	b.charset = append(b.charset, t)
	if _, ok := b.seen[t]; !ok {
		b.seen[t] = i
	}
	return i
}

// Add cuts m into tiles, adds them to the charset and returns one map cell
// per tile.
func (b *Builder) Add(m *image.Paletted) ([]uint16, error) {
	tiles, err := Encode(m)
	if err != nil {
		return nil, err
	}

	cells := make([]uint16, 0, len(tiles))
	for _, t := range tiles {
		cells = append(cells, b.cell(t))
	}
	return cells, nil
}

// Map cuts m into tiles and builds a charset plus one map cell per tile,
// merging duplicates as selected by r.
func Map(m *image.Paletted, r Reduce) ([]Tile, []uint16, error) {
	b := NewBuilder(r)
	cells, err := b.Add(m)
	if err != nil {
		return nil, nil, err
	}
	return b.Charset(), cells, nil
}
