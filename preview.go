package vbconv

import (
	"fmt"
	"image"

	"github.com/bodgit/vbconv/compress"
	"github.com/bodgit/vbconv/decoder"
	"github.com/bodgit/vbconv/fsx"
	"github.com/bodgit/vbconv/palette"
	"github.com/bodgit/vbconv/tile"
)

// Preview renders the generated source at path back into an image. The first
// map is used for layout; without a map the tiles are drawn in a single row.
func Preview(fsys fsx.FS, path string) (*image.Paletted, error) {
	f, err := decoder.DecodeFile(fsys, path)
	if err != nil {
		return nil, err
	}
	if len(f.Tiles.Data) < compress.HeaderLength {
		return nil, fmt.Errorf("%s: no tile data", path)
	}

	header, data := f.Tiles.Data[0], f.Tiles.Data[compress.HeaderLength:]
	switch header {
	case compress.None:
	case compress.RLE{}.ID():
		if data, err = (compress.RLE{}).Decompress(data, f.Tiles.Count*tile.Words); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unknown compression %d", path, header)
	}

	charset := tile.Split(data)

	cells, w, h := f.Map.Data, f.Map.Width, f.Map.Height
	if len(cells) == 0 || w*h == 0 {
		cells = make([]uint16, len(charset))
		for i := range cells {
			cells[i] = uint16(i)
		}
		w, h = len(charset), 1
	}

	return tile.Render(charset, cells, w, h, palette.Default()), nil
}
