package tile

import (
	"image"
	"image/color"
)

// Render draws a map of w by h cells using charset into a paletted image.
// Cells referring to a missing tile are drawn with index 0.
func Render(charset []Tile, cells []uint16, w, h int, p color.Palette) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, w*Width, h*Height), p)

	for cy := 0; cy < h; cy++ {
		for cx := 0; cx < w; cx++ {
			i := cy*w + cx
			if i >= len(cells) {
				return m
			}

			c := cells[i]
			n := int(c & IndexMask)
			if n >= len(charset) {
				continue
			}

			t := charset[n]
			if c&HFlip != 0 {
				t = t.FlipH()
			}
			if c&VFlip != 0 {
				t = t.FlipV()
			}

			for y := 0; y < Height; y++ {
				for x := 0; x < Width; x++ {
					m.SetColorIndex(cx*Width+x, cy*Height+y, t.At(x, y))
				}
			}
		}
	}

	return m
}
