package quantize

import "fmt"

type spread struct {
	dx, dy int
	weight float64
}

// kernel is an error diffusion matrix. A nil kernel maps each pixel to its
// nearest palette entry without diffusion.
type kernel struct {
	divisor float64
	spreads []spread
}

var kernels = map[string]*kernel{
	"nearest": nil,
	"floyd-steinberg": {16, []spread{
		{1, 0, 7},
		{-1, 1, 3}, {0, 1, 5}, {1, 1, 1},
	}},
	"false-floyd-steinberg": {8, []spread{
		{1, 0, 3},
		{0, 1, 3}, {1, 1, 2},
	}},
	"stucki": {42, []spread{
		{1, 0, 8}, {2, 0, 4},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
		{-2, 2, 1}, {-1, 2, 2}, {0, 2, 4}, {1, 2, 2}, {2, 2, 1},
	}},
	"atkinson": {8, []spread{
		{1, 0, 1}, {2, 0, 1},
		{-1, 1, 1}, {0, 1, 1}, {1, 1, 1},
		{0, 2, 1},
	}},
	"jarvis": {48, []spread{
		{1, 0, 7}, {2, 0, 5},
		{-2, 1, 3}, {-1, 1, 5}, {0, 1, 7}, {1, 1, 5}, {2, 1, 3},
		{-2, 2, 1}, {-1, 2, 3}, {0, 2, 5}, {1, 2, 3}, {2, 2, 1},
	}},
	"burkes": {32, []spread{
		{1, 0, 8}, {2, 0, 4},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
	}},
	"sierra": {32, []spread{
		{1, 0, 5}, {2, 0, 3},
		{-2, 1, 2}, {-1, 1, 4}, {0, 1, 5}, {1, 1, 4}, {2, 1, 2},
		{-1, 2, 2}, {0, 2, 3}, {1, 2, 2},
	}},
	"two-sierra": {16, []spread{
		{1, 0, 4}, {2, 0, 3},
		{-2, 1, 1}, {-1, 1, 2}, {0, 1, 3}, {1, 1, 2}, {2, 1, 1},
	}},
	"sierra-lite": {4, []spread{
		{1, 0, 2},
		{-1, 1, 1}, {0, 1, 1},
	}},
}

// DefaultDither is used when no quantization algorithm is configured.
const DefaultDither = "nearest"

func parseKernel(name string) (*kernel, error) {
	if name == "" {
		name = DefaultDither
	}
	k, ok := kernels[name]
	if !ok {
		return nil, fmt.Errorf("%w: quantization algorithm %q", ErrUnknownSetting, name)
	}
	return k, nil
}

// diffuse walks the buffer in raster order, replacing each pixel with its
// closest palette index and spreading the quantization error to unvisited
// neighbours according to k.
func diffuse(buf []pixel, w, h int, targets []pixel, d Distance, k *kernel) []uint8 {
	out := make([]uint8, len(buf))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			p := buf[i]

			// Transparent pixels always use index 0 and never diffuse
			if p.a < 0x80 {
				out[i] = 0
				continue
			}

			idx := closest(p, targets, d)
			out[i] = idx

			if k == nil {
				continue
			}

			t := targets[idx]
			er, eg, eb := p.r-t.r, p.g-t.g, p.b-t.b
			for _, s := range k.spreads {
				nx, ny := x+s.dx, y+s.dy
				if nx < 0 || nx >= w || ny >= h {
					continue
				}
				n := &buf[ny*w+nx]
				f := s.weight / k.divisor
				n.r += er * f
				n.g += eg * f
				n.b += eb * f
			}
		}
	}
	return out
}

// closest returns the first palette index at the minimum distance, making
// ties resolve deterministically towards lower indices.
func closest(p pixel, targets []pixel, d Distance) uint8 {
	best, bestDist := 0, d(p, targets[0])
	for i := 1; i < len(targets); i++ {
		if dist := d(p, targets[i]); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return uint8(best)
}
