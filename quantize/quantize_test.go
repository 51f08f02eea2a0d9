package quantize

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/bodgit/vbconv/fsx"
	"github.com/bodgit/vbconv/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *SourceImage {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			m.Set(x, y, color.RGBA{v, 0, 0, 0xff})
		}
	}
	return &SourceImage{Path: "gradient.png", Image: m}
}

func TestNearest(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 4, 1))
	m.Set(0, 0, color.RGBA{0x00, 0, 0, 0xff})
	m.Set(1, 0, color.RGBA{0x50, 0, 0, 0xff})
	m.Set(2, 0, color.RGBA{0xb0, 0, 0, 0xff})
	m.Set(3, 0, color.RGBA{0xff, 0, 0, 0x00})

	out, err := Image(&SourceImage{Image: m}, Settings{}, palette.ModeDefault)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 2, 0}, out.Pix)
	assert.Equal(t, palette.Default(), out.Palette)
}

func TestDistances(t *testing.T) {
	src := gradient(32, 2)
	for name := range distances {
		t.Run(name, func(t *testing.T) {
			out, err := Image(src, Settings{Distance: name}, palette.ModeDefault)
			require.NoError(t, err)
			// Darkest and brightest columns always hit the extremes
			assert.Equal(t, uint8(0), out.ColorIndexAt(0, 0))
			assert.Equal(t, uint8(palette.Colors-1), out.ColorIndexAt(31, 0))
		})
	}
}

func TestDitherers(t *testing.T) {
	src := gradient(32, 8)
	for name := range kernels {
		t.Run(name, func(t *testing.T) {
			a, err := Image(src, Settings{Dither: name}, palette.ModeDefault)
			require.NoError(t, err)
			b, err := Image(src, Settings{Dither: name}, palette.ModeDefault)
			require.NoError(t, err)
			assert.Equal(t, a.Pix, b.Pix)
			for _, p := range a.Pix {
				assert.Less(t, p, uint8(palette.Colors))
			}
		})
	}
}

func TestFrameBlend(t *testing.T) {
	src := gradient(16, 4)

	out, err := Image(src, Settings{}, palette.ModeFrameBlend)
	require.NoError(t, err)
	assert.Equal(t, 16, out.Bounds().Dx())
	assert.Equal(t, 8, out.Bounds().Dy())

	// Brightest column is full intensity on both sub-frames
	assert.Equal(t, uint8(3), out.ColorIndexAt(15, 0))
	assert.Equal(t, uint8(3), out.ColorIndexAt(15, 4))

	for y := 0; y < 4; y++ {
		for x := 0; x < 16; x++ {
			a, b := out.ColorIndexAt(x, y), out.ColorIndexAt(x, y+4)
			assert.True(t, a >= b && a-b <= 1)
		}
	}
}

func TestReduceColors(t *testing.T) {
	src := gradient(64, 2)
	out, err := Image(src, Settings{ReduceColors: 4}, palette.ModeDefault)
	require.NoError(t, err)
	assert.Equal(t, 64, out.Bounds().Dx())
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, Settings{}.Validate())
	assert.NoError(t, Settings{Distance: "ciede2000", Dither: "atkinson"}.Validate())
	assert.True(t, errors.Is(Settings{Distance: "hamming"}.Validate(), ErrUnknownSetting))
	assert.True(t, errors.Is(Settings{Dither: "riemersma"}.Validate(), ErrUnknownSetting))
	assert.Error(t, Settings{ReduceColors: -1}.Validate())
}

func TestLoad(t *testing.T) {
	fsys := fsx.NewMemFS(time.Unix(0, 0))

	_, err := Load(fsys, "/missing.png")
	assert.True(t, errors.Is(err, ErrFileNotFound))

	out, err := Image(gradient(8, 8), Settings{}, palette.ModeDefault)
	require.NoError(t, err)
	require.NoError(t, WritePNG(fsys, "/tmp/q.png", out))

	src, err := Load(fsys, "/tmp/q.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), src.Bounds())

	again, err := Image(src, Settings{}, palette.ModeDefault)
	require.NoError(t, err)
	assert.Equal(t, out.Pix, again.Pix)
}
