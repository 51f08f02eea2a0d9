/*
Package quantize maps source images onto the hardware palettes.

Each pixel is matched against the palette selected by the color mode using a
configurable distance calculator, optionally diffusing the quantization error
with one of the classic error diffusion kernels. The result is always an
*image.Paletted over the Default palette, ready to be handed to the external
converter as an indexed PNG.
*/
package quantize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io/fs"

	"github.com/bodgit/vbconv/fsx"
	"github.com/bodgit/vbconv/palette"
	"github.com/ericpauley/go-quantize/quantize"
)

var (
	// ErrFileNotFound is returned when a source image does not exist.
	ErrFileNotFound = errors.New("quantize: file not found")
	// ErrUnknownSetting is returned for an unknown distance calculator or
	// quantization algorithm.
	ErrUnknownSetting = errors.New("quantize: unknown setting")
)

// SourceImage is a decoded source image. It is never modified.
type SourceImage struct {
	Path  string
	Image image.Image
}

// Bounds returns the pixel dimensions of the image.
func (s *SourceImage) Bounds() image.Rectangle {
	return s.Image.Bounds()
}

// Load reads and decodes the image at path.
func Load(fsys fsx.FS, path string) (*SourceImage, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	m, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("quantize: decoding %s: %w", path, err)
	}

	return &SourceImage{Path: path, Image: m}, nil
}

// Settings selects the distance calculator and ditherer.
type Settings struct {
	Distance string
	Dither   string
	// ReduceColors, when non-zero, first reduces the source to at most this
	// many representative colors using median cut.
	ReduceColors int
}

// Validate reports whether all settings are known.
func (s Settings) Validate() error {
	if _, err := ParseDistance(s.Distance); err != nil {
		return err
	}
	if _, err := parseKernel(s.Dither); err != nil {
		return err
	}
	if s.ReduceColors < 0 || s.ReduceColors > 256 {
		return fmt.Errorf("%w: reduce colors %d", ErrUnknownSetting, s.ReduceColors)
	}
	return nil
}

func toPixel(c color.Color) pixel {
	r, g, b, a := c.RGBA()
	return pixel{float64(r >> 8), float64(g >> 8), float64(b >> 8), float64(a >> 8)}
}

func reduce(m image.Image, n int) image.Image {
	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)
	return pm
}

// Image quantizes src. In ModeFrameBlend the returned image is twice the
// height of the source: the top half holds the first sub-frame and the bottom
// half the second.
func Image(src *SourceImage, settings Settings, mode palette.Mode) (*image.Paletted, error) {
	d, err := ParseDistance(settings.Distance)
	if err != nil {
		return nil, err
	}
	k, err := parseKernel(settings.Dither)
	if err != nil {
		return nil, err
	}

	m := src.Image
	if settings.ReduceColors > 0 {
		m = reduce(m, settings.ReduceColors)
	}

	b := m.Bounds()
	w, h := b.Dx(), b.Dy()

	buf := make([]pixel, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			buf = append(buf, toPixel(m.At(x, y)))
		}
	}

	p := mode.Palette()
	targets := make([]pixel, len(p))
	for i, c := range p {
		targets[i] = toPixel(c)
	}

	indices := diffuse(buf, w, h, targets, d, k)

	if mode != palette.ModeFrameBlend {
		out := image.NewPaletted(image.Rect(0, 0, w, h), palette.Default())
		copy(out.Pix, indices)
		return out, nil
	}

	out := image.NewPaletted(image.Rect(0, 0, w, h*2), palette.Default())
	for i, idx := range indices {
		first, second := palette.Split(idx)
		out.Pix[i] = first
		out.Pix[w*h+i] = second
	}
	return out, nil
}

// WritePNG encodes m as an indexed PNG at path.
func WritePNG(fsys fsx.FS, path string, m *image.Paletted) error {
	var b bytes.Buffer
	if err := png.Encode(&b, m); err != nil {
		return err
	}
	return fsys.WriteFile(path, b.Bytes())
}
