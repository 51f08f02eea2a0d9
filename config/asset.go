/*
Package config holds the per-asset conversion settings and the project level
settings of the converter.

Asset settings live in a JSON file next to the source images. Defaults are
applied before decoding so that a partial, or missing, file always yields a
complete Asset, which Validate then checks as a whole before any conversion
work happens.
*/
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bodgit/vbconv/fsx"
	"github.com/bodgit/vbconv/palette"
	"github.com/bodgit/vbconv/quantize"
)

// Suffix is the filename suffix of asset configuration files.
const Suffix = ".image.json"

// AllImages in Asset.Images selects every PNG in the configuration folder.
const AllImages = "."

// ErrInvalid is returned for a configuration that cannot be converted.
var ErrInvalid = errors.New("config: invalid")

// Section is the memory section the generated data is placed in.
type Section string

const (
	SectionROM Section = "ROM"
	SectionEXP Section = "EXP"
)

// Compression is the compression kind requested for a data stream.
type Compression string

const (
	CompressionNone Compression = "NONE"
	CompressionRLE  Compression = "RLE"
)

func (c Compression) valid() bool {
	return c == CompressionNone || c == CompressionRLE
}

type Animation struct {
	IsAnimation     bool `json:"isAnimation"`
	IndividualFiles bool `json:"individualFiles"`
	Frames          int  `json:"frames"`
	// FrameWidth and FrameHeight are in tiles.
	FrameWidth  int `json:"frameWidth"`
	FrameHeight int `json:"frameHeight"`
}

type Tileset struct {
	Shared      bool        `json:"shared"`
	Compression Compression `json:"compression"`
	Reduce      bool        `json:"reduce"`
}

type MapReduce struct {
	Flipped bool `json:"flipped"`
	Unique  bool `json:"unique"`
}

type Map struct {
	Generate bool `json:"generate"`
	// Compression is validated and kept, but map data is never compressed.
	Compression Compression `json:"compression"`
	Reduce      MapReduce   `json:"reduce"`
}

type ImageProcessing struct {
	DistanceCalculator         string `json:"distanceCalculator"`
	ImageQuantizationAlgorithm string `json:"imageQuantizationAlgorithm"`
	ReduceColors               int    `json:"reduceColors,omitempty"`
}

// Asset is the conversion configuration of one asset.
type Asset struct {
	// Path is the configuration file the asset was loaded from.
	Path string `json:"-"`

	Name                    string          `json:"name,omitempty"`
	Images                  []string        `json:"images"`
	Section                 Section         `json:"section"`
	ColorMode               string          `json:"colorMode"`
	ImageProcessingSettings ImageProcessing `json:"imageProcessingSettings"`
	Animation               Animation       `json:"animation"`
	Tileset                 Tileset         `json:"tileset"`
	Map                     Map             `json:"map"`
}

// Default returns the documented defaults.
func Default() *Asset {
	return &Asset{
		Images:    []string{AllImages},
		Section:   SectionROM,
		ColorMode: palette.ModeDefault.String(),
		ImageProcessingSettings: ImageProcessing{
			DistanceCalculator:         quantize.DefaultDistance,
			ImageQuantizationAlgorithm: quantize.DefaultDither,
		},
		Animation: Animation{
			Frames: 1,
		},
		Tileset: Tileset{
			Compression: CompressionNone,
			Reduce:      true,
		},
		Map: Map{
			Generate:    true,
			Compression: CompressionNone,
			Reduce: MapReduce{
				Flipped: true,
				Unique:  true,
			},
		},
	}
}

// Parse decodes b over the defaults and validates the result.
func Parse(b []byte) (*Asset, error) {
	a := Default()
	if len(bytes.TrimSpace(b)) > 0 {
		if err := json.Unmarshal(b, a); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Load reads the configuration at path. A missing file yields the defaults.
func Load(fsys fsx.FS, path string) (*Asset, error) {
	b, err := fsys.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	a, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.Path = path
	if a.Name == "" {
		a.Name = strings.TrimSuffix(filepath.Base(path), Suffix)
	}
	return a, nil
}

// Marshal encodes the asset back to JSON.
func (a *Asset) Marshal() ([]byte, error) {
	return json.MarshalIndent(a, "", "\t")
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate reports whether the asset can be converted.
func (a *Asset) Validate() error {
	if a.Section != SectionROM && a.Section != SectionEXP {
		return invalid("unknown section %q", a.Section)
	}
	if !a.Tileset.Compression.valid() {
		return invalid("unknown tileset compression %q", a.Tileset.Compression)
	}
	if !a.Map.Compression.valid() {
		return invalid("unknown map compression %q", a.Map.Compression)
	}
	if _, err := palette.ParseMode(a.ColorMode); err != nil {
		return invalid("%v", err)
	}
	if err := a.QuantizeSettings().Validate(); err != nil {
		return invalid("%v", err)
	}
	if len(a.Images) == 0 {
		return invalid("no images")
	}

	if a.Animation.IsAnimation {
		if a.Animation.Frames < 1 {
			return invalid("animation needs at least one frame")
		}
		if a.Animation.IndividualFiles {
			if a.Tileset.Shared {
				return invalid("individual frame files cannot share a tileset")
			}
			if !a.allImages() {
				if err := a.CheckFrames(len(a.Images)); err != nil {
					return err
				}
			}
		} else {
			if a.Animation.FrameWidth < 1 || a.Animation.FrameHeight < 1 {
				return invalid("spritesheet animation needs frame width and height")
			}
			if a.Tileset.Shared {
				return invalid("spritesheet animation cannot share a tileset")
			}
		}
	}

	return nil
}

func (a *Asset) allImages() bool {
	for _, image := range a.Images {
		if image == AllImages {
			return true
		}
	}
	return false
}

// CheckFrames reports whether n resolved images fit the animation. Only an
// animation of individual frame files constrains the image count.
func (a *Asset) CheckFrames(n int) error {
	if a.IndividualFrames() && n != a.Animation.Frames {
		return invalid("animation has %d frames but %d images", a.Animation.Frames, n)
	}
	return nil
}

// Mode returns the parsed color mode.
func (a *Asset) Mode() palette.Mode {
	m, _ := palette.ParseMode(a.ColorMode)
	return m
}

// QuantizeSettings returns the image processing settings in quantizer form.
func (a *Asset) QuantizeSettings() quantize.Settings {
	return quantize.Settings{
		Distance:     a.ImageProcessingSettings.DistanceCalculator,
		Dither:       a.ImageProcessingSettings.ImageQuantizationAlgorithm,
		ReduceColors: a.ImageProcessingSettings.ReduceColors,
	}
}

// Spritesheet reports whether frames are stacked vertically in each image.
func (a *Asset) Spritesheet() bool {
	return a.Animation.IsAnimation && !a.Animation.IndividualFiles
}

// IndividualFrames reports whether each image is one frame of an animation
// whose frames are loaded independently at runtime.
func (a *Asset) IndividualFrames() bool {
	return a.Animation.IsAnimation && a.Animation.IndividualFiles
}

// Collective reports whether all images of the asset produce one artifact.
func (a *Asset) Collective() bool {
	return a.Tileset.Shared || a.IndividualFrames()
}

// Dir returns the folder holding the configuration file.
func (a *Asset) Dir() string {
	return filepath.Dir(a.Path)
}
