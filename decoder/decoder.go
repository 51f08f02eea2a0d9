/*
Package decoder extracts tile and map data from the C source generated by the
external converter.

Decoding is soft: a section that is absent, such as the map when map
generation is disabled, decodes empty and a missing dimension marker decodes
as zero. Only a file that cannot be read is an error.
*/
package decoder

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bodgit/vbconv/fsx"
	"github.com/bodgit/vbconv/tile"
)

// Ext is the extension of files written by the converter.
const Ext = ".c"

// ErrMissing is returned when an expected output file does not exist.
var ErrMissing = errors.New("decoder: output file missing")

// Tiles is a decoded charset.
type Tiles struct {
	Count int
	Data  []uint32
	// Width and Height are the source image dimensions in pixels.
	Width  int
	Height int
}

// Map is a decoded map. Dimensions are in cells.
type Map struct {
	Data   []uint16
	Width  int
	Height int
}

// File is the decoded content of one generated file.
type File struct {
	// Path is the file the data was decoded from, used for ordering.
	Path  string
	Name  string
	Tiles Tiles
	Map   Map
}

var (
	blockPattern     = regexp.MustCompile(`//\{\{BLOCK\(([^)]+)\)`)
	imageDimsPattern = regexp.MustCompile(`(?m)^//\s*[^,\n]+, (\d+)x(\d+)@\d+`)
	tileCountPattern = regexp.MustCompile(`(?m)^//\s*\+ (\d+) tiles`)
	mapDimsPattern   = regexp.MustCompile(`(?m)^//\s*\+ [^\n]*map[^\n]*, (\d+)x(\d+)`)
	tilesPattern     = regexp.MustCompile(`Tiles\s*\[\d*\][^=]*=\s*\{([^}]*)\}`)
	mapPattern       = regexp.MustCompile(`Map\s*\[\d*\][^=]*=\s*\{([^}]*)\}`)
	wordPattern      = regexp.MustCompile(`0x([0-9A-Fa-f]{8})\b`)
	cellPattern      = regexp.MustCompile(`0x([0-9A-Fa-f]{4})\b`)
)

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func dims(p *regexp.Regexp, s string) (int, int) {
	if m := p.FindStringSubmatch(s); m != nil {
		return atoi(m[1]), atoi(m[2])
	}
	return 0, 0
}

func section(p *regexp.Regexp, s string) string {
	if m := p.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func words(s string) []uint32 {
	var out []uint32
	for _, m := range wordPattern.FindAllStringSubmatch(s, -1) {
		v, _ := strconv.ParseUint(m[1], 16, 32)
		out = append(out, uint32(v))
	}
	return out
}

func cells(s string) []uint16 {
	var out []uint16
	for _, m := range cellPattern.FindAllStringSubmatch(s, -1) {
		v, _ := strconv.ParseUint(m[1], 16, 16)
		out = append(out, uint16(v))
	}
	return out
}

// Decode parses generated text from r.
func Decode(r io.Reader) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := string(b)

	f := &File{}
	if m := blockPattern.FindStringSubmatch(s); m != nil {
		f.Name = strings.TrimSpace(m[1])
	}

	f.Tiles.Width, f.Tiles.Height = dims(imageDimsPattern, s)
	f.Tiles.Data = words(section(tilesPattern, s))
	if m := tileCountPattern.FindStringSubmatch(s); m != nil {
		f.Tiles.Count = atoi(m[1])
	} else {
		f.Tiles.Count = len(f.Tiles.Data) / tile.Words
	}

	f.Map.Width, f.Map.Height = dims(mapDimsPattern, s)
	f.Map.Data = cells(section(mapPattern, s))

	return f, nil
}

// DecodeFile decodes the generated file at path.
func DecodeFile(fsys fsx.FS, path string) (*File, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, err
	}

	f, err := Decode(strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// OutputPath returns where the converter writes the output for image when run
// in dir.
func OutputPath(dir, image string) string {
	base := filepath.Base(image)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+Ext)
}

// SharedPath returns where the converter writes a shared tileset called name.
func SharedPath(dir, name string) string {
	return filepath.Join(dir, name+Ext)
}
