/*
Package artifact writes the C source consumed by the engine build and removes
object files compiled from previous versions of it.
*/
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bodgit/vbconv/compress"
	"github.com/bodgit/vbconv/config"
	"github.com/bodgit/vbconv/fsx"
)

// Dir is the folder next to each configuration file that receives the
// generated sources.
const Dir = "Converted"

// Ext is the extension of generated sources.
const Ext = ".c"

// Tiles is the tile stream of a conversion.
type Tiles struct {
	Count int
	// Data is the stream without the header word.
	Data        []uint32
	Compression config.Compression
	// Ratio is the size change of Data in percent, negative when smaller.
	Ratio        float64
	FrameOffsets []int
}

// Map is one map of a conversion.
type Map struct {
	Name        string
	Data        []uint16
	Width       int
	Height      int
	Compression config.Compression
}

// Animation describes the frames held by the tile stream.
type Animation struct {
	Frames       int
	LargestFrame int
}

// Result is everything written to one generated source.
type Result struct {
	Name      string
	Section   config.Section
	Tiles     Tiles
	Maps      []Map
	Animation Animation
}

// Path returns the generated source for name belonging to the configuration
// in dir.
func Path(dir, name string) string {
	return filepath.Join(dir, Dir, name+Ext)
}

func sectionName(s config.Section) string {
	if s == config.SectionEXP {
		return ".expdata"
	}
	return ".rodata"
}

func header(c config.Compression) uint32 {
	comp, err := compress.Lookup(string(c))
	if err != nil {
		return compress.None
	}
	return compress.Header(comp)
}

func describe(c config.Compression, ratio float64) string {
	if c == "" || c == config.CompressionNone {
		return "not compressed"
	}
	return fmt.Sprintf("%s compressed (%.2f%%)", c, ratio)
}

func words(sb *strings.Builder, data []uint32) {
	for i, v := range data {
		if i%8 == 0 {
			sb.WriteString("\t")
		}
		fmt.Fprintf(sb, "0x%08X,", v)
		if i%8 == 7 || i == len(data)-1 {
			sb.WriteString("\n")
		}
	}
}

func cells(sb *strings.Builder, data []uint16) {
	for i, v := range data {
		if i%16 == 0 {
			sb.WriteString("\t")
		}
		fmt.Fprintf(sb, "0x%04X,", v)
		if i%16 == 15 || i == len(data)-1 {
			sb.WriteString("\n")
		}
	}
}

// Render returns the generated source for r.
func Render(r *Result) []byte {
	section := sectionName(r.Section)
	attr := fmt.Sprintf("__attribute((aligned (4), section(\"%s\")))", section)

	var sb strings.Builder
	sb.WriteString("//======================================================================\n//\n")
	fmt.Fprintf(&sb, "//\t%s\n", r.Name)
	fmt.Fprintf(&sb, "//\t+ %d tiles, %s\n", r.Tiles.Count, describe(r.Tiles.Compression, r.Tiles.Ratio))
	if r.Animation.Frames > 1 {
		fmt.Fprintf(&sb, "//\t+ %d frames, largest frame %d tiles\n", r.Animation.Frames, r.Animation.LargestFrame)
	}
	for _, m := range r.Maps {
		fmt.Fprintf(&sb, "//\t+ map %s, %dx%d cells, %s\n", m.Name, m.Width, m.Height, describe(m.Compression, 0))
	}
	fmt.Fprintf(&sb, "//\t+ placed in %s (%s)\n", r.Section, section)
	sb.WriteString("//\n//======================================================================\n\n")

	fmt.Fprintf(&sb, "const uint32 %sTiles[%d] %s =\n{\n", r.Name, len(r.Tiles.Data)+compress.HeaderLength, attr)
	words(&sb, append([]uint32{header(r.Tiles.Compression)}, r.Tiles.Data...))
	sb.WriteString("};\n")

	if len(r.Tiles.FrameOffsets) > 0 {
		offsets := make([]uint32, len(r.Tiles.FrameOffsets))
		for i, o := range r.Tiles.FrameOffsets {
			offsets[i] = uint32(o)
		}
		fmt.Fprintf(&sb, "\nconst uint32 %sTilesFrameOffsets[%d] %s =\n{\n", r.Name, len(offsets), attr)
		words(&sb, offsets)
		sb.WriteString("};\n")
	}

	for _, m := range r.Maps {
		fmt.Fprintf(&sb, "\nconst uint16 %sMap[%d] %s =\n{\n", m.Name, len(m.Data), attr)
		cells(&sb, m.Data)
		sb.WriteString("};\n")
	}

	return []byte(sb.String())
}

// Write renders r to path.
func Write(fsys fsx.FS, path string, r *Result) error {
	return fsys.WriteFile(path, Render(r))
}

// DeleteObjects removes every object file compiled from the source called
// name found under buildDir, returning the removed paths. A missing build
// folder is not an error.
func DeleteObjects(fsys fsx.FS, finder fsx.Finder, buildDir, name string) ([]string, error) {
	objects, err := finder.Find(buildDir, name+".o")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var removed []string
	for _, o := range objects {
		if err := fsys.Remove(o); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, err
		}
		removed = append(removed, o)
	}
	return removed, nil
}
