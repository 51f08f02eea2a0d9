package processtest

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/bodgit/vbconv/fsx"
	"github.com/bodgit/vbconv/process"
	"github.com/bodgit/vbconv/tile"
)

type options struct {
	images []string
	noMap  bool
	reduce tile.Reduce
	shared string
}

func parse(args []string) (o options) {
	for _, arg := range args {
		switch {
		case !strings.HasPrefix(arg, "-"):
			o.images = append(o.images, arg)
		case arg == "-m!":
			o.noMap = true
		case strings.HasPrefix(arg, "-mR"):
			o.reduce.Unique = strings.Contains(arg[3:], "t")
			o.reduce.Flipped = strings.Contains(arg[3:], "f")
		case strings.HasPrefix(arg, "-O"):
			o.shared = arg[2:]
		}
	}
	return
}

// Converter returns a Handle that behaves like the external converter. It
// reads the images named on the command line from fsys and writes generated
// C source into the working directory, including the leading empty tile and
// map padding the real tool adds.
func Converter(fsys fsx.FS) func(process.Spec) (int, []byte) {
	return func(spec process.Spec) (int, []byte) {
		if err := convert(fsys, spec); err != nil {
			return 1, []byte(err.Error())
		}
		return 0, nil
	}
}

type source struct {
	name  string
	image *image.Paletted
	cells []uint16
}

func load(fsys fsx.FS, path string) (*image.Paletted, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	p, ok := m.(*image.Paletted)
	if !ok {
		return nil, fmt.Errorf("%s: not an indexed image", path)
	}
	return p, nil
}

func convert(fsys fsx.FS, spec process.Spec) error {
	o := parse(spec.Args)
	if len(o.images) == 0 {
		return fmt.Errorf("no input files")
	}

	var (
		sources []source
		shared  *tile.Builder
	)
	if o.shared != "" {
		shared = tile.NewBuilder(o.reduce)
	}

	for _, path := range o.images {
		m, err := load(fsys, path)
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		s := source{name: strings.TrimSuffix(base, filepath.Ext(base)), image: m}

		var charset []tile.Tile
		switch {
		case shared != nil:
			if s.cells, err = shared.Add(m); err != nil {
				return err
			}
		case o.noMap:
			if charset, err = tile.Encode(m); err != nil {
				return err
			}
			charset, _ = blank(charset, nil)
		default:
			if charset, s.cells, err = tile.Map(m, o.reduce); err != nil {
				return err
			}
			charset, s.cells = blank(charset, s.cells)
		}

		if shared == nil {
			out := filepath.Join(spec.Dir, s.name+".c")
			if err := fsys.WriteFile(out, []byte(render(s, charset, !o.noMap))); err != nil {
				return err
			}
			continue
		}
		sources = append(sources, s)
	}

	if shared == nil {
		return nil
	}

	charset := shared.Charset()
	for i := range sources {
		charset, sources[i].cells = blank(shared.Charset(), sources[i].cells)
		out := filepath.Join(spec.Dir, sources[i].name+".c")
		if err := fsys.WriteFile(out, []byte(render(sources[i], nil, true))); err != nil {
			return err
		}
	}

	b := sources[0].image.Bounds()
	s := source{name: o.shared, image: image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), nil)}
	return fsys.WriteFile(filepath.Join(spec.Dir, o.shared+".c"), []byte(render(s, charset, false)))
}

// blank prepends an empty tile unless the charset already starts with one.
func blank(charset []tile.Tile, cells []uint16) ([]tile.Tile, []uint16) {
	if len(charset) > 0 && charset[0].Empty() {
		return charset, cells
	}
	out := make([]uint16, len(cells))
	for i, c := range cells {
		out[i] = c + 1
	}
	return append([]tile.Tile{{}}, charset...), out
}

func render(s source, charset []tile.Tile, withMap bool) string {
	b := s.image.Bounds()
	w, h := b.Dx()/tile.Width, b.Dy()/tile.Height

	var sb strings.Builder
	fmt.Fprintf(&sb, "//{{BLOCK(%s)\n\n", s.name)
	fmt.Fprintf(&sb, "//\t%s, %dx%d@2, \n", s.name, b.Dx(), b.Dy())
	if charset != nil {
		fmt.Fprintf(&sb, "//\t+ %d tiles not compressed\n", len(charset))
	}
	if withMap {
		fmt.Fprintf(&sb, "//\t+ regular map (flat), not compressed, %dx%d \n", w, h)
	}
	sb.WriteString("\n")

	if charset != nil {
		words := tile.Flatten(charset)
		fmt.Fprintf(&sb, "const unsigned int %sTiles[%d] __attribute__((aligned(4)))=\n{\n", s.name, len(words))
		for i, v := range words {
			fmt.Fprintf(&sb, "0x%08X,", v)
			if i%8 == 7 {
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n};\n\n")
	}

	if withMap {
		cells := s.cells
		if len(cells)%2 == 1 {
			cells = append(cells, 0)
		}
		fmt.Fprintf(&sb, "const unsigned short %sMap[%d] __attribute__((aligned(4)))=\n{\n", s.name, len(cells))
		for _, c := range cells {
			fmt.Fprintf(&sb, "0x%04X,", c)
		}
		sb.WriteString("\n};\n\n")
	}

	fmt.Fprintf(&sb, "//}}BLOCK(%s)\n", s.name)
	return sb.String()
}
