package decoder

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bodgit/vbconv/fsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const full = `
//{{BLOCK(hero)

//======================================================================
//
//	hero, 16x8@2, 
//	+ 3 tiles (t|f reduced) not compressed
//	+ regular map (flat), not compressed, 2x1 
//	Total size: 48 + 4 = 52
//
//======================================================================

const unsigned int heroTiles[12] __attribute__((aligned(4)))=
{
	0x00000000,0x00000000,0x00000000,0x00000000,0x55555555,0x55555555,0x55555555,0x55555555,
	0xAAAAAAAA,0xaaaaaaaa,0xAAAAAAAA,0xAAAAAAAA,
};

const unsigned short heroMap[2] __attribute__((aligned(4)))=
{
	0x0001,0x4002,
};

//}}BLOCK(hero)
`

const tilesOnly = `
//{{BLOCK(sky)
//	sky, 8x8@2, 
//	+ 1 tiles not compressed
const unsigned int skyTiles[4] __attribute__((aligned(4)))=
{
	0x00000000,0x00000001,0x00000002,0x00000003,
};
//}}BLOCK(sky)
`

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(full))
	require.NoError(t, err)

	assert.Equal(t, "hero", f.Name)
	assert.Equal(t, 3, f.Tiles.Count)
	assert.Equal(t, 16, f.Tiles.Width)
	assert.Equal(t, 8, f.Tiles.Height)
	require.Len(t, f.Tiles.Data, 12)
	assert.Equal(t, uint32(0x55555555), f.Tiles.Data[4])
	assert.Equal(t, uint32(0xaaaaaaaa), f.Tiles.Data[9])
	assert.Equal(t, []uint16{0x0001, 0x4002}, f.Map.Data)
	assert.Equal(t, 2, f.Map.Width)
	assert.Equal(t, 1, f.Map.Height)
}

func TestDecodeWithoutMap(t *testing.T) {
	f, err := Decode(strings.NewReader(tilesOnly))
	require.NoError(t, err)

	assert.Equal(t, "sky", f.Name)
	assert.Equal(t, 1, f.Tiles.Count)
	assert.Len(t, f.Tiles.Data, 4)
	assert.Empty(t, f.Map.Data)
	assert.Zero(t, f.Map.Width)
	assert.Zero(t, f.Map.Height)
}

func TestDecodeSoft(t *testing.T) {
	f, err := Decode(strings.NewReader("const unsigned int xTiles[]=\n{\n0x00000001,0x00000002,0x00000003,0x00000004,0x00000005,0x00000006,0x00000007,0x00000008,\n};\n"))
	require.NoError(t, err)

	assert.Empty(t, f.Name)
	// No count marker, falls back to the number of words
	assert.Equal(t, 2, f.Tiles.Count)
	assert.Zero(t, f.Tiles.Width)
	assert.Zero(t, f.Tiles.Height)

	f, err = Decode(strings.NewReader("garbage"))
	require.NoError(t, err)
	assert.Equal(t, &File{}, f)
}

func TestDecodeFile(t *testing.T) {
	fsys := fsx.NewMemFS(time.Unix(0, 0))
	require.NoError(t, fsys.WriteFile(OutputPath("/tmp/work", "/assets/hero.png"), []byte(full)))

	f, err := DecodeFile(fsys, "/tmp/work/hero.c")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/work/hero.c", f.Path)
	assert.Equal(t, "hero", f.Name)

	_, err = DecodeFile(fsys, SharedPath("/tmp/work", "Shared"))
	assert.True(t, errors.Is(err, ErrMissing))
}
