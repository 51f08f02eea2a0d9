package animation

import (
	"errors"
	"testing"

	"github.com/bodgit/vbconv/compress"
	"github.com/bodgit/vbconv/decoder"
	"github.com/bodgit/vbconv/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(path string, tiles int, fill uint32) *decoder.File {
	f := &decoder.File{Path: path}
	f.Tiles.Count = tiles
	f.Tiles.Width, f.Tiles.Height = 16, 16
	for i := 0; i < tiles*tile.Words; i++ {
		f.Tiles.Data = append(f.Tiles.Data, fill)
	}
	f.Map = decoder.Map{Data: []uint16{0, 1, 0, 1}, Width: 2, Height: 2}
	return f
}

func TestSpritesheet(t *testing.T) {
	f := frame("/w/walk.c", 4*6, 0)

	a, err := Spritesheet(f, 4, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 24, FrameSize(2, 3))
	assert.Equal(t, []int{1, 25, 49, 73}, a.FrameOffsets)
	assert.Equal(t, []int{24, 24, 24, 24}, a.FrameLengths)
	assert.Equal(t, 6, a.LargestFrame)

	_, err = Spritesheet(f, 5, 2, 3)
	assert.True(t, errors.Is(err, ErrFrameMismatch))

	_, err = Spritesheet(f, 4, 0, 3)
	assert.True(t, errors.Is(err, ErrFrameMismatch))
}

func TestIndividual(t *testing.T) {
	files := []*decoder.File{
		frame("/w/walk_03.c", 2, 3),
		frame("/w/walk_01.c", 5, 1),
		frame("/w/walk_02.c", 3, 2),
	}

	a, err := Individual(files)
	require.NoError(t, err)

	assert.Equal(t, 3, a.Frames)
	assert.Equal(t, 10, a.Tiles.Count)
	assert.Equal(t, 5, a.LargestFrame)
	assert.Len(t, a.Tiles.Data, 40)
	assert.Zero(t, len(a.Tiles.Data)%tile.Words)

	// Filename order, not input order
	assert.Equal(t, uint32(1), a.Tiles.Data[0])
	assert.Equal(t, uint32(2), a.Tiles.Data[20])
	assert.Equal(t, uint32(3), a.Tiles.Data[32])
	assert.Equal(t, []int{1, 21, 33}, a.FrameOffsets)

	require.Len(t, a.Maps, 1)
	assert.Equal(t, 2, a.Maps[0].Width)
	assert.Equal(t, 6, a.Maps[0].Height)
	assert.Len(t, a.Maps[0].Data, 12)

	// Input slice is left in its original order
	assert.Equal(t, "/w/walk_03.c", files[0].Path)

	_, err = Individual(nil)
	assert.Error(t, err)
}

func TestIndividualCompress(t *testing.T) {
	a, err := Individual([]*decoder.File{
		frame("/w/a.c", 4, 0),
		frame("/w/b.c", 4, 0),
	})
	require.NoError(t, err)

	res, err := a.Compress(compress.RLE{})
	require.NoError(t, err)
	require.Len(t, res.FrameOffsets, 2)
	assert.Equal(t, compress.HeaderLength, res.FrameOffsets[0])
	assert.Greater(t, res.FrameOffsets[1], res.FrameOffsets[0])
	assert.True(t, res.Ratio < 0)
}
