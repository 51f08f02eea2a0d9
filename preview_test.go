package vbconv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bodgit/vbconv/artifact"
	"github.com/bodgit/vbconv/config"
	"github.com/bodgit/vbconv/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	c, m, _ := newTestConverter(t)

	writeConfig(t, m, "Hero", `{"tileset":{"compression":"RLE"}}`)
	writePNG(t, m, filepath.Join(root, "Hero", "Hero.png"), solid(1), ramp, mirror)

	report, err := c.ConvertAll(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, report.Assets[0].Err)

	img, err := Preview(m, report.Assets[0].Artifacts[0])
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())

	for x := 0; x < 8; x++ {
		assert.Equal(t, uint8(1), img.ColorIndexAt(x, 3))
		assert.Equal(t, ramp(x, 0), img.ColorIndexAt(8+x, 3))
		assert.Equal(t, mirror(x, 0), img.ColorIndexAt(16+x, 3))
	}
}

func TestPreviewWithoutMap(t *testing.T) {
	_, m, _ := newTestConverter(t)

	var solidTile, rampTile tile.Tile
	for y := 0; y < tile.Height; y++ {
		for x := 0; x < tile.Width; x++ {
			solidTile.Set(x, y, 3)
			rampTile.Set(x, y, ramp(x, y))
		}
	}

	path := artifact.Path("/assets/Font", "Font")
	require.NoError(t, artifact.Write(m, path, &artifact.Result{
		Name:    "Font",
		Section: config.SectionROM,
		Tiles:   artifact.Tiles{Count: 2, Data: tile.Flatten([]tile.Tile{solidTile, rampTile})},
	}))

	img, err := Preview(m, path)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, uint8(3), img.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(2), img.ColorIndexAt(10, 0))
}

func TestPreviewMissing(t *testing.T) {
	_, m, _ := newTestConverter(t)

	_, err := Preview(m, "/assets/Nope/Converted/Nope.c")
	assert.Error(t, err)
}
