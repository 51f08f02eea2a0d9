package compress

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRLESimple(t *testing.T) {
	c := RLE{}

	// 32 zero nibbles are two maximal runs
	compressed := c.Compress([]uint32{0, 0, 0, 0})
	assert.Equal(t, []uint32{0xf0f00000}, compressed)

	compressed = c.Compress([]uint32{0x12345678})
	assert.Equal(t, []uint32{0x01020304, 0x05060708}, compressed)

	assert.Empty(t, c.Compress(nil))
}

func TestRLERandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	c := RLE{}

	for test := 0; test < 10; test++ {
		original := make([]uint32, 100+test)
		for i := range original {
			// Low entropy towards the start, noise towards the end
			if i < len(original)/2 {
				original[i] = uint32(r.Intn(1 + test%3))
			} else {
				original[i] = r.Uint32()
			}
		}

		compressed := c.Compress(original)
		decompressed, err := c.Decompress(compressed, len(original))
		require.NoError(t, err)
		assert.Equal(t, original, decompressed)
	}
}

func TestRLETruncated(t *testing.T) {
	_, err := RLE{}.Decompress([]uint32{0x01020304}, 1)
	assert.Error(t, err)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, -75.0, Ratio(100, 25))
	assert.Equal(t, 25.0, Ratio(4, 5))
	assert.Equal(t, 0.0, Ratio(10, 10))
	assert.Equal(t, 0.0, Ratio(0, 0))
	assert.Equal(t, -33.33, Ratio(3, 2))
}

func TestLookup(t *testing.T) {
	c, err := Lookup("NONE")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, None, Header(c))

	c, err = Lookup("RLE")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), Header(c))

	_, err = Lookup("LZ77")
	assert.Error(t, err)
}

func TestTilesFallback(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	noise := make([]uint32, 16)
	for i := range noise {
		noise[i] = r.Uint32()
	}

	res, err := Tiles(noise, RLE{}, nil)
	require.NoError(t, err)
	assert.False(t, res.Smaller())
	assert.True(t, res.Ratio > 0)
	assert.Nil(t, res.FrameOffsets)

	res, err = Tiles(make([]uint32, 16), RLE{}, nil)
	require.NoError(t, err)
	assert.True(t, res.Smaller())
	assert.True(t, res.Ratio < 0)
}

func TestTilesFrames(t *testing.T) {
	data := make([]uint32, 24)
	for i := 8; i < 16; i++ {
		data[i] = 0x11111111 * uint32(i%3)
	}
	frames := []int{8, 8, 8}

	res, err := Tiles(data, RLE{}, frames)
	require.NoError(t, err)
	require.Len(t, res.FrameOffsets, 3)
	assert.Equal(t, HeaderLength, res.FrameOffsets[0])

	for i := 1; i < len(res.FrameOffsets); i++ {
		assert.Greater(t, res.FrameOffsets[i], res.FrameOffsets[i-1])
	}
	assert.LessOrEqual(t, res.FrameOffsets[2], len(res.Data)+HeaderLength)

	// Every frame decompresses on its own
	for i, off := range res.FrameOffsets {
		end := len(res.Data) + HeaderLength
		if i+1 < len(res.FrameOffsets) {
			end = res.FrameOffsets[i+1]
		}
		frame, err := RLE{}.Decompress(res.Data[off-HeaderLength:end-HeaderLength], frames[i])
		require.NoError(t, err)
		assert.Equal(t, data[i*8:(i+1)*8], frame)
	}

	// Raw frames advance by their own length
	res, err = Tiles(data, nil, frames)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 9, 17}, res.FrameOffsets)
	assert.Equal(t, data, res.Data)
	assert.Equal(t, 0.0, res.Ratio)

	_, err = Tiles(data, RLE{}, []int{8, 8})
	assert.Error(t, err)
}

func TestMapUnchanged(t *testing.T) {
	cells := []uint16{1, 1, 1, 1, 1, 1}
	assert.Equal(t, cells, Map(cells, RLE{}))
}
