package compress

import "errors"

var errShort = errors.New("compress: not enough compressed data")

// RLE is a nibble run-length codec. Words are read most significant nibble
// first and every run of up to 16 identical nibbles becomes one byte, the run
// length minus one in the upper nibble and the value in the lower one. Bytes
// are packed into words most significant byte first, the final word padded
// with zeroes.
type RLE struct{}

const maxRun = 16

func (RLE) ID() uint32 { return 1 }

func (RLE) Name() string { return "RLE" }

func nibble(words []uint32, i int) byte {
	return byte(words[i>>3] >> (28 - uint(i&7)*4) & 0x0f)
}

func (RLE) Compress(words []uint32) []uint32 {
	n := len(words) * 8

	var out []uint32
	var cur uint32
	var filled uint

	emit := func(b byte) {
		cur = cur<<8 | uint32(b)
		filled++
		if filled == 4 {
			out = append(out, cur)
			cur, filled = 0, 0
		}
	}

	for i := 0; i < n; {
		v := nibble(words, i)
		run := 1
		for i+run < n && run < maxRun && nibble(words, i+run) == v {
			run++
		}
		emit(byte(run-1)<<4 | v)
		i += run
	}

	if filled > 0 {
		out = append(out, cur<<(8*(4-filled)))
	}

	return out
}

func (RLE) Decompress(words []uint32, n int) ([]uint32, error) {
	out := make([]uint32, n)
	want := n * 8
	got := 0

	for i := 0; got < want; i++ {
		if i >= len(words)*4 {
			return nil, errShort
		}
		b := byte(words[i>>2] >> (24 - uint(i&3)*8))
		run, v := int(b>>4)+1, uint32(b&0x0f)
		for j := 0; j < run && got < want; j++ {
			out[got>>3] |= v << (28 - uint(got&7)*4)
			got++
		}
	}

	return out, nil
}
