package pack

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/bodgit/bitpast/block"
	"github.com/bodgit/bitpast/metric"
	"github.com/bodgit/bitpast/palette"
	"github.com/bodgit/bitpast/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomIndices(r *rand.Rand, n, max int) []uint8 {
	b := make([]uint8, n)
	for i := range b {
		b[i] = uint8(r.Intn(max))
	}
	return b
}

func TestPlanarRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for _, il := range []Interleave{WordInterleave, LineInterleave, PlaneInterleave} {
		for planes := 1; planes <= 5; planes++ {
			f := &Frame{
				Width:   40,
				Height:  3,
				Indices: randomIndices(r, 40*3, 1<<uint(planes)),
			}
			l := Planar{Planes: planes, Interleave: il}

			p, err := l.Pack(f)
			require.NoError(t, err)
			assert.Len(t, p.Stream("bitmap"), planes*3*3*2, il.String())

			u, err := l.Unpack(p, 40, 3)
			require.NoError(t, err)
			assert.Equal(t, f.Indices, u.Indices, "%s %d", il, planes)
		}
	}
}

func TestPlanarInterleave(t *testing.T) {
	f := &Frame{
		Width:   32,
		Height:  1,
		Indices: make([]uint8, 32),
	}
	f.Indices[0] = 1
	f.Indices[16] = 3

	tables := map[Interleave][]byte{
		WordInterleave:  {0x80, 0x00, 0x00, 0x00, 0x80, 0x00, 0x80, 0x00},
		LineInterleave:  {0x80, 0x00, 0x80, 0x00, 0x00, 0x00, 0x80, 0x00},
		PlaneInterleave: {0x80, 0x00, 0x80, 0x00, 0x00, 0x00, 0x80, 0x00},
	}
	for il, want := range tables {
		p, err := Planar{Planes: 2, Interleave: il}.Pack(f)
		require.NoError(t, err)
		assert.Equal(t, want, p.Stream("bitmap"), il.String())
	}

	// Rightmost pixel of the group is bit 0
	f = &Frame{Width: 16, Height: 1, Indices: make([]uint8, 16)}
	f.Indices[15] = 5
	p, err := Planar{Planes: 4}.Pack(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}, p.Stream("bitmap"))
}

func TestPacked(t *testing.T) {
	f := &Frame{
		Width:   5,
		Height:  2,
		Indices: []uint8{0, 1, 2, 3, 1, 3, 3, 3, 3, 3},
	}

	p, err := Packed{Bits: 2}.Pack(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1b, 0x40, 0xff, 0xc0}, p.Stream("bitmap"))

	_, err = Packed{Bits: 1}.Pack(f)
	assert.Equal(t, errIndex, err)
	_, err = Packed{Bits: 3}.Pack(f)
	assert.Equal(t, errGeometry, err)

	r := rand.New(rand.NewSource(2))
	for _, bits := range []int{1, 2, 4, 8} {
		f := &Frame{
			Width:   13,
			Height:  7,
			Indices: randomIndices(r, 13*7, 1<<uint(bits)),
		}
		p, err := Packed{Bits: bits}.Pack(f)
		require.NoError(t, err)
		assert.Len(t, p.Stream("bitmap"), rowBytes(13, bits)*7)

		u, err := Packed{Bits: bits}.Unpack(p, 13, 7)
		require.NoError(t, err)
		assert.Equal(t, f.Indices, u.Indices, "%d bits", bits)
	}
}

func TestSpectrumAddress(t *testing.T) {
	tables := []struct {
		y, c, want int
	}{
		{0, 0, 0},
		{1, 0, 256},
		{7, 0, 1792},
		{8, 0, 32},
		{63, 31, 2047},
		{64, 0, 2048},
		{191, 31, 6143},
	}
	for _, table := range tables {
		assert.Equal(t, table.want, SpectrumAddress(table.y, table.c), "(%d,%d)", table.y, table.c)
	}
}

func attributeFrame(r *rand.Rand, width, height int, codec Codec, cell func(int) []int) *Frame {
	cw, ch, bits := codec.cell()
	f := &Frame{
		Width:      width,
		Height:     height,
		CellWidth:  cw,
		CellHeight: ch,
		Indices:    randomIndices(r, width*height, 1<<uint(bits)),
	}
	f.Cells = make([][]int, f.cellsX()*f.cellsY())
	for i := range f.Cells {
		f.Cells[i] = cell(i)
	}
	return f
}

func TestAttributeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(3))

	tables := []struct {
		layout Attribute
		width  int
		height int
		cell   func(int) []int
	}{
		{
			Attribute{ZXAttributes, Spectrum},
			256, 192,
			func(int) []int {
				bright := r.Intn(2)
				return []int{r.Intn(8)<<1 | bright, r.Intn(8)<<1 | bright}
			},
		},
		{
			Attribute{ZXAttributes, Linear},
			16, 8,
			func(int) []int {
				return []int{r.Intn(8) << 1, r.Intn(8) << 1}
			},
		},
		{
			Attribute{C64Hires, CellOrder},
			40, 16,
			func(int) []int {
				return []int{r.Intn(16), r.Intn(16)}
			},
		},
		{
			Attribute{C64Multicolor, CellOrder},
			16, 16,
			func(int) []int {
				return []int{6, r.Intn(16), r.Intn(16), r.Intn(16)}
			},
		},
		{
			Attribute{Plus4Hires, CellOrder},
			16, 16,
			func(int) []int {
				return []int{r.Intn(128), r.Intn(128)}
			},
		},
		{
			Attribute{Plus4Multicolor, CellOrder},
			16, 16,
			func(int) []int {
				return []int{0x05, 0x71, r.Intn(128), r.Intn(128)}
			},
		},
		{
			Attribute{MSX, CellOrder},
			24, 16,
			func(int) []int {
				return []int{1 + r.Intn(15), 1 + r.Intn(15)}
			},
		},
	}

	for _, table := range tables {
		f := attributeFrame(r, table.width, table.height, table.layout.Codec, table.cell)

		p, err := table.layout.Pack(f)
		require.NoError(t, err)

		u, err := table.layout.Unpack(p, table.width, table.height)
		require.NoError(t, err)
		assert.Equal(t, f.Indices, u.Indices, table.layout.Codec.String())
		assert.Equal(t, f.Cells, u.Cells, table.layout.Codec.String())
	}
}

func TestZXAttributes(t *testing.T) {
	f := &Frame{
		Width:      8,
		Height:     8,
		CellWidth:  8,
		CellHeight: 8,
		Indices:    make([]uint8, 64),
		// Bright blue paper, yellow ink
		Cells: [][]int{{3, 12}},
	}
	f.Indices[0] = 1

	p, err := Attribute{ZXAttributes, Linear}.Pack(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4e}, p.Stream("attributes"))
	assert.Equal(t, byte(0x80), p.Stream("bitmap")[0])

	// Bright applies to both colors of the cell
	u, err := Attribute{ZXAttributes, Linear}.Unpack(p, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{3, 13}}, u.Cells)
}

func TestC64Streams(t *testing.T) {
	f := &Frame{
		Width:      8,
		Height:     8,
		CellWidth:  4,
		CellHeight: 8,
		Indices:    make([]uint8, 64),
		Cells:      [][]int{{0, 1, 2, 3}, {0, 4, 5, 6}},
	}
	f.Indices[0] = 3
	f.Indices[4] = 1

	p, err := Attribute{C64Multicolor, CellOrder}.Pack(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x45}, p.Stream("screen"))
	assert.Equal(t, []byte{0x03, 0x06}, p.Stream("color"))
	assert.Equal(t, []byte{0x00}, p.Stream("background"))
	assert.Equal(t, byte(0xc0), p.Stream("bitmap")[0])
	assert.Equal(t, byte(0x40), p.Stream("bitmap")[8])

	f.Cells[1][0] = 9
	_, err = Attribute{C64Multicolor, CellOrder}.Pack(f)
	assert.Equal(t, errBackground, err)
}

func TestPlus4Streams(t *testing.T) {
	f := &Frame{
		Width:      8,
		Height:     8,
		CellWidth:  8,
		CellHeight: 8,
		Indices:    make([]uint8, 64),
		Cells:      [][]int{{0x12, 0x71}},
	}

	p, err := Attribute{Plus4Hires, CellOrder}.Pack(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12}, p.Stream("screen"))
	assert.Equal(t, []byte{0x17}, p.Stream("luminance"))

	f = &Frame{
		Width:      8,
		Height:     8,
		CellWidth:  4,
		CellHeight: 8,
		Indices:    make([]uint8, 64),
		Cells:      [][]int{{0x00, 0x71, 0x12, 0x35}, {0x00, 0x71, 0x46, 0x23}},
	}
	f.Indices[0] = 1
	f.Indices[1] = 2

	p, err = Attribute{Plus4Multicolor, CellOrder}.Pack(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x71}, p.Stream("background"))
	assert.Equal(t, []byte{0x25, 0x63}, p.Stream("screen"))
	assert.Equal(t, []byte{0x31, 0x24}, p.Stream("luminance"))
	// The second background is selected by both bits set
	assert.Equal(t, byte(0xd0), p.Stream("bitmap")[0])

	u, err := Attribute{Plus4Multicolor, CellOrder}.Unpack(p, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, f.Indices, u.Indices)
	assert.Equal(t, f.Cells, u.Cells)

	f.Cells[1][1] = 0x72
	_, err = Attribute{Plus4Multicolor, CellOrder}.Pack(f)
	assert.Equal(t, errBackground, err)

	f.Cells[1][1] = 0x80
	_, err = Attribute{Plus4Multicolor, CellOrder}.Pack(f)
	assert.Equal(t, errIndex, err)
}

func TestMSXColorTable(t *testing.T) {
	f := &Frame{
		Width:      16,
		Height:     16,
		CellWidth:  8,
		CellHeight: 1,
		Indices:    make([]uint8, 256),
	}
	f.Cells = make([][]int, 32)
	for i := range f.Cells {
		f.Cells[i] = []int{0, 15}
	}
	f.Cells[1] = []int{4, 6}
	f.Indices[8] = 1

	p, err := Attribute{MSX, CellOrder}.Pack(f)
	require.NoError(t, err)

	// The second character of the first row starts eight bytes in
	color := p.Stream("color")
	assert.Len(t, color, 32)
	assert.Equal(t, byte(0x64), color[8])
	assert.Equal(t, byte(0xf1), color[0])
	assert.Equal(t, byte(0x80), p.Stream("bitmap")[8])

	// Transparent is written as black
	u, err := Attribute{MSX, CellOrder}.Unpack(p, 16, 16)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 15}, u.Cells[0])
	assert.Equal(t, []int{4, 6}, u.Cells[1])
	assert.Equal(t, f.Indices, u.Indices)
}

func TestCPC(t *testing.T) {
	f := &Frame{
		Width:   320,
		Height:  8,
		Indices: make([]uint8, 320*8),
	}
	f.Indices[0] = 3
	f.Indices[1] = 1
	f.Indices[2] = 2
	f.Indices[320+4] = 1

	p, err := CPC{Bits: 2}.Pack(f)
	require.NoError(t, err)
	b := p.Stream("bitmap")
	assert.Len(t, b, 16384)
	assert.Equal(t, byte(0xca), b[0])
	assert.Equal(t, byte(0x80), b[2049])

	f = &Frame{
		Width:   160,
		Height:  8,
		Indices: make([]uint8, 160*8),
	}
	f.Indices[0] = 15
	f.Indices[1] = 1

	p, err = CPC{Bits: 4}.Pack(f)
	require.NoError(t, err)
	assert.Equal(t, byte(0xea), p.Stream("bitmap")[0])

	assert.Equal(t, 16335, CPCAddress(199, 79))

	r := rand.New(rand.NewSource(6))
	for bits, width := range map[int]int{1: 640, 2: 320, 4: 160} {
		f := &Frame{
			Width:   width,
			Height:  200,
			Indices: randomIndices(r, width*200, 1<<uint(bits)),
		}
		p, err := CPC{Bits: bits}.Pack(f)
		require.NoError(t, err)

		u, err := CPC{Bits: bits}.Unpack(p, width, 200)
		require.NoError(t, err)
		assert.Equal(t, f.Indices, u.Indices, "%d bits", bits)
	}

	_, err = CPC{Bits: 2}.Pack(&Frame{Width: 100, Height: 8, Indices: make([]uint8, 800)})
	assert.Equal(t, errGeometry, err)
	_, err = CPC{Bits: 3}.Unpack(p, 320, 8)
	assert.Equal(t, errGeometry, err)
	_, err = CPC{Bits: 2}.Unpack(p, 320, 208)
	assert.Equal(t, errGeometry, err)
}

func TestAttributeErrors(t *testing.T) {
	f := &Frame{
		Width:      8,
		Height:     8,
		CellWidth:  8,
		CellHeight: 8,
		Indices:    make([]uint8, 64),
		Cells:      [][]int{{0, 16}},
	}
	_, err := Attribute{C64Hires, CellOrder}.Pack(f)
	assert.Equal(t, errIndex, err)

	// The display file needs 256 pixel wide scanlines
	f.Cells = [][]int{{0, 1}}
	_, err = Attribute{ZXAttributes, Spectrum}.Pack(f)
	assert.Equal(t, errGeometry, err)

	_, err = Attribute{C64Hires, CellOrder}.Pack(&Frame{Width: 8, Height: 8, Indices: make([]uint8, 64)})
	assert.Equal(t, errGeometry, err)

	_, err = Attribute{C64Hires, CellOrder}.Unpack(new(Payload), 8, 8)
	assert.True(t, errors.Is(err, errStream))
}

func tiledFrame(r *rand.Rand, width, height, groups int) *Frame {
	f := &Frame{
		Width:      width,
		Height:     height,
		CellWidth:  8,
		CellHeight: 8,
		Indices:    randomIndices(r, width*height, 16),
		Palette:    palette.MegaDrive.Colors()[:groups*16],
	}
	f.Cells = make([][]int, f.cellsX()*f.cellsY())
	for i := range f.Cells {
		g := i % groups
		f.Cells[i] = make([]int, 16)
		for j := range f.Cells[i] {
			f.Cells[i][j] = g*16 + j
		}
	}
	return f
}

func TestTiledRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	f := tiledFrame(r, 64, 40, 3)

	p, err := Tiled{Banks: 3}.Pack(f)
	require.NoError(t, err)
	assert.Len(t, p.Stream("tiles"), 1280)
	assert.Len(t, p.Stream("banks"), 40)
	assert.Len(t, p.Stream("palette"), 96)
	assert.Equal(t, 1416, p.Len())

	u, err := Tiled{Banks: 3}.Unpack(p, 64, 40)
	require.NoError(t, err)
	for y := 0; y < 40; y++ {
		for x := 0; x < 64; x++ {
			assert.Equal(t, f.At(x, y), u.At(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestTiledSingleBank(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	f := tiledFrame(r, 16, 8, 1)

	p, err := Tiled{Banks: 3}.Pack(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, p.Stream("banks"))
	assert.Len(t, p.Stream("palette"), 32)
}

func TestTiledBanks(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	f := tiledFrame(r, 32, 8, 4)

	// Make sure every tile really uses all sixteen colors
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.Indices[y*f.Width+x] = uint8(x%8 + y%2*8)
		}
	}

	_, err := Tiled{Banks: 3}.Pack(f)
	assert.Equal(t, ErrBanks, err)

	_, err = Tiled{Banks: 4}.Pack(f)
	assert.NoError(t, err)
}

func TestBanks(t *testing.T) {
	banks, owner, ok := Banks([][]int{{1, 2}, {2, 3}, {1}}, 1)
	require.True(t, ok)
	assert.Equal(t, [][]int{{1, 2, 3}}, banks)
	assert.Equal(t, []int{0, 0, 0}, owner)

	full := func(base int) []int {
		c := make([]int, 16)
		for i := range c {
			c[i] = base + i
		}
		return c
	}
	banks, owner, ok = Banks([][]int{{40}, full(0), full(16), {3, 20}}, 3)
	require.True(t, ok)
	require.Len(t, banks, 3)
	assert.Equal(t, []int{3, 20, 40}, banks[2])
	assert.Equal(t, []int{2, 0, 1, 2}, owner)

	_, _, ok = Banks([][]int{full(0), full(16), full(32), full(48)}, 3)
	assert.False(t, ok)

	_, _, ok = Banks([][]int{append(full(0), 99)}, 3)
	assert.False(t, ok)
}

func TestWord(t *testing.T) {
	c := palette.Color{R: 224, G: 32, B: 64}
	assert.Equal(t, []byte{0x04, 0x2e}, MegaDrive.Append(nil, c))
	assert.Equal(t, []byte{0x07, 0x12}, AtariST.Append(nil, c))
	assert.Equal(t, []byte{0x0e, 0x24}, Amiga.Append(nil, c))
	assert.Equal(t, []byte{224, 32, 64}, RGB.Append(nil, c))
	assert.Equal(t, []byte{0x72, 0x01}, MSX2.Append(nil, c))

	// Byte sized words are numbers within a fixed gamut
	assert.Equal(t, []byte{0x10}, Atari800.Append(nil, palette.Atari800.Colors()[8]))
	assert.Equal(t, []byte{0x1e}, Atari800.Append(nil, palette.Atari800.Colors()[15]))
	assert.Equal(t, []byte{0x44}, CPCWord.Append(nil, palette.CPC.Colors()[1]))
	assert.Equal(t, []byte{0x54}, CPCWord.Append(nil, palette.Color{R: 3, G: 3, B: 3}))
	assert.Equal(t, 1, CPCWord.Size())

	tables := []struct {
		word  Word
		gamut palette.Gamut
	}{
		{AtariST, palette.AtariST},
		{Amiga, palette.AmigaOCS},
		{MegaDrive, palette.MegaDrive},
		{RGB, palette.C64},
		{MSX2, palette.V9938},
		{Atari800, palette.Atari800},
		{CPCWord, palette.CPC},
	}
	for _, table := range tables {
		p := table.gamut.Colors()
		b := table.word.Table(p)
		assert.Len(t, b, len(p)*table.word.Size())
		assert.Equal(t, p, table.word.Read(b), table.word.String())
	}
}

func TestPayload(t *testing.T) {
	p := new(Payload)
	p.add("bitmap", []byte{1, 2, 3})
	p.add("screen", []byte{4})
	p.add("empty", nil)

	assert.Equal(t, []byte{1, 2, 3, 4}, p.Bytes())
	assert.Nil(t, p.Stream("color"))

	b, err := p.MarshalBinary()
	require.NoError(t, err)

	u := new(Payload)
	require.NoError(t, u.UnmarshalBinary(b))
	require.Len(t, u.Streams, 3)
	assert.Equal(t, "bitmap", u.Streams[0].Name)
	assert.Equal(t, []byte{1, 2, 3}, u.Stream("bitmap"))
	assert.Equal(t, []byte{4}, u.Stream("screen"))
	assert.Empty(t, u.Stream("empty"))

	assert.Error(t, u.UnmarshalBinary(b[:len(b)-1]))
	assert.Error(t, u.UnmarshalBinary(append(b, 0)))
	assert.Error(t, u.UnmarshalBinary(nil))
}

func TestHalve(t *testing.T) {
	m := raster.New(5, 1)
	m.Set(1, 0, 255, 255, 255)
	m.Set(3, 0, 200, 0, 0)

	h := Halve(m, Average)
	require.Equal(t, 2, h.Width)
	r, g, b := h.RGB(0, 0)
	assert.Equal(t, []float64{127.5, 127.5, 127.5}, []float64{r, g, b})
	r, g, b = h.RGB(1, 0)
	assert.Equal(t, []float64{100, 0, 0}, []float64{r, g, b})

	h = Halve(m, Brightest)
	r, g, b = h.RGB(0, 0)
	assert.Equal(t, []float64{255, 255, 255}, []float64{r, g, b})
	r, _, _ = h.RGB(1, 0)
	assert.InDelta(t, 200, r, 1e-9)

	// Two black pixels fall back to the average
	h = Halve(raster.New(2, 1), Brightest)
	r, _, _ = h.RGB(0, 0)
	assert.Equal(t, 0.0, r)
}

func TestParseMerge(t *testing.T) {
	for i, n := range mergeNames {
		m, ok := ParseMerge(n)
		assert.True(t, ok)
		assert.Equal(t, Merge(i), m)
		assert.Equal(t, n, m.String())
	}
	_, ok := ParseMerge("darkest")
	assert.False(t, ok)
}

func TestNewFrame(t *testing.T) {
	m := raster.New(16, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			m.Set(x, y, float64(x*16), float64(y*32), 0)
		}
	}
	p := palette.C64.Colors()

	res, err := block.Quantize(m.Clone(), p, block.Options{
		Geometry: block.Geometry{Width: 8, Height: 8, Colors: 2},
		Metric:   metric.Euclidean,
	})
	require.NoError(t, err)

	f := NewFrame(res)
	assert.Equal(t, 8, f.CellWidth)
	assert.Len(t, f.Cells, 2)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			assert.Equal(t, int(res.Index(x, y)), f.Global(x, y))
			assert.Less(t, f.Indices[y*16+x], uint8(2))
		}
	}

	_, err = Attribute{C64Hires, CellOrder}.Pack(f)
	assert.NoError(t, err)

	res, err = block.Quantize(m, p, block.Options{
		Geometry: block.Geometry{Width: 1, Height: 1, Colors: 16},
		Metric:   metric.Euclidean,
	})
	require.NoError(t, err)

	f = NewFrame(res)
	assert.Nil(t, f.Cells)
	assert.Equal(t, res.Indices, f.Indices)

	_, err = Packed{Bits: 4}.Pack(f)
	assert.NoError(t, err)
}
