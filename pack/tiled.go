package pack

import (
	"sort"

	"github.com/bodgit/bitpast/palette"
)

const (
	tileWidth     = 8
	tileHeight    = tileWidth
	colorsPerBank = 16

	tileStream    = "tiles"
	bankStream    = "banks"
	paletteStream = "palette"

	// packing gives up after this many placements
	packBudget = 1 << 16
)

// Tiled is the Mega Drive tile layout. The image is split into 8 by 8 tiles
// that each use one of up to Banks palettes of 16 colors.
//
// Pixels are written a tile at a time as 4-bit indices into the bank, two
// per byte with the leftmost in the high nibble. They are followed by one
// bank number per tile and finally each bank as 16 Mega Drive color words.
type Tiled struct {
	Banks int
}

type bank struct {
	colors []int
	tiles  []int
}

type bySize []bank

func (b bySize) Len() int {
	return len(b)
}

func (b bySize) Swap(i, j int) {
	b[i], b[j] = b[j], b[i]
}

func (b bySize) Less(i, j int) bool {
	return len(b[i].colors) < len(b[j].colors)
}

// Colors in c2 but not in c1
func difference(c1, c2 []int) (d []int) {
	m := make(map[int]struct{}, len(c1))
	for _, c := range c1 {
		m[c] = struct{}{}
	}
	for _, c := range c2 {
		if _, ok := m[c]; !ok {
			d = append(d, c)
		}
	}
	return
}

type packer struct {
	max    int
	budget int
}

// Variation of bin-packing problem; max bins each with capacity of
// colorsPerBank. Based on First Fit Decreasing algorithm; relies on the
// incoming banks being sorted in decreasing size
func (p *packer) pack(in, out []bank) ([]bank, bool) {
	if p.budget--; p.budget < 0 || len(out) > p.max {
		return nil, false
	}

	switch {
	case len(in) == 0:
		return out, true
	case len(out) == 0:
		return p.pack(in[1:], append(out, in[0]))
	default:
		for i := range out {
			d := difference(out[i].colors, in[0].colors)

			// Either the candidate is a subset or the difference can
			// fit in the current bank
			if len(d) == 0 || len(d)+len(out[i].colors) <= colorsPerBank {
				dup := append(out[:0:0], out...)
				dup[i].colors = append(append([]int(nil), out[i].colors...), d...)
				dup[i].tiles = append(append([]int(nil), out[i].tiles...), in[0].tiles...)
				if ret, ok := p.pack(in[1:], dup); ok {
					return ret, true
				}
			}
		}
		// Last resort, start a new bank
		return p.pack(in[1:], append(out[:len(out):len(out)], in[0]))
	}
}

// Banks groups the colors used by each tile into at most max banks of 16
// colors so that every tile finds all of its colors in a single bank. It
// returns the global palette indices held by each bank and the bank used by
// each tile.
func Banks(tiles [][]int, max int) ([][]int, []int, bool) {
	if len(tiles) == 0 {
		return nil, nil, true
	}

	in := make([]bank, 0, len(tiles))
	for t, colors := range tiles {
		if len(colors) > colorsPerBank {
			return nil, nil, false
		}
		in = append(in, bank{
			colors: colors,
			tiles:  []int{t},
		})
	}

	// Sort with biggest banks first
	sort.Stable(sort.Reverse(bySize(in)))

	p := &packer{
		max:    max,
		budget: packBudget,
	}
	packed, ok := p.pack(in, nil)
	if !ok {
		return nil, nil, false
	}

	banks := make([][]int, len(packed))
	owner := make([]int, len(tiles))
	for i, b := range packed {
		banks[i] = b.colors
		for _, t := range b.tiles {
			owner[t] = i
		}
	}

	return banks, owner, true
}

func (l Tiled) check(width, height int) error {
	if width < 1 || height < 1 || width%tileWidth != 0 || height%tileHeight != 0 || l.Banks < 1 || l.Banks > 0xff {
		return errGeometry
	}
	return nil
}

// used returns the sorted global indices referenced by each cell of f
func used(f *Frame) [][]int {
	sets := make([]map[int]struct{}, len(f.Cells))
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			sets[f.Cell(x, y)][f.Global(x, y)] = struct{}{}
		}
	}

	tiles := make([][]int, len(sets))
	for i, s := range sets {
		for c := range s {
			tiles[i] = append(tiles[i], c)
		}
		sort.Ints(tiles[i])
	}
	return tiles
}

// Pack implements Layout. ErrBanks is returned if the colors used by the
// tiles cannot be shared between the available banks.
func (l Tiled) Pack(f *Frame) (*Payload, error) {
	if f.Cells == nil || f.CellWidth != tileWidth || f.CellHeight != tileHeight {
		return nil, errGeometry
	}
	if err := l.check(f.Width, f.Height); err != nil {
		return nil, err
	}
	if len(f.Indices) != f.Width*f.Height || len(f.Cells) != f.cellsX()*f.cellsY() {
		return nil, errGeometry
	}
	for _, cell := range f.Cells {
		for _, c := range cell {
			if c < 0 || c >= len(f.Palette) {
				return nil, errIndex
			}
		}
	}
	if err := checkCells(f); err != nil {
		return nil, err
	}

	banks, owner, ok := Banks(used(f), l.Banks)
	if !ok {
		return nil, ErrBanks
	}

	// Position of each global color within each bank
	slots := make([]map[int]uint8, len(banks))
	for i, b := range banks {
		slots[i] = make(map[int]uint8, len(b))
		for j, c := range b {
			slots[i][c] = uint8(j)
		}
	}

	tilesX, tilesY := f.cellsX(), f.cellsY()
	pixels := make([]byte, 0, f.Width*f.Height/2)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			s := slots[owner[ty*tilesX+tx]]
			for y := 0; y < tileHeight; y++ {
				for x := 0; x < tileWidth>>1; x++ {
					dx := tx*tileWidth + x<<1
					dy := ty*tileHeight + y

					pixels = append(pixels, s[f.Global(dx, dy)]&0x0f<<4|s[f.Global(dx+1, dy)]&0x0f)
				}
			}
		}
	}

	indices := make([]byte, len(owner))
	for i, o := range owner {
		indices[i] = byte(o)
	}

	// Pad each bank to 16 colors
	var colors palette.Palette
	for _, b := range banks {
		p := make(palette.Palette, len(b))
		for i, c := range b {
			p[i] = f.Palette[c]
		}
		colors = append(colors, p.Pad(colorsPerBank)...)
	}

	p := new(Payload)
	p.add(tileStream, pixels)
	p.add(bankStream, indices)
	p.add(paletteStream, MegaDrive.Table(colors))

	return p, nil
}

// Unpack implements Layout. Every cell of the returned frame holds the 16
// colors of its bank.
func (l Tiled) Unpack(p *Payload, width, height int) (*Frame, error) {
	if err := l.check(width, height); err != nil {
		return nil, err
	}

	f := &Frame{
		Width:      width,
		Height:     height,
		CellWidth:  tileWidth,
		CellHeight: tileHeight,
		Indices:    make([]uint8, width*height),
	}
	tilesX, tilesY := f.cellsX(), f.cellsY()

	pixels, err := p.need(tileStream, width*height/2)
	if err != nil {
		return nil, err
	}
	indices, err := p.need(bankStream, tilesX*tilesY)
	if err != nil {
		return nil, err
	}

	banks := 0
	for _, b := range indices[:tilesX*tilesY] {
		if int(b) >= l.Banks {
			return nil, errIndex
		}
		if int(b) >= banks {
			banks = int(b) + 1
		}
	}

	words, err := p.need(paletteStream, banks*colorsPerBank*MegaDrive.Size())
	if err != nil {
		return nil, err
	}
	f.Palette = MegaDrive.Read(words[:banks*colorsPerBank*MegaDrive.Size()])

	f.Cells = make([][]int, tilesX*tilesY)
	for t := range f.Cells {
		f.Cells[t] = make([]int, colorsPerBank)
		for i := range f.Cells[t] {
			f.Cells[t][i] = int(indices[t])*colorsPerBank + i
		}
	}

	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			tile := ty*tilesX + tx
			for y := 0; y < tileHeight; y++ {
				for x := 0; x < tileWidth>>1; x++ {
					i := tile*tileWidth*tileHeight>>1 + y*tileWidth>>1 + x

					dx := tx*tileWidth + x<<1
					dy := ty*tileHeight + y

					f.Indices[dy*width+dx] = pixels[i] >> 4
					f.Indices[dy*width+dx+1] = pixels[i] & 0x0f
				}
			}
		}
	}

	return f, nil
}
