/*
Package profile describes every supported target machine mode as data.

A Profile fixes the size of the image, the hardware gamut the palette is
drawn from, how many colors the global palette holds, the block geometry and
the memory layout of the result. Profiles are values and are never modified
once built.
*/
package profile

import (
	"image"

	"github.com/bodgit/bitpast/block"
	"github.com/bodgit/bitpast/dither"
	"github.com/bodgit/bitpast/pack"
	"github.com/bodgit/bitpast/palette"
)

// Default is the name of the profile used when none, or an unknown one, is
// requested.
const Default = "atari-st-low"

// Background selects a color shared by every block.
type Background int

const (
	// NoBackground lets every block choose all of its colors
	NoBackground Background = iota
	// AverageBackground pins the global color nearest the mean of the
	// image to the first slot of every block
	AverageBackground
	// FrequentBackgrounds pins the two most used global colors to the first
	// two slots of every block
	FrequentBackgrounds
)

// Profile is a target machine mode.
type Profile struct {
	Name        string
	Description string
	// Width and Height are the dimensions of the source image
	Width  int
	Height int
	Gamut  palette.Gamut
	// Colors is the size of the global palette
	Colors int
	// Method is used when the palette method is left to the profile
	Method palette.Method
	// Indexed is set when palette indices are hardware color numbers, so
	// the palette can only be the fixed gamut
	Indexed    bool
	Geometry   block.Geometry
	Scope      block.Scope
	Background Background
	// Halve merges horizontal pairs of pixels before quantizing
	Halve  bool
	Layout pack.Layout
	Word   pack.Word
	// Aspect scales each pixel of the preview
	Aspect image.Point
	// Strength overrides the spread of ordered and noise dithering
	Strength dither.Strength
}

func (p Profile) String() string {
	return p.Name
}

// Size returns the dimensions of the quantized frame.
func (p Profile) Size() (int, int) {
	if p.Halve {
		return p.Width / 2, p.Height
	}
	return p.Width, p.Height
}

// Candidates returns the colors the global palette may use, or nil if any
// color is allowed.
func (p Profile) Candidates() palette.Palette {
	return p.Gamut.Colors()
}

// DitherStrength returns the spread of ordered and noise dithering.
func (p Profile) DitherStrength() dither.Strength {
	if p.Strength == (dither.Strength{}) {
		return dither.DefaultStrength
	}
	return p.Strength
}

// Banked reports whether the layout shares a few palette banks between
// tiles, in which case the global palette may need to shrink to fit.
func (p Profile) Banked() bool {
	_, ok := p.Layout.(pack.Tiled)
	return ok
}

var flat = block.Geometry{Width: 1, Height: 1}

// ZX Spectrum and C64 offsets span 0.15 and 0.1 of the full channel range
var attributeStrength = dither.Strength{Ordered: 38.25, Noise: 25.5}

func withColors(g block.Geometry, n int) block.Geometry {
	g.Colors = n
	return g
}

var profiles = []Profile{
	{
		Name:        "atari-st-low",
		Description: "Atari ST low resolution, 320x200 in 16 of 512 colors",
		Width:       320,
		Height:      200,
		Gamut:       palette.AtariST,
		Colors:      16,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 16),
		Layout:      pack.Planar{Planes: 4, Interleave: pack.WordInterleave},
		Word:        pack.AtariST,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "atari-st-medium",
		Description: "Atari ST medium resolution, 640x200 in 4 of 512 colors",
		Width:       640,
		Height:      200,
		Gamut:       palette.AtariST,
		Colors:      4,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 4),
		Layout:      pack.Planar{Planes: 2, Interleave: pack.WordInterleave},
		Word:        pack.AtariST,
		Aspect:      image.Pt(1, 2),
	},
	{
		Name:        "atari-st-high",
		Description: "Atari ST high resolution, 640x400 monochrome",
		Width:       640,
		Height:      400,
		Gamut:       palette.Mono,
		Colors:      2,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    withColors(flat, 2),
		Layout:      pack.Planar{Planes: 1, Interleave: pack.WordInterleave},
		Word:        pack.AtariST,
		Aspect:      image.Pt(1, 1),
	},
	{
		Name:        "amiga-ocs",
		Description: "Amiga OCS low resolution, 320x256 in 32 of 4096 colors",
		Width:       320,
		Height:      256,
		Gamut:       palette.AmigaOCS,
		Colors:      32,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 32),
		Layout:      pack.Planar{Planes: 5, Interleave: pack.LineInterleave},
		Word:        pack.Amiga,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "amiga-ocs-interlace",
		Description: "Amiga OCS low resolution interlaced, 320x512 in 32 of 4096 colors",
		Width:       320,
		Height:      512,
		Gamut:       palette.AmigaOCS,
		Colors:      32,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 32),
		Layout:      pack.Planar{Planes: 5, Interleave: pack.LineInterleave},
		Word:        pack.Amiga,
		Aspect:      image.Pt(2, 1),
	},
	{
		Name:        "amiga-1200",
		Description: "Amiga AGA low resolution, 320x256 in 256 adaptive colors",
		Width:       320,
		Height:      256,
		Gamut:       palette.Adaptive,
		Colors:      256,
		Method:      palette.MedianCut,
		Geometry:    withColors(flat, 256),
		Layout:      pack.Planar{Planes: 8, Interleave: pack.LineInterleave},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "zx-spectrum",
		Description: "ZX Spectrum, 256x192 with two colors per 8x8 cell",
		Width:       256,
		Height:      192,
		Gamut:       palette.ZXSpectrum,
		Colors:      16,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    block.Geometry{Width: 8, Height: 8, Colors: 2},
		Layout:      pack.Attribute{Codec: pack.ZXAttributes, Order: pack.Spectrum},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
		Strength:    attributeStrength,
	},
	{
		Name:        "c64-hires",
		Description: "Commodore 64 hires bitmap, 320x200 with two colors per 8x8 cell",
		Width:       320,
		Height:      200,
		Gamut:       palette.C64,
		Colors:      16,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    block.Geometry{Width: 8, Height: 8, Colors: 2},
		Layout:      pack.Attribute{Codec: pack.C64Hires, Order: pack.CellOrder},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
		Strength:    attributeStrength,
	},
	{
		Name:        "c64-multicolor",
		Description: "Commodore 64 multicolor bitmap, 160x200 with four colors per 4x8 cell",
		Width:       320,
		Height:      200,
		Gamut:       palette.C64,
		Colors:      16,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    block.Geometry{Width: 4, Height: 8, Colors: 4},
		Background:  AverageBackground,
		Halve:       true,
		Layout:      pack.Attribute{Codec: pack.C64Multicolor, Order: pack.CellOrder},
		Word:        pack.RGB,
		Aspect:      image.Pt(4, 2),
		Strength:    attributeStrength,
	},
	{
		Name:        "plus4-hires",
		Description: "Commodore Plus/4 hires bitmap, 320x200 with two of 128 colors per 8x8 cell",
		Width:       320,
		Height:      200,
		Gamut:       palette.Plus4,
		Colors:      128,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    block.Geometry{Width: 8, Height: 8, Colors: 2},
		Layout:      pack.Attribute{Codec: pack.Plus4Hires, Order: pack.CellOrder},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "plus4-multicolor",
		Description: "Commodore Plus/4 multicolor bitmap, 160x200 with four of 128 colors per 4x8 cell",
		Width:       320,
		Height:      200,
		Gamut:       palette.Plus4,
		Colors:      128,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    block.Geometry{Width: 4, Height: 8, Colors: 4},
		Background:  FrequentBackgrounds,
		Halve:       true,
		Layout:      pack.Attribute{Codec: pack.Plus4Multicolor, Order: pack.CellOrder},
		Word:        pack.RGB,
		Aspect:      image.Pt(4, 2),
	},
	{
		Name:        "msx-screen2",
		Description: "MSX1 screen 2, 256x192 with two colors per 8x1 line",
		Width:       256,
		Height:      192,
		Gamut:       palette.TMS9918,
		Colors:      16,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    block.Geometry{Width: 8, Height: 1, Colors: 2},
		Layout:      pack.Attribute{Codec: pack.MSX, Order: pack.CellOrder},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "msx2-screen5",
		Description: "MSX2 screen 5, 256x212 in 16 of 512 colors",
		Width:       256,
		Height:      212,
		Gamut:       palette.V9938,
		Colors:      16,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 16),
		Layout:      pack.Packed{Bits: 4},
		Word:        pack.MSX2,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "msx2-screen8",
		Description: "MSX2 screen 8, 256x212 in 256 fixed colors",
		Width:       256,
		Height:      212,
		Gamut:       palette.RGB332,
		Colors:      256,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    withColors(flat, 256),
		Layout:      pack.Packed{Bits: 8},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "atari-800-gr8",
		Description: "Atari 800 graphics 8, 320x192 in 2 of 128 colors",
		Width:       320,
		Height:      192,
		Gamut:       palette.Atari800,
		Colors:      2,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 2),
		Layout:      pack.Packed{Bits: 1},
		Word:        pack.Atari800,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "atari-800-gr15",
		Description: "Atari 800 graphics 15, 160x192 in 4 of 128 colors",
		Width:       160,
		Height:      192,
		Gamut:       palette.Atari800,
		Colors:      4,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 4),
		Layout:      pack.Packed{Bits: 2},
		Word:        pack.Atari800,
		Aspect:      image.Pt(4, 2),
	},
	{
		Name:        "coco-pmode3",
		Description: "TRS-80 Color Computer PMODE 3, 128x192 in color set 0",
		Width:       128,
		Height:      192,
		Gamut:       palette.CoCo4,
		Colors:      4,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    withColors(flat, 4),
		Layout:      pack.Packed{Bits: 2},
		Word:        pack.RGB,
		Aspect:      image.Pt(4, 2),
	},
	{
		Name:        "coco-pmode4",
		Description: "TRS-80 Color Computer PMODE 4, 256x192 in black and green",
		Width:       256,
		Height:      192,
		Gamut:       palette.CoCo2,
		Colors:      2,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    withColors(flat, 2),
		Layout:      pack.Packed{Bits: 1},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "cpc-mode0",
		Description: "Amstrad CPC mode 0, 160x200 in 16 of 27 colors",
		Width:       320,
		Height:      200,
		Gamut:       palette.CPC,
		Colors:      16,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 16),
		Halve:       true,
		Layout:      pack.CPC{Bits: 4},
		Word:        pack.CPCWord,
		Aspect:      image.Pt(4, 2),
	},
	{
		Name:        "cpc-mode1",
		Description: "Amstrad CPC mode 1, 320x200 in 4 of 27 colors",
		Width:       320,
		Height:      200,
		Gamut:       palette.CPC,
		Colors:      4,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 4),
		Layout:      pack.CPC{Bits: 2},
		Word:        pack.CPCWord,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "cpc-mode2",
		Description: "Amstrad CPC mode 2, 640x200 in 2 of 27 colors",
		Width:       640,
		Height:      200,
		Gamut:       palette.CPC,
		Colors:      2,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 2),
		Layout:      pack.CPC{Bits: 1},
		Word:        pack.CPCWord,
		Aspect:      image.Pt(1, 2),
	},
	{
		Name:        "pc-cga",
		Description: "PC CGA mode 4, 320x200 in palette 1 high intensity",
		Width:       320,
		Height:      200,
		Gamut:       palette.CGAMode4,
		Colors:      4,
		Method:      palette.Fixed,
		Indexed:     true,
		Geometry:    withColors(flat, 4),
		Layout:      pack.Packed{Bits: 2},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "pc-ega",
		Description: "PC EGA mode 0Dh, 320x200 in 16 of 64 colors",
		Width:       320,
		Height:      200,
		Gamut:       palette.EGA,
		Colors:      16,
		Method:      palette.Frequency,
		Geometry:    withColors(flat, 16),
		Layout:      pack.Planar{Planes: 4, Interleave: pack.PlaneInterleave},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "pc-vga",
		Description: "PC VGA mode 13h, 320x200 in 256 adaptive colors",
		Width:       320,
		Height:      200,
		Gamut:       palette.Adaptive,
		Colors:      256,
		Method:      palette.MedianCut,
		Geometry:    withColors(flat, 256),
		Layout:      pack.Packed{Bits: 8},
		Word:        pack.RGB,
		Aspect:      image.Pt(2, 2),
	},
	{
		Name:        "megasd",
		Description: "Terraonion MegaSD screenshot, 64x40 Mega Drive tiles in up to 48 of 512 colors",
		Width:       64,
		Height:      40,
		Gamut:       palette.MegaDrive,
		Colors:      48,
		Method:      palette.Quantize,
		Geometry:    block.Geometry{Width: 8, Height: 8, Colors: 16},
		Scope:       block.BlockScope,
		Layout:      pack.Tiled{Banks: 3},
		Word:        pack.MegaDrive,
		Aspect:      image.Pt(4, 4),
	},
}

// Lookup returns the named profile. If there is no such profile the default
// is returned along with false.
func Lookup(name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	p, _ := Lookup(Default)
	return p, false
}

// All returns every profile.
func All() []Profile {
	return append([]Profile(nil), profiles...)
}
