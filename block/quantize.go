package block

import (
	"image"
	"runtime"
	"sort"

	"github.com/bodgit/bitpast/dither"
	"github.com/bodgit/bitpast/metric"
	"github.com/bodgit/bitpast/palette"
	"github.com/bodgit/bitpast/raster"
	"golang.org/x/sync/errgroup"
)

type quantizer struct {
	img      *raster.Image
	palette  palette.Palette
	opts     Options
	k        int
	f        metric.Func
	global   palette.Matcher
	diffuser *dither.Diffuser
	result   *Result
}

// Quantize assigns every pixel of img a color from p. The image is modified
// in place when error diffusion is enabled.
func Quantize(img *raster.Image, p palette.Palette, o Options) (*Result, error) {
	if len(p) == 0 || len(p) > maxColors {
		return nil, errPalette
	}
	g := o.Geometry
	if g.Width < 1 || g.Height < 1 || g.Colors < 1 {
		return nil, errGeometry
	}
	for _, s := range o.Shared {
		if s < 0 || s >= len(p) {
			return nil, errShared
		}
	}

	q := &quantizer{
		img:     img,
		palette: p,
		opts:    o,
		k:       g.Colors,
		f:       o.Metric.Func(),
		global:  palette.NewMatcher(p, o.Metric),
		result: &Result{
			Width:    img.Width,
			Height:   img.Height,
			Geometry: g,
			Palette:  p,
			Indices:  make([]uint8, img.Width*img.Height),
		},
	}
	if q.k > len(p) {
		q.k = len(p)
	}
	if k := o.Dither.Kernel(); k != nil {
		q.diffuser = dither.NewDiffuser(img, k, o.Amount)
	}

	var err error
	if g.Flat() {
		err = q.flat()
	} else {
		err = q.blocks()
	}
	if err != nil {
		return nil, err
	}

	return q.result, nil
}

// pixel returns the clamped working value of (x, y)
func (q *quantizer) pixel(x, y int) (float64, float64, float64) {
	r, g, b := q.img.RGB(x, y)
	return raster.Clamp(r), raster.Clamp(g), raster.Clamp(b)
}

func (q *quantizer) spread(d *dither.Diffuser, x, y int, r, g, b float64, c palette.Color) {
	if d == nil {
		return
	}
	d.Spread(x, y, r-float64(c.R), g-float64(c.G), b-float64(c.B))
}

func (q *quantizer) flatRow(y int) {
	for x := 0; x < q.img.Width; x++ {
		r, g, b := q.pixel(x, y)
		i := q.global.Nearest(r, g, b)
		q.result.Indices[y*q.img.Width+x] = uint8(i)
		q.spread(q.diffuser, x, y, r, g, b, q.palette[i])
	}
}

func (q *quantizer) flat() error {
	// Diffusion reads error written by earlier rows
	if q.diffuser != nil {
		for y := 0; y < q.img.Height; y++ {
			q.flatRow(y)
		}
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < q.img.Height; y++ {
		y := y
		g.Go(func() error {
			q.flatRow(y)
			return nil
		})
	}
	return g.Wait()
}

func (q *quantizer) blocks() error {
	gw, gh := q.opts.Geometry.Width, q.opts.Geometry.Height
	bx := (q.img.Width + gw - 1) / gw
	by := (q.img.Height + gh - 1) / gh

	q.result.BlocksX = bx
	q.result.Blocks = make([]Assignment, bx*by)
	for j := 0; j < by; j++ {
		for i := 0; i < bx; i++ {
			q.result.Blocks[j*bx+i].Bounds = image.Rect(i*gw, j*gh, (i+1)*gw, (j+1)*gh).Intersect(q.img.Bounds())
		}
	}

	// Blocks only depend on each other through image wide diffusion
	if q.diffuser != nil && q.opts.Scope == ImageScope {
		for i := range q.result.Blocks {
			q.block(&q.result.Blocks[i], q.diffuser)
		}
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range q.result.Blocks {
		a := &q.result.Blocks[i]
		g.Go(func() error {
			var d *dither.Diffuser
			if q.diffuser != nil {
				d = q.diffuser.Confine(a.Bounds)
			}
			q.block(a, d)
			return nil
		})
	}
	return g.Wait()
}

// rank returns the local palette for the block: shared colors first, then
// the most common nearest global colors, padded with the first slot.
func (q *quantizer) rank(r image.Rectangle) []int {
	counts := make(map[int]int)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			counts[q.global.Nearest(q.pixel(x, y))]++
		}
	}

	local := make([]int, 0, q.k)
	used := make(map[int]bool, q.k)
	for _, s := range q.opts.Shared {
		if len(local) == q.k {
			break
		}
		if !used[s] {
			local = append(local, s)
			used[s] = true
		}
	}

	ranked := make([]int, 0, len(counts))
	for i := range counts {
		if !used[i] {
			ranked = append(ranked, i)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	for _, i := range ranked {
		if len(local) == q.k {
			break
		}
		local = append(local, i)
	}

	for len(local) < q.k {
		local = append(local, local[0])
	}

	return local
}

func (q *quantizer) block(a *Assignment, d *dither.Diffuser) {
	a.Palette = q.rank(a.Bounds)
	a.Pixels = make([]uint8, 0, a.Bounds.Dx()*a.Bounds.Dy())

	local := make(palette.Palette, len(a.Palette))
	for i, g := range a.Palette {
		local[i] = q.palette[g]
	}

	for y := a.Bounds.Min.Y; y < a.Bounds.Max.Y; y++ {
		for x := a.Bounds.Min.X; x < a.Bounds.Max.X; x++ {
			r, g, b := q.pixel(x, y)
			i := local.Nearest(r, g, b, q.f)
			a.Pixels = append(a.Pixels, uint8(i))
			q.result.Indices[y*q.img.Width+x] = uint8(a.Palette[i])
			q.spread(d, x, y, r, g, b, local[i])
		}
	}
}
