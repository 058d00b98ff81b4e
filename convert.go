package bitpast

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sort"
	"time"

	"github.com/bodgit/bitpast/block"
	"github.com/bodgit/bitpast/pack"
	"github.com/bodgit/bitpast/palette"
	"github.com/bodgit/bitpast/preprocess"
	"github.com/bodgit/bitpast/profile"
	"github.com/bodgit/bitpast/raster"
	"github.com/disintegration/gift"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	paletteStream = "palette"

	// a single bank always fits
	bankColors = 16
)

// Fit resizes m to the dimensions of p if it does not match already.
func Fit(m image.Image, p profile.Profile) image.Image {
	b := m.Bounds()
	if b.Dx() == p.Width && b.Dy() == p.Height {
		return m
	}

	f := gift.Resize(p.Width, p.Height, gift.LanczosResampling)
	dst := image.NewNRGBA(f.Bounds(b))
	f.Draw(dst, m, &gift.Options{
		Parallelization: true,
	})
	return dst
}

// method returns the palette method to use, falling back to the profile
// when the requested one cannot produce a usable palette
func (c *Converter) method(cfg Config) palette.Method {
	p := cfg.Profile
	switch m := cfg.Palette; {
	case m == palette.Auto:
		return p.Method
	case p.Indexed && m != palette.Fixed:
		c.logger.Printf("Profile \"%s\" uses hardware color numbers, ignoring palette \"%s\"\n", p, m)
		return p.Method
	case m == palette.Fixed && len(p.Candidates()) != p.Colors:
		c.logger.Printf("Profile \"%s\" has no fixed palette of %d colors, ignoring palette \"%s\"\n", p, p.Colors, m)
		return p.Method
	default:
		return m
	}
}

// Convert converts m, which must already be the size of the target profile.
func (c *Converter) Convert(m image.Image, cfg Config) (*Result, error) {
	start := time.Now()

	if m == nil || m.Bounds().Empty() {
		return nil, raster.ErrEmpty
	}
	prof := cfg.Profile
	if b := m.Bounds(); b.Dx() != prof.Width || b.Dy() != prof.Height {
		return nil, ErrSize
	}

	img, err := raster.FromImage(m)
	if err != nil {
		return nil, err
	}

	preprocess.Apply(img, preprocess.Options{
		Saturation: cfg.Saturation,
		Gamma:      cfg.Gamma,
		Contrast:   cfg.Contrast,
		Filter:     cfg.Filter,
	})

	if err := prof.DitherStrength().Apply(img, cfg.Dither, cfg.Amount); err != nil {
		return nil, err
	}

	if prof.Halve {
		img = pack.Halve(img, cfg.Merge)
	}

	method := c.method(cfg)

	// Keep reducing the colors until the palette can be packed
	for n := prof.Colors; ; n-- {
		r, err := c.quantize(img.Clone(), cfg, method, n)
		if err == nil {
			c.logger.Printf("Converted to \"%s\" with %d colors in %s\n", prof, n, time.Since(start))
			return r, nil
		}
		if !errors.Is(err, pack.ErrBanks) || !prof.Banked() || n <= bankColors {
			return nil, err
		}
		c.logger.Printf("%d colors do not fit in the \"%s\" banks, retrying\n", n, prof)
	}
}

func (c *Converter) quantize(img *raster.Image, cfg Config, method palette.Method, n int) (*Result, error) {
	prof := cfg.Profile

	p := palette.Select(method, img, prof.Candidates(), n)

	o := block.Options{
		Geometry: prof.Geometry,
		Metric:   cfg.Metric,
		Dither:   cfg.Dither,
		Amount:   cfg.Amount,
		Scope:    prof.Scope,
	}
	switch prof.Background {
	case profile.AverageBackground:
		r, g, b := img.Mean()
		o.Shared = []int{p.Nearest(r, g, b, cfg.Metric.Func())}
	case profile.FrequentBackgrounds:
		o.Shared = backgrounds(img, p, cfg, 2)
	}

	q, err := block.Quantize(img, p, o)
	if err != nil {
		return nil, err
	}

	f := pack.NewFrame(q)
	payload, err := prof.Layout.Pack(f)
	if err != nil {
		return nil, err
	}

	// Banked layouts write their own color table in bank order, so the
	// result is read back from the payload as a stored one would be
	if payload.Stream(paletteStream) != nil {
		return Restore(cfg, payload)
	}

	// Everything else gets a color table ahead of the bitmap
	payload.Streams = append([]pack.Stream{{Name: paletteStream, Data: prof.Word.Table(p)}}, payload.Streams...)

	return &Result{
		Profile: prof,
		Config:  cfg,
		Palette: p,
		Frame:   f,
		Payload: payload,
	}, nil
}

// backgrounds returns the n global colors most pixels are nearest to. Unused
// colors make up the numbers if the image has fewer than n.
func backgrounds(img *raster.Image, p palette.Palette, cfg Config, n int) []int {
	counts := make([]int, len(p))
	m := palette.NewMatcher(p, cfg.Metric)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			counts[m.Nearest(img.RGB(x, y))]++
		}
	}

	order := make([]int, len(p))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if n > len(order) {
		n = len(order)
	}
	return order[:n]
}

// Decode reads an image from r, resizes it to fit the target profile and
// converts it. If a store is set, a previous conversion of the same source
// with the same settings is returned instead.
func (c *Converter) Decode(r io.Reader, cfg Config) (*Result, error) {
	h := sha1.New()
	m, _, err := image.Decode(io.TeeReader(r, h))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(h, r); err != nil {
		return nil, err
	}
	sha := fmt.Sprintf("%X", h.Sum(nil))

	// Noise is different every time so never reuse it
	remember := c.store != nil && cfg.Dither.Deterministic()

	if remember {
		res, err := c.store.Find(sha, cfg)
		if err != nil {
			return nil, err
		}
		if res != nil {
			c.logger.Printf("Found \"%s\" for %s\n", cfg, sha)
			return res, nil
		}
	}

	res, err := c.Convert(Fit(m, cfg.Profile), cfg)
	if err != nil {
		return nil, err
	}

	if remember {
		if err := c.store.Add(sha, res); err != nil {
			return nil, err
		}
	}

	return res, nil
}
