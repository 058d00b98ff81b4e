package bitpast

import (
	"fmt"
	"math"

	"github.com/bodgit/bitpast/dither"
	"github.com/bodgit/bitpast/metric"
	"github.com/bodgit/bitpast/pack"
	"github.com/bodgit/bitpast/palette"
	"github.com/bodgit/bitpast/preprocess"
	"github.com/bodgit/bitpast/profile"
)

const (
	defaultAmount = 0.5

	maxSaturation = 4
	minGamma      = 0.1
	maxGamma      = 10
)

// Config holds every setting for a conversion.
type Config struct {
	Profile    profile.Profile
	Dither     dither.Algorithm
	Amount     float64
	Contrast   preprocess.Contrast
	Filter     preprocess.Filter
	Metric     metric.Kind
	Saturation float64
	Gamma      float64
	// Palette overrides how the profile chooses its global palette
	Palette palette.Method
	// Merge is used by profiles that halve the horizontal resolution
	Merge pack.Merge
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	p, _ := profile.Lookup(profile.Default)
	return Config{
		Profile:    p,
		Dither:     dither.Default,
		Amount:     defaultAmount,
		Contrast:   preprocess.NoContrast,
		Filter:     preprocess.NoFilter,
		Metric:     metric.Default,
		Saturation: 1,
		Gamma:      1,
		Palette:    palette.Auto,
		Merge:      pack.Average,
	}
}

// Key returns a string that identifies the settings, suitable for use as a
// lookup key.
func (c Config) Key() string {
	return fmt.Sprintf("%s/%s/%g/%s/%s/%s/%g/%g/%s/%s",
		c.Profile, c.Dither, c.Amount, c.Contrast, c.Filter, c.Metric,
		c.Saturation, c.Gamma, c.Palette, c.Merge)
}

func (c Config) String() string {
	return c.Key()
}

// Options holds settings as provided by a user. An empty string or a zero
// number selects the default for that setting. A negative Amount or
// Saturation is clamped to zero, so grayscale is still reachable.
type Options struct {
	Profile    string
	Dither     string
	Amount     float64
	Contrast   string
	Filter     string
	Metric     string
	Saturation float64
	Gamma      float64
	Palette    string
	Merge      string
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// ParseConfig converts o into a Config. Unknown names are logged and replaced
// with the default and out of range numbers are clamped.
func (c *Converter) ParseConfig(o Options) Config {
	cfg := DefaultConfig()

	fallback := func(kind, name string, def fmt.Stringer) {
		c.logger.Printf("Unknown %s \"%s\", using \"%s\"\n", kind, name, def)
	}

	if o.Profile != "" {
		p, ok := profile.Lookup(o.Profile)
		if !ok {
			fallback("profile", o.Profile, p)
		}
		cfg.Profile = p
	}
	if o.Dither != "" {
		a, ok := dither.Parse(o.Dither)
		if !ok {
			fallback("dither", o.Dither, a)
		}
		cfg.Dither = a
	}
	if o.Contrast != "" {
		v, ok := preprocess.ParseContrast(o.Contrast)
		if !ok {
			fallback("contrast", o.Contrast, v)
		}
		cfg.Contrast = v
	}
	if o.Filter != "" {
		f, ok := preprocess.ParseFilter(o.Filter)
		if !ok {
			fallback("filter", o.Filter, f)
		}
		cfg.Filter = f
	}
	if o.Metric != "" {
		k, ok := metric.Parse(o.Metric)
		if !ok {
			fallback("metric", o.Metric, k)
		}
		cfg.Metric = k
	}
	if o.Palette != "" {
		m, ok := palette.ParseMethod(o.Palette)
		if !ok {
			fallback("palette", o.Palette, m)
		}
		cfg.Palette = m
	}
	if o.Merge != "" {
		m, ok := pack.ParseMerge(o.Merge)
		if !ok {
			fallback("merge", o.Merge, m)
		}
		cfg.Merge = m
	}

	if o.Amount != 0 {
		cfg.Amount = clamp(o.Amount, 0, 1)
	}
	if o.Saturation != 0 {
		cfg.Saturation = clamp(o.Saturation, 0, maxSaturation)
	}
	if o.Gamma > 0 {
		cfg.Gamma = clamp(o.Gamma, minGamma, maxGamma)
	}

	return cfg
}
