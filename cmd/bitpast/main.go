package main

import (
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bodgit/bitpast"
	"github.com/bodgit/bitpast/dither"
	"github.com/bodgit/bitpast/metric"
	"github.com/bodgit/bitpast/pack"
	"github.com/bodgit/bitpast/palette"
	"github.com/bodgit/bitpast/preprocess"
	"github.com/bodgit/bitpast/profile"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func names[T fmt.Stringer](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = v.String()
	}
	return strings.Join(s, ", ")
}

var (
	contrasts = []preprocess.Contrast{preprocess.NoContrast, preprocess.HE, preprocess.CLAHE, preprocess.SWAHE}
	filters   = []preprocess.Filter{preprocess.NoFilter, preprocess.Lowpass, preprocess.Sharpen, preprocess.Emboss, preprocess.Edge}
	methods   = []palette.Method{palette.Auto, palette.Fixed, palette.Frequency, palette.MedianCut, palette.Quantize}
	merges    = []pack.Merge{pack.Average, pack.Brightest}
)

func convertFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Value:   profile.Default,
			Usage:   "target machine",
		},
		&cli.StringFlag{
			Name:  "dither",
			Value: dither.Default.String(),
			Usage: "one of " + names(dither.Algorithms()),
		},
		&cli.Float64Flag{
			Name:  "amount",
			Value: 0.5,
			Usage: "dither strength up to 1, negative for none",
		},
		&cli.StringFlag{
			Name:  "contrast",
			Value: preprocess.NoContrast.String(),
			Usage: "one of " + names(contrasts),
		},
		&cli.StringFlag{
			Name:  "filter",
			Value: preprocess.NoFilter.String(),
			Usage: "one of " + names(filters),
		},
		&cli.StringFlag{
			Name:  "metric",
			Value: metric.Default.String(),
			Usage: "one of " + names(metric.Kinds()),
		},
		&cli.Float64Flag{
			Name:  "saturation",
			Value: 1,
			Usage: "saturation multiplier up to 4, negative for grayscale",
		},
		&cli.Float64Flag{
			Name:  "gamma",
			Value: 1,
			Usage: "gamma between 0.1 and 10",
		},
		&cli.StringFlag{
			Name:  "palette",
			Value: palette.Auto.String(),
			Usage: "one of " + names(methods),
		},
		&cli.StringFlag{
			Name:  "merge",
			Value: pack.Average.String(),
			Usage: "how to halve the resolution, one of " + names(merges),
		},
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func options(c *cli.Context) bitpast.Options {
	return bitpast.Options{
		Profile:    c.String("profile"),
		Dither:     c.String("dither"),
		Amount:     c.Float64("amount"),
		Contrast:   c.String("contrast"),
		Filter:     c.String("filter"),
		Metric:     c.String("metric"),
		Saturation: c.Float64("saturation"),
		Gamma:      c.Float64("gamma"),
		Palette:    c.String("palette"),
		Merge:      c.String("merge"),
	}
}

func newConverter(c *cli.Context) (*bitpast.Converter, bitpast.Config, func(), error) {
	converter := bitpast.New(newLogger(c))
	cfg := converter.ParseConfig(options(c))

	if c.String("db") == "" {
		return converter, cfg, func() {}, nil
	}

	s, err := bitpast.NewStore(c.String("db"))
	if err != nil {
		return nil, cfg, nil, err
	}
	converter.SetStore(s)

	return converter, cfg, func() { s.Close() }, nil
}

func convert(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	converter, cfg, done, err := newConverter(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer done()

	if output := c.String("output"); output != "" {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return cli.Exit(err, 1)
		}
	}

	for _, file := range c.Args().Slice() {
		output := c.String("output")
		if output == "" {
			output = filepath.Dir(file)
		}
		bin, preview := bitpast.Outputs(file, output, cfg)

		f, err := os.Open(file)
		if err != nil {
			return cli.Exit(err, 1)
		}

		r, err := converter.Decode(f, cfg)
		f.Close()
		if err != nil {
			return cli.Exit(fmt.Errorf("%s: %w", file, err), 1)
		}

		if err := r.Write(bin, preview); err != nil {
			return cli.Exit(err, 1)
		}
	}

	return nil
}

func batch(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	converter, cfg, done, err := newConverter(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer done()

	if err := converter.Batch(c.Args().First(), c.String("output"), cfg); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func profiles(c *cli.Context) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 2, ' ', 0)
	for _, p := range profile.All() {
		width, height := p.Size()
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\n", p, width, height, p.Colors, p.Description)
	}
	return w.Flush()
}

func show(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	cfg := bitpast.New(newLogger(c)).ParseConfig(options(c))

	b, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	p := new(pack.Payload)
	if err := p.UnmarshalBinary(b); err != nil {
		return cli.Exit(err, 1)
	}

	for _, s := range p.Streams {
		fmt.Fprintf(c.App.Writer, "%s\t%d\n", s.Name, len(s.Data))
	}

	r, err := bitpast.Restore(cfg, p)
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Fprintf(c.App.Writer, "%s\t%dx%d\t%d colors\n", cfg.Profile, r.Frame.Width, r.Frame.Height, len(r.Palette))

	if preview := c.String("preview"); preview != "" {
		f, err := os.Create(preview)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer f.Close()

		if err := png.Encode(f, r.Preview()); err != nil {
			return cli.Exit(err, 1)
		}
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "bitpast"
	app.Usage = "Convert images for retro computers"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"BITPAST_DB"},
			Usage:   "path to database of previous conversions",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	output := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "directory to write into, next to each image if unset",
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert one or more images",
			ArgsUsage: "FILE...",
			Flags:     append(convertFlags(), output),
			Action:    convert,
		},
		{
			Name:      "batch",
			Usage:     "Convert every image under a directory",
			ArgsUsage: "DIRECTORY",
			Flags:     append(convertFlags(), output),
			Action:    batch,
		},
		{
			Name:   "profiles",
			Usage:  "List the target machines",
			Action: profiles,
		},
		{
			Name:      "show",
			Usage:     "Describe a converted payload",
			ArgsUsage: "FILE",
			Flags: append(convertFlags(), &cli.StringFlag{
				Name:  "preview",
				Usage: "write a PNG preview to this file",
			}),
			Action: show,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
