package bitpast

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

var extensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// Outputs returns the payload and preview filenames written for the source
// image file when converting with cfg.
func Outputs(file, dir string, cfg Config) (string, string) {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	name := filepath.Join(dir, fmt.Sprintf("%s.%s", base, cfg.Profile))
	return name + ".bin", name + ".png"
}

// Write writes the payload and preview of r to the given files.
func (r *Result) Write(bin, preview string) error {
	b, err := r.Payload.MarshalBinary()
	if err != nil {
		return err
	}

	if err := os.WriteFile(bin, b, 0o644); err != nil {
		return err
	}

	f, err := os.Create(preview)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, r.Preview()); err != nil {
		return err
	}

	return f.Close()
}

func (c *Converter) findImages(ctx context.Context, base, output string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Don't convert our own previews
			if info.Mode().IsDir() && file == output && file != base {
				return filepath.SkipDir
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			if _, ok := extensions[strings.ToLower(filepath.Ext(file))]; !ok {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Converter) convertFile(file, output string, cfg Config) error {
	// Skip previews written by an earlier run into the same directory
	if strings.HasSuffix(file, fmt.Sprintf(".%s.png", cfg.Profile)) {
		return nil
	}

	if output == "" {
		output = filepath.Dir(file)
	}
	bin, preview := Outputs(file, output, cfg)

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := c.Decode(f, cfg)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			c.logger.Printf("Skipping \"%s\", %s\n", file, err)
			return nil
		}
		return fmt.Errorf("%s: %w", file, err)
	}

	return r.Write(bin, preview)
}

func (c *Converter) imageWorker(ctx context.Context, in <-chan string, output string, cfg Config) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := c.convertFile(file, output, cfg); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Batch converts every image found under path, writing the payload and
// preview of each into output, or next to the source if output is empty.
func (c *Converter) Batch(path, output string, cfg Config) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if output != "" {
		if output, err = filepath.Abs(output); err != nil {
			return err
		}
		if err := os.MkdirAll(output, 0o755); err != nil {
			return err
		}
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, dir, output)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < runtime.GOMAXPROCS(0); i++ {
		errc, err := c.imageWorker(ctx, files, output, cfg)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
