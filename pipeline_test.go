package bitpast

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/bitpast/pack"
	"github.com/bodgit/bitpast/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputs(t *testing.T) {
	cfg := DefaultConfig()

	bin, preview := Outputs(filepath.Join("in", "Sonic.PNG"), "out", cfg)
	assert.Equal(t, filepath.Join("out", "Sonic.atari-st-low.bin"), bin)
	assert.Equal(t, filepath.Join("out", "Sonic.atari-st-low.png"), preview)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755))

	files := map[string][]byte{
		"one.png":               encodePNG(t, gradient(32, 20)),
		"sub/two.png":           encodePNG(t, gradient(100, 100)),
		".hidden/three.png":     encodePNG(t, gradient(10, 10)),
		"broken.png":            []byte("not an image"),
		"notes.txt":             []byte("ignored"),
		"old.megasd.png":        encodePNG(t, gradient(256, 160)),
		"sub/.ignored-file.png": encodePNG(t, gradient(10, 10)),
	}
	for name, b := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), b, 0o644))
	}

	c, log := newConverter()
	cfg := DefaultConfig()
	cfg.Profile, _ = profile.Lookup("megasd")

	out := filepath.Join(dir, "out")
	require.NoError(t, c.Batch(dir, out, cfg))
	assert.Contains(t, log.String(), "broken.png")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"one.megasd.bin", "one.megasd.png", "two.megasd.bin", "two.megasd.png"}, names)

	b, err := os.ReadFile(filepath.Join(out, "one.megasd.bin"))
	require.NoError(t, err)

	p := new(pack.Payload)
	require.NoError(t, p.UnmarshalBinary(b))
	r, err := Restore(cfg, p)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(out, "one.megasd.png"))
	require.NoError(t, err)
	defer f.Close()

	m, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 256, 160), m.Bounds())
	assert.Equal(t, r.Preview().Bounds(), m.Bounds())

	// Running again into the source directory skips its own previews
	require.NoError(t, c.Batch(filepath.Join(dir, "sub"), "", cfg))
	_, err = os.Stat(filepath.Join(dir, "sub", "two.megasd.bin"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "sub", "two.megasd.megasd.bin"))
	assert.True(t, os.IsNotExist(err))
}
