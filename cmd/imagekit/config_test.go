package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gobeaver/imagekit"
)

func TestReadFileConfig(t *testing.T) {
	t.Run("missing default file is ignored", func(t *testing.T) {
		fc, err := readFileConfig(filepath.Join(t.TempDir(), "config.yaml"), false)
		if err != nil {
			t.Fatalf("readFileConfig returned error: %v", err)
		}
		if fc.Driver != "" || fc.MaxWidth != nil {
			t.Fatalf("expected zero config, got %+v", fc)
		}
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		if _, err := readFileConfig(filepath.Join(t.TempDir(), "config.yaml"), true); err == nil {
			t.Fatal("expected an error for a missing --config file")
		}
	})

	t.Run("file overrides set fields only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := []byte("driver: memory\nmax_width: 4000\ncache: false\nchecksums: [sha256, xxhash]\nlog_format: json\n")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		fc, err := readFileConfig(path, true)
		if err != nil {
			t.Fatalf("readFileConfig returned error: %v", err)
		}

		cfg := imagekit.Config{
			Driver:        "local",
			MaxHeight:     300,
			CacheEnabled:  true,
			LogLevel:      "info",
			LogFormat:     "text",
			BlurMaxRadius: 100,
		}
		fc.apply(&cfg)

		want := imagekit.Config{
			Driver:        "memory",
			MaxWidth:      4000,
			MaxHeight:     300,
			CacheEnabled:  false,
			Checksums:     "sha256,xxhash",
			LogLevel:      "info",
			LogFormat:     "json",
			BlurMaxRadius: 100,
		}
		if cfg != want {
			t.Fatalf("unexpected config:\n got %+v\nwant %+v", cfg, want)
		}
	})

	t.Run("invalid yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("max_width: [1"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := readFileConfig(path, true); err == nil {
			t.Fatal("expected a parse error")
		}
	})
}

func TestBlurCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")

	img := image.NewNRGBA(image.Rect(0, 0, 12, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 12; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 25), B: 128, A: 255})
		}
	}
	f, err := os.Create(in)
	if err != nil {
		t.Fatalf("create input: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode input: %v", err)
	}
	f.Close()

	cfg := &imagekit.Config{BlurMaxRadius: 100, MaxFileSize: 1 << 20}
	ctx := withConfig(context.Background(), cfg)
	if err := blurCmd().Run(ctx, []string{"blur", "--radius", "3", "--rgb565", in, out}); err != nil {
		t.Fatalf("blur command returned error: %v", err)
	}

	r, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer r.Close()
	got, err := png.Decode(r)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Fatalf("output bounds %v, want %v", got.Bounds(), img.Bounds())
	}
}
