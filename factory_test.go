package imagekit_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/gobeaver/imagekit"
	_ "github.com/gobeaver/imagekit/driver/local"
	_ "github.com/gobeaver/imagekit/driver/memory"
	_ "github.com/gobeaver/imagekit/driver/zip"
)

func TestDrivers(t *testing.T) {
	names := imagekit.Drivers()
	for _, want := range []string{"local", "memory", "zip"} {
		if !slices.Contains(names, want) {
			t.Errorf("Drivers() = %v, missing %q", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("Drivers() = %v, not sorted", names)
	}
}

func TestCreateDriverUnknown(t *testing.T) {
	_, err := imagekit.CreateDriver(&imagekit.Config{Driver: "s3"})
	if !errors.Is(err, imagekit.ErrNotSupported) {
		t.Errorf("CreateDriver() error = %v, want ErrNotSupported", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := &imagekit.Config{
		Driver:          "local",
		LocalBasePath:   t.TempDir(),
		HeaderCacheSize: 1024,
		MaxFileSize:     1 << 20,
		MaxWidth:        100,
		CacheEnabled:    true,
		CacheTTLSeconds: 60,
		Checksums:       "sha256",
	}
	in, err := imagekit.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}

	ctx := context.Background()
	w, ok := in.FileReader().(imagekit.FileWriter)
	if !ok {
		t.Fatal("local driver is not a FileWriter")
	}
	if err := w.Write(ctx, "big.gif", bytes.NewReader(gifHeader(500, 1))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Write(ctx, "ok.gif", bytes.NewReader(gifHeader(50, 1))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := in.Inspect(ctx, "big.gif"); !errors.Is(err, imagekit.ErrTooLarge) {
		t.Errorf("Inspect(big.gif) error = %v, want ErrTooLarge", err)
	}
	res, err := in.Inspect(ctx, "ok.gif")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Checksums[imagekit.ChecksumSHA256] == "" {
		t.Error("configured sha256 checksum missing")
	}
	if _, ok := in.CacheStats(); !ok {
		t.Error("cache not enabled from config")
	}
}

func TestNewFromConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  imagekit.Config
		want error
	}{
		{"unknown driver", imagekit.Config{Driver: "ftp"}, imagekit.ErrNotSupported},
		{"unknown checksum", imagekit.Config{Driver: "memory", Checksums: "md4"}, imagekit.ErrNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := imagekit.NewFromConfig(&tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewFromConfig() error = %v, want %v", err, tt.want)
			}
		})
	}
}
