package imagekit

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is a stream compression wrapped around an image, such as
// photo.png.gz.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// DetectCompression identifies a compressed source from its first bytes.
// The magic number decides; the name is never trusted on its own.
func DetectCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// TrimCompressionExt strips a trailing .gz, .gzip or .zst from name so the
// remaining extension can serve as a format hint.
func TrimCompressionExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip", ".zst", ".zstd":
		return strings.TrimSuffix(name, path.Ext(name))
	}
	return name
}

// Inflate decompresses r into memory. More than limit decompressed bytes
// fail with ErrTooLarge; limit <= 0 means unlimited.
func Inflate(r io.Reader, c Compression, limit int64) ([]byte, error) {
	var src io.Reader
	switch c {
	case CompressionNone:
		src = r
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		src = zr
	case CompressionZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(true))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrNotSupported, c)
	}

	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("inflate %s: %w", c, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: inflated size exceeds %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
