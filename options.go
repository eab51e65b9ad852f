package imagekit

import (
	"runtime"
	"time"

	"github.com/gobeaver/imagekit/imageinfo"
	"github.com/gobeaver/imagekit/internal/logger"
)

// Option configures an Inspector
type Option func(*Options)

// Options contains all Inspector settings
type Options struct {
	// Logger receives per-file and per-scan events
	Logger Logger

	// Cache stores results by fingerprint; nil disables caching
	Cache Cache

	// CacheTTL is the lifetime of cached results (0 = no expiry)
	CacheTTL time.Duration

	// Checksums lists the digests computed for every inspected file
	Checksums []ChecksumAlgorithm

	// Limits rejects images with oversized dimensions
	Limits Limits

	// HeaderCacheSize is the number of bytes staged from the head of a file
	HeaderCacheSize int

	// MaxFileSize bounds the inflated size of compressed sources
	MaxFileSize int64

	// Concurrency is the number of Scan workers
	Concurrency int

	// PollInterval is the listing poll interval used by Watch for drivers
	// without native change events
	PollInterval time.Duration
}

// Limits bounds the pixel size of accepted images. Zero fields are unlimited.
type Limits struct {
	MaxWidth  int64 `json:"max_width,omitempty" yaml:"max_width,omitempty"`
	MaxHeight int64 `json:"max_height,omitempty" yaml:"max_height,omitempty"`
	MaxPixels int64 `json:"max_pixels,omitempty" yaml:"max_pixels,omitempty"`
}

// Check returns a *DimensionError if size violates l. Unknown sizes pass.
func (l Limits) Check(size imageinfo.Size) error {
	if !size.Known() {
		return nil
	}
	if (l.MaxWidth > 0 && size.Width > l.MaxWidth) ||
		(l.MaxHeight > 0 && size.Height > l.MaxHeight) ||
		(l.MaxPixels > 0 && size.Width*size.Height > l.MaxPixels) {
		return &DimensionError{Size: size, Limits: l}
	}
	return nil
}

func defaultOptions() Options {
	return Options{
		Logger:          logger.Discard(),
		HeaderCacheSize: imageinfo.DefaultCacheSize,
		MaxFileSize:     64 << 20,
		Concurrency:     runtime.GOMAXPROCS(0),
		PollInterval:    5 * time.Second,
	}
}

// Logger is the structured logger used by the Inspector. Any *slog.Logger
// can be adapted with logger.New(l.Handler()) inside this module, or by
// implementing the five methods.
type Logger = logger.Logger

// WithLogger sets the logger used by the Inspector
func WithLogger(l Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithCache enables result caching
func WithCache(c Cache, ttl time.Duration) Option {
	return func(o *Options) {
		o.Cache = c
		o.CacheTTL = ttl
	}
}

// WithChecksums computes the given digests for every inspected file
func WithChecksums(algorithms ...ChecksumAlgorithm) Option {
	return func(o *Options) {
		o.Checksums = algorithms
	}
}

// WithLimits rejects images larger than l
func WithLimits(l Limits) Option {
	return func(o *Options) {
		o.Limits = l
	}
}

// WithHeaderCacheSize sets the number of bytes staged from the head of each
// file; 0 disables staging
func WithHeaderCacheSize(n int) Option {
	return func(o *Options) {
		o.HeaderCacheSize = n
	}
}

// WithMaxFileSize bounds the inflated size of compressed sources
func WithMaxFileSize(n int64) Option {
	return func(o *Options) {
		o.MaxFileSize = n
	}
}

// WithConcurrency sets the number of Scan workers
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithPollInterval sets the listing poll interval used by Watch
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) {
		o.PollInterval = d
	}
}
