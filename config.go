package imagekit

import (
	"time"

	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Storage driver holding the images (local, memory, zip)
	Driver string `env:"IMAGEKIT_DRIVER,default:local"`

	// Local driver root, or the archive path of the zip driver
	LocalBasePath string `env:"IMAGEKIT_LOCAL_BASE_PATH,default:."`

	// Bytes staged from the head of each file before detection
	HeaderCacheSize int `env:"IMAGEKIT_HEADER_CACHE_SIZE,default:1024"`

	// Largest compressed source inflated in memory
	MaxFileSize int64 `env:"IMAGEKIT_MAX_FILE_SIZE,default:67108864"` // 64MB default

	// Dimension limits, 0 means unlimited
	MaxWidth  int64 `env:"IMAGEKIT_MAX_WIDTH,default:0"`
	MaxHeight int64 `env:"IMAGEKIT_MAX_HEIGHT,default:0"`
	MaxPixels int64 `env:"IMAGEKIT_MAX_PIXELS,default:0"`

	// Result cache
	CacheEnabled    bool `env:"IMAGEKIT_CACHE_ENABLED,default:true"`
	CacheTTLSeconds int  `env:"IMAGEKIT_CACHE_TTL_SECONDS,default:300"`

	// Scan workers, 0 means GOMAXPROCS
	Concurrency int `env:"IMAGEKIT_CONCURRENCY,default:0"`

	// Checksums computed for every inspected file (comma-separated: xxhash,sha256,crc32)
	Checksums string `env:"IMAGEKIT_CHECKSUMS"`

	// Blur endpoint and command
	BlurMaxRadius int `env:"IMAGEKIT_BLUR_MAX_RADIUS,default:100"`

	// Largest image, in pixels, decoded for blurring
	BlurMaxPixels int64 `env:"IMAGEKIT_BLUR_MAX_PIXELS,default:25000000"`

	// HTTP API
	ServerAddress string `env:"IMAGEKIT_SERVER_ADDRESS,default:127.0.0.1:8080"`

	// Logging
	LogLevel  string `env:"IMAGEKIT_LOG_LEVEL,default:info"`
	LogFormat string `env:"IMAGEKIT_LOG_FORMAT,default:text"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Limits returns the dimension limits of cfg.
func (c *Config) Limits() Limits {
	return Limits{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight, MaxPixels: c.MaxPixels}
}

// CacheTTL returns the result cache TTL of cfg.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
