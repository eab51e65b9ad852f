package memory

import "github.com/gobeaver/imagekit"

func init() {
	imagekit.RegisterDriver("memory", func(cfg *imagekit.Config) (imagekit.FileReader, error) {
		return New(Config{MaxSize: cfg.MaxFileSize}), nil
	})
}
