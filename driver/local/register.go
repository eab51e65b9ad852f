package local

import "github.com/gobeaver/imagekit"

func init() {
	imagekit.RegisterDriver("local", func(cfg *imagekit.Config) (imagekit.FileReader, error) {
		return New(cfg.LocalBasePath)
	})
}
