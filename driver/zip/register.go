package zip

import (
	"fmt"

	"github.com/gobeaver/imagekit"
)

func init() {
	imagekit.RegisterDriver("zip", func(cfg *imagekit.Config) (imagekit.FileReader, error) {
		// LocalBasePath names the archive file
		if cfg.LocalBasePath == "" {
			return nil, fmt.Errorf("zip driver requires LocalBasePath to be set to the ZIP file path")
		}
		return Open(cfg.LocalBasePath, WithMaxEntrySize(cfg.MaxFileSize))
	})
}
