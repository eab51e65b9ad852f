package imagekit

import (
	"maps"
	"slices"
	"time"

	"github.com/gobeaver/imagekit/imageinfo"
)

// Result is the outcome of inspecting one file.
type Result struct {
	Path        string                       `json:"path" yaml:"path"`
	Format      imageinfo.Format             `json:"format" yaml:"format"`
	MIME        string                       `json:"mime,omitempty" yaml:"mime,omitempty"`
	Ext         string                       `json:"ext,omitempty" yaml:"ext,omitempty"`
	Width       int64                        `json:"width" yaml:"width"`
	Height      int64                        `json:"height" yaml:"height"`
	Entries     []imageinfo.Size             `json:"entries,omitempty" yaml:"entries,omitempty"`
	FileSize    int64                        `json:"file_size" yaml:"file_size"`
	ModTime     time.Time                    `json:"mod_time" yaml:"mod_time"`
	Compression Compression                  `json:"compression,omitempty" yaml:"compression,omitempty"`
	Checksums   map[ChecksumAlgorithm]string `json:"checksums,omitempty" yaml:"checksums,omitempty"`
	Error       string                       `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the file was recognized and passed all checks.
func (r *Result) OK() bool {
	return r.Error == "" && r.Format.Valid()
}

// Size returns the pixel size as an imageinfo.Size.
func (r *Result) Size() imageinfo.Size {
	return imageinfo.Size{Width: r.Width, Height: r.Height}
}

func (r *Result) setInfo(info imageinfo.Info) {
	r.Format = info.Format()
	r.MIME = info.MIME()
	r.Ext = info.Ext()
	size := info.Size()
	r.Width, r.Height = size.Width, size.Height
	if entries := info.EntrySizes(); len(entries) > 1 {
		r.Entries = entries
	}
	if !info.OK() {
		r.Error = info.ErrorMessage()
	}
}

// clone returns a copy that shares no slices or maps with r.
func (r Result) clone() Result {
	r.Entries = slices.Clone(r.Entries)
	r.Checksums = maps.Clone(r.Checksums)
	return r
}
