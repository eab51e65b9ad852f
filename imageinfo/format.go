package imageinfo

import (
	"strings"
)

// Format identifies an image container format.
// The declaration order is significant: the detector table in parse.go is
// indexed by Format-1.
type Format int

const (
	Unknown Format = iota
	AVIF
	BMP
	CUR
	DDS
	GIF
	HDR
	HEIC
	ICNS
	ICO
	JP2
	JPEG
	JPX
	KTX
	PNG
	PSD
	QOI
	TIFF
	WEBP
	TGA

	formatEnd
)

// formatCount is the number of real formats, excluding Unknown.
const formatCount = int(formatEnd) - 1

// formatDescriptor holds the static naming data of a format.
type formatDescriptor struct {
	name    string
	ext     string
	fullExt string
	mime    string
}

var descriptors = [formatEnd]formatDescriptor{
	Unknown: {name: "unknown"},
	AVIF:    {name: "avif", ext: "avif", fullExt: "avif", mime: "image/avif"},
	BMP:     {name: "bmp", ext: "bmp", fullExt: "bmp", mime: "image/bmp"},
	CUR:     {name: "cur", ext: "cur", fullExt: "cur", mime: "image/cur"},
	DDS:     {name: "dds", ext: "dds", fullExt: "dds", mime: "image/dds"},
	GIF:     {name: "gif", ext: "gif", fullExt: "gif", mime: "image/gif"},
	HDR:     {name: "hdr", ext: "hdr", fullExt: "hdr", mime: "image/vnd.radiance"},
	HEIC:    {name: "heic", ext: "heic", fullExt: "heic", mime: "image/heic"},
	ICNS:    {name: "icns", ext: "icns", fullExt: "icns", mime: "image/icns"},
	ICO:     {name: "ico", ext: "ico", fullExt: "ico", mime: "image/ico"},
	JP2:     {name: "jp2", ext: "jp2", fullExt: "jp2", mime: "image/jp2"},
	JPEG:    {name: "jpeg", ext: "jpg", fullExt: "jpeg", mime: "image/jpeg"},
	JPX:     {name: "jpx", ext: "jpx", fullExt: "jpx", mime: "image/jpx"},
	KTX:     {name: "ktx", ext: "ktx", fullExt: "ktx", mime: "image/ktx"},
	PNG:     {name: "png", ext: "png", fullExt: "png", mime: "image/png"},
	PSD:     {name: "psd", ext: "psd", fullExt: "psd", mime: "image/psd"},
	QOI:     {name: "qoi", ext: "qoi", fullExt: "qoi", mime: "image/qoi"},
	TIFF:    {name: "tiff", ext: "tiff", fullExt: "tiff", mime: "image/tiff"},
	WEBP:    {name: "webp", ext: "webp", fullExt: "webp", mime: "image/webp"},
	TGA:     {name: "tga", ext: "tga", fullExt: "tga", mime: "image/tga"},
}

// String returns the lower-case format name.
func (f Format) String() string {
	if f < Unknown || f >= formatEnd {
		return "unknown"
	}
	return descriptors[f].name
}

// Ext returns the short file extension without a leading dot.
func (f Format) Ext() string {
	if f <= Unknown || f >= formatEnd {
		return ""
	}
	return descriptors[f].ext
}

// FullExt returns the canonical file extension without a leading dot.
func (f Format) FullExt() string {
	if f <= Unknown || f >= formatEnd {
		return ""
	}
	return descriptors[f].fullExt
}

// MIME returns the MIME type reported for the format.
func (f Format) MIME() string {
	if f <= Unknown || f >= formatEnd {
		return ""
	}
	return descriptors[f].mime
}

// Valid reports whether f names a real format.
func (f Format) Valid() bool {
	return f > Unknown && f < formatEnd
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	*f = ParseFormat(string(text))
	return nil
}

// Formats returns every real format in declaration order.
func Formats() []Format {
	formats := make([]Format, 0, formatCount)
	for f := Unknown + 1; f < formatEnd; f++ {
		formats = append(formats, f)
	}
	return formats
}

// extensionAliases maps file extensions that differ from the short and full
// extension of a format.
var extensionAliases = map[string]Format{
	"jpe":  JPEG,
	"jfif": JPEG,
	"tif":  TIFF,
	"heif": HEIC,
	"hif":  HEIC,
	"j2k":  JP2,
	"jpf":  JPX,
	"dib":  BMP,
	"pic":  HDR,
	"rgbe": HDR,
	"icb":  TGA,
	"vda":  TGA,
}

// ParseFormat resolves a format name or extension (case-insensitive, an
// optional leading dot is ignored). Unknown input yields Unknown.
func ParseFormat(name string) Format {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if name == "" {
		return Unknown
	}
	for f := Unknown + 1; f < formatEnd; f++ {
		d := descriptors[f]
		if name == d.name || name == d.ext || name == d.fullExt {
			return f
		}
	}
	if f, ok := extensionAliases[name]; ok {
		return f
	}
	return Unknown
}

// FormatFromExtension derives a most-likely format from a file name or
// extension. Only the part after the last dot is considered.
func FormatFromExtension(name string) Format {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	return ParseFormat(name)
}

// mimeAliases holds MIME types used in the wild for formats whose canonical
// MIME string is non-standard.
var mimeAliases = map[string]Format{
	"image/jpg":                 JPEG,
	"image/pjpeg":               JPEG,
	"image/x-icon":              ICO,
	"image/vnd.microsoft.icon":  ICO,
	"image/x-ms-bmp":            BMP,
	"image/x-bmp":               BMP,
	"image/x-tga":               TGA,
	"image/x-targa":             TGA,
	"image/x-icns":              ICNS,
	"image/vnd.ms-dds":          DDS,
	"image/heif":                HEIC,
	"image/vnd.adobe.photoshop": PSD,
}

// FormatFromMIME resolves a MIME type to a format. Parameters after ';' are
// ignored.
func FormatFromMIME(mime string) Format {
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	for f := Unknown + 1; f < formatEnd; f++ {
		if descriptors[f].mime == mime {
			return f
		}
	}
	if f, ok := mimeAliases[mime]; ok {
		return f
	}
	return Unknown
}
