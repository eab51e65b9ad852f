package imageinfo

import (
	"fmt"
	"io"
)

// detectFunc inspects a source of the given length for one container family.
// It returns ok == false, and a zero Info, when the signature does not match.
type detectFunc func(r *Reader, length int64) (Info, bool)

// detectorGroup identifies the underlying detector. Formats that share a detector
// (AVIF/HEIC, CUR/ICO, JP2/JPX) share a group, so it runs at most once.
type detectorGroup int

const (
	groupAVIFHEIC detectorGroup = iota
	groupBMP
	groupCURICO
	groupDDS
	groupGIF
	groupHDR
	groupICNS
	groupJP2JPX
	groupJPEG
	groupKTX
	groupPNG
	groupPSD
	groupQOI
	groupTIFF
	groupWEBP
	groupTGA

	groupCount
)

type detectorEntry struct {
	format Format
	group  detectorGroup
	detect detectFunc
}

// detectors is indexed by Format-1. The keyed literal turns a duplicate or
// out-of-range format into a compile error, and the array length ties the
// table to the Format declaration.
var detectors = [formatCount]detectorEntry{
	AVIF - 1: {AVIF, groupAVIFHEIC, detectAVIFHEIC},
	BMP - 1:  {BMP, groupBMP, detectBMP},
	CUR - 1:  {CUR, groupCURICO, detectCURICO},
	DDS - 1:  {DDS, groupDDS, detectDDS},
	GIF - 1:  {GIF, groupGIF, detectGIF},
	HDR - 1:  {HDR, groupHDR, detectHDR},
	HEIC - 1: {HEIC, groupAVIFHEIC, detectAVIFHEIC},
	ICNS - 1: {ICNS, groupICNS, detectICNS},
	ICO - 1:  {ICO, groupCURICO, detectCURICO},
	JP2 - 1:  {JP2, groupJP2JPX, detectJP2JPX},
	JPEG - 1: {JPEG, groupJPEG, detectJPEG},
	JPX - 1:  {JPX, groupJP2JPX, detectJP2JPX},
	KTX - 1:  {KTX, groupKTX, detectKTX},
	PNG - 1:  {PNG, groupPNG, detectPNG},
	PSD - 1:  {PSD, groupPSD, detectPSD},
	QOI - 1:  {QOI, groupQOI, detectQOI},
	TIFF - 1: {TIFF, groupTIFF, detectTIFF},
	WEBP - 1: {WEBP, groupWEBP, detectWEBP},
	TGA - 1:  {TGA, groupTGA, detectTGA},
}

func init() {
	if err := checkDetectorTable(detectors[:]); err != nil {
		panic(err)
	}
}

// checkDetectorTable verifies that entry i describes Format(i+1).
func checkDetectorTable(table []detectorEntry) error {
	for i, d := range table {
		if d.format != Format(i+1) {
			return fmt.Errorf("imageinfo: detector %d is %s, want %s", i, d.format, Format(i+1))
		}
		if d.detect == nil || d.group < 0 || d.group >= groupCount {
			return fmt.Errorf("imageinfo: detector for %s is incomplete", d.format)
		}
	}
	return nil
}

// ParseOptions biases the detector order of Parse.
type ParseOptions struct {
	// MostLikely runs first when set.
	MostLikely Format

	// Likely run next, in order.
	Likely []Format

	// MustBeLikely restricts the result to MostLikely and Likely.
	MustBeLikely bool
}

// ParseOption configures a Parse call.
type ParseOption func(*ParseOptions)

// WithMostLikely runs the detector of f before any other.
func WithMostLikely(f Format) ParseOption {
	return func(o *ParseOptions) {
		o.MostLikely = f
	}
}

// WithLikely runs the detectors of formats, in order, after the most likely
// one.
func WithLikely(formats ...Format) ParseOption {
	return func(o *ParseOptions) {
		o.Likely = append(o.Likely, formats...)
	}
}

// MustBeLikely rejects any result outside the most likely and likely formats.
func MustBeLikely() ParseOption {
	return func(o *ParseOptions) {
		o.MustBeLikely = true
	}
}

// Parse classifies the source behind r.
//
// Detectors run serially until the first match: the most likely format, then
// the likely formats, then (unless restricted) every remaining detector in
// table order. Each underlying detector runs at most once per call. A format
// hint is advisory unless MustBeLikely is set.
//
// The returned error is non-nil only when the underlying read function
// failed; an unrecognized source yields an Info with OK() == false.
func Parse(r *Reader, opts ...ParseOption) (Info, error) {
	var o ParseOptions
	for _, opt := range opts {
		opt(&o)
	}
	return parse(r, o)
}

func parse(r *Reader, o ParseOptions) (Info, error) {
	if err := r.Err(); err != nil {
		return unrecognized(), err
	}

	length := r.Len()
	var tried [groupCount]bool

	// try runs the detector of want. want == Unknown accepts any result.
	try := func(d detectorEntry, want Format) (Info, bool, error) {
		info, ok := d.detect(r, length)
		tried[d.group] = true
		if err := r.Err(); err != nil {
			return unrecognized(), false, err
		}
		if !ok || (want != Unknown && info.Format() != want) {
			return Info{}, false, nil
		}
		return info, true, nil
	}

	candidates := make([]Format, 0, len(o.Likely)+1)
	candidates = append(candidates, o.MostLikely)
	candidates = append(candidates, o.Likely...)
	for _, f := range candidates {
		if !f.Valid() {
			continue
		}
		d := detectors[f-1]
		if tried[d.group] {
			continue
		}
		want := Unknown
		if o.MustBeLikely {
			want = f
		}
		if info, ok, err := try(d, want); err != nil || ok {
			return info, err
		}
	}

	if o.MustBeLikely {
		return unrecognized(), nil
	}

	for _, d := range detectors {
		if tried[d.group] {
			continue
		}
		if info, ok, err := try(d, Unknown); err != nil || ok {
			return info, err
		}
	}
	return unrecognized(), nil
}

// ParseBytes classifies an in-memory image.
func ParseBytes(data []byte, opts ...ParseOption) (Info, error) {
	return Parse(NewBytesReader(data), opts...)
}

// ParseReaderAt classifies the first size bytes of ra.
func ParseReaderAt(ra io.ReaderAt, size int64, opts ...ParseOption) (Info, error) {
	return Parse(NewReaderAt(ra, size), opts...)
}

// ParseFile classifies the file at path. The file extension is used as the
// most likely format unless opts set one.
func ParseFile(path string, opts ...ParseOption) (Info, error) {
	r, f, err := OpenFile(path)
	if err != nil {
		return unrecognized(), err
	}
	defer f.Close()

	opts = append([]ParseOption{WithMostLikely(FormatFromExtension(path))}, opts...)
	return Parse(r, opts...)
}
