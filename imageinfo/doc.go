// Package imageinfo identifies image containers and reads their pixel size
// without decoding pixel data.
//
// It is part of [ImageKit] but has no dependencies outside the standard
// library and can be used on its own.
//
// [ImageKit]: https://github.com/gobeaver/imagekit
//
// # Supported formats
//
// AVIF, HEIC, BMP, CUR, ICO, DDS, GIF, Radiance HDR, ICNS, JPEG 2000 (JP2, JPX),
// JPEG, KTX, PNG (including Apple CgBI), PSD, QOI, TIFF, WebP (VP8, VP8L, VP8X)
// and TGA.
//
// # Quick Start
//
//	info, err := imageinfo.ParseFile("photo.jpg")
//	if err != nil {
//	    return err // I/O failure
//	}
//	if !info.OK() {
//	    return info.Err() // unrecognized
//	}
//	fmt.Println(info.Format(), info.MIME(), info.Size())
//
// Multi-resolution containers report every embedded size:
//
//	for _, s := range info.EntrySizes() {
//	    fmt.Println(s.Width, s.Height)
//	}
//
// # Detector order
//
// Detectors run one at a time until the first match. A caller that already
// expects a format (from a file extension or a MIME type) can move it to the
// front:
//
//	info, err := imageinfo.Parse(r,
//	    imageinfo.WithMostLikely(imageinfo.PNG),
//	    imageinfo.WithLikely(imageinfo.JPEG, imageinfo.WEBP),
//	)
//
// The hint is advisory: a JPEG source still classifies as JPEG. With
// MustBeLikely the result is restricted to the hinted formats and anything
// else is reported as unrecognized.
//
// # Sources
//
// A Reader wraps any random-access source whose length is known up front:
// BytesSource, ReaderAtSource and OpenFile cover the common cases, and
// NewReader accepts a custom ReadFunc. The first DefaultCacheSize bytes are
// staged once so that header reads do not hit the source repeatedly.
//
// # Malformed input
//
// Every detector checks the declared length before each read, so truncated
// or hostile input fails that detector instead of reading past the end.
// Dimensions are reported as stored in the header; they are not checked for
// plausibility here.
package imageinfo
