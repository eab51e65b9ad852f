package imageinfo

import (
	"errors"
	"fmt"
)

// ErrorCode is the outcome of a classification.
type ErrorCode int

const (
	// ErrNone means a detector matched.
	ErrNone ErrorCode = iota
	// ErrUnrecognized means no detector matched, or a restricted candidate
	// list was exhausted without a match.
	ErrUnrecognized
)

// ErrUnrecognizedFormat is returned by (Info).Err for unrecognized input.
var ErrUnrecognizedFormat = errors.New("unrecognized image format")

// String returns the error message for the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "No error"
	case ErrUnrecognized:
		return "Unrecognized format"
	default:
		return "Unknown error"
	}
}

// Size is a pixel size. A component of -1 means "not known yet".
type Size struct {
	Width  int64 `json:"width" yaml:"width"`
	Height int64 `json:"height" yaml:"height"`
}

// UnknownSize is the zero classification size.
var UnknownSize = Size{Width: -1, Height: -1}

// At returns Width for index 0 and Height for index 1. Any other index panics.
func (s Size) At(i int) int64 {
	switch i {
	case 0:
		return s.Width
	case 1:
		return s.Height
	default:
		panic(fmt.Sprintf("imageinfo: size index %d out of range", i))
	}
}

// Known reports whether both components are non-negative.
func (s Size) Known() bool {
	return s.Width >= 0 && s.Height >= 0
}

// String formats the size as WxH.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Info is the classification of an image source.
//
// An Info is either ok (Format is a real format and Size is known) or carries
// only an error code. It is built fresh per parse and never mutated after
// being returned.
type Info struct {
	format  Format
	size    Size
	entries []Size
	code    ErrorCode
}

// newInfo returns a matched classification with an unknown size.
func newInfo(format Format) Info {
	return Info{format: format, size: UnknownSize}
}

// unrecognized returns the failed classification.
func unrecognized() Info {
	return Info{size: UnknownSize, code: ErrUnrecognized}
}

// OK reports whether the classification succeeded.
func (i Info) OK() bool { return i.code == ErrNone && i.format.Valid() }

// Code returns the error code.
func (i Info) Code() ErrorCode { return i.code }

// Err returns ErrUnrecognizedFormat when the classification failed.
func (i Info) Err() error {
	if i.OK() {
		return nil
	}
	return ErrUnrecognizedFormat
}

// ErrorMessage returns a human readable description of the error code.
func (i Info) ErrorMessage() string { return i.code.String() }

// Format returns the detected format, or Unknown.
func (i Info) Format() Format { return i.format }

// Ext returns the short extension of the detected format.
func (i Info) Ext() string { return i.format.Ext() }

// FullExt returns the canonical extension of the detected format.
func (i Info) FullExt() string { return i.format.FullExt() }

// MIME returns the MIME type of the detected format.
func (i Info) MIME() string { return i.format.MIME() }

// Size returns the primary pixel size.
func (i Info) Size() Size { return i.size }

// EntrySizes returns a copy of the embedded entry sizes. It is non-empty only
// for multi-resolution containers (ICO, CUR, ICNS).
func (i Info) EntrySizes() []Size {
	if len(i.entries) == 0 {
		return nil
	}
	out := make([]Size, len(i.entries))
	copy(out, i.entries)
	return out
}

func (i Info) String() string {
	if !i.OK() {
		return i.code.String()
	}
	return fmt.Sprintf("%s %s", i.format, i.size)
}

func (i *Info) setSize(width, height int64) {
	i.size = Size{Width: width, Height: height}
}
