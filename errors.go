package imagekit

import (
	"errors"
	"fmt"

	"github.com/gobeaver/imagekit/imageinfo"
)

// Common inspection errors
var (
	ErrNotExist     = errors.New("file does not exist")
	ErrNotDir       = errors.New("not a directory")
	ErrIsDir        = errors.New("is a directory")
	ErrNotSupported = errors.New("operation not supported")
	ErrNotAllowed   = errors.New("operation not allowed")
	ErrTooLarge     = errors.New("image exceeds configured limits")
	ErrUnrecognized = errors.New("unrecognized image format")
)

// PathError records an error and the operation and file path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// DimensionError reports an image whose pixel size is outside the
// configured Limits. It matches ErrTooLarge with errors.Is.
type DimensionError struct {
	Size   imageinfo.Size
	Limits Limits
}

func (e *DimensionError) Error() string {
	l := e.Limits
	switch {
	case l.MaxWidth > 0 && e.Size.Width > l.MaxWidth:
		return fmt.Sprintf("width %d exceeds limit %d", e.Size.Width, l.MaxWidth)
	case l.MaxHeight > 0 && e.Size.Height > l.MaxHeight:
		return fmt.Sprintf("height %d exceeds limit %d", e.Size.Height, l.MaxHeight)
	default:
		return fmt.Sprintf("%d pixels exceeds limit %d", e.Size.Width*e.Size.Height, l.MaxPixels)
	}
}

// Unwrap returns ErrTooLarge
func (e *DimensionError) Unwrap() error {
	return ErrTooLarge
}

// IsNotExist reports whether an error indicates that a file or directory
// does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsUnrecognized reports whether an error indicates that no detector
// recognized the content
func IsUnrecognized(err error) bool {
	return errors.Is(err, ErrUnrecognized) || errors.Is(err, imageinfo.ErrUnrecognizedFormat)
}
