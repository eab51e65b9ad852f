package imageinfo

import (
	"fmt"
	"io"
	"os"
)

// DefaultCacheSize is the number of leading source bytes staged by a Reader.
const DefaultCacheSize = 1024

// ReadFunc fills p with the bytes at off. It must fill p completely or return
// an error.
type ReadFunc func(p []byte, off int64) error

// Reader serves bounded, random-access reads over a source of known length.
// The first bytes of the source are staged in a header cache so that the many
// small reads of the detectors do not each hit the underlying source.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	read      ReadFunc
	length    int64
	cacheSize int
	cache     []byte
	err       error
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithCacheSize sets the header cache capacity. Zero disables the cache.
func WithCacheSize(n int) ReaderOption {
	return func(r *Reader) {
		if n < 0 {
			n = 0
		}
		r.cacheSize = n
	}
}

// NewReader wraps read over a source of length bytes and stages the header
// cache.
func NewReader(read ReadFunc, length int64, opts ...ReaderOption) *Reader {
	r := &Reader{
		read:      read,
		length:    length,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	if n := min(int64(r.cacheSize), length); n > 0 {
		r.cache = make([]byte, n)
		r.fill(r.cache, 0)
	}
	return r
}

// Len returns the declared source length.
func (r *Reader) Len() int64 { return r.length }

// Err returns the first error reported by the underlying read function.
func (r *Reader) Err() error { return r.err }

// ReadBuffer returns the size bytes at off as a fresh Buffer.
// A request outside [0, Len()) is a programming error and panics.
func (r *Reader) ReadBuffer(off, size int64) Buffer {
	if off < 0 || size < 0 || off+size > r.length {
		panic(fmt.Sprintf("imageinfo: read [%d, %d) outside source of length %d", off, off+size, r.length))
	}

	buf := make([]byte, size)
	cached := int64(len(r.cache))
	switch {
	case off+size <= cached:
		copy(buf, r.cache[off:off+size])
	case off < cached && cached-off >= int64(r.cacheSize/4):
		head := cached - off
		copy(buf, r.cache[off:])
		r.fill(buf[head:], off+head)
	default:
		r.fill(buf, off)
	}
	return NewBuffer(buf, off)
}

func (r *Reader) fill(p []byte, off int64) {
	if r.err != nil || len(p) == 0 {
		return
	}
	if err := r.read(p, off); err != nil {
		r.err = fmt.Errorf("imageinfo: read %d bytes at %d: %w", len(p), off, err)
	}
}

// BytesSource returns a ReadFunc over an in-memory block.
func BytesSource(data []byte) ReadFunc {
	return func(p []byte, off int64) error {
		if off < 0 || off+int64(len(p)) > int64(len(data)) {
			return io.ErrUnexpectedEOF
		}
		copy(p, data[off:])
		return nil
	}
}

// ReaderAtSource returns a ReadFunc over an io.ReaderAt of the given size.
func ReaderAtSource(ra io.ReaderAt, size int64) ReadFunc {
	return func(p []byte, off int64) error {
		if off+int64(len(p)) > size {
			return io.ErrUnexpectedEOF
		}
		n, err := ra.ReadAt(p, off)
		if n == len(p) {
			return nil
		}
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
}

// NewBytesReader returns a Reader over data.
func NewBytesReader(data []byte, opts ...ReaderOption) *Reader {
	return NewReader(BytesSource(data), int64(len(data)), opts...)
}

// NewReaderAt returns a Reader over ra, whose readable extent is size bytes.
func NewReaderAt(ra io.ReaderAt, size int64, opts ...ReaderOption) *Reader {
	return NewReader(ReaderAtSource(ra, size), size, opts...)
}

// OpenFile opens the file at path and returns a Reader over it together with
// the file, which the caller must close.
func OpenFile(path string, opts ...ReaderOption) (*Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return NewReaderAt(f, st.Size(), opts...), f, nil
}
