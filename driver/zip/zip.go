// Package zip serves the images stored inside a ZIP archive.
//
// The archive is opened read-only and indexed once. Entries stored without
// compression are read in place; deflate and zstd entries are inflated into
// memory when opened, bounded by the maximum entry size.
package zip

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/gobeaver/imagekit"
)

// DefaultMaxEntrySize bounds the inflated size of a compressed entry.
const DefaultMaxEntrySize = 64 << 20

// Adapter provides read-only imagekit.FileReader access to a ZIP archive.
type Adapter struct {
	path     string
	file     *os.File
	reader   *zip.Reader
	maxEntry int64
	entries  map[string]*entry
}

// entry is a file or directory in the archive index
type entry struct {
	file    *zip.File // nil for directories
	modTime time.Time
	isDir   bool
}

// Option configures an Adapter
type Option func(*Adapter)

// WithMaxEntrySize sets the largest compressed entry Open inflates.
func WithMaxEntrySize(n int64) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxEntry = n
		}
	}
}

// Open opens an existing ZIP archive for reading.
func Open(zipPath string, opts ...Option) (*Adapter, error) {
	f, err := os.Open(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	r.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())

	a := &Adapter{
		path:     zipPath,
		file:     f,
		reader:   r,
		maxEntry: DefaultMaxEntrySize,
		entries:  map[string]*entry{"": {isDir: true, modTime: info.ModTime()}},
	}
	for _, opt := range opts {
		opt(a)
	}

	// Build file index
	for _, zf := range r.File {
		name := normalizePath(zf.Name)
		if !isValidPath(name) {
			continue
		}
		if zf.FileInfo().IsDir() {
			a.entries[name] = &entry{isDir: true, modTime: zf.Modified}
		} else {
			a.entries[name] = &entry{file: zf, modTime: zf.Modified}
		}
		a.ensureParentDirs(name, zf.Modified)
	}
	return a, nil
}

// Path returns the archive location on disk.
func (a *Adapter) Path() string {
	return a.path
}

// Close releases the archive file.
func (a *Adapter) Close() error {
	return a.file.Close()
}

func (a *Adapter) lookup(ctx context.Context, op, p string) (*entry, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	default:
	}

	p = normalizePath(p)
	e, exists := a.entries[p]
	if !exists {
		return nil, p, &imagekit.PathError{Op: op, Path: p, Err: imagekit.ErrNotExist}
	}
	return e, p, nil
}

// memFile is an inflated entry
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// Open implements imagekit.FileReader
func (a *Adapter) Open(ctx context.Context, p string) (imagekit.File, error) {
	e, p, err := a.lookup(ctx, "open", p)
	if err != nil {
		return nil, err
	}
	if e.isDir {
		return nil, &imagekit.PathError{Op: "open", Path: p, Err: imagekit.ErrIsDir}
	}

	zf := e.file
	size := int64(zf.UncompressedSize64)
	if zf.Method == zip.Store {
		off, err := zf.DataOffset()
		if err != nil {
			return nil, &imagekit.PathError{Op: "open", Path: p, Err: err}
		}
		return sectionFile{io.NewSectionReader(a.file, off, size)}, nil
	}

	if size > a.maxEntry {
		return nil, &imagekit.PathError{Op: "open", Path: p, Err: imagekit.ErrTooLarge}
	}
	rc, err := zf.Open()
	if err != nil {
		return nil, &imagekit.PathError{Op: "open", Path: p, Err: err}
	}
	defer rc.Close()

	// The header size is not trusted; the limit applies to what inflates.
	data, err := io.ReadAll(io.LimitReader(rc, a.maxEntry+1))
	if err != nil {
		return nil, &imagekit.PathError{Op: "open", Path: p, Err: err}
	}
	if int64(len(data)) > a.maxEntry {
		return nil, &imagekit.PathError{Op: "open", Path: p, Err: imagekit.ErrTooLarge}
	}
	return memFile{bytes.NewReader(data)}, nil
}

// sectionFile is a stored entry read in place
type sectionFile struct {
	*io.SectionReader
}

func (sectionFile) Close() error { return nil }

// ReadAll implements imagekit.FileReader
func (a *Adapter) ReadAll(ctx context.Context, p string) ([]byte, error) {
	f, err := a.Open(ctx, p)
	if err != nil {
		if pe, ok := err.(*imagekit.PathError); ok {
			pe.Op = "read"
		}
		return nil, err
	}
	defer f.Close()

	data := make([]byte, f.Size())
	if _, err := f.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, &imagekit.PathError{Op: "read", Path: normalizePath(p), Err: err}
	}
	return data, nil
}

// FileExists implements imagekit.FileReader
func (a *Adapter) FileExists(ctx context.Context, p string) (bool, error) {
	e, _, err := a.lookup(ctx, "fileexists", p)
	if err != nil {
		if imagekit.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !e.isDir, nil
}

// Stat implements imagekit.FileReader
func (a *Adapter) Stat(ctx context.Context, p string) (*imagekit.FileInfo, error) {
	e, p, err := a.lookup(ctx, "stat", p)
	if err != nil {
		return nil, err
	}
	info := a.info(p, e)
	return &info, nil
}

func (a *Adapter) info(p string, e *entry) imagekit.FileInfo {
	info := imagekit.FileInfo{
		Name:    path.Base(p),
		Path:    p,
		ModTime: e.modTime,
		IsDir:   e.isDir,
	}
	if p == "" {
		info.Name = ""
	}
	if e.file != nil {
		info.Size = int64(e.file.UncompressedSize64)
	}
	return info
}

// ListContents implements imagekit.FileReader. Entries are sorted by path.
func (a *Adapter) ListContents(ctx context.Context, prefix string, recursive bool) ([]imagekit.FileInfo, error) {
	e, prefix, err := a.lookup(ctx, "listcontents", prefix)
	if err != nil {
		return nil, err
	}
	if !e.isDir {
		return nil, &imagekit.PathError{Op: "listcontents", Path: prefix, Err: imagekit.ErrNotDir}
	}

	var files []imagekit.FileInfo
	for entryPath, child := range a.entries {
		if entryPath == "" || entryPath == prefix {
			continue
		}
		rel := entryPath
		if prefix != "" {
			if !strings.HasPrefix(entryPath, prefix+"/") {
				continue
			}
			rel = strings.TrimPrefix(entryPath, prefix+"/")
		}
		if !recursive && strings.Contains(rel, "/") {
			continue
		}
		files = append(files, a.info(entryPath, child))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// ensureParentDirs adds the implied directories of filePath to the index.
func (a *Adapter) ensureParentDirs(filePath string, modTime time.Time) {
	for dir := path.Dir(filePath); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if _, exists := a.entries[dir]; !exists {
			a.entries[dir] = &entry{isDir: true, modTime: modTime}
		}
	}
}

// normalizePath normalizes a file path
func normalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" || p == "." {
		return ""
	}
	return path.Clean(p)
}

// isValidPath rejects entries that would escape the archive root
func isValidPath(p string) bool {
	return p != "" && p != ".." && !strings.HasPrefix(p, "../")
}
