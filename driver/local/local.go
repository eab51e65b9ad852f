// Package local provides an imagekit.FileSystem backed by a directory on the
// local disk. Paths are slash-separated and relative to the root directory;
// paths escaping the root are rejected with imagekit.ErrNotAllowed.
package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/internal/logger"
)

// Adapter provides a local filesystem implementation of imagekit.FileSystem
type Adapter struct {
	root string
	log  imagekit.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithLogger sets the logger used for watch errors
func WithLogger(l imagekit.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates a new local filesystem adapter. The root directory is created
// if it does not exist.
func New(root string, opts ...Option) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, err
	}

	a := &Adapter{root: absRoot, log: logger.Discard()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Root returns the absolute root directory
func (a *Adapter) Root() string {
	return a.root
}

// resolve maps a slash-separated path to a file under the root.
func (a *Adapter) resolve(ctx context.Context, op, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	fullPath := filepath.Join(a.root, filepath.FromSlash(path))
	if !isPathUnderRoot(a.root, fullPath) {
		return "", &imagekit.PathError{Op: op, Path: path, Err: imagekit.ErrNotAllowed}
	}
	return fullPath, nil
}

// pathError translates os errors to imagekit sentinels.
func pathError(op, path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		err = imagekit.ErrNotExist
	case errors.Is(err, os.ErrPermission):
		err = imagekit.ErrNotAllowed
	}
	return &imagekit.PathError{Op: op, Path: path, Err: err}
}

// file is an open local file of fixed size
type file struct {
	*os.File
	size int64
}

func (f *file) Size() int64 { return f.size }

// Open implements imagekit.FileReader
func (a *Adapter) Open(ctx context.Context, path string) (imagekit.File, error) {
	fullPath, err := a.resolve(ctx, "open", path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, pathError("open", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pathError("open", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, &imagekit.PathError{Op: "open", Path: path, Err: imagekit.ErrIsDir}
	}
	return &file{File: f, size: info.Size()}, nil
}

// ReadAll implements imagekit.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := a.resolve(ctx, "read", path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, pathError("read", path, err)
	}
	return data, nil
}

// FileExists implements imagekit.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	fullPath, err := a.resolve(ctx, "fileexists", path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, pathError("fileexists", path, err)
	}

	// Return true only if it's a file (not a directory)
	return !info.IsDir(), nil
}

// Stat implements imagekit.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*imagekit.FileInfo, error) {
	fullPath, err := a.resolve(ctx, "stat", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, pathError("stat", path, err)
	}
	return a.fileInfo(fullPath, info), nil
}

func (a *Adapter) fileInfo(fullPath string, info os.FileInfo) *imagekit.FileInfo {
	rel, err := filepath.Rel(a.root, fullPath)
	if err != nil || rel == "." {
		rel = ""
	}
	return &imagekit.FileInfo{
		Name:    info.Name(),
		Path:    filepath.ToSlash(rel),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}

// ListContents implements imagekit.FileReader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]imagekit.FileInfo, error) {
	fullPath, err := a.resolve(ctx, "listcontents", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, pathError("listcontents", path, err)
	}
	if !info.IsDir() {
		return nil, &imagekit.PathError{Op: "listcontents", Path: path, Err: imagekit.ErrNotDir}
	}

	var files []imagekit.FileInfo

	if recursive {
		err = filepath.Walk(fullPath, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Skip the root directory itself
			if walkPath == fullPath {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if isTemp(info.Name()) {
				return nil
			}
			files = append(files, *a.fileInfo(walkPath, info))
			return nil
		})
		if err != nil {
			return nil, pathError("listcontents", path, err)
		}
		return files, nil
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, pathError("listcontents", path, err)
	}
	files = make([]imagekit.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if isTemp(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, *a.fileInfo(filepath.Join(fullPath, entry.Name()), info))
	}
	return files, nil
}

// Write implements imagekit.FileWriter. Content is written to a temporary
// file first so that readers never see a partial image.
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader) error {
	fullPath, err := a.resolve(ctx, "write", path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pathError("write", path, err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return pathError("write", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return pathError("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return pathError("write", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return pathError("write", path, err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return pathError("write", path, err)
	}
	return nil
}

// Delete implements imagekit.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	fullPath, err := a.resolve(ctx, "delete", path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		return pathError("delete", path, err)
	}
	return nil
}

// tempPrefix names in-progress writes, which listings and watches skip.
const tempPrefix = ".imagekit-"

func isTemp(name string) bool {
	return strings.HasPrefix(name, tempPrefix)
}

// isPathUnderRoot checks if a path is under a given root directory
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

var (
	_ imagekit.FileSystem = (*Adapter)(nil)
	_ imagekit.CanWatch   = (*Adapter)(nil)
)
