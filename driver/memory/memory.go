// Package memory provides an in-memory imagekit.FileSystem, used in tests and
// to stage uploads before inspection.
package memory

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/imagekit"
)

// memoryFile represents a file stored in memory. Content is never modified
// in place, so open readers keep seeing the version they opened.
type memoryFile struct {
	content []byte
	modTime time.Time
}

// memoryDir represents a directory in memory
type memoryDir struct {
	modTime time.Time
}

// watchEntry represents a single watch subscription
type watchEntry struct {
	pattern *imagekit.Pattern
	token   *imagekit.CallbackChangeToken
}

// Adapter provides an in-memory implementation of imagekit.FileSystem
type Adapter struct {
	mu      sync.RWMutex
	files   map[string]*memoryFile
	dirs    map[string]*memoryDir
	maxSize int64 // Maximum total storage size (0 = unlimited)
	size    int64 // Current total size
	now     func() time.Time

	// Watch support
	watchMu sync.RWMutex
	watches []*watchEntry
}

// Config holds configuration for the memory adapter
type Config struct {
	// MaxSize is the maximum total storage size in bytes (0 = unlimited)
	MaxSize int64
}

// New creates a new in-memory filesystem adapter
func New(cfg ...Config) *Adapter {
	var maxSize int64
	if len(cfg) > 0 {
		maxSize = cfg[0].MaxSize
	}

	a := &Adapter{
		files:   make(map[string]*memoryFile),
		dirs:    make(map[string]*memoryDir),
		maxSize: maxSize,
		now:     time.Now,
	}
	a.dirs[""] = &memoryDir{modTime: a.now()}
	return a
}

// memFile is an open in-memory file
type memFile struct {
	*bytes.Reader
}

func (f memFile) Close() error { return nil }

// Open implements imagekit.FileReader
func (a *Adapter) Open(ctx context.Context, p string) (imagekit.File, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[p]
	if !exists {
		if _, isDir := a.dirs[p]; isDir {
			return nil, &imagekit.PathError{Op: "open", Path: p, Err: imagekit.ErrIsDir}
		}
		return nil, &imagekit.PathError{Op: "open", Path: p, Err: imagekit.ErrNotExist}
	}
	return memFile{Reader: bytes.NewReader(file.content)}, nil
}

// ReadAll implements imagekit.FileReader. The returned slice is a copy.
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
		return nil, err
	}
	return data, nil
}

// FileExists implements imagekit.FileReader
func (a *Adapter) FileExists(ctx context.Context, p string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, exists := a.files[p]
	return exists, nil
}

// Stat implements imagekit.FileReader
func (a *Adapter) Stat(ctx context.Context, p string) (*imagekit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if file, exists := a.files[p]; exists {
		return &imagekit.FileInfo{
			Name:    path.Base(p),
			Path:    p,
			Size:    int64(len(file.content)),
			ModTime: file.modTime,
		}, nil
	}

	if dir, exists := a.dirs[p]; exists {
		return &imagekit.FileInfo{
			Name:    path.Base(p),
			Path:    p,
			ModTime: dir.modTime,
			IsDir:   true,
		}, nil
	}

	return nil, &imagekit.PathError{Op: "stat", Path: p, Err: imagekit.ErrNotExist}
}

// ListContents implements imagekit.FileReader. Entries are sorted by path.
func (a *Adapter) ListContents(ctx context.Context, p string, recursive bool) ([]imagekit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, exists := a.dirs[p]; !exists {
		if _, isFile := a.files[p]; isFile {
			return nil, &imagekit.PathError{Op: "listcontents", Path: p, Err: imagekit.ErrNotDir}
		}
		return nil, &imagekit.PathError{Op: "listcontents", Path: p, Err: imagekit.ErrNotExist}
	}

	// under reports whether child lies below p, directly unless recursive.
	under := func(child string) bool {
		if child == p {
			return false
		}
		rel := child
		if p != "" {
			if !strings.HasPrefix(child, p+"/") {
				return false
			}
			rel = strings.TrimPrefix(child, p+"/")
		}
		return recursive || !strings.Contains(rel, "/")
	}

	var files []imagekit.FileInfo
	for filePath, file := range a.files {
		if under(filePath) {
			files = append(files, imagekit.FileInfo{
				Name:    path.Base(filePath),
				Path:    filePath,
				Size:    int64(len(file.content)),
				ModTime: file.modTime,
			})
		}
	}
	for dirPath, dir := range a.dirs {
		if dirPath != "" && under(dirPath) {
			files = append(files, imagekit.FileInfo{
				Name:    path.Base(dirPath),
				Path:    dirPath,
				ModTime: dir.modTime,
				IsDir:   true,
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Write implements imagekit.FileWriter. An existing file is replaced.
func (a *Adapter) Write(ctx context.Context, p string, content io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p = normalizePath(p)
	if !isValidPath(p) {
		return &imagekit.PathError{Op: "write", Path: p, Err: imagekit.ErrNotAllowed}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return &imagekit.PathError{Op: "write", Path: p, Err: err}
	}

	a.mu.Lock()
	if _, isDir := a.dirs[p]; isDir {
		a.mu.Unlock()
		return &imagekit.PathError{Op: "write", Path: p, Err: imagekit.ErrIsDir}
	}

	newSize := a.size + int64(len(data))
	if existing, exists := a.files[p]; exists {
		newSize -= int64(len(existing.content))
	}
	if a.maxSize > 0 && newSize > a.maxSize {
		a.mu.Unlock()
		return &imagekit.PathError{Op: "write", Path: p, Err: imagekit.ErrTooLarge}
	}

	a.ensureParentDirs(p)
	a.files[p] = &memoryFile{content: data, modTime: a.now()}
	a.size = newSize
	a.mu.Unlock()

	go a.notifyWatchers(p)
	return nil
}

// Delete implements imagekit.FileWriter
func (a *Adapter) Delete(ctx context.Context, p string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.Lock()
	file, exists := a.files[p]
	if !exists {
		a.mu.Unlock()
		return &imagekit.PathError{Op: "delete", Path: p, Err: imagekit.ErrNotExist}
	}
	a.size -= int64(len(file.content))
	delete(a.files, p)
	a.mu.Unlock()

	go a.notifyWatchers(p)
	return nil
}

// Clear removes all files and directories
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.files = make(map[string]*memoryFile)
	a.dirs = map[string]*memoryDir{"": {modTime: a.now()}}
	a.size = 0
}

// Size returns the current total size of all stored files
func (a *Adapter) Size() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}

// FileCount returns the number of files stored
func (a *Adapter) FileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

// ensureParentDirs creates all parent directories for a given path
// Must be called with lock held
func (a *Adapter) ensureParentDirs(p string) {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if _, exists := a.dirs[dir]; !exists {
			a.dirs[dir] = &memoryDir{modTime: a.now()}
		}
	}
}

// normalizePath cleans a slash-separated path and strips the leading slash
func normalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return ""
	}
	return path.Clean(p)
}

// isValidPath checks if a path is valid (no directory traversal)
func isValidPath(p string) bool {
	return p != "" && p != ".." && !strings.HasPrefix(p, "../")
}

// ============================================================================
// Watcher Implementation
// ============================================================================

// Watch implements imagekit.CanWatch. The token is signalled by the first
// Write or Delete of a path matching filter.
func (a *Adapter) Watch(ctx context.Context, filter string) (imagekit.ChangeToken, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	pattern, err := imagekit.CompilePattern(filter)
	if err != nil {
		return nil, &imagekit.PathError{Op: "watch", Path: filter, Err: err}
	}

	token := imagekit.NewCallbackChangeToken()

	a.watchMu.Lock()
	a.watches = append(a.watches, &watchEntry{pattern: pattern, token: token})
	a.watchMu.Unlock()

	// Clean up when context is cancelled
	go func() {
		<-ctx.Done()
		a.removeWatch(token)
	}()

	return token, nil
}

// notifyWatchers signals all watchers whose filter matches the given path
func (a *Adapter) notifyWatchers(p string) {
	a.watchMu.RLock()
	var fired []*watchEntry
	for _, entry := range a.watches {
		if entry.pattern.Match(p) {
			fired = append(fired, entry)
		}
	}
	a.watchMu.RUnlock()

	for _, entry := range fired {
		entry.token.SignalChange()
		a.removeWatch(entry.token)
	}
}

// removeWatch removes a watch entry by token
func (a *Adapter) removeWatch(token *imagekit.CallbackChangeToken) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	for i, entry := range a.watches {
		if entry.token == token {
			a.watches[i] = a.watches[len(a.watches)-1]
			a.watches = a.watches[:len(a.watches)-1]
			return
		}
	}
}

// Watches returns the number of active watch subscriptions
func (a *Adapter) Watches() int {
	a.watchMu.RLock()
	defer a.watchMu.RUnlock()
	return len(a.watches)
}

var (
	_ imagekit.FileSystem = (*Adapter)(nil)
	_ imagekit.CanWatch   = (*Adapter)(nil)
)
