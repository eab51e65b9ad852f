package imagekit

import (
	"context"
	"io"
	"time"
)

// FileInfo represents file/directory metadata
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// File is an open file that supports random access. Detection reads only the
// parts of a file its detectors ask for, so drivers hand out io.ReaderAt instead
// of a stream.
type File interface {
	io.ReaderAt
	io.Closer

	// Size returns the length of the file in bytes.
	Size() int64
}

// ============================================================================
// Core Interfaces (Interface Segregation)
// ============================================================================

// FileReader provides read-only access to stored images.
// The Inspector only needs a FileReader.
type FileReader interface {
	// Open opens a file for random access reads.
	Open(ctx context.Context, path string) (File, error)

	// ReadAll reads entire file into memory. Use for small files only.
	ReadAll(ctx context.Context, path string) ([]byte, error)

	// FileExists checks if a file exists at path.
	FileExists(ctx context.Context, path string) (bool, error)

	// Stat returns file/directory metadata.
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// ListContents lists directory contents.
	// If recursive is true, includes all descendants.
	ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error)
}

// FileWriter provides write operations.
type FileWriter interface {
	// Write writes content from reader to path, replacing any existing file.
	Write(ctx context.Context, path string, r io.Reader) error

	// Delete removes a file.
	Delete(ctx context.Context, path string) error
}

// FileSystem provides full read-write access.
type FileSystem interface {
	FileReader
	FileWriter
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// Use type assertion to check if a driver supports a capability:
//
//	if w, ok := fs.(CanWatch); ok {
//	    token, err := w.Watch(ctx, "**/*.png")
//	}

// ============================================================================
// File Watching Interface (ChangeToken Pattern)
// ============================================================================

// ChangeToken represents a change notification token.
//
// Consumers can either:
// 1. Poll HasChanged() periodically
// 2. Register a callback via RegisterChangeCallback()
type ChangeToken interface {
	// HasChanged returns true if a change has occurred.
	// Once true, it remains true (tokens are single-use).
	HasChanged() bool

	// ActiveChangeCallbacks indicates if the token proactively raises callbacks.
	ActiveChangeCallbacks() bool

	// RegisterChangeCallback registers a callback to be invoked when change occurs.
	// Returns a function to unregister the callback.
	RegisterChangeCallback(callback func()) (unregister func())
}

// CanWatch indicates the filesystem supports file change notifications.
// Drivers without it are watched by polling their listings.
//
// Example:
//
//	if watcher, ok := fs.(CanWatch); ok {
//	    token, err := watcher.Watch(ctx, "**/*.png")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    unregister := token.RegisterChangeCallback(func() {
//	        log.Println("images changed")
//	    })
//	    defer unregister()
//	}
type CanWatch interface {
	// Watch creates a change token for the specified filter pattern.
	// The token signals when any matching file is created, modified, or deleted.
	Watch(ctx context.Context, pattern string) (ChangeToken, error)
}
