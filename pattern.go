package imagekit

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a compiled file filter. Paths are slash-separated and relative
// to the directory being scanned or watched. '*' and '?' stay within one path
// segment and '**' crosses segments. A pattern without '/' is matched against
// the base name, so "*.png" selects PNG files at any depth.
//
// The empty pattern matches everything.
type Pattern struct {
	raw  string
	g    glob.Glob
	base bool
}

// CompilePattern compiles a glob pattern.
func CompilePattern(pattern string) (*Pattern, error) {
	p := &Pattern{raw: pattern, base: !strings.Contains(pattern, "/")}
	if pattern == "" {
		return p, nil
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	p.g = g
	return p, nil
}

// Match reports whether rel matches the pattern.
func (p *Pattern) Match(rel string) bool {
	if p.g == nil {
		return true
	}
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if p.g.Match(rel) {
		return true
	}
	return p.base && p.g.Match(path.Base(rel))
}

// String returns the source pattern.
func (p *Pattern) String() string {
	return p.raw
}

// relativeTo returns name relative to dir. Both are slash-separated paths
// as returned by drivers; "" and "." denote the root.
func relativeTo(dir, name string) string {
	dir = strings.Trim(path.Clean("/"+dir), "/")
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if dir == "" {
		return name
	}
	return strings.TrimPrefix(name, dir+"/")
}

// joinPattern scopes pattern to dir for drivers that filter whole paths.
func joinPattern(dir, pattern string) string {
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if dir == "" || (pattern != "" && !strings.Contains(pattern, "/")) {
		return pattern
	}
	if pattern == "" {
		return dir + "/**"
	}
	return dir + "/" + pattern
}
