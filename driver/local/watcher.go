package local

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/gobeaver/imagekit"
)

// Watch implements imagekit.CanWatch using fsnotify. The filter is a
// pattern over paths relative to the root (see imagekit.Pattern). Every
// directory below the static prefix of the filter is watched, and
// directories created later are added as they appear.
//
// The returned token is signalled on the first matching create, write,
// remove or rename, after which the watcher is closed.
func (a *Adapter) Watch(ctx context.Context, filter string) (imagekit.ChangeToken, error) {
	pattern, err := imagekit.CompilePattern(filter)
	if err != nil {
		return nil, &imagekit.PathError{Op: "watch", Path: filter, Err: err}
	}

	watchPath, err := a.resolve(ctx, "watch", staticPrefix(filter))
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(watchPath); err != nil || !info.IsDir() {
		watchPath = a.root
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &imagekit.PathError{Op: "watch", Path: filter, Err: err}
	}
	if err := addTree(w, watchPath); err != nil {
		w.Close()
		return nil, &imagekit.PathError{Op: "watch", Path: filter, Err: err}
	}

	token := imagekit.NewCallbackChangeToken()
	go a.watchLoop(ctx, w, pattern, token)
	return token, nil
}

func (a *Adapter) watchLoop(ctx context.Context, w *fsnotify.Watcher, pattern *imagekit.Pattern, token *imagekit.CallbackChangeToken) {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(w, event.Name); err != nil {
						a.log.Warn("watch directory", "path", event.Name, "error", err)
					}
				}
			}
			if event.Op == fsnotify.Chmod || isTemp(filepath.Base(event.Name)) {
				continue
			}

			rel, err := filepath.Rel(a.root, event.Name)
			if err != nil {
				continue
			}
			if pattern.Match(filepath.ToSlash(rel)) {
				token.SignalChange()
				return // spent
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			a.log.Warn("watch error", "root", a.root, "error", err)
		}
	}
}

// addTree watches dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories may vanish while walking.
			if path == dir {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// staticPrefix returns the directory part of filter before the first glob
// character, or "" when the filter may match anywhere.
func staticPrefix(filter string) string {
	idx := strings.IndexAny(filter, "*?[{")
	if idx < 0 {
		idx = len(filter)
	}
	dir := filter[:idx]
	slash := strings.LastIndex(dir, "/")
	if slash < 0 {
		return ""
	}
	return dir[:slash]
}
