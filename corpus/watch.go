package corpus

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn once straight away and again after every burst of changes
// below the session's source root, waiting for debounce of quiet first. It
// returns when ctx is done or fn fails.
func (s *Session) Watch(ctx context.Context, debounce time.Duration, fn func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := s.addWatches(w, s.SourceRoot); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		return err
	}

	// nil until a change arrives, so the select never fires on it
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !s.relevant(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if err := s.addWatches(w, ev.Name); err != nil {
					log.Printf("cannot watch '%s' : %v\n", ev.Name, err)
				}
			}
			fire = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error : %v\n", err)
		case <-fire:
			fire = nil
			if err := fn(ctx); err != nil {
				return err
			}
		}
	}
}

// relevant filters out events for files the pipeline would never read, most
// importantly its own output.
func (s *Session) relevant(path string) bool {
	rel, err := filepath.Rel(s.SourceRoot, path)
	if err != nil {
		return false
	}
	name := filepath.Base(path)
	if hidden(name) || s.filter.skip[absPath(path)] || s.filter.ignored(rel) {
		return false
	}
	return !(filepath.Dir(rel) == "." && selfFiles[name])
}

func (s *Session) addWatches(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.SourceRoot {
			rel, err := filepath.Rel(s.SourceRoot, path)
			if err != nil {
				return err
			}
			if !s.filter.wantDir(rel, d.Name()) {
				return filepath.SkipDir
			}
		}
		return w.Add(path)
	})
}
