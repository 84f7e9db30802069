package corpus

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

// Output and config files of the tool itself are never ingested.
var selfFiles = map[string]bool{
	CompactFileName:   true,
	ReadableFileName:  true,
	DefaultConfigName: true,
}

type fileFilter struct {
	include      []string
	exclude      []string
	ignore       []glob.Glob
	skipVendored bool
	skip         map[string]bool
}

func newFileFilter(cfg *Config, extraSkips ...string) (*fileFilter, error) {
	ff := &fileFilter{
		include:      cfg.Include,
		exclude:      cfg.Exclude,
		skipVendored: cfg.SkipVendored,
		skip:         map[string]bool{},
	}
	for _, p := range cfg.Ignore {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		ff.ignore = append(ff.ignore, g)
	}
	for _, s := range extraSkips {
		if s != "" {
			ff.skip[absPath(s)] = true
		}
	}
	return ff, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func (ff *fileFilter) ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range ff.ignore {
		if g.Match(rel) || g.Match(rel+"/**") {
			return true
		}
	}
	return ff.skipVendored && enry.IsVendor(rel)
}

func (ff *fileFilter) wantDir(rel string, name string) bool {
	if hidden(name) || ff.ignored(rel) {
		return false
	}
	// vendor patterns are written against paths with a trailing slash
	return !(ff.skipVendored && enry.IsVendor(filepath.ToSlash(rel)+"/"))
}

func (ff *fileFilter) wantFile(path string, rel string, name string) bool {
	switch {
	case hidden(name), ff.skip[absPath(path)]:
		return false
	case filepath.Dir(rel) == "." && selfFiles[name]:
		return false
	case ff.ignored(rel):
		return false
	case len(ff.include) > 0:
		return hasAnySuffix(name, ff.include)
	case len(ff.exclude) > 0:
		return !hasAnySuffix(name, ff.exclude)
	}
	return true
}

// walkSource lists the candidate files below sourceRoot in lexical order.
// Unreadable directories are logged and skipped.
func walkSource(sourceRoot string, ff *fileFilter) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == sourceRoot {
				return err
			}
			log.Printf("skipping '%s' : %v\n", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == sourceRoot {
			return nil
		}
		rel, err := filepath.Rel(sourceRoot, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !ff.wantDir(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ff.wantFile(path, rel, d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// Progress is told about work as files complete. Implementations must be
// safe for concurrent use.
type Progress interface {
	Start(total int)
	Done(path string)
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int) {}
func (noProgress) Done(string) {}
func (noProgress) Finish() {}

// mapFiles runs fn over paths with at most workers goroutines and returns the
// results in the order of paths. A failing file is logged and leaves the zero
// value in its slot; only cancellation of ctx stops the batch.
func mapFiles[T any](ctx context.Context, paths []string, workers int, progress Progress, fn func(path string) (T, error)) ([]T, error) {
	if progress == nil {
		progress = noProgress{}
	}
	results := make([]T, len(paths))

	progress.Start(len(paths))
	defer progress.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer progress.Done(path)
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(path)
			if err != nil {
				log.Printf("skipping '%s' : %v\n", path, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
