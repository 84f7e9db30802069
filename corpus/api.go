package corpus

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Options controls how a Session is built. Zero values pick the defaults.
type Options struct {
	// ConfigFile overrides the config.json lookup in the source root.
	ConfigFile string
	// Config, when set, is used instead of loading one.
	Config *Config
	// CacheDB is the bolt file used to memoise results. Empty disables it.
	CacheDB string
	// OutputDir is where the aggregate is written; its outputs are never
	// ingested.
	OutputDir string
	Progress  Progress
	Verbose   bool

	Classifier Classifier
	Detector   Detector
}

// Session binds a source root to a configured extractor.
type Session struct {
	SourceRoot string
	Config     *Config
	Extractor  *Extractor

	filter   *fileFilter
	progress Progress
	verbose  bool
}

// Open prepares a Session for sourceRoot.
func Open(sourceRoot string, opts Options) (*Session, error) {
	info, err := os.Stat(sourceRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root '%s' is not a directory", sourceRoot)
	}

	cfg := opts.Config
	if cfg == nil {
		if cfg, err = LoadConfig(opts.ConfigFile, sourceRoot); err != nil {
			return nil, err
		}
	}
	rules, err := cfg.RuleTable(DefaultRules)
	if err != nil {
		return nil, err
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = NewEnryClassifier(rules)
	}
	detector := opts.Detector
	if detector == nil {
		detector = NewChardetDetector()
	}

	skips := []string{cfg.ConfigFile, opts.CacheDB}
	if opts.OutputDir != "" {
		skips = append(skips,
			filepath.Join(opts.OutputDir, CompactFileName),
			filepath.Join(opts.OutputDir, ReadableFileName))
	}
	filter, err := newFileFilter(cfg, skips...)
	if err != nil {
		return nil, err
	}

	ext := NewExtractor(sourceRoot, classifier, NewEncodingResolver(detector, cfg.MinConfidence), rules)
	ext.MaxFileSize = cfg.MaxFileSize

	if opts.CacheDB != "" {
		cache, err := OpenResultCache(opts.CacheDB, cfg.CacheFingerprint(rules))
		if err != nil {
			return nil, fmt.Errorf("error opening cache '%s' : %w", opts.CacheDB, err)
		}
		ext.Cache = cache
	}

	return &Session{
		SourceRoot: sourceRoot,
		Config:     cfg,
		Extractor:  ext,
		filter:     filter,
		progress:   opts.Progress,
		verbose:    opts.Verbose,
	}, nil
}

// Close releases the result cache, if any.
func (s *Session) Close() error {
	if s.Extractor.Cache != nil {
		return s.Extractor.Cache.Close()
	}
	return nil
}

// Files lists the candidate files after include/exclude filtering.
func (s *Session) Files() ([]string, error) {
	return walkSource(s.SourceRoot, s.filter)
}

// Conclude extracts every applicable file. Results keep traversal order.
func (s *Session) Conclude(ctx context.Context) ([]*ExtractionResult, error) {
	paths, err := s.Files()
	if err != nil {
		return nil, err
	}
	all, err := mapFiles(ctx, paths, s.Config.WorkerCount(), s.progress, func(path string) (*ExtractionResult, error) {
		res, err := s.Extractor.Extract(path)
		if err == nil && res == nil && s.verbose {
			log.Printf("unsupported '%s'\n", path)
		}
		return res, err
	})
	if err != nil {
		return nil, err
	}
	results := make([]*ExtractionResult, 0, len(all))
	for _, res := range all {
		if res != nil {
			results = append(results, res)
		}
	}
	return results, nil
}

// StripComments writes a comment free copy of every applicable file into
// targetDir, mirroring the source tree. Whitespace is left as is.
func (s *Session) StripComments(ctx context.Context, targetDir string) (int, error) {
	all, err := s.Files()
	if err != nil {
		return 0, err
	}
	pse := &plainSourceExtractor{sourceRoot: s.SourceRoot, targetDir: targetDir}
	paths := all[:0]
	for _, path := range all {
		if !pse.inTarget(path) {
			paths = append(paths, path)
		}
	}
	written, err := mapFiles(ctx, paths, s.Config.WorkerCount(), s.progress, func(path string) (bool, error) {
		c, err := s.Extractor.Load(path)
		if err != nil || c == nil {
			return false, err
		}
		return true, pse.write(path, c.Stripped)
	})
	if err != nil {
		return 0, err
	}
	count := 0
	for _, w := range written {
		if w {
			count++
		}
	}
	return count, nil
}

// StatsRow summarises one syntax.
type StatsRow struct {
	Syntax        string
	Files         int
	OriginalBytes int
	CleanedBytes  int
}

// Reduction is the fraction of bytes removed, 0 when there was nothing.
func (r StatsRow) Reduction() float64 {
	if r.OriginalBytes == 0 {
		return 0
	}
	return 1 - float64(r.CleanedBytes)/float64(r.OriginalBytes)
}

// Stats measures how much each syntax shrinks, sorted by syntax.
func (s *Session) Stats(ctx context.Context) ([]StatsRow, error) {
	paths, err := s.Files()
	if err != nil {
		return nil, err
	}
	cleaned, err := mapFiles(ctx, paths, s.Config.WorkerCount(), s.progress, s.Extractor.Load)
	if err != nil {
		return nil, err
	}
	return summarise(cleaned), nil
}

func summarise(cleaned []*Cleaned) []StatsRow {
	bySyntax := make(map[string]*StatsRow)
	for _, c := range cleaned {
		if c == nil {
			continue
		}
		row, ok := bySyntax[c.Syntax]
		if !ok {
			row = &StatsRow{Syntax: c.Syntax}
			bySyntax[c.Syntax] = row
		}
		row.Files++
		row.OriginalBytes += len(c.Original)
		row.CleanedBytes += len(c.Content)
	}
	rows := make([]StatsRow, 0, len(bySyntax))
	for _, r := range bySyntax {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Syntax < rows[j].Syntax })
	return rows
}

// LexerCheck scans every Equinox source with the Equinox lexer and logs
// illegal tokens. It is mostly for debugging the lexer.
func (s *Session) LexerCheck(ctx context.Context) error {
	paths, err := s.Files()
	if err != nil {
		return err
	}
	lc := &lexCheck{extractor: s.Extractor}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, _, ok := s.Extractor.Applicable(path)
		if !ok || c.Syntax != SyntaxEquinox {
			continue
		}
		if err := lc.process(path); err != nil {
			return fmt.Errorf("%s : %w", path, err)
		}
	}
	if !lc.anyErrors {
		log.Println("no lexer errors.")
	}
	return nil
}

// Publish extracts every file and writes both listings into outputDir, and
// into Postgres when pgDSN is set. Nothing is written unless every file has
// been processed.
func (s *Session) Publish(ctx context.Context, outputDir string, pgDSN string) error {
	results, err := s.Conclude(ctx)
	if err != nil {
		return err
	}
	if err := WriteResults(outputDir, results); err != nil {
		return err
	}
	log.Printf("wrote %d files to '%s'\n", len(results), outputDir)

	if pgDSN != "" {
		if err := WritePostgres(ctx, pgDSN, results); err != nil {
			return fmt.Errorf("error writing to postgres : %w", err)
		}
		log.Printf("wrote %d rows to postgres\n", len(results))
	}
	return nil
}

// Conclude runs the whole pipeline over sourceRoot and writes the listings
// into outputDir.
func Conclude(ctx context.Context, sourceRoot string, outputDir string, pgDSN string, opts Options) error {
	opts.OutputDir = outputDir
	s, err := Open(sourceRoot, opts)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Publish(ctx, outputDir, pgDSN)
}

// Watch publishes once and then again whenever sourceRoot changes, until
// ctx is cancelled.
func Watch(ctx context.Context, sourceRoot string, outputDir string, pgDSN string, debounce time.Duration, opts Options) error {
	opts.OutputDir = outputDir
	s, err := Open(sourceRoot, opts)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Watch(ctx, debounce, func(ctx context.Context) error {
		return s.Publish(ctx, outputDir, pgDSN)
	})
}

// StripComments writes comment free copies of sourceRoot into targetDir.
func StripComments(ctx context.Context, sourceRoot string, targetDir string, opts Options) error {
	s, err := Open(sourceRoot, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.StripComments(ctx, targetDir)
	if err != nil {
		return err
	}
	log.Printf("wrote %d stripped files to '%s'\n", n, targetDir)
	return nil
}

// Stats collects per syntax stats for sourceRoot.
func Stats(ctx context.Context, sourceRoot string, opts Options) ([]StatsRow, error) {
	s, err := Open(sourceRoot, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Stats(ctx)
}

// LexerCheck runs the Equinox lexer over the Equinox sources in sourceRoot.
func LexerCheck(ctx context.Context, sourceRoot string, opts Options) error {
	s, err := Open(sourceRoot, opts)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.LexerCheck(ctx)
}
