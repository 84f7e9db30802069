package corpus

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ErrFileTooLarge is returned for files above the configured size cap.
var ErrFileTooLarge = errors.New("file too large")

// ExtractionResult is one record of the aggregate output.
type ExtractionResult struct {
	FileName     string `json:"f"`
	RelativePath string `json:"p"`
	Content      string `json:"c"`
}

// Cleaned is the outcome of running the pipeline over one file's bytes.
type Cleaned struct {
	Syntax   string
	Markup   bool
	Encoding string
	// Original is the decoded text before stripping.
	Original string
	// Stripped has comments and print calls removed but is not normalised.
	Stripped string
	Content  string
}

// Extractor turns files below Root into cleaned content.
type Extractor struct {
	root       string
	classifier Classifier
	resolver   *EncodingResolver
	rules      *RuleTable

	// MaxFileSize skips larger files when positive.
	MaxFileSize int64
	// Cache, when set, memoises results across runs.
	Cache *ResultCache
}

func NewExtractor(root string, classifier Classifier, resolver *EncodingResolver, rules *RuleTable) *Extractor {
	return &Extractor{
		root:       root,
		classifier: classifier,
		resolver:   resolver,
		rules:      rules,
	}
}

// Applicable classifies name and finds its stripper. Files without a
// supported syntax or without a rule are not applicable.
func (e *Extractor) Applicable(name string) (Classification, Stripper, bool) {
	c := e.classifier.Classify(name)
	if !c.Supported {
		return Unsupported, nil, false
	}
	s, ok := e.rules.Stripper(c.Syntax)
	if !ok {
		return Unsupported, nil, false
	}
	return c, s, true
}

// Clean runs decoding, stripping and normalisation over raw. It returns
// false when name is not applicable.
func (e *Extractor) Clean(name string, raw []byte) (*Cleaned, bool) {
	c, s, ok := e.Applicable(name)
	if !ok {
		return nil, false
	}
	return e.clean(c, s, raw), true
}

func (e *Extractor) clean(c Classification, s Stripper, raw []byte) *Cleaned {
	enc := e.resolver.Resolve(raw)
	if c.Syntax == SyntaxEquinox {
		enc = equinoxEncoding(enc, raw)
	}
	text := Decode(raw, enc)
	stripped := s.Strip(text)
	return &Cleaned{
		Syntax:   c.Syntax,
		Markup:   c.Markup,
		Encoding: enc,
		Original: text,
		Stripped: stripped,
		Content:  Normalize(stripped, c.Markup),
	}
}

// Load reads and cleans path. A nil result with a nil error means the file
// is skipped.
func (e *Extractor) Load(path string) (*Cleaned, error) {
	c, s, ok := e.Applicable(path)
	if !ok {
		return nil, nil
	}
	raw, err := e.read(path)
	if err != nil {
		return nil, err
	}
	return e.clean(c, s, raw), nil
}

// Extract produces the output record for path, or nil when the file is not
// applicable.
func (e *Extractor) Extract(path string) (*ExtractionResult, error) {
	c, s, ok := e.Applicable(path)
	if !ok {
		return nil, nil
	}
	rel, err := e.Relative(path)
	if err != nil {
		return nil, err
	}
	raw, err := e.read(path)
	if err != nil {
		return nil, err
	}

	if e.Cache != nil {
		res, hit, err := e.Cache.Get(rel, raw)
		if err != nil {
			log.Printf("cache lookup for '%s' failed : %v\n", rel, err)
		} else if hit {
			return res, nil
		}
	}

	res := &ExtractionResult{
		FileName:     filepath.Base(path),
		RelativePath: rel,
		Content:      e.clean(c, s, raw).Content,
	}

	if e.Cache != nil {
		if err := e.Cache.Put(rel, raw, res); err != nil {
			log.Printf("cache store for '%s' failed : %v\n", rel, err)
		}
	}
	return res, nil
}

// Relative returns path relative to the extractor root.
func (e *Extractor) Relative(path string) (string, error) {
	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return "", fmt.Errorf("path error : %w", err)
	}
	return rel, nil
}

func (e *Extractor) read(path string) ([]byte, error) {
	if e.MaxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > e.MaxFileSize {
			return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.Size(), e.MaxFileSize)
		}
	}
	return os.ReadFile(path)
}
