package corpus

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// SyntaxEquinox identifies Equinox 4GL module exports such as
// "payments.jc@.txt". They are stripped with the Equinox lexer rather than a
// regex rule.
const SyntaxEquinox = "Equinox"

// Classification is the outcome of classifying a file name. The zero value
// means unsupported.
type Classification struct {
	Syntax    string
	Markup    bool
	Supported bool
}

// Unsupported is returned for files that must not produce a result.
var Unsupported = Classification{}

// Classifier decides which syntax a file is written in.
type Classifier interface {
	Classify(name string) Classification
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(name string) Classification

func (f ClassifierFunc) Classify(name string) Classification { return f(name) }

var markupSyntaxes = map[string]bool{
	"HTML": true,
	"CSS":  true,
	"XML":  true,
}

// IsMarkup reports whether whitespace is significant for syntax.
func IsMarkup(syntax string) bool {
	return markupSyntaxes[syntax]
}

var equinoxSuffixes = []string{
	".ex@.txt",
	".fr@.txt",
	".im@.txt",
	".jc@.txt",
	".pp@.txt",
	".pr@.txt",
	".qr@.txt",
	".re@.txt",
}

func isEquinoxSource(name string) bool {
	name = strings.ToLower(name)
	for _, suffix := range equinoxSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

type enryClassifier struct {
	rules *RuleTable
}

// NewEnryClassifier classifies by file name using the linguist derived
// registry in go-enry. An ambiguous extension resolves to the first
// candidate that has a rule in rules, or to the first candidate when none
// does or rules is nil.
func NewEnryClassifier(rules *RuleTable) Classifier {
	return enryClassifier{rules: rules}
}

func (ec enryClassifier) Classify(name string) Classification {
	base := filepath.Base(name)
	if isEquinoxSource(base) {
		return Classification{Syntax: SyntaxEquinox, Supported: true}
	}

	candidates := enry.GetLanguagesByExtension(base, nil, nil)
	if len(candidates) == 0 {
		candidates = enry.GetLanguagesByFilename(base, nil, nil)
	}
	language := ec.pick(candidates)
	if language == "" {
		return Unsupported
	}

	if !acceptedMIME(language, enry.GetMIMEType(base, language)) {
		return Unsupported
	}

	return Classification{Syntax: language, Markup: IsMarkup(language), Supported: true}
}

// pick returns "" when there is no candidate or when any candidate is
// Markdown, since documentation is never wanted. A markup candidate is never
// preferred over a code first candidate: .tsx lists XML after TSX, and
// treating React sources as markup would keep their comments and layout.
func (ec enryClassifier) pick(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	for _, c := range candidates {
		if c == "Markdown" {
			return ""
		}
	}
	first := candidates[0]
	if ec.rules != nil {
		for _, c := range candidates {
			if IsMarkup(c) && !IsMarkup(first) {
				continue
			}
			if _, ok := ec.rules.Stripper(c); ok {
				return c
			}
		}
	}
	return first
}

func acceptedMIME(language, mime string) bool {
	if language == "Markdown" {
		return false
	}
	category, subtype, ok := strings.Cut(strings.ToLower(mime), "/")
	if !ok {
		return false
	}
	if category != "text" && category != "application" {
		return false
	}
	switch subtype {
	case "md", "markdown", "x-markdown", "x-gfm":
		return false
	}
	return true
}
