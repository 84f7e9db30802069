package corpus

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/iancoleman/strcase"
)

// ErrInvalidRule is returned when a language rule cannot be used to build a
// rule table.
var ErrInvalidRule = errors.New("invalid language rule")

// LanguageRule describes how comments and print calls look in one syntax.
// An empty marker means the syntax has no such construct.
type LanguageRule struct {
	Syntax            string
	SingleComment     string
	MultiCommentStart string
	MultiCommentEnd   string
	PrintMarker       string
}

func (r LanguageRule) validate() error {
	if strings.TrimSpace(r.Syntax) == "" {
		return fmt.Errorf("%w: empty syntax", ErrInvalidRule)
	}
	if r.MultiCommentEnd != "" && r.MultiCommentStart == "" {
		return fmt.Errorf("%w: %s has a block comment end marker without a start marker", ErrInvalidRule, r.Syntax)
	}
	return nil
}

// ConfigKey is the snake case name used for the rule in config files.
func (r LanguageRule) ConfigKey() string {
	return ruleKey(r.Syntax)
}

func ruleKey(syntax string) string {
	return strcase.ToSnake(syntax)
}

// Stripper removes comments and other noise from decoded text.
type Stripper interface {
	Strip(text string) string
}

// RuleTable maps syntax identifiers to their rules. It is never mutated after
// construction; With returns a copy.
type RuleTable struct {
	rules     map[string]LanguageRule
	strippers map[string]Stripper
}

// NewRuleTable validates and compiles rules. A later rule for the same
// syntax replaces an earlier one.
func NewRuleTable(rules ...LanguageRule) (*RuleTable, error) {
	t := &RuleTable{
		rules:     make(map[string]LanguageRule, len(rules)),
		strippers: make(map[string]Stripper, len(rules)),
	}
	if err := t.add(rules); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *RuleTable) add(rules []LanguageRule) error {
	var errs []error
	for _, r := range rules {
		if err := r.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		t.rules[r.Syntax] = r
		t.strippers[r.Syntax] = compileRule(r)
	}
	return errors.Join(errs...)
}

// With returns a new table holding the receiver's rules overridden by rules.
func (t *RuleTable) With(rules ...LanguageRule) (*RuleTable, error) {
	n := &RuleTable{
		rules:     make(map[string]LanguageRule, len(t.rules)+len(rules)),
		strippers: make(map[string]Stripper, len(t.strippers)+len(rules)),
	}
	for k, v := range t.rules {
		n.rules[k] = v
	}
	for k, v := range t.strippers {
		n.strippers[k] = v
	}
	if err := n.add(rules); err != nil {
		return nil, err
	}
	return n, nil
}

// Lookup returns the rule registered for syntax.
func (t *RuleTable) Lookup(syntax string) (LanguageRule, bool) {
	r, ok := t.rules[syntax]
	return r, ok
}

// Stripper returns the compiled stripper for syntax.
func (t *RuleTable) Stripper(syntax string) (Stripper, bool) {
	s, ok := t.strippers[syntax]
	return s, ok
}

// Rules returns every rule sorted by syntax.
func (t *RuleTable) Rules() []LanguageRule {
	out := make([]LanguageRule, 0, len(t.rules))
	for _, r := range t.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Syntax < out[j].Syntax })
	return out
}

// SyntaxForKey finds the syntax whose config key is key.
func (t *RuleTable) SyntaxForKey(key string) (string, bool) {
	key = strings.ToLower(key)
	for syntax := range t.strippers {
		if ruleKey(syntax) == key {
			return syntax, true
		}
	}
	return "", false
}

// Fingerprint changes whenever any rule changes. Cached results are only
// valid for the fingerprint they were produced with.
func (t *RuleTable) Fingerprint() uint64 {
	d := xxhash.New()
	d.WriteString(rulesVersion)
	for _, r := range t.Rules() {
		fmt.Fprintf(d, "\x00%s\x01%s\x01%s\x01%s\x01%s", r.Syntax, r.SingleComment, r.MultiCommentStart, r.MultiCommentEnd, r.PrintMarker)
	}
	syntaxes := make([]string, 0, len(t.strippers))
	for s := range t.strippers {
		syntaxes = append(syntaxes, s)
	}
	sort.Strings(syntaxes)
	d.WriteString(strings.Join(syntaxes, "\x00"))
	return d.Sum64()
}

// bump when stripping or normalisation semantics change
const rulesVersion = "conclude/3"

var defaultRules = []LanguageRule{
	{Syntax: "Python", SingleComment: "#", MultiCommentStart: `"""`, MultiCommentEnd: `"""`, PrintMarker: "print("},
	{Syntax: "Java", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "System.out.print("},
	{Syntax: "C++", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "cout << "},
	{Syntax: "Go", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "fmt.Print("},
	{Syntax: "Lua", SingleComment: "--", MultiCommentStart: "--[[", MultiCommentEnd: "]]", PrintMarker: "print("},
	{Syntax: "C", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "printf("},
	{Syntax: "XML", MultiCommentStart: "<!--", MultiCommentEnd: "-->"},
	{Syntax: "JavaScript", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "console.log("},
	{Syntax: "HTML", MultiCommentStart: "<!--", MultiCommentEnd: "-->"},
	{Syntax: "CSS", MultiCommentStart: "/*", MultiCommentEnd: "*/"},
	{Syntax: "PHP", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "echo "},
	{Syntax: "Perl", SingleComment: "#", MultiCommentStart: "=pod", MultiCommentEnd: "=cut", PrintMarker: "print "},
	{Syntax: "JSON"},

	{Syntax: "TypeScript", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "console.log("},
	{Syntax: "TSX", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "console.log("},
	{Syntax: "Rust", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "println!("},
	{Syntax: "Ruby", SingleComment: "#", MultiCommentStart: "=begin", MultiCommentEnd: "=end", PrintMarker: "puts("},
	{Syntax: "Shell", SingleComment: "#"},
	{Syntax: "SQL", SingleComment: "--", MultiCommentStart: "/*", MultiCommentEnd: "*/"},
	{Syntax: "YAML", SingleComment: "#"},
	{Syntax: "C#", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "Console.WriteLine("},
	{Syntax: "Kotlin", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "println("},
	{Syntax: "Swift", SingleComment: "//", MultiCommentStart: "/*", MultiCommentEnd: "*/", PrintMarker: "print("},
}

// DefaultRules is the built in table, including the Equinox lexer stripper.
var DefaultRules = mustDefaultTable()

func mustDefaultTable() *RuleTable {
	t, err := NewRuleTable(defaultRules...)
	if err != nil {
		panic(fmt.Sprintf("bug: default rule table: %v", err))
	}
	t.strippers[SyntaxEquinox] = equinoxStripper{}
	return t
}
