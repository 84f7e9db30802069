package corpus

import (
	"regexp"
	"strings"
)

// regexStripper applies a LanguageRule. The patterns are applied in a fixed
// order: line comments, block comments, start-only comments, then print
// calls, so a commented out print call never confuses a later real one.
// When the line marker is a prefix of the block start, as with Lua's "--"
// and "--[[", block comments go first or the line pass would eat them.
type regexStripper struct {
	single     *regexp.Regexp
	block      *regexp.Regexp
	doc        *regexp.Regexp
	print      *regexp.Regexp
	blockFirst bool
}

func compileRule(r LanguageRule) *regexStripper {
	s := &regexStripper{}
	if r.SingleComment != "" {
		s.single = regexp.MustCompile(`(?m)` + regexp.QuoteMeta(r.SingleComment) + `.*$`)
	}
	switch {
	case r.MultiCommentStart != "" && r.MultiCommentEnd != "":
		s.block = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(r.MultiCommentStart) + `.*?` + regexp.QuoteMeta(r.MultiCommentEnd))
		s.blockFirst = r.SingleComment != "" && strings.HasPrefix(r.MultiCommentStart, r.SingleComment)
	case r.MultiCommentStart != "":
		s.doc = regexp.MustCompile(`(?m)` + regexp.QuoteMeta(r.MultiCommentStart) + `.*$`)
	}
	if r.PrintMarker != "" {
		// Lazy up to the first ')' and the run of ')' right after it. This is
		// not a balanced match: print(f(a), b) leaves ", b)" behind.
		s.print = regexp.MustCompile(regexp.QuoteMeta(r.PrintMarker) + `.*?\)+`)
	}
	return s
}

func (s *regexStripper) Strip(text string) string {
	order := []*regexp.Regexp{s.single, s.block, s.doc, s.print}
	if s.blockFirst {
		order[0], order[1] = s.block, s.single
	}
	for _, re := range order {
		if re != nil {
			text = re.ReplaceAllLiteralString(text, "")
		}
	}
	return text
}

// Strip removes the comments and print calls described by rule from text.
func Strip(text string, rule LanguageRule) string {
	return compileRule(rule).Strip(text)
}
