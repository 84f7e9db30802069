package main

import (
	"io"

	"github.com/aaakoako/reduce-gpt-tokens/corpus"
	"github.com/olekukonko/tablewriter"
)

func listLanguages(w io.Writer, rules *corpus.RuleTable) error {
	tw := tablewriter.NewWriter(w)
	tw.Header("syntax", "config key", "comment", "block start", "block end", "print")
	for _, r := range rules.Rules() {
		if err := tw.Append([]string{r.Syntax, r.ConfigKey(), r.SingleComment, r.MultiCommentStart, r.MultiCommentEnd, r.PrintMarker}); err != nil {
			return err
		}
	}
	if _, ok := rules.Stripper(corpus.SyntaxEquinox); ok {
		if err := tw.Append([]string{corpus.SyntaxEquinox, "", "(lexer)", "", "", ""}); err != nil {
			return err
		}
	}
	return tw.Render()
}
