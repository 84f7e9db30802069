package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aaakoako/reduce-gpt-tokens/corpus"
	"github.com/olekukonko/tablewriter"
)

// Table renders rows plus a totals line.
func Table(w io.Writer, rows []corpus.StatsRow) error {
	tw := tablewriter.NewWriter(w)
	tw.Header("syntax", "files", "original bytes", "cleaned bytes", "reduction")

	total := corpus.StatsRow{Syntax: "total"}
	for _, r := range rows {
		if err := tw.Append(tableRow(r)); err != nil {
			return err
		}
		total.Files += r.Files
		total.OriginalBytes += r.OriginalBytes
		total.CleanedBytes += r.CleanedBytes
	}
	if len(rows) > 1 {
		if err := tw.Append(tableRow(total)); err != nil {
			return err
		}
	}
	return tw.Render()
}

func tableRow(r corpus.StatsRow) []string {
	return []string{
		r.Syntax,
		strconv.Itoa(r.Files),
		strconv.Itoa(r.OriginalBytes),
		strconv.Itoa(r.CleanedBytes),
		fmt.Sprintf("%.1f%%", 100*r.Reduction()),
	}
}
