package stats

import (
	"fmt"
	"image/color"
	"log"

	"github.com/aaakoako/reduce-gpt-tokens/corpus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// IntTicker labels ticks as whole numbers rather than in exponent form.
type IntTicker struct{}

func (it *IntTicker) Ticks(min float64, max float64) []plot.Tick {
	def := plot.DefaultTicks{}
	ticks := def.Ticks(min, max)
	for i, t := range ticks {
		if t.Label != "" {
			t.Label = fmt.Sprintf("%d", uint64(t.Value))
		}
		ticks[i] = t
	}
	return ticks
}

// Image saves a bar chart of original against cleaned size per syntax. The
// format follows the extension of outfile (png, jpg, svg, pdf).
func Image(rows []corpus.StatsRow, outfile string) error {
	if len(rows) == 0 {
		return fmt.Errorf("no stats to plot")
	}

	p := plot.New()
	p.Title.Text = "Source size before and after cleaning"
	p.Legend.Top = true
	p.Y.Label.Text = "Size\n(bytes)"
	p.Y.Tick.Marker = &IntTicker{}
	p.Add(plotter.NewGrid())

	original := make(plotter.Values, len(rows))
	cleaned := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		original[i] = float64(r.OriginalBytes)
		cleaned[i] = float64(r.CleanedBytes)
		names[i] = r.Syntax
	}

	width := vg.Points(12)

	origBars, err := plotter.NewBarChart(original, width)
	if err != nil {
		return err
	}
	origBars.Color = color.RGBA{R: 255, A: 255}
	origBars.LineStyle.Width = 0
	origBars.Offset = -width / 2

	cleanBars, err := plotter.NewBarChart(cleaned, width)
	if err != nil {
		return err
	}
	cleanBars.Color = color.RGBA{B: 255, A: 255}
	cleanBars.LineStyle.Width = 0
	cleanBars.Offset = width / 2

	p.Add(origBars, cleanBars)
	p.Legend.Add("original", origBars)
	p.Legend.Add("cleaned", cleanBars)
	p.NominalX(names...)
	p.Y.Min = 0

	chartWidth := vg.Length(len(rows)) * 1.5 * vg.Centimeter
	if chartWidth < 15*vg.Centimeter {
		chartWidth = 15 * vg.Centimeter
	}
	if err := p.Save(chartWidth, 15*vg.Centimeter, outfile); err != nil {
		return err
	}
	log.Printf("saved output to '%s'\n", outfile)
	return nil
}
