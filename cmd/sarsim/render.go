package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/copyleftdev/SARSIM/internal/montecarlo"
	"github.com/copyleftdev/SARSIM/internal/search"
)

// report is the output of a simulate or compare run.
type report struct {
	Scenario string              `json:"scenario"`
	Seed     uint64              `json:"seed"`
	Trials   int                 `json:"trials"`
	Results  []montecarlo.Result `json:"results"`
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// renderReport formats the per-strategy summaries and, optionally, every
// strategy's histogram.
func renderReport(rep report, withHistogram bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d trials, seed %d", rep.Scenario, rep.Trials, rep.Seed)))
	b.WriteString("\n")

	summary := newTable("strategy", "trials", "mean", "std dev", "median", "p90", "min", "max")
	for _, res := range rep.Results {
		s := res.Summary
		summary.Row(
			res.Strategy.String(),
			strconv.Itoa(s.Trials),
			formatFloat(s.Mean),
			formatFloat(s.StdDev),
			formatFloat(s.Median),
			formatFloat(s.P90),
			strconv.Itoa(s.Min),
			strconv.Itoa(s.Max),
		)
	}
	b.WriteString(summary.Render())

	if !withHistogram {
		return b.String()
	}
	for _, res := range rep.Results {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(res.Strategy.String()))
		b.WriteString("\n")
		b.WriteString(renderHistogram(res.Histogram))
	}
	return b.String()
}

// renderHistogram lists every round count with its trial count and share.
func renderHistogram(h montecarlo.Histogram) string {
	total := h.Total()
	t := newTable("rounds", "trials", "share")
	for _, rounds := range h.Rounds() {
		n := h[rounds]
		t.Row(
			strconv.Itoa(rounds),
			strconv.Itoa(n),
			formatFloat(100*float64(n)/float64(total))+"%",
		)
	}
	return t.Render()
}

// renderPlans lists the regions and the numbered search plans.
func renderPlans(name string, specs []search.RegionSpec) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")

	regions := newTable("region", "upper left", "height", "width", "prior")
	for i, spec := range specs {
		regions.Row(
			strconv.Itoa(i+1),
			fmt.Sprintf("(%d, %d)", spec.UpperLeft.X, spec.UpperLeft.Y),
			strconv.Itoa(spec.Height),
			strconv.Itoa(spec.Width),
			formatFloat(spec.Prior),
		)
	}
	b.WriteString(regions.Render())
	b.WriteString("\n")

	plans := newTable("plan", "regions")
	for i, p := range search.Plans(len(specs)) {
		plans.Row(strconv.Itoa(i+1), fmt.Sprintf("%d, %d", p[0], p[1]))
	}
	b.WriteString(plans.Render())
	return b.String()
}
