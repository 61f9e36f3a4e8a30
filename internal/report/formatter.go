// Package report renders views and feed batches as plain text for the terminal.
package report

import (
	"fmt"
	"math"
	"strings"

	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/pipeline"
)

// FormatView renders the headline metrics, the latest indicator values and
// the last tail bars of a view.
func FormatView(v *pipeline.View, tail int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s | timeframe %s", v.Symbol, v.Timeframe))
	if v.Interval != "" {
		b.WriteString(fmt.Sprintf(" | interval %s", v.Interval))
	}
	b.WriteString("\n\n")

	if v.Empty {
		b.WriteString("No data available.\n")
		return b.String()
	}

	// Headline
	q := v.Quote
	b.WriteString(fmt.Sprintf("Latest: %.2f (%+.2f, %+.2f%%)\n", q.Latest, q.Change, q.ChangePct))
	d := v.Intraday
	b.WriteString(fmt.Sprintf("Today: high %.2f | low %.2f | range %.2f | volume %s\n\n",
		d.High, d.Low, d.Range, humanVolume(d.Volume)))

	if names := v.Indicators.Names(); len(names) > 0 {
		b.WriteString("Indicators (last bar):\n")
		for _, name := range names {
			col, _ := v.Indicators.Get(name)
			b.WriteString(fmt.Sprintf("  %-12s %s\n", name, lastValue(col)))
		}
		b.WriteString("\n")
	}

	bars := v.Series.Bars
	if tail > 0 && len(bars) > tail {
		bars = bars[len(bars)-tail:]
	}
	b.WriteString(fmt.Sprintf("%-25s %10s %10s %10s %10s %12s\n", "date", "open", "high", "low", "close", "volume"))
	for _, bar := range bars {
		b.WriteString(fmt.Sprintf("%-25s %10.2f %10.2f %10.2f %10.2f %12s\n",
			bar.Time.Format("2006-01-02 15:04 MST"), bar.Open, bar.High, bar.Low, bar.Close, humanVolume(bar.Volume)))
	}
	b.WriteString(fmt.Sprintf("(%d of %d bars)\n", len(bars), v.Series.Len()))
	return b.String()
}

// FormatFeed renders a batch report, one line per symbol.
func FormatFeed(rep collector.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Feed %s | %dd @ %s\n", rep.RunID, rep.Window.Days, rep.Window.Interval))
	for _, r := range rep.Results {
		if r.OK() {
			b.WriteString(fmt.Sprintf("  ok    %-8s %d rows\n", r.Symbol, r.Rows))
		} else {
			b.WriteString(fmt.Sprintf("  FAIL  %-8s [%s] %v\n", r.Symbol, r.Stage, r.Err))
		}
	}
	b.WriteString(fmt.Sprintf("%d/%d symbols stored, %d rows\n", rep.Succeeded(), len(rep.Results), rep.Rows()))
	return b.String()
}

func lastValue(col []float64) string {
	if len(col) == 0 || math.IsNaN(col[len(col)-1]) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", col[len(col)-1])
}

func humanVolume(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
