package exporter

import (
	"encoding/csv"
	"os"

	"StockAnalyzer/internal/pipeline"
)

// CSVExporter writes a header of date, OHLCV, adj_close and every indicator
// column. Missing indicator values are empty cells.
type CSVExporter struct{}

func (CSVExporter) Extension() string { return "csv" }

func (CSVExporter) Write(path string, v *pipeline.View) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	names := v.Indicators.Names()
	header := append([]string{"date", "open", "high", "low", "close", "adj_close", "volume"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, b := range v.Series.Bars {
		rec := []string{
			timeStr(b.Time),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			floatStr(b.AdjClose),
			floatStr(b.Volume),
		}
		for _, name := range names {
			col, _ := v.Indicators.Get(name)
			rec = append(rec, floatStr(col[i]))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
