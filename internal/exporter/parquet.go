package exporter

import (
	"math"

	"github.com/parquet-go/parquet-go"

	"StockAnalyzer/internal/pipeline"
)

// Row is the Parquet record for one bar. Indicator values are a repeated
// group so any indicator selection fits one schema; a missing value is null.
type Row struct {
	Symbol     string      `parquet:"symbol"`
	Timestamp  int64       `parquet:"t"` // unix milliseconds
	Open       float64     `parquet:"o"`
	High       float64     `parquet:"h"`
	Low        float64     `parquet:"l"`
	Close      float64     `parquet:"c"`
	AdjClose   float64     `parquet:"adj_c"`
	Volume     float64     `parquet:"v"`
	Indicators []Indicator `parquet:"indicators"`
}

// Indicator is one named indicator value of a Row.
type Indicator struct {
	Name  string   `parquet:"name"`
	Value *float64 `parquet:"value,optional"`
}

// ParquetExporter writes a view as Parquet rows.
type ParquetExporter struct{}

func (ParquetExporter) Extension() string { return "parquet" }

func (ParquetExporter) Write(path string, v *pipeline.View) error {
	return parquet.WriteFile(path, Rows(v))
}

// Rows flattens a view into Parquet records.
func Rows(v *pipeline.View) []Row {
	names := v.Indicators.Names()
	rows := make([]Row, len(v.Series.Bars))
	for i, b := range v.Series.Bars {
		r := Row{
			Symbol:    b.Symbol,
			Timestamp: b.Time.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			AdjClose:  b.AdjClose,
			Volume:    b.Volume,
		}
		for _, name := range names {
			col, _ := v.Indicators.Get(name)
			ind := Indicator{Name: name}
			if val := col[i]; !math.IsNaN(val) {
				ind.Value = &val
			}
			r.Indicators = append(r.Indicators, ind)
		}
		rows[i] = r
	}
	return rows
}
