package model

import (
	"strings"
	"time"
)

// Bar is one OHLCV observation for a symbol.
type Bar struct {
	Symbol   string    `json:"symbol"`
	Time     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   float64   `json:"volume"`
}

// Series holds one symbol's bars in ascending time order with unique timestamps.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// ResampledSeries is a Series re-keyed to a coarser interval grid.
type ResampledSeries struct {
	Series
	Interval string `json:"interval"`
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Empty reports whether the series has no bars.
func (s Series) Empty() bool { return len(s.Bars) == 0 }

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Times extracts the timestamp index.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Time
	}
	return out
}

// NormalizeSymbol trims whitespace and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// RawTable is a fetched table before normalization: provider column names
// keyed to columns aligned with Index.
type RawTable struct {
	IndexName string // "Date" for daily data, "Datetime" for intraday
	Index     []time.Time
	Columns   map[string][]float64
}

// Rows returns the length of the index.
func (t *RawTable) Rows() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}
