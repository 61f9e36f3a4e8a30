package model

import (
	"encoding/json"
	"math"
	"time"
)

// Prices and volumes may be missing (NaN) after a partial provider row. JSON
// has no NaN, so missing numbers are written as null and read back as NaN.

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

type barJSON struct {
	Symbol   string    `json:"symbol"`
	Time     time.Time `json:"date"`
	Open     *float64  `json:"open"`
	High     *float64  `json:"high"`
	Low      *float64  `json:"low"`
	Close    *float64  `json:"close"`
	AdjClose *float64  `json:"adj_close"`
	Volume   *float64  `json:"volume"`
}

// MarshalJSON encodes missing values as null.
func (b Bar) MarshalJSON() ([]byte, error) {
	return json.Marshal(barJSON{
		Symbol:   b.Symbol,
		Time:     b.Time,
		Open:     nullable(b.Open),
		High:     nullable(b.High),
		Low:      nullable(b.Low),
		Close:    nullable(b.Close),
		AdjClose: nullable(b.AdjClose),
		Volume:   nullable(b.Volume),
	})
}

// UnmarshalJSON decodes null values as NaN.
func (b *Bar) UnmarshalJSON(data []byte) error {
	var raw barJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Bar{
		Symbol:   raw.Symbol,
		Time:     raw.Time,
		Open:     orNaN(raw.Open),
		High:     orNaN(raw.High),
		Low:      orNaN(raw.Low),
		Close:    orNaN(raw.Close),
		AdjClose: orNaN(raw.AdjClose),
		Volume:   orNaN(raw.Volume),
	}
	return nil
}

// MarshalJSON encodes missing values as null.
func (m IntradayMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		High   *float64 `json:"high"`
		Low    *float64 `json:"low"`
		Range  *float64 `json:"range"`
		Volume *float64 `json:"volume"`
	}{nullable(m.High), nullable(m.Low), nullable(m.Range), nullable(m.Volume)})
}

// MarshalJSON encodes missing values as null.
func (q Quote) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Latest    *float64 `json:"latest"`
		PrevClose *float64 `json:"prev_close"`
		Change    *float64 `json:"change"`
		ChangePct *float64 `json:"change_pct"`
	}{nullable(q.Latest), nullable(q.PrevClose), nullable(q.Change), nullable(q.ChangePct)})
}
