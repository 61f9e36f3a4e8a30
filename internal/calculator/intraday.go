package calculator

import (
	"math"
	"time"

	"StockAnalyzer/internal/model"
)

// Intraday aggregates the bars dated today, in today's location: total volume,
// highest high, lowest low and their range, skipping missing values. With no
// bars today every field is zero.
func Intraday(s model.Series, today time.Time) model.IntradayMetrics {
	loc := today.Location()
	ty, tm, td := today.Date()

	high := math.Inf(-1)
	low := math.Inf(1)
	var volume float64
	found := false
	for _, b := range s.Bars {
		y, m, d := b.Time.In(loc).Date()
		if y != ty || m != tm || d != td {
			continue
		}
		found = true
		if !math.IsNaN(b.Volume) {
			volume += b.Volume
		}
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	if !found {
		return model.IntradayMetrics{}
	}
	if math.IsInf(high, -1) || math.IsInf(low, 1) {
		// every high or low of the day is missing
		return model.IntradayMetrics{High: math.NaN(), Low: math.NaN(), Range: math.NaN(), Volume: volume}
	}
	return model.IntradayMetrics{High: high, Low: low, Range: high - low, Volume: volume}
}

// LatestQuote returns the last close and its change from the previous bar's close.
// With one bar the previous close is the latest close.
func LatestQuote(s model.Series) (model.Quote, bool) {
	n := len(s.Bars)
	if n == 0 {
		return model.Quote{}, false
	}
	q := model.Quote{Latest: s.Bars[n-1].Close, PrevClose: s.Bars[n-1].Close}
	if n > 1 {
		q.PrevClose = s.Bars[n-2].Close
	}
	q.Change = q.Latest - q.PrevClose
	if q.PrevClose != 0 {
		q.ChangePct = q.Change / q.PrevClose * 100
	}
	return q, true
}
