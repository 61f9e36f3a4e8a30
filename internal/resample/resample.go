package resample

import (
	"math"

	"StockAnalyzer/internal/model"
)

// Resample aggregates s into iv buckets: open=first, high=max, low=min,
// close=last, volume=sum. Adjusted close carries the bucket's last value.
// Missing values are skipped: open is the first defined value, high and low
// range over defined values only. Buckets with no source bars are omitted.
// s must be clean (ascending, unique).
func Resample(s model.Series, iv Interval) model.ResampledSeries {
	out := model.ResampledSeries{
		Series:   model.Series{Symbol: s.Symbol},
		Interval: iv.Name,
	}
	if len(s.Bars) == 0 {
		return out
	}

	var cur model.Bar
	var curKey int64
	started := false

	for _, b := range s.Bars {
		start := iv.BucketStart(b.Time)
		key := start.UnixNano()

		if !started || key != curKey {
			if started {
				out.Bars = append(out.Bars, cur)
			}
			cur = model.Bar{
				Symbol: b.Symbol, Time: start,
				Open: b.Open, High: b.High, Low: b.Low, Close: b.Close,
				AdjClose: b.AdjClose, Volume: b.Volume,
			}
			curKey = key
			started = true
			continue
		}

		if math.IsNaN(cur.Open) {
			cur.Open = b.Open
		}
		if math.IsNaN(cur.High) || b.High > cur.High {
			cur.High = b.High
		}
		if math.IsNaN(cur.Low) || b.Low < cur.Low {
			cur.Low = b.Low
		}
		if !math.IsNaN(b.Close) {
			cur.Close = b.Close
		}
		if !math.IsNaN(b.AdjClose) {
			cur.AdjClose = b.AdjClose
		}
		switch {
		case math.IsNaN(b.Volume):
		case math.IsNaN(cur.Volume):
			cur.Volume = b.Volume
		default:
			cur.Volume += b.Volume
		}
	}
	out.Bars = append(out.Bars, cur)
	return out
}
