package calculator

import (
	"math"

	"StockAnalyzer/internal/model"
)

// MACDResult holds the trend oscillator columns.
type MACDResult struct {
	Line   model.Column // fast EMA minus slow EMA
	Signal model.Column // EMA of Line over the signal period
	Hist   model.Column // Line minus Signal
}

// MACD computes the moving average convergence/divergence oscillator.
// Line is missing for the first slow-1 entries; Signal and Hist for the first
// slow+signal-2 entries.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	res := MACDResult{Line: model.NewColumn(n), Signal: model.NewColumn(n), Hist: model.NewColumn(n)}
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return res
	}
	if fast > slow {
		fast, slow = slow, fast
	}
	if n < slow {
		return res
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	start := slow - 1
	for i := start; i < n; i++ {
		res.Line[i] = fastEMA[i] - slowEMA[i]
	}

	sig := EMA(res.Line[start:], signal)
	for i, v := range sig {
		if math.IsNaN(v) {
			continue
		}
		res.Signal[start+i] = v
		res.Hist[start+i] = res.Line[start+i] - v
	}
	return res
}
