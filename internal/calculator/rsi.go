package calculator

import (
	"github.com/markcheno/go-talib"

	"StockAnalyzer/internal/model"
)

// RSI computes the Wilder-smoothed relative strength index over period.
// The first period entries are missing; defined values lie in [0, 100].
func RSI(closes []float64, period int) model.Column {
	if period < 2 || len(closes) < period+1 {
		return model.NewColumn(len(closes))
	}
	col := mask(talib.Rsi(closes, period), period)
	for i, v := range col {
		switch {
		case v < 0:
			col[i] = 0
		case v > 100:
			col[i] = 100
		}
	}
	return col
}
