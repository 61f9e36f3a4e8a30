package calculator

import (
	"math"

	"github.com/markcheno/go-talib"

	"StockAnalyzer/internal/model"
)

// SMA computes the simple moving average over window. The first window-1
// entries are missing; entry i is the mean of values[i-window+1..i].
func SMA(values []float64, window int) model.Column {
	if window <= 0 || len(values) < window {
		return model.NewColumn(len(values))
	}
	if window == 1 {
		return model.Column(append([]float64(nil), values...))
	}
	return mask(talib.Sma(values, window), window-1)
}

// EMA computes the exponential moving average over window, seeded with the
// simple average of the first window values. The first window-1 entries are missing.
func EMA(values []float64, window int) model.Column {
	if window <= 0 || len(values) < window {
		return model.NewColumn(len(values))
	}
	if window == 1 {
		return model.Column(append([]float64(nil), values...))
	}
	return mask(talib.Ema(values, window), window-1)
}

// mask marks the first lookback entries missing.
func mask(values []float64, lookback int) model.Column {
	col := model.Column(values)
	for i := 0; i < lookback && i < len(col); i++ {
		col[i] = math.NaN()
	}
	return col
}

// Last returns the last defined value of col.
func Last(col model.Column) (float64, bool) {
	for i := len(col) - 1; i >= 0; i-- {
		if !math.IsNaN(col[i]) {
			return col[i], true
		}
	}
	return 0, false
}
