package calculator

import (
	"github.com/markcheno/go-talib"

	"StockAnalyzer/internal/model"
)

// OBV computes on-balance volume. Every entry is defined.
func OBV(closes, volumes []float64) model.Column {
	if len(closes) == 0 || len(closes) != len(volumes) {
		return model.NewColumn(len(closes))
	}
	return model.Column(talib.Obv(closes, volumes))
}
