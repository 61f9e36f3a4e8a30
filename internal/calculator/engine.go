// Package calculator computes indicator columns and session metrics over a series.
package calculator

import (
	"errors"
	"fmt"

	"StockAnalyzer/internal/model"
)

// ErrInsufficientData is returned when an indicator set is requested for an empty series.
var ErrInsufficientData = errors.New("insufficient data: empty series")

// Spec selects which indicators Compute produces. Zero periods disable an indicator.
type Spec struct {
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	SMAWindows []int
	EMAWindows []int
	OBV        bool
}

// DefaultSpec is RSI(14), MACD(12,26,9) and SMA 50/200.
func DefaultSpec() Spec {
	return Spec{
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		SMAWindows: []int{50, 200},
	}
}

// Compute builds the indicator set described by spec, aligned to s.
// Columns may be entirely missing when s is shorter than a lookback.
func Compute(s model.Series, spec Spec) (model.IndicatorSet, error) {
	var set model.IndicatorSet
	if s.Empty() {
		return set, ErrInsufficientData
	}
	closes := s.Closes()

	for _, w := range spec.SMAWindows {
		if w > 0 {
			set.Set(fmt.Sprintf("sma_%d", w), SMA(closes, w))
		}
	}
	for _, w := range spec.EMAWindows {
		if w > 0 {
			set.Set(fmt.Sprintf("ema_%d", w), EMA(closes, w))
		}
	}
	if spec.RSIPeriod > 0 {
		set.Set(fmt.Sprintf("rsi_%d", spec.RSIPeriod), RSI(closes, spec.RSIPeriod))
	}
	if spec.MACDFast > 0 && spec.MACDSlow > 0 && spec.MACDSignal > 0 {
		m := MACD(closes, spec.MACDFast, spec.MACDSlow, spec.MACDSignal)
		set.Set("macd", m.Line)
		set.Set("macd_signal", m.Signal)
		set.Set("macd_hist", m.Hist)
	}
	if spec.OBV {
		set.Set("obv", OBV(closes, s.Volumes()))
	}
	return set, nil
}
