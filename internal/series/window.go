package series

import (
	"fmt"
	"strings"
	"time"

	"StockAnalyzer/internal/model"
)

// Timeframe is a display lookback relative to now.
type Timeframe struct {
	Name     string
	Lookback time.Duration // 0 means everything
}

var (
	OneDay   = Timeframe{Name: "1D", Lookback: 24 * time.Hour}
	FiveDays = Timeframe{Name: "5D", Lookback: 5 * 24 * time.Hour}
	OneWeek  = Timeframe{Name: "1W", Lookback: 7 * 24 * time.Hour}
	All      = Timeframe{Name: "All"}
)

// Timeframes lists the supported timeframes in display order.
var Timeframes = []Timeframe{OneDay, FiveDays, OneWeek, All}

// ParseTimeframe looks up a timeframe by name, case-insensitively. Empty means All.
func ParseTimeframe(name string) (Timeframe, error) {
	if strings.TrimSpace(name) == "" {
		return All, nil
	}
	for _, tf := range Timeframes {
		if strings.EqualFold(tf.Name, strings.TrimSpace(name)) {
			return tf, nil
		}
	}
	return Timeframe{}, fmt.Errorf("unsupported timeframe %q (1D, 5D, 1W, All)", name)
}

// Window keeps the bars at or after now minus the timeframe's lookback.
func Window(s model.Series, now time.Time, tf Timeframe) model.Series {
	if tf.Lookback <= 0 || len(s.Bars) == 0 {
		return s
	}
	cutoff := now.Add(-tf.Lookback)
	i := 0
	for i < len(s.Bars) && s.Bars[i].Time.Before(cutoff) {
		i++
	}
	return model.Series{Symbol: s.Symbol, Bars: s.Bars[i:]}
}
