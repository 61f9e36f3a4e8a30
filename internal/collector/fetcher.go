package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"StockAnalyzer/internal/model"
)

// ErrNoData marks an upstream response with no bars: an unknown symbol or a
// window in which the market was closed throughout.
var ErrNoData = errors.New("no data returned")

// Window describes what to fetch: the last Days days of bars at Interval.
type Window struct {
	Days     int
	Interval string // 1m, 2m, 5m, 15m, 30m, 60m, 1h, 1d, 1wk
}

// Fetcher pulls a raw bar table for one symbol from an upstream source.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, w Window) (*model.RawTable, error)
	Name() string
}

// FetchError reports an unreachable source or an unknown symbol.
type FetchError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Intraday reports whether the interval is below one day.
func (w Window) Intraday() bool {
	return strings.HasSuffix(w.Interval, "m") || strings.HasSuffix(w.Interval, "h")
}

// Provider lookback caps, in days.
const (
	MaxMinuteDays   = 7
	MaxIntradayDays = 60
)

// Clamp limits the window to what providers serve for its interval and
// reports whether it changed.
func (w Window) Clamp() (Window, bool) {
	if w.Days <= 0 {
		w.Days = 1
		return w, true
	}
	limit := 0
	switch {
	case w.Interval == "1m":
		limit = MaxMinuteDays
	case w.Intraday():
		limit = MaxIntradayDays
	}
	if limit > 0 && w.Days > limit {
		w.Days = limit
		return w, true
	}
	return w, false
}
