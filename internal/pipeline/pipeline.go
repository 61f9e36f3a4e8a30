// Package pipeline assembles everything a display needs for one symbol:
// the stored series, windowed and optionally resampled, its indicators and
// the headline metrics. Each call is independent; nothing is cached.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/logger"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/resample"
	"StockAnalyzer/internal/series"
)

// Request carries the per-view choices.
type Request struct {
	Symbol     string
	Timeframe  string // 1D, 5D, 1W, All; empty means All
	Interval   string // empty keeps the stored granularity
	Indicators calculator.Spec
	Now        time.Time // zero means time.Now
}

// View is the assembled result of a Request.
type View struct {
	Symbol     string                `json:"symbol"`
	Timeframe  string                `json:"timeframe"`
	Interval   string                `json:"interval,omitempty"`
	Series     model.Series          `json:"series"`
	Indicators model.IndicatorSet    `json:"indicators"`
	Quote      model.Quote           `json:"quote"`
	Intraday   model.IntradayMetrics `json:"intraday"`
	Empty      bool                  `json:"empty"`
}

// Service builds views from a loader.
type Service struct {
	Loader   *series.Loader
	Location *time.Location
	Log      *zap.Logger
}

// NewService creates a Service. Dates are compared in loc.
func NewService(loader *series.Loader, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Loader: loader, Location: loc, Log: logger.OrNop(log)}
}

// View runs load, window, resample, indicators and metrics for req.
// Unknown timeframe or interval names are errors; missing data is not.
func (s *Service) View(ctx context.Context, req Request) (*View, error) {
	tf, err := series.ParseTimeframe(req.Timeframe)
	if err != nil {
		return nil, err
	}
	var iv resample.Interval
	if req.Interval != "" {
		if iv, err = resample.Parse(req.Interval); err != nil {
			return nil, err
		}
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(s.Location)

	raw := s.Loader.Load(ctx, req.Symbol)
	v := &View{Symbol: raw.Symbol, Timeframe: tf.Name, Interval: iv.Name}
	if raw.Empty() {
		v.Series = raw
		v.Empty = true
		return v, nil
	}

	v.Intraday = calculator.Intraday(raw, now)
	v.Quote, _ = calculator.LatestQuote(raw)

	shown := series.Window(raw, now, tf)
	if iv.Duration > 0 {
		shown = resample.Resample(shown, iv).Series
	}
	v.Series = shown
	if shown.Empty() {
		v.Empty = true
		return v, nil
	}

	v.Indicators, err = calculator.Compute(shown, req.Indicators)
	if err != nil {
		// only ErrInsufficientData, already handled by the Empty check
		logger.OrNop(s.Log).Debug("indicators skipped", zap.String("symbol", v.Symbol), zap.Error(err))
	}
	logger.OrNop(s.Log).Debug("view built",
		zap.String("symbol", v.Symbol),
		zap.String("timeframe", v.Timeframe),
		zap.String("interval", v.Interval),
		zap.Int("bars", shown.Len()),
		zap.Int("indicators", v.Indicators.Len()))
	return v, nil
}
