// Package series turns stored rows into clean ascending time series.
package series

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"StockAnalyzer/internal/logger"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/store"
)

// Loader reads a symbol's rows from a store and cleans them.
type Loader struct {
	Store    store.Querier
	Location *time.Location // timestamps are converted here; nil keeps stored zone
	Log      *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(q store.Querier, loc *time.Location, log *zap.Logger) *Loader {
	return &Loader{Store: q, Location: loc, Log: logger.OrNop(log)}
}

// Load returns the symbol's series. A failed query is logged and yields an empty
// series, the same as a symbol with no rows.
func (l *Loader) Load(ctx context.Context, symbol string) model.Series {
	s, err := l.LoadStrict(ctx, symbol)
	if err != nil {
		logger.OrNop(l.Log).Warn("load failed, treating as no data",
			zap.String("symbol", s.Symbol), zap.Error(err))
		return model.Series{Symbol: s.Symbol}
	}
	return s
}

// LoadStrict is Load without collapsing query failures.
func (l *Loader) LoadStrict(ctx context.Context, symbol string) (model.Series, error) {
	sym := model.NormalizeSymbol(symbol)
	rows, err := l.Store.Query(ctx, sym)
	if err != nil {
		return model.Series{Symbol: sym}, err
	}
	if l.Location != nil {
		for i := range rows {
			rows[i].Time = rows[i].Time.In(l.Location)
		}
	}
	return model.Series{Symbol: sym, Bars: Clean(rows)}, nil
}

// Clean sorts bars ascending by time and drops repeated timestamps, keeping the
// first occurrence in input order.
func Clean(bars []model.Bar) []model.Bar {
	if len(bars) == 0 {
		return nil
	}
	sorted := make([]model.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:1]
	for _, b := range sorted[1:] {
		if b.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out
}
