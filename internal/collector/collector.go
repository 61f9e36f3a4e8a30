package collector

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"StockAnalyzer/internal/logger"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/normalize"
	"StockAnalyzer/internal/store"
)

// Stage names the step at which a symbol failed.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageNormalize Stage = "normalize"
	StageStore     Stage = "store"
)

// Result is the outcome for one symbol of a batch.
type Result struct {
	Symbol string
	Rows   int
	Stage  Stage // empty on success
	Err    error
}

// OK reports whether the symbol was persisted.
func (r Result) OK() bool { return r.Err == nil }

// Report summarizes a feed batch.
type Report struct {
	RunID   string
	Window  Window
	Results []Result
}

// Succeeded counts the symbols persisted.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the results that did not persist.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// AllFailed is true when the batch had symbols and none persisted.
func (r Report) AllFailed() bool {
	return len(r.Results) > 0 && r.Succeeded() == 0
}

// Rows totals the rows written across the batch.
func (r Report) Rows() int {
	n := 0
	for _, res := range r.Results {
		n += res.Rows
	}
	return n
}

// Collector runs fetch, normalize and append for a batch of symbols.
type Collector struct {
	Fetcher Fetcher
	Store   store.Appender
	Log     *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, st store.Appender, log *zap.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Store: st, Log: logger.OrNop(log)}
}

// Feed processes symbols in order. A failing symbol is recorded in the
// report and the batch moves on; nothing a single symbol does aborts it.
func (c *Collector) Feed(ctx context.Context, symbols []string, w Window) Report {
	rep := Report{RunID: uuid.NewString()}
	log := logger.OrNop(c.Log).With(zap.String("run_id", rep.RunID), zap.String("provider", c.Fetcher.Name()))

	if clamped, changed := w.Clamp(); changed {
		log.Warn("lookback clamped",
			zap.String("interval", w.Interval), zap.Int("requested_days", w.Days), zap.Int("days", clamped.Days))
		w = clamped
	}
	rep.Window = w

	syms := uniqueSymbols(symbols)
	log.Info("feed started", zap.Strings("symbols", syms), zap.Int("days", w.Days), zap.String("interval", w.Interval))

	for _, sym := range syms {
		if err := ctx.Err(); err != nil {
			rep.Results = append(rep.Results, Result{Symbol: sym, Stage: StageFetch, Err: err})
			continue
		}
		res := c.feedOne(ctx, sym, w)
		symLog := log.With(zap.String("symbol", sym))
		if res.OK() {
			symLog.Info("symbol stored", zap.Int("rows", res.Rows))
		} else {
			symLog.Error("symbol failed", zap.String("stage", string(res.Stage)), zap.Error(res.Err))
		}
		rep.Results = append(rep.Results, res)
	}

	log.Info("feed finished",
		zap.Int("succeeded", rep.Succeeded()), zap.Int("failed", len(rep.Failed())), zap.Int("rows", rep.Rows()))
	return rep
}

func (c *Collector) feedOne(ctx context.Context, sym string, w Window) Result {
	raw, err := c.Fetcher.Fetch(ctx, sym, w)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{Provider: c.Fetcher.Name(), Symbol: sym, Err: err}
		}
		return Result{Symbol: sym, Stage: StageFetch, Err: err}
	}

	bars, err := normalize.Normalize(sym, raw)
	if err != nil {
		return Result{Symbol: sym, Stage: StageNormalize, Err: err}
	}

	n, err := c.Store.Append(ctx, bars)
	if err != nil {
		return Result{Symbol: sym, Stage: StageStore, Err: err}
	}
	return Result{Symbol: sym, Rows: n}
}

// uniqueSymbols normalizes symbols, drops blanks and keeps first occurrences.
func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = model.NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ParseSymbols splits a comma or whitespace separated symbol list.
func ParseSymbols(args ...string) []string {
	var out []string
	for _, a := range args {
		out = append(out, strings.FieldsFunc(a, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})...)
	}
	return out
}
