// Package normalize maps provider-shaped bar tables onto the canonical Bar schema.
package normalize

import (
	"fmt"
	"math"
	"strings"

	"StockAnalyzer/internal/model"
)

// Error reports a table that cannot be mapped onto the canonical schema.
// Callers skip persistence for the symbol and continue the batch.
type Error struct {
	Symbol string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.Symbol, e.Reason)
}

// canonical column -> accepted provider spellings
var aliases = map[string][]string{
	"open":      {"Open", "open", "o"},
	"high":      {"High", "high", "h"},
	"low":       {"Low", "low", "l"},
	"close":     {"Close", "close", "c"},
	"adj_close": {"Adj Close", "adj_close", "adjclose", "AdjClose"},
	"volume":    {"Volume", "volume", "v"},
}

var required = []string{"open", "high", "low", "close"}

// Normalize converts raw into canonical bars tagged with the normalized symbol.
// Extra provider columns are dropped. A missing adjusted close falls back to close,
// a missing volume to zero. Rows whose prices are all missing are skipped.
func Normalize(symbol string, raw *model.RawTable) ([]model.Bar, error) {
	sym := model.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, &Error{Symbol: symbol, Reason: "empty symbol"}
	}
	if raw == nil || raw.Rows() == 0 {
		return nil, &Error{Symbol: sym, Reason: "no rows returned"}
	}
	switch raw.IndexName {
	case "", "Date", "Datetime", "date", "datetime":
	default:
		return nil, &Error{Symbol: sym, Reason: fmt.Sprintf("unexpected index %q", raw.IndexName)}
	}

	n := raw.Rows()
	cols := make(map[string][]float64, len(aliases))
	for canon, names := range aliases {
		col, ok := lookup(raw.Columns, names)
		if !ok {
			continue
		}
		if len(col) != n {
			return nil, &Error{Symbol: sym, Reason: fmt.Sprintf("column %s has %d rows, index has %d", canon, len(col), n)}
		}
		cols[canon] = col
	}

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Symbol: sym, Reason: "missing columns: " + strings.Join(missing, ", ")}
	}

	bars := make([]model.Bar, 0, n)
	for i, ts := range raw.Index {
		b := model.Bar{
			Symbol: sym,
			Time:   ts,
			Open:   cols["open"][i],
			High:   cols["high"][i],
			Low:    cols["low"][i],
			Close:  cols["close"][i],
		}
		if math.IsNaN(b.Open) && math.IsNaN(b.High) && math.IsNaN(b.Low) && math.IsNaN(b.Close) {
			continue
		}
		b.AdjClose = b.Close
		if adj, ok := cols["adj_close"]; ok && !math.IsNaN(adj[i]) {
			b.AdjClose = adj[i]
		}
		if vol, ok := cols["volume"]; ok && !math.IsNaN(vol[i]) {
			b.Volume = vol[i]
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, &Error{Symbol: sym, Reason: "all rows empty"}
	}
	return bars, nil
}

func lookup(columns map[string][]float64, names []string) ([]float64, bool) {
	for _, name := range names {
		if col, ok := columns[name]; ok {
			return col, true
		}
	}
	return nil, false
}
