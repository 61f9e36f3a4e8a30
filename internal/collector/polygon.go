package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	polygonrest "github.com/polygon-io/client-go/rest"
	rmodels "github.com/polygon-io/client-go/rest/models"

	"StockAnalyzer/internal/model"
)

// PolygonFetcher implements Fetcher using Polygon.io aggregate bars.
type PolygonFetcher struct {
	rest *polygonrest.Client
	loc  *time.Location
	now  func() time.Time
}

// NewPolygonFetcher creates a Polygon fetcher. Daily bars are dated in the
// exchange time zone.
func NewPolygonFetcher(apiKey string, timeout time.Duration) *PolygonFetcher {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &PolygonFetcher{
		rest: polygonrest.NewWithClient(apiKey, &http.Client{Timeout: timeout}),
		loc:  loc,
		now:  time.Now,
	}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

// aggSpan maps an interval name to polygon's multiplier and timespan.
func aggSpan(interval string) (int, rmodels.Timespan, error) {
	switch interval {
	case "1m":
		return 1, rmodels.Minute, nil
	case "2m":
		return 2, rmodels.Minute, nil
	case "5m":
		return 5, rmodels.Minute, nil
	case "15m":
		return 15, rmodels.Minute, nil
	case "30m":
		return 30, rmodels.Minute, nil
	case "60m", "1h":
		return 1, rmodels.Hour, nil
	case "1d":
		return 1, rmodels.Day, nil
	case "1wk":
		return 1, rmodels.Week, nil
	}
	return 0, "", fmt.Errorf("unsupported interval %q", interval)
}

func (f *PolygonFetcher) params(symbol string, w Window) (*rmodels.ListAggsParams, error) {
	mult, span, err := aggSpan(w.Interval)
	if err != nil {
		return nil, err
	}
	to := f.now()
	from := to.AddDate(0, 0, -w.Days)
	params := &rmodels.ListAggsParams{
		Ticker:     symbol,
		Multiplier: mult,
		Timespan:   span,
		From:       rmodels.Millis(from),
		To:         rmodels.Millis(to),
	}
	adjusted := true
	asc := rmodels.Asc
	limit := 50000
	params.Adjusted = &adjusted
	params.Order = &asc
	params.Limit = &limit
	return params, nil
}

// Fetch lists aggregates for symbol over the window. Polygon serves adjusted
// prices only, so the table carries no separate adjusted close.
func (f *PolygonFetcher) Fetch(ctx context.Context, symbol string, w Window) (*model.RawTable, error) {
	symbol = model.NormalizeSymbol(symbol)
	params, err := f.params(symbol, w)
	if err != nil {
		return nil, &FetchError{Provider: f.Name(), Symbol: symbol, Err: err}
	}

	var aggs []rmodels.Agg
	iter := f.rest.ListAggs(ctx, params)
	for iter.Next() {
		aggs = append(aggs, iter.Item())
	}
	if err := iter.Err(); err != nil {
		return nil, &FetchError{Provider: f.Name(), Symbol: symbol, Err: errors.Wrap(err, "list aggs")}
	}
	if len(aggs) == 0 {
		return nil, &FetchError{Provider: f.Name(), Symbol: symbol, Err: ErrNoData}
	}
	return aggsTable(aggs, !w.Intraday(), f.loc), nil
}

// aggsTable lays aggregates out under polygon's short column names.
func aggsTable(aggs []rmodels.Agg, daily bool, loc *time.Location) *model.RawTable {
	n := len(aggs)
	table := &model.RawTable{
		IndexName: "Datetime",
		Index:     make([]time.Time, n),
		Columns: map[string][]float64{
			"o":  make([]float64, n),
			"h":  make([]float64, n),
			"l":  make([]float64, n),
			"c":  make([]float64, n),
			"v":  make([]float64, n),
			"vw": make([]float64, n),
		},
	}
	if daily {
		table.IndexName = "Date"
	}
	for i, a := range aggs {
		t := time.Time(a.Timestamp).In(loc)
		if daily {
			y, m, d := t.Date()
			t = time.Date(y, m, d, 0, 0, 0, 0, loc)
		}
		table.Index[i] = t
		table.Columns["o"][i] = a.Open
		table.Columns["h"][i] = a.High
		table.Columns["l"][i] = a.Low
		table.Columns["c"][i] = a.Close
		table.Columns["v"][i] = a.Volume
		table.Columns["vw"][i] = a.VWAP
	}
	return table
}
