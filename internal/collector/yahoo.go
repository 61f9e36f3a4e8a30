package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"StockAnalyzer/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooFetcher creates a Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string, timeout time.Duration) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch downloads the chart for symbol over the window. Daily and coarser
// data is indexed by exchange-local date, intraday data by timestamp.
func (f *YahooFetcher) Fetch(ctx context.Context, symbol string, w Window) (*model.RawTable, error) {
	table, err := f.fetchChart(ctx, model.NormalizeSymbol(symbol), w)
	if err != nil {
		return nil, &FetchError{Provider: f.Name(), Symbol: symbol, Err: err}
	}
	return table, nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, w Window) (*model.RawTable, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%dd&includePrePost=false",
		f.BaseURL, url.PathEscape(symbol), url.QueryEscape(w.Interval), w.Days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "yahoo request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "yahoo read body")
	}

	var chart yahooChart
	if jerr := json.Unmarshal(body, &chart); jerr == nil && chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, errors.Wrap(ErrNoData, chart.Chart.Error.Description)
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	} else if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	} else if jerr != nil {
		return nil, errors.Wrap(jerr, "yahoo decode")
	}

	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)

	loc := time.UTC
	if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil && result.Meta.ExchangeTimezoneName != "" {
		loc = l
	}

	table := &model.RawTable{
		IndexName: "Datetime",
		Index:     make([]time.Time, n),
		Columns: map[string][]float64{
			"Open":   column(quote.Open, n),
			"High":   column(quote.High, n),
			"Low":    column(quote.Low, n),
			"Close":  column(quote.Close, n),
			"Volume": column(quote.Volume, n),
		},
	}
	if len(result.Indicators.AdjClose) > 0 {
		table.Columns["Adj Close"] = column(result.Indicators.AdjClose[0].AdjClose, n)
	}

	daily := !w.Intraday()
	if daily {
		table.IndexName = "Date"
	}
	for i, ts := range result.Timestamp {
		t := time.Unix(ts, 0).In(loc)
		if daily {
			y, m, d := t.Date()
			t = time.Date(y, m, d, 0, 0, 0, 0, loc)
		}
		table.Index[i] = t
	}
	return table, nil
}

// column converts a nullable JSON array to n floats, nulls and gaps becoming NaN.
func column(vals []*float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(vals) && vals[i] != nil {
			out[i] = *vals[i]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
