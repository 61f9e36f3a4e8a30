package collector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/normalize"
	"StockAnalyzer/internal/store"
)

// failingAppender rejects appends for selected symbols and passes the rest through.
type failingAppender struct {
	store.Appender
	fail map[string]bool
}

func (f failingAppender) Append(ctx context.Context, bars []model.Bar) (int, error) {
	if len(bars) > 0 && f.fail[bars[0].Symbol] {
		return 0, &store.WriteError{Symbol: bars[0].Symbol, Rows: len(bars), Err: errors.New("disk full")}
	}
	return f.Appender.Append(ctx, bars)
}

func dailyTable(start time.Time, closes ...float64) *model.RawTable {
	t := &model.RawTable{IndexName: "Date", Columns: map[string][]float64{}}
	for i, c := range closes {
		t.Index = append(t.Index, start.AddDate(0, 0, i))
		t.Columns["Open"] = append(t.Columns["Open"], c-1)
		t.Columns["High"] = append(t.Columns["High"], c+1)
		t.Columns["Low"] = append(t.Columns["Low"], c-2)
		t.Columns["Close"] = append(t.Columns["Close"], c)
		t.Columns["Volume"] = append(t.Columns["Volume"], 1000)
	}
	return t
}

func TestWindow_Clamp(t *testing.T) {
	tests := []struct {
		in      Window
		want    int
		changed bool
	}{
		{Window{Days: 30, Interval: "1m"}, 7, true},
		{Window{Days: 7, Interval: "1m"}, 7, false},
		{Window{Days: 90, Interval: "5m"}, 60, true},
		{Window{Days: 90, Interval: "1h"}, 60, true},
		{Window{Days: 365, Interval: "1d"}, 365, false},
		{Window{Days: 0, Interval: "1d"}, 1, true},
	}
	for _, tt := range tests {
		got, changed := tt.in.Clamp()
		assert.Equal(t, tt.want, got.Days, "%+v", tt.in)
		assert.Equal(t, tt.changed, changed, "%+v", tt.in)
	}
}

func TestFeed_PartialFailure(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(store.Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "stocks.db"),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	noClose := dailyTable(start, 10, 11)
	delete(noClose.Columns, "Close")

	fetcher := &MockFetcher{
		Tables: map[string]*model.RawTable{
			"AAA": dailyTable(start, 10, 11, 12),
			"CCC": noClose,
			"DDD": dailyTable(start, 20, 21),
		},
		Errs: map[string]error{"BBB": ErrNoData},
	}
	c := NewCollector(fetcher, failingAppender{Appender: db, fail: map[string]bool{"DDD": true}}, nil)

	rep := c.Feed(ctx, []string{" aaa", "BBB", "", "CCC", "DDD", "AAA"}, Window{Days: 5, Interval: "1d"})

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, []string{"AAA", "BBB", "CCC", "DDD"}, fetcher.Calls)
	require.Len(t, rep.Results, 4)
	assert.Equal(t, 1, rep.Succeeded())
	assert.Len(t, rep.Failed(), 3)
	assert.False(t, rep.AllFailed())
	assert.Equal(t, 3, rep.Rows())

	assert.True(t, rep.Results[0].OK())
	assert.Equal(t, 3, rep.Results[0].Rows)

	assert.Equal(t, StageFetch, rep.Results[1].Stage)
	var fe *FetchError
	require.ErrorAs(t, rep.Results[1].Err, &fe)
	assert.ErrorIs(t, rep.Results[1].Err, ErrNoData)

	assert.Equal(t, StageNormalize, rep.Results[2].Stage)
	var ne *normalize.Error
	assert.ErrorAs(t, rep.Results[2].Err, &ne)

	assert.Equal(t, StageStore, rep.Results[3].Stage)
	var we *store.WriteError
	assert.ErrorAs(t, rep.Results[3].Err, &we)

	got, err := db.Query(ctx, "AAA")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, sym := range []string{"BBB", "CCC", "DDD"} {
		got, err := db.Query(ctx, sym)
		require.NoError(t, err)
		assert.Empty(t, got, sym)
	}
}

func TestFeed_AllFailed(t *testing.T) {
	fetcher := &MockFetcher{Errs: map[string]error{"X": errors.New("boom"), "Y": errors.New("boom")}}
	rep := NewCollector(fetcher, store.NewDiscard(), nil).Feed(context.Background(), []string{"x", "y"}, Window{Days: 1, Interval: "1d"})
	assert.True(t, rep.AllFailed())
	assert.Zero(t, rep.Rows())
}

func TestFeed_ClampsWindow(t *testing.T) {
	fetcher := &MockFetcher{Price: 50}
	rep := NewCollector(fetcher, store.NewDiscard(), nil).Feed(context.Background(), []string{"NVDA"}, Window{Days: 30, Interval: "1m"})
	assert.Equal(t, 7, rep.Window.Days)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, 390, rep.Results[0].Rows)
}

func TestFeed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := &MockFetcher{}
	rep := NewCollector(fetcher, store.NewDiscard(), nil).Feed(ctx, []string{"A", "B"}, Window{Days: 1, Interval: "1d"})
	assert.Empty(t, fetcher.Calls)
	assert.True(t, rep.AllFailed())
	assert.ErrorIs(t, rep.Results[0].Err, context.Canceled)
}

func TestMockFetcher_Generated(t *testing.T) {
	end := time.Date(2024, 3, 8, 15, 30, 0, 0, time.UTC)
	m := &MockFetcher{Price: 100, now: func() time.Time { return end }}
	table, err := m.Fetch(context.Background(), "NVDA", Window{Days: 5, Interval: "1d"})
	require.NoError(t, err)
	assert.Equal(t, "Date", table.IndexName)
	require.Equal(t, 5, table.Rows())
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), table.Index[4])
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), table.Index[0])

	bars, err := normalize.Normalize("NVDA", table)
	require.NoError(t, err)
	assert.Len(t, bars, 5)
}

func TestParseSymbols(t *testing.T) {
	assert.Equal(t, []string{"NVDA", "aapl", "MSFT", "tsla"}, ParseSymbols("NVDA,aapl", "MSFT tsla"))
	assert.Empty(t, ParseSymbols(" , "))
}
