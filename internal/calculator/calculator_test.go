package calculator

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalyzer/internal/model"
)

func randomWalk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p += r.NormFloat64()
		if p < 1 {
			p = 1
		}
		out[i] = p
	}
	return out
}

func countLeadingNaN(c model.Column) int {
	n := 0
	for _, v := range c {
		if !math.IsNaN(v) {
			break
		}
		n++
	}
	return n
}

func TestSMA_Alignment(t *testing.T) {
	closes := randomWalk(40, 1)
	const w = 7
	col := SMA(closes, w)

	require.Len(t, col, len(closes))
	assert.Equal(t, w-1, countLeadingNaN(col))
	for i := w - 1; i < len(closes); i++ {
		sum := 0.0
		for j := i - w + 1; j <= i; j++ {
			sum += closes[j]
		}
		assert.InDelta(t, sum/w, col[i], 1e-9, "index %d", i)
	}
}

func TestSMA_ShortInput(t *testing.T) {
	col := SMA([]float64{1, 2, 3}, 50)
	require.Len(t, col, 3)
	assert.Equal(t, 3, countLeadingNaN(col))

	assert.Empty(t, SMA(nil, 5))
	assert.Equal(t, model.Column{1, 2}, SMA([]float64{1, 2}, 1))
}

func TestEMA_SeedAndRecursion(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	col := EMA(closes, 3)

	assert.Equal(t, 2, countLeadingNaN(col))
	assert.InDelta(t, 2.0, col[2], 1e-9)
	k := 2.0 / 4.0
	assert.InDelta(t, (4-2.0)*k+2.0, col[3], 1e-9)
}

func TestRSI_Bounded(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		closes := randomWalk(300, seed)
		col := RSI(closes, 14)
		require.Len(t, col, len(closes))
		assert.Equal(t, 14, countLeadingNaN(col))
		for i := 14; i < len(col); i++ {
			assert.False(t, math.IsNaN(col[i]), "index %d", i)
			assert.GreaterOrEqual(t, col[i], 0.0)
			assert.LessOrEqual(t, col[i], 100.0)
		}
	}
}

func TestRSI_Extremes(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = float64(i + 1)
		down[i] = float64(100 - i)
	}
	v, ok := Last(RSI(up, 14))
	require.True(t, ok)
	assert.InDelta(t, 100, v, 1e-9)

	v, ok = Last(RSI(down, 14))
	require.True(t, ok)
	assert.InDelta(t, 0, v, 1e-9)
}

func TestRSI_ShortInput(t *testing.T) {
	col := RSI([]float64{1, 2, 3}, 14)
	assert.Equal(t, 3, countLeadingNaN(col))
	assert.Empty(t, RSI(nil, 14))
}

func TestMACD_Lookback(t *testing.T) {
	closes := randomWalk(80, 3)
	m := MACD(closes, 12, 26, 9)

	require.Len(t, m.Line, 80)
	require.Len(t, m.Signal, 80)
	require.Len(t, m.Hist, 80)
	assert.Equal(t, 25, countLeadingNaN(m.Line))
	assert.Equal(t, 33, countLeadingNaN(m.Signal))
	assert.Equal(t, 33, countLeadingNaN(m.Hist))

	fast := EMA(closes, 12)
	slow := EMA(closes, 26)
	for i := 33; i < 80; i++ {
		assert.InDelta(t, fast[i]-slow[i], m.Line[i], 1e-9)
		assert.InDelta(t, m.Line[i]-m.Signal[i], m.Hist[i], 1e-9)
	}

	// Signal is a 9-period EMA of the defined line: seeded with the mean of
	// Line[25..33], then smoothed with k = 2/10.
	seed := 0.0
	for i := 25; i <= 33; i++ {
		seed += m.Line[i]
	}
	seed /= 9
	assert.InDelta(t, seed, m.Signal[33], 1e-9)
	k := 2.0 / 10
	want := seed
	for i := 34; i < 80; i++ {
		want = m.Line[i]*k + want*(1-k)
		assert.InDelta(t, want, m.Signal[i], 1e-9, "signal[%d]", i)
	}
}

func TestMACD_ShortInput(t *testing.T) {
	m := MACD(randomWalk(20, 1), 12, 26, 9)
	assert.Equal(t, 20, countLeadingNaN(m.Line))
	assert.Equal(t, 20, countLeadingNaN(m.Signal))

	m = MACD(randomWalk(30, 1), 12, 26, 9)
	assert.Equal(t, 25, countLeadingNaN(m.Line))
	assert.Equal(t, 30, countLeadingNaN(m.Signal))
}

func TestOBV(t *testing.T) {
	col := OBV([]float64{10, 11, 10.5, 10.5, 12}, []float64{100, 200, 50, 70, 30})
	assert.Equal(t, model.Column{100, 300, 250, 250, 280}, col)
	assert.Empty(t, OBV(nil, nil))
}

func seriesOf(closes []float64) model.Series {
	s := model.Series{Symbol: "NVDA"}
	t0 := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	for i, c := range closes {
		s.Bars = append(s.Bars, model.Bar{Time: t0.Add(time.Duration(i) * time.Minute), Close: c, Volume: 10})
	}
	return s
}

func TestCompute(t *testing.T) {
	s := seriesOf(randomWalk(60, 9))
	spec := DefaultSpec()
	spec.EMAWindows = []int{20}
	spec.OBV = true

	set, err := Compute(s, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"sma_50", "sma_200", "ema_20", "rsi_14", "macd", "macd_signal", "macd_hist", "obv"}, set.Names())
	for _, name := range set.Names() {
		col, ok := set.Get(name)
		require.True(t, ok)
		assert.Len(t, col, 60, name)
	}
	sma200, _ := set.Get("sma_200")
	assert.Equal(t, 60, countLeadingNaN(sma200), "window longer than series is all missing")
}

func TestCompute_Empty(t *testing.T) {
	_, err := Compute(model.Series{Symbol: "X"}, DefaultSpec())
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestIntraday(t *testing.T) {
	et, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	today := time.Date(2024, 3, 5, 12, 0, 0, 0, et)

	s := model.Series{Bars: []model.Bar{
		{Time: time.Date(2024, 3, 4, 20, 59, 0, 0, time.UTC), High: 500, Low: 1, Volume: 1000}, // yesterday
		{Time: time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), High: 12, Low: 9, Volume: 100},
		{Time: time.Date(2024, 3, 5, 14, 31, 0, 0, time.UTC), High: 13, Low: 10, Volume: 200},
		{Time: time.Date(2024, 3, 6, 4, 30, 0, 0, time.UTC), High: 11, Low: 8, Volume: 50}, // 23:30 ET on the 5th
	}}

	m := Intraday(s, today)
	assert.Equal(t, model.IntradayMetrics{High: 13, Low: 8, Range: 5, Volume: 350}, m)
}

func TestIntraday_SkipsMissingValues(t *testing.T) {
	nan := math.NaN()
	day := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	m := Intraday(model.Series{Bars: []model.Bar{
		{Time: day, High: nan, Low: nan, Volume: nan},
		{Time: day.Add(time.Minute), High: 13, Low: 9, Volume: 200},
		{Time: day.Add(2 * time.Minute), High: 12, Low: 10, Volume: 50},
	}}, day)
	assert.Equal(t, model.IntradayMetrics{High: 13, Low: 9, Range: 4, Volume: 250}, m)

	m = Intraday(model.Series{Bars: []model.Bar{{Time: day, High: nan, Low: nan, Volume: 10}}}, day)
	assert.True(t, math.IsNaN(m.High))
	assert.True(t, math.IsNaN(m.Range))
	assert.Equal(t, 10.0, m.Volume)
}

func TestIntraday_NoRowsToday(t *testing.T) {
	s := seriesOf([]float64{1, 2, 3})
	m := Intraday(s, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, model.IntradayMetrics{}, m)
	assert.Equal(t, model.IntradayMetrics{}, Intraday(model.Series{}, time.Now()))
}

func TestLatestQuote(t *testing.T) {
	_, ok := LatestQuote(model.Series{})
	assert.False(t, ok)

	q, ok := LatestQuote(seriesOf([]float64{100}))
	require.True(t, ok)
	assert.Equal(t, model.Quote{Latest: 100, PrevClose: 100}, q)

	q, ok = LatestQuote(seriesOf([]float64{100, 102}))
	require.True(t, ok)
	assert.Equal(t, 2.0, q.Change)
	assert.InDelta(t, 2.0, q.ChangePct, 1e-9)
}
