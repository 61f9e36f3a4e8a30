package collector

import (
	"context"
	"time"

	"StockAnalyzer/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Tables map[string]*model.RawTable // per symbol; generated when absent
	Errs   map[string]error           // per symbol failure

	Calls []string
	now   func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol string, w Window) (*model.RawTable, error) {
	m.Calls = append(m.Calls, symbol)
	if err, ok := m.Errs[symbol]; ok {
		return nil, &FetchError{Provider: m.Name(), Symbol: symbol, Err: err}
	}
	if t, ok := m.Tables[symbol]; ok {
		return t, nil
	}
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	return generateMockTable(m.Price, w, now()), nil
}

// generateMockTable builds one bar per step ending at end: one per minute
// for a minute window capped at a trading day, one per day otherwise.
func generateMockTable(basePrice float64, w Window, end time.Time) *model.RawTable {
	if basePrice <= 0 {
		basePrice = 100
	}
	step, count, index := 24*time.Hour, w.Days, "Date"
	if w.Intraday() {
		step, count, index = time.Minute, 390, "Datetime"
	} else {
		y, m, d := end.Date()
		end = time.Date(y, m, d, 0, 0, 0, 0, end.Location())
	}
	if count < 1 {
		count = 1
	}
	t := &model.RawTable{
		IndexName: index,
		Index:     make([]time.Time, count),
		Columns: map[string][]float64{
			"Open":   make([]float64, count),
			"High":   make([]float64, count),
			"Low":    make([]float64, count),
			"Close":  make([]float64, count),
			"Volume": make([]float64, count),
		},
	}
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		t.Index[i] = end.Add(-time.Duration(count-1-i) * step)
		t.Columns["Open"][i] = p * 0.999
		t.Columns["High"][i] = p * 1.005
		t.Columns["Low"][i] = p * 0.995
		t.Columns["Close"][i] = p
		t.Columns["Volume"][i] = 1000000
	}
	return t
}
