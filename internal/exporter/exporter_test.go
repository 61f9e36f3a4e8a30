package exporter

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/pipeline"
)

func sampleView() *pipeline.View {
	t0 := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	v := &pipeline.View{Symbol: "NVDA", Timeframe: "All", Interval: "5m"}
	v.Series.Symbol = "NVDA"
	for i, c := range []float64{10, 12, 11} {
		v.Series.Bars = append(v.Series.Bars, model.Bar{
			Symbol: "NVDA", Time: t0.Add(time.Duration(i) * 5 * time.Minute),
			Open: c, High: c + 1, Low: c - 1, Close: c, AdjClose: c, Volume: 100,
		})
	}
	v.Indicators.Set("sma_2", model.Column{math.NaN(), 11, 11.5})
	v.Indicators.Set("rsi_14", model.Column{math.NaN(), math.NaN(), math.NaN()})
	return v
}

func TestNew(t *testing.T) {
	for _, f := range Formats {
		e, err := New(" " + f)
		require.NoError(t, err, f)
		assert.Equal(t, f, e.Extension())
	}
	_, err := New("xlsx")
	assert.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	v := sampleView()
	assert.Equal(t, "NVDA_5m.csv", DefaultPath(v, CSVExporter{}))
	v.Interval = ""
	assert.Equal(t, "NVDA_raw.parquet", DefaultPath(v, ParquetExporter{}))
}

func TestCSVExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, CSVExporter{}.Write(path, sampleView()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, recs, 4)
	assert.Equal(t, []string{"date", "open", "high", "low", "close", "adj_close", "volume", "sma_2", "rsi_14"}, recs[0])
	assert.Equal(t, []string{"2024-03-05T14:30:00Z", "10", "11", "9", "10", "10", "100", "", ""}, recs[1])
	assert.Equal(t, "11.5", recs[3][7])
}

func TestJSONExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, JSONExporter{}.Write(path, sampleView()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Symbol     string                `json:"symbol"`
		Series     model.Series          `json:"series"`
		Indicators map[string][]*float64 `json:"indicators"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "NVDA", doc.Symbol)
	assert.Len(t, doc.Series.Bars, 3)
	require.Len(t, doc.Indicators["sma_2"], 3)
	assert.Nil(t, doc.Indicators["sma_2"][0])
	assert.Equal(t, 11.5, *doc.Indicators["sma_2"][2])
	assert.Nil(t, doc.Indicators["rsi_14"][2])
}

func TestJSONExporter_MissingPrice(t *testing.T) {
	v := sampleView()
	v.Series.Bars[1].Open = math.NaN()
	v.Quote = model.Quote{Latest: math.NaN(), PrevClose: 12}

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, JSONExporter{}.Write(path, v))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Series model.Series `json:"series"`
		Quote  struct {
			Latest    *float64 `json:"latest"`
			PrevClose *float64 `json:"prev_close"`
		} `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Series.Bars, 3)
	assert.True(t, math.IsNaN(doc.Series.Bars[1].Open))
	assert.Equal(t, 12.0, doc.Series.Bars[1].Close)
	assert.Nil(t, doc.Quote.Latest)
	require.NotNil(t, doc.Quote.PrevClose)
	assert.Equal(t, 12.0, *doc.Quote.PrevClose)
}

func TestParquetExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, ParquetExporter{}.Write(path, sampleView()))

	rows, err := parquet.ReadFile[Row](path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "NVDA", rows[0].Symbol)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC).UnixMilli(), rows[0].Timestamp)
	require.Len(t, rows[0].Indicators, 2)
	assert.Equal(t, "sma_2", rows[0].Indicators[0].Name)
	assert.Nil(t, rows[0].Indicators[0].Value)
	require.NotNil(t, rows[2].Indicators[0].Value)
	assert.Equal(t, 11.5, *rows[2].Indicators[0].Value)
	assert.Nil(t, rows[2].Indicators[1].Value)
}

func TestRows_NoIndicators(t *testing.T) {
	v := sampleView()
	v.Indicators = model.IndicatorSet{}
	rows := Rows(v)
	require.Len(t, rows, 3)
	assert.Empty(t, rows[1].Indicators)
	assert.Equal(t, 12.0, rows[1].Close)
}
