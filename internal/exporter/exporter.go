// Package exporter writes a view's bars and indicator columns to files.
package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"StockAnalyzer/internal/pipeline"
)

// Exporter writes one row per bar of a view.
type Exporter interface {
	Write(path string, v *pipeline.View) error
	Extension() string
}

// Formats lists the supported export formats.
var Formats = []string{"csv", "json", "parquet"}

// New returns the exporter for format.
func New(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVExporter{}, nil
	case "json":
		return JSONExporter{Indent: true}, nil
	case "parquet":
		return ParquetExporter{}, nil
	default:
		return nil, fmt.Errorf("exporter: unsupported format %q (use: %s)", format, strings.Join(Formats, ", "))
	}
}

// DefaultPath names an export after the symbol and interval.
func DefaultPath(v *pipeline.View, e Exporter) string {
	iv := v.Interval
	if iv == "" {
		iv = "raw"
	}
	return fmt.Sprintf("%s_%s.%s", v.Symbol, iv, e.Extension())
}

func floatStr(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func timeStr(t time.Time) string { return t.Format(time.RFC3339) }
