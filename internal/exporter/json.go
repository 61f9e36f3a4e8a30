package exporter

import (
	"encoding/json"
	"os"

	"StockAnalyzer/internal/pipeline"
)

// JSONExporter writes the whole view as one JSON document. Missing
// indicator values are null.
type JSONExporter struct {
	Indent bool
}

func (JSONExporter) Extension() string { return "json" }

func (e JSONExporter) Write(path string, v *pipeline.View) error {
	var (
		data []byte
		err  error
	)
	if e.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
