package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/exporter"
	"StockAnalyzer/internal/pipeline"
	"StockAnalyzer/internal/report"
)

// viewFlags are shared by show and export.
type viewFlags struct {
	timeframe string
	interval  string
	sma       string
	ema       string
	rsi       int
	macd      bool
	obv       bool
}

func (f *viewFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.timeframe, "timeframe", "All", "display window: 1D, 5D, 1W, All")
	fs.StringVar(&f.interval, "interval", "", "resample to 1m, 5m, 15m, 30m, 1h, 4h, 1d, 1w (default: stored granularity)")
	fs.StringVar(&f.sma, "sma", "50,200", "comma separated SMA windows")
	fs.StringVar(&f.ema, "ema", "", "comma separated EMA windows")
	fs.IntVar(&f.rsi, "rsi", 14, "RSI period, 0 to disable")
	fs.BoolVar(&f.macd, "macd", true, "include MACD 12/26/9")
	fs.BoolVar(&f.obv, "obv", false, "include on-balance volume")
}

func (f *viewFlags) request(symbol string) (pipeline.Request, error) {
	sma, err := parseWindows(f.sma)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("-sma: %w", err)
	}
	ema, err := parseWindows(f.ema)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("-ema: %w", err)
	}
	spec := calculator.Spec{RSIPeriod: f.rsi, SMAWindows: sma, EMAWindows: ema, OBV: f.obv}
	if f.macd {
		def := calculator.DefaultSpec()
		spec.MACDFast, spec.MACDSlow, spec.MACDSignal = def.MACDFast, def.MACDSlow, def.MACDSignal
	}
	return pipeline.Request{
		Symbol:     symbol,
		Timeframe:  f.timeframe,
		Interval:   f.interval,
		Indicators: spec,
	}, nil
}

// view opens the store, builds the request for the single SYMBOL argument
// and runs the pipeline.
func (f *viewFlags) view(ctx context.Context, a *app, fs *flag.FlagSet) (*pipeline.View, error) {
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one SYMBOL, got %d", fs.NArg())
	}
	req, err := f.request(fs.Arg(0))
	if err != nil {
		return nil, err
	}
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	svc := pipeline.NewService(a.loader(st), a.cfg.Location(), a.log.Named("pipeline"))
	return svc.View(ctx, req)
}

func parseWindows(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid window %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

type showCmd struct {
	viewFlags
	asJSON bool
	tail   int
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "print a symbol's stored series with indicators" }
func (*showCmd) Usage() string {
	return "show [-timeframe 1D] [-interval 5m] [-sma 50,200] [-ema 20] [-obv] [-json] SYMBOL\n"
}

func (c *showCmd) SetFlags(fs *flag.FlagSet) {
	c.register(fs)
	fs.BoolVar(&c.asJSON, "json", false, "print the view as JSON")
	fs.IntVar(&c.tail, "tail", 20, "number of most recent bars to print")
}

func (c *showCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := fromArgs(args)
	v, err := c.view(ctx, a, fs)
	if err != nil {
		return usageErr(fs, "show: %v", err)
	}
	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			a.log.Error("encode view", zap.Error(err))
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	fmt.Fprint(os.Stdout, report.FormatView(v, c.tail))
	return subcommands.ExitSuccess
}

type exportCmd struct {
	viewFlags
	format string
	out    string
}

func (*exportCmd) Name() string { return "export" }
func (*exportCmd) Synopsis() string {
	return "write a symbol's series and indicators to csv, json or parquet"
}
func (*exportCmd) Usage() string {
	return "export [-format csv|json|parquet] [-out path] [view flags] SYMBOL\n"
}

func (c *exportCmd) SetFlags(fs *flag.FlagSet) {
	c.register(fs)
	fs.StringVar(&c.format, "format", "csv", "output format: "+strings.Join(exporter.Formats, ", "))
	fs.StringVar(&c.out, "out", "", "output path (default SYMBOL_INTERVAL.EXT)")
}

func (c *exportCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := fromArgs(args)
	e, err := exporter.New(c.format)
	if err != nil {
		return usageErr(fs, "export: %v", err)
	}
	v, err := c.view(ctx, a, fs)
	if err != nil {
		return usageErr(fs, "export: %v", err)
	}
	if v.Empty {
		a.log.Warn("nothing to export", zap.String("symbol", v.Symbol))
		return subcommands.ExitFailure
	}
	path := c.out
	if path == "" {
		path = exporter.DefaultPath(v, e)
	}
	if err := e.Write(path, v); err != nil {
		a.log.Error("export failed", zap.String("path", path), zap.Error(err))
		return subcommands.ExitFailure
	}
	a.log.Info("exported", zap.String("symbol", v.Symbol), zap.String("path", path), zap.Int("bars", v.Series.Len()))
	return subcommands.ExitSuccess
}
