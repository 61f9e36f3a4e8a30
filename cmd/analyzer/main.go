package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/config"
	"StockAnalyzer/internal/logger"
	"StockAnalyzer/internal/series"
	"StockAnalyzer/internal/store"
)

// app carries what every subcommand shares.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&initCmd{}, "")
	subcommands.Register(&feedCmd{}, "")
	subcommands.Register(&scheduleCmd{}, "")
	subcommands.Register(&showCmd{}, "view")
	subcommands.Register(&exportCmd{}, "view")

	flag.Parse()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Console: cfg.Log.Console})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := subcommands.Execute(ctx, &app{cfg: cfg, log: log})
	if status != subcommands.ExitSuccess {
		stop()
		_ = log.Sync()
		os.Exit(int(status))
	}
}

func fromArgs(args []interface{}) *app {
	return args[0].(*app)
}

func (a *app) openStore() (*store.SQLStore, error) {
	mode, err := store.ParseKeyMode(a.cfg.Database.KeyMode)
	if err != nil {
		return nil, err
	}
	return store.Open(store.Config{
		Driver:  a.cfg.Database.Driver,
		DSN:     a.cfg.Database.DSN,
		KeyMode: mode,
	}, a.log.Named("store"))
}

func (a *app) fetcher(provider string) (collector.Fetcher, error) {
	if provider == "" {
		provider = a.cfg.DataSource.Provider
	}
	ds := a.cfg.DataSource
	switch provider {
	case "yahoo":
		return collector.NewYahooFetcher(ds.Proxy, ds.Timeout), nil
	case "polygon":
		if ds.PolygonAPIKey == "" {
			return nil, fmt.Errorf("polygon provider needs an API key (POLYGON_API_KEY)")
		}
		return collector.NewPolygonFetcher(ds.PolygonAPIKey, ds.Timeout), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	}
	return nil, fmt.Errorf("unknown provider %q (yahoo, polygon, mock)", provider)
}

func (a *app) loader(q store.Querier) *series.Loader {
	return series.NewLoader(q, a.cfg.Location(), a.log.Named("series"))
}

func usageErr(f *flag.FlagSet, format string, v ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	f.Usage()
	return subcommands.ExitUsageError
}
