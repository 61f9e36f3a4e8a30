package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/report"
	"StockAnalyzer/internal/scheduler"
	"StockAnalyzer/internal/store"
)

type initCmd struct{}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the stocks table if it does not exist" }
func (*initCmd) Usage() string    { return "init\n" }

func (*initCmd) SetFlags(*flag.FlagSet) {}

func (*initCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := fromArgs(args)
	st, err := a.openStore()
	if err != nil {
		a.log.Error("open store", zap.Error(err))
		return subcommands.ExitFailure
	}
	if err := st.EnsureSchema(ctx); err != nil {
		a.log.Error("ensure schema", zap.Error(err))
		return subcommands.ExitFailure
	}
	a.log.Info("schema ready", zap.String("driver", a.cfg.Database.Driver), zap.String("key_mode", a.cfg.Database.KeyMode))
	return subcommands.ExitSuccess
}

// feedFlags are shared by feed and schedule.
type feedFlags struct {
	days     int
	interval string
	provider string
	dryRun   bool
}

func (f *feedFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.days, "days", 0, "lookback in days (default from config)")
	fs.StringVar(&f.interval, "interval", "", "bar interval: 1m, 5m, 15m, 30m, 1h, 1d, 1wk (default from config)")
	fs.StringVar(&f.provider, "provider", "", "data provider: yahoo, polygon, mock (default from config)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "fetch and normalize without writing to the store")
}

// newCollector builds the batch runner and the window it feeds.
func (f *feedFlags) newCollector(ctx context.Context, a *app) (*collector.Collector, collector.Window, error) {
	w := collector.Window{Days: a.cfg.Feed.Days, Interval: a.cfg.Feed.Interval}
	if f.days > 0 {
		w.Days = f.days
	}
	if f.interval != "" {
		w.Interval = f.interval
	}
	fetcher, err := a.fetcher(f.provider)
	if err != nil {
		return nil, w, err
	}

	var sink store.Appender = store.NewDiscard()
	if !f.dryRun {
		st, err := a.openStore()
		if err != nil {
			return nil, w, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			return nil, w, err
		}
		sink = st
	}
	return collector.NewCollector(fetcher, sink, a.log.Named("feed")), w, nil
}

func (a *app) symbols(args []string) []string {
	if syms := collector.ParseSymbols(args...); len(syms) > 0 {
		return syms
	}
	return a.cfg.Feed.Symbols
}

type feedCmd struct {
	feedFlags
}

func (*feedCmd) Name() string     { return "feed" }
func (*feedCmd) Synopsis() string { return "fetch bars for symbols and append them to the store" }
func (*feedCmd) Usage() string {
	return "feed [-days N] [-interval 1m] [-provider yahoo|polygon|mock] [-dry-run] [SYMBOL ...]\n"
}

func (c *feedCmd) SetFlags(fs *flag.FlagSet) { c.register(fs) }

func (c *feedCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := fromArgs(args)
	col, w, err := c.newCollector(ctx, a)
	if err != nil {
		return usageErr(fs, "feed: %v", err)
	}
	rep := col.Feed(ctx, a.symbols(fs.Args()), w)
	fmt.Fprint(os.Stdout, report.FormatFeed(rep))
	if rep.AllFailed() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type scheduleCmd struct {
	feedFlags
	cron   string
	runNow bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "run feed batches on a cron schedule until interrupted" }
func (*scheduleCmd) Usage() string {
	return "schedule [-cron \"0 */5 * * * 1-5\"] [-now] [feed flags] [SYMBOL ...]\n"
}

func (c *scheduleCmd) SetFlags(fs *flag.FlagSet) {
	c.register(fs)
	fs.StringVar(&c.cron, "cron", "", "cron spec with seconds field, in the market time zone (default from config)")
	fs.BoolVar(&c.runNow, "now", false, "run one batch immediately on start")
}

func (c *scheduleCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := fromArgs(args)
	col, w, err := c.newCollector(ctx, a)
	if err != nil {
		return usageErr(fs, "schedule: %v", err)
	}
	spec := a.cfg.Feed.Cron
	if c.cron != "" {
		spec = c.cron
	}
	symbols := a.symbols(fs.Args())

	sched := scheduler.NewScheduler(ctx, func(ctx context.Context) collector.Report {
		return col.Feed(ctx, symbols, w)
	}, a.cfg.Location(), a.log.Named("scheduler"))
	sched.OnReport = func(rep collector.Report) { fmt.Fprint(os.Stdout, report.FormatFeed(rep)) }
	if err := sched.Register(spec); err != nil {
		return usageErr(fs, "schedule: %v", err)
	}

	sched.Start()
	if c.runNow {
		go sched.RunNow()
	}
	a.log.Info("scheduler running, press Ctrl+C to stop", zap.Strings("symbols", symbols))

	<-ctx.Done()
	a.log.Info("shutdown signal received, stopping...")
	sched.Stop()
	return subcommands.ExitSuccess
}
