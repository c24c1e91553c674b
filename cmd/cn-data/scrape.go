package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/google/subcommands"

	"cn-data/internal/app"
	"cn-data/internal/scrape"
)

type scrapeCmd struct {
	app *app.App

	exchange   string
	date       string
	symbol     string
	forceFull  bool
	maxRecords int
	output     string
}

func (*scrapeCmd) Name() string { return "scrape" }

func (*scrapeCmd) Synopsis() string { return "fetch daily bars and merge them into the store" }

func (*scrapeCmd) Usage() string {
	return `scrape -exchange sse|szse|all [-date YYYY-MM-DD] [-symbol S] [-force-full] [-max-records N] [-output PATH]:
  Fetch the day's bars from the selected exchanges and merge them into the
  persisted store. New symbols get their full history; -force-full refetches
  and replaces the history of every listed symbol.
`
}

func (c *scrapeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exchange, "exchange", "all", "exchange to scrape (sse, szse, all)")
	f.StringVar(&c.date, "date", "", "target date YYYY-MM-DD (default today)")
	f.StringVar(&c.symbol, "symbol", "", "restrict the run to one symbol")
	f.BoolVar(&c.forceFull, "force-full", false, "refetch full history and replace stored series")
	f.IntVar(&c.maxRecords, "max-records", 0, "bars retained per symbol (default from config)")
	f.StringVar(&c.output, "output", "", "store file path (default from config)")
}

func (c *scrapeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	date := time.Now().UTC()
	if c.date != "" {
		var err error
		date, err = time.Parse("2006-01-02", c.date)
		if err != nil {
			slog.Error("invalid -date", "date", c.date, "error", err)
			return subcommands.ExitUsageError
		}
	}

	scrapers, err := scrape.ForExchanges(c.exchange)
	if err != nil {
		slog.Error("invalid -exchange", "error", err)
		return subcommands.ExitUsageError
	}

	maxRecords := c.maxRecords
	if maxRecords == 0 {
		maxRecords = c.app.Config.MaxRecords
	}

	svc := app.NewService(c.app.Config, scrapers, c.app.Logger)
	report, err := svc.Run(ctx, app.RunOptions{
		Date:       date,
		Symbol:     c.symbol,
		ForceFull:  c.forceFull,
		MaxRecords: maxRecords,
		Output:     c.output,
	})
	if err != nil {
		slog.Error("scrape run failed", "error", err)
		return subcommands.ExitFailure
	}
	slog.Info("store updated", "path", report.Path, "records", report.Records,
		"updated", report.Updated, "skipped", report.Skipped, "failed", len(report.Failures))
	return subcommands.ExitSuccess
}
