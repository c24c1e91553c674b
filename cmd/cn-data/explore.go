package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/google/subcommands"

	"cn-data/internal/app"
	"cn-data/internal/model"
	"cn-data/internal/provider"
	"cn-data/internal/store"
)

type exploreCmd struct {
	app *app.App

	symbol   string
	exchange string
	limit    int
	storeArg string
}

func (*exploreCmd) Name() string { return "explore" }

func (*exploreCmd) Synopsis() string { return "browse symbols and bars in the persisted store" }

func (*exploreCmd) Usage() string {
	return `explore [-symbol S] [-exchange sse|szse] [-limit N] [-store PATH]:
  Print records from the persisted store, optionally filtered by symbol
  and/or exchange, with up to N most recent bars each.
`
}

func (c *exploreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "symbol to look up")
	f.StringVar(&c.exchange, "exchange", "", "exchange filter (SSE, SZSE)")
	f.IntVar(&c.limit, "limit", 10, "max bars to display per symbol")
	f.StringVar(&c.storeArg, "store", "", "store file path (default from config)")
}

func (c *exploreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path := c.storeArg
	if path == "" {
		path = c.app.Config.StorePath()
	}

	snap, err := store.Load(path)
	if err != nil {
		slog.Error("cannot load store", "path", path, "error", err)
		return subcommands.ExitFailure
	}
	p := provider.New(snap)

	records := c.selectRecords(p)
	if len(records) == 0 {
		fmt.Println("no matching records")
		return subcommands.ExitSuccess
	}
	if latest, ok := p.LatestTradingDate(); ok {
		fmt.Printf("store: %s (%d records, latest trading date %d)\n\n", path, snap.Len(), latest)
	}
	for _, rec := range records {
		printRecord(rec, c.limit)
	}
	return subcommands.ExitSuccess
}

func (c *exploreCmd) selectRecords(p *provider.Provider) []model.SymbolRecord {
	switch {
	case c.symbol != "" && c.exchange != "":
		if rec, ok := p.Get(normalizeExchange(c.exchange), c.symbol); ok {
			return []model.SymbolRecord{rec}
		}
		return nil
	case c.symbol != "":
		if rec, ok := p.BySymbol(c.symbol); ok {
			return []model.SymbolRecord{rec}
		}
		return nil
	case c.exchange != "":
		return p.ByExchange(normalizeExchange(c.exchange))
	default:
		return p.All()
	}
}

func printRecord(rec model.SymbolRecord, limit int) {
	fmt.Printf("%s (%s) - %s: %d bars\n", rec.Name, rec.Symbol, rec.Exchange, len(rec.Daily))
	fmt.Printf("%-10s %10s %10s %10s %10s %14s %16s\n", "date", "open", "high", "low", "close", "volume", "amount")
	daily := rec.Daily
	if limit > 0 && len(daily) > limit {
		daily = daily[len(daily)-limit:]
	}
	for _, b := range daily {
		fmt.Printf("%-10d %10.2f %10.2f %10.2f %10.2f %14d %16.2f\n",
			b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, b.Amount)
	}
	if limit > 0 && len(rec.Daily) > limit {
		fmt.Printf("... and %d earlier bars\n", len(rec.Daily)-limit)
	}
	fmt.Println()
}

// normalizeExchange maps a lowercase CLI argument to the stored exchange code.
func normalizeExchange(s string) string {
	switch s {
	case "sse":
		return "SSE"
	case "szse":
		return "SZSE"
	default:
		return s
	}
}
