// Command cn-data maintains a columnar store of daily bars for the SSE and
// SZSE exchanges. The scrape subcommand fetches and merges new data; the
// explore subcommand reads the persisted store.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/subcommands"
)

func main() {
	a, err := InitializeApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(a.Logger)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&scrapeCmd{app: a}, "")
	subcommands.Register(&exploreCmd{app: a}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
