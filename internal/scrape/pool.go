package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cn-data/internal/merge"
	"cn-data/internal/model"
	"cn-data/internal/slogx"
)

// Job is one unit of fetch work: produce the batch for a listed symbol.
// When FullHistory is set the worker calls FetchHistory; otherwise the
// listing's own bar is the whole batch.
type Job struct {
	Scraper     Scraper
	Listing     Listing
	FullHistory bool
}

// Failure records a symbol whose batch could not be produced. The merge run
// proceeds without it; stored data for the key is untouched.
type Failure struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Reason   string `json:"reason"`
}

type jobResult struct {
	ok      bool
	batch   merge.Batch
	failure Failure
}

// FetchAll runs the jobs on a bounded worker pool and returns the materialized
// batches plus per-symbol failures. Worker logs fan in through one channel so
// lines do not interleave. All batches are collected before the caller merges;
// the pool never touches the store.
func FetchAll(ctx context.Context, jobs []Job, workers int) ([]merge.Batch, []Failure) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	lines := make(chan string, 2048)
	var logWg sync.WaitGroup
	logWg.Add(1)
	go func() {
		defer logWg.Done()
		for s := range lines {
			fmt.Println(s)
		}
	}()
	logger := slogx.NewChanLogger(lines)

	pending := make(chan Job, len(jobs))
	for _, j := range jobs {
		pending <- j
	}
	close(pending)

	results := make(chan jobResult, len(jobs))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for job := range pending {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- runJob(ctx, job, logger)
			}
		}()
	}
	wg.Wait()
	close(results)
	close(lines)
	logWg.Wait()

	var batches []merge.Batch
	var failures []Failure
	for r := range results {
		if r.ok {
			batches = append(batches, r.batch)
		} else {
			failures = append(failures, r.failure)
		}
	}
	return batches, failures
}

func runJob(ctx context.Context, job Job, logger *slog.Logger) jobResult {
	exchange := job.Scraper.Exchange()
	symbol := job.Listing.Symbol

	bars := []model.Bar{job.Listing.Bar}
	if job.FullHistory {
		history, err := job.Scraper.FetchHistory(ctx, symbol)
		if err != nil {
			logger.Error("fetch fail", "exchange", exchange, "symbol", symbol, "error", err)
			return jobResult{failure: Failure{Exchange: exchange, Symbol: symbol, Reason: err.Error()}}
		}
		if len(history) == 0 {
			logger.Warn("fetch empty", "exchange", exchange, "symbol", symbol)
			return jobResult{failure: Failure{Exchange: exchange, Symbol: symbol, Reason: "no history data"}}
		}
		logger.Info("fetch ok", "exchange", exchange, "symbol", symbol, "bars", len(history), "full_history", true)
		bars = history
	}

	return jobResult{ok: true, batch: merge.Batch{
		Exchange: exchange,
		Symbol:   symbol,
		Name:     job.Listing.Name,
		Bars:     bars,
	}}
}
