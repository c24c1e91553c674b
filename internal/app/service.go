// Package app wires configuration, scrapers, merge and store into the
// scrape run and exposes the pieces to the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"cn-data/internal/merge"
	"cn-data/internal/model"
	"cn-data/internal/scrape"
	"cn-data/internal/store"
)

// RunOptions parameterize one scrape run.
type RunOptions struct {
	Date       time.Time
	Symbol     string // restrict the run to one symbol; empty means all listed
	ForceFull  bool   // refetch full history and replace stored series
	MaxRecords int    // retention cap per symbol; 0 keeps everything
	Output     string // store path override; empty uses the configured path
}

// RunReport summarizes one scrape run. A run with per-symbol failures is
// still a successful run: the surviving keys were merged and persisted.
type RunReport struct {
	Path     string
	Records  int
	Updated  int
	Skipped  int
	Outcomes []merge.Outcome
	Failures []scrape.Failure
}

// Service orchestrates the scrape flow: load snapshot, fetch batches,
// merge, persist, report.
type Service struct {
	cfg      *Config
	scrapers []scrape.Scraper
	log      *slog.Logger
}

// NewService creates a Service over the given scrapers.
func NewService(cfg *Config, scrapers []scrape.Scraper, log *slog.Logger) *Service {
	return &Service{cfg: cfg, scrapers: scrapers, log: log}
}

// Run executes one scrape-and-merge cycle. Only store-level I/O and schema
// errors are returned; per-bar and per-key problems are aggregated into the
// report and logged.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	path := opts.Output
	if path == "" {
		path = s.cfg.StorePath()
	}

	existing, err := store.Load(path)
	if err != nil {
		return nil, err
	}
	s.log.Info("loaded store", "path", path, "records", existing.Len())

	jobs, failures, err := s.collectJobs(ctx, existing, opts)
	if err != nil {
		return nil, err
	}
	s.log.Info("fetch plan", "jobs", len(jobs), "workers", s.cfg.FetchWorkers, "mode", runMode(opts).String())

	batches, fetchFailures := scrape.FetchAll(ctx, jobs, s.cfg.FetchWorkers)
	failures = append(failures, fetchFailures...)

	snap, outcomes := merge.Merge(existing, batches, merge.Options{
		Mode:       runMode(opts),
		MaxRecords: opts.MaxRecords,
	})
	if err := store.Persist(snap, path); err != nil {
		return nil, err
	}

	report := &RunReport{Path: path, Records: snap.Len(), Outcomes: outcomes, Failures: failures}
	for _, o := range outcomes {
		if o.Updated {
			report.Updated++
		} else {
			report.Skipped++
		}
	}
	if err := writeRunReport(filepath.Dir(path), report); err != nil {
		s.log.Warn("could not write run report", "error", err)
	}
	s.log.Info("run done", "records", report.Records, "updated", report.Updated,
		"skipped", report.Skipped, "failed", len(report.Failures))
	return report, nil
}

// collectJobs fetches each exchange's listing and decides per symbol whether
// the full history is needed. A listing failure downgrades the whole exchange
// to "no batches this run"; it never aborts the other exchanges.
func (s *Service) collectJobs(ctx context.Context, existing *store.Snapshot, opts RunOptions) ([]scrape.Job, []scrape.Failure, error) {
	var jobs []scrape.Job
	var failures []scrape.Failure
	matched := false

	for _, sc := range s.scrapers {
		listings, err := sc.FetchList(ctx, opts.Date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			s.log.Warn("listing fetch failed", "exchange", sc.Exchange(), "error", err)
			failures = append(failures, scrape.Failure{Exchange: sc.Exchange(), Symbol: "*", Reason: err.Error()})
			continue
		}
		s.log.Info("listing fetched", "exchange", sc.Exchange(), "symbols", len(listings))

		for _, l := range listings {
			if opts.Symbol != "" && l.Symbol != opts.Symbol {
				continue
			}
			matched = true
			prev, exists := existing.Get(model.Key{Exchange: sc.Exchange(), Symbol: l.Symbol})
			full := opts.ForceFull || !exists || len(prev.Daily) == 0
			jobs = append(jobs, scrape.Job{Scraper: sc, Listing: l, FullHistory: full})
		}
	}

	if opts.Symbol != "" && !matched {
		return nil, nil, fmt.Errorf("symbol %s not listed on any selected exchange for %s",
			opts.Symbol, opts.Date.Format("2006-01-02"))
	}
	return jobs, failures, nil
}

func runMode(opts RunOptions) merge.Mode {
	if opts.ForceFull {
		return merge.FullReplace
	}
	return merge.Incremental
}
