// Package merge reconciles freshly scraped batches with an existing snapshot.
// Merge is a pure function of its inputs: re-running it over the same snapshot
// and batches produces the same result.
package merge

import (
	"sort"

	"cn-data/internal/model"
	"cn-data/internal/store"
)

// Mode selects how a batch combines with a key's stored history.
type Mode int

const (
	// Incremental unions new bars into the stored series, keyed by date.
	// Freshly scraped values win on overlapping dates so late corrections
	// overwrite previously stored bars.
	Incremental Mode = iota
	// FullReplace discards the key's stored history and substitutes the batch.
	FullReplace
)

func (m Mode) String() string {
	if m == FullReplace {
		return "full-replace"
	}
	return "incremental"
}

// Batch is the unit of input: newly fetched bars for one (exchange, symbol).
// Bars need not be sorted or deduplicated.
type Batch struct {
	Exchange string
	Symbol   string
	Name     string
	Bars     []model.Bar
}

// Options apply uniformly to one merge run.
type Options struct {
	Mode Mode
	// MaxRecords caps the retained series per symbol, keeping the most
	// recent bars. Zero means unbounded.
	MaxRecords int
}

// BarWarning reports one dropped bar. Dropped bars never fail the symbol.
type BarWarning struct {
	Date   int32  `json:"date"`
	Reason string `json:"reason"`
}

// Outcome reports what happened to one batch's key.
type Outcome struct {
	Exchange string       `json:"exchange"`
	Symbol   string       `json:"symbol"`
	Updated  bool         `json:"updated"`
	Skipped  bool         `json:"skipped,omitempty"`
	Reason   string       `json:"reason,omitempty"`
	Bars     int          `json:"bars"`
	Dropped  []BarWarning `json:"dropped,omitempty"`
}

// Merge builds a new snapshot from the existing one and the fetched batches.
// Keys absent from batches are carried through unchanged; a batch whose bars
// all fail validation is skipped without touching the key's stored data or any
// other key. Outcomes are returned in batch order, one per batch.
func Merge(existing *store.Snapshot, batches []Batch, opts Options) (*store.Snapshot, []Outcome) {
	working := make(map[model.Key]model.SymbolRecord, existing.Len()+len(batches))
	for _, r := range existing.Records() {
		working[r.Key()] = r
	}

	outcomes := make([]Outcome, 0, len(batches))
	for _, b := range batches {
		key := model.Key{Exchange: b.Exchange, Symbol: b.Symbol}
		prev, exists := working[key]
		rec, out := mergeBatch(prev, exists, b, opts)
		if out.Updated {
			working[key] = rec
		}
		outcomes = append(outcomes, out)
	}

	records := make([]model.SymbolRecord, 0, len(working))
	for _, r := range working {
		records = append(records, r)
	}
	return store.New(records), outcomes
}

// mergeBatch applies one batch against the key's previous record, if any.
func mergeBatch(prev model.SymbolRecord, exists bool, b Batch, opts Options) (model.SymbolRecord, Outcome) {
	out := Outcome{Exchange: b.Exchange, Symbol: b.Symbol}

	byDate := make(map[int32]model.Bar, len(prev.Daily)+len(b.Bars))
	if opts.Mode == Incremental && exists {
		for _, bar := range prev.Daily {
			byDate[bar.Date] = bar
		}
	}
	valid := 0
	for _, bar := range b.Bars {
		if _, err := model.ParseDate(bar.Date); err != nil {
			out.Dropped = append(out.Dropped, BarWarning{Date: bar.Date, Reason: err.Error()})
			continue
		}
		byDate[bar.Date] = bar
		valid++
	}

	if valid == 0 {
		// Nothing usable in the batch: leave the key exactly as it was
		// (or absent, when it never existed). Other keys are unaffected.
		out.Skipped = true
		out.Reason = "no valid bars in batch"
		out.Bars = len(prev.Daily)
		return prev, out
	}

	daily := make([]model.Bar, 0, len(byDate))
	for _, bar := range byDate {
		daily = append(daily, bar)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	if opts.MaxRecords > 0 && len(daily) > opts.MaxRecords {
		daily = daily[len(daily)-opts.MaxRecords:]
	}

	name := b.Name
	if name == "" && exists {
		name = prev.Name
	}
	rec := model.SymbolRecord{Exchange: b.Exchange, Symbol: b.Symbol, Name: name, Daily: daily}
	out.Updated = true
	out.Bars = len(daily)
	return rec, out
}
